package obs

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentbook/internal/app/policies"
)

const namespace = "rentbook"

// Metrics counts business outcomes. Collectors live on the struct so tests
// can use a private registry.
type Metrics struct {
	commands         *prometheus.CounterVec
	bookingCreated   prometheus.Counter
	bookingCancelled prometheus.Counter
	paymentMade      prometheus.Counter
	reviewCreated    prometheus.Counter

	registry prometheus.Gatherer
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// DefaultMetrics registers collectors with the global registry once.
func DefaultMetrics() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
	return defaultMetrics
}

func NewMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled by key and outcome.",
		}, []string{"command", "outcome"}),
		bookingCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Bookings created.",
		}),
		bookingCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_cancelled_total",
			Help:      "Bookings cancelled or deleted.",
		}),
		paymentMade: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_made_total",
			Help:      "Payments linked to bookings.",
		}),
		reviewCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_created_total",
			Help:      "Reviews submitted.",
		}),
		registry: gatherer,
	}
	reg.MustRegister(m.commands, m.bookingCreated, m.bookingCancelled, m.paymentMade, m.reviewCreated)
	return m
}

func (m *Metrics) CommandHandled(key, outcome string) {
	m.commands.WithLabelValues(key, outcome).Inc()
}

func (m *Metrics) BookingCreated()   { m.bookingCreated.Inc() }
func (m *Metrics) BookingCancelled() { m.bookingCancelled.Inc() }
func (m *Metrics) PaymentMade()      { m.paymentMade.Inc() }
func (m *Metrics) ReviewCreated()    { m.reviewCreated.Inc() }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ policies.Recorder = (*Metrics)(nil)
