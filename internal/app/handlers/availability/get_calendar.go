package availability

import (
	"context"
	"strings"
	"time"

	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	domainavailability "rentbook/internal/domain/availability"
	domainbooking "rentbook/internal/domain/booking"
	domainproperty "rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/daterange"
)

const (
	getCalendarKey       = "availability.calendar"
	checkAvailabilityKey = "availability.check"
)

// GetCalendarQuery lists a property's held ranges. From and To are optional
// but must be given together.
type GetCalendarQuery struct {
	PropertyID string `validate:"required"`
	From       time.Time
	To         time.Time
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	window, err := optionalWindow(q.From, q.To)
	if err != nil {
		return dto.Calendar{}, err
	}
	cal, _, err := loadCalendar(ctx, h.UoWFactory, q.PropertyID, window)
	if err != nil {
		return dto.Calendar{}, err
	}
	return dto.MapCalendar(cal), nil
}

// CheckAvailabilityQuery asks whether [StartDate, EndDate] is free. It is
// advisory: a later CreateBooking re-checks under the property lock.
type CheckAvailabilityQuery struct {
	PropertyID string    `validate:"required"`
	StartDate  time.Time `validate:"required"`
	EndDate    time.Time `validate:"required"`
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.Availability, error) {
	dr, err := daterange.New(q.StartDate, q.EndDate)
	if err != nil {
		return dto.Availability{}, err
	}
	cal, property, err := loadCalendar(ctx, h.UoWFactory, q.PropertyID, dr)
	if err != nil {
		return dto.Availability{}, err
	}
	out := dto.Availability{
		PropertyID: string(property.ID),
		StartDate:  dr.Start.Format(daterange.DateLayout),
		EndDate:    dr.End.Format(daterange.DateLayout),
		Listed:     property.Available,
	}
	for _, block := range cal.Conflicts(dr) {
		out.Conflicts = append(out.Conflicts, string(block.BookingID))
	}
	out.Available = property.Available && len(out.Conflicts) == 0
	return out, nil
}

func loadCalendar(ctx context.Context, factory uow.UoWFactory, rawID string, window daterange.DateRange) (*domainavailability.Calendar, *domainproperty.Property, error) {
	propertyID := strings.TrimSpace(rawID)
	if propertyID == "" {
		return nil, nil, domainbooking.ErrPropertyRequired
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, factory)
	if err != nil {
		return nil, nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	property, err := unit.Properties().ByID(execCtx, domainproperty.ID(propertyID))
	if err != nil {
		return nil, nil, err
	}
	var bookings []*domainbooking.Booking
	if window.Start.IsZero() {
		bookings, err = unit.Bookings().ListByProperty(execCtx, property.ID)
	} else {
		bookings, err = unit.Bookings().Overlapping(execCtx, property.ID, window, "")
	}
	if err != nil {
		return nil, nil, err
	}
	return domainavailability.Build(property.ID, window, bookings), property, nil
}

func optionalWindow(from, to time.Time) (daterange.DateRange, error) {
	if from.IsZero() && to.IsZero() {
		return daterange.DateRange{}, nil
	}
	return daterange.New(from, to)
}

var (
	_ queries.Handler[GetCalendarQuery, dto.Calendar]           = (*GetCalendarHandler)(nil)
	_ queries.Handler[CheckAvailabilityQuery, dto.Availability] = (*CheckAvailabilityHandler)(nil)
)
