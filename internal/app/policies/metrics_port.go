package policies

// Recorder receives business outcome counters. Implementations must be safe
// for concurrent use.
type Recorder interface {
	CommandHandled(key, outcome string)
	BookingCreated()
	BookingCancelled()
	PaymentMade()
	ReviewCreated()
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) CommandHandled(string, string) {}
func (NopRecorder) BookingCreated()               {}
func (NopRecorder) BookingCancelled()             {}
func (NopRecorder) PaymentMade()                  {}
func (NopRecorder) ReviewCreated()                {}
