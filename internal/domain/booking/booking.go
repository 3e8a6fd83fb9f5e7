package booking

import (
	"context"
	"strings"
	"time"

	"rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/apperr"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/events"
	"rentbook/internal/domain/shared/money"
	"rentbook/internal/domain/user"
)

var (
	ErrNotFound            = apperr.New(apperr.KindNotFound, "booking: not found")
	ErrIDRequired          = apperr.Validation("booking: id is required")
	ErrPropertyRequired    = apperr.Validation("booking: property id is required")
	ErrUserRequired        = apperr.Validation("booking: user id is required")
	ErrDatesOverlap        = apperr.New(apperr.KindConflict, "booking: property already booked for the selected dates")
	ErrPropertyUnavailable = apperr.Validation("booking: property not available")
	ErrPropertyMismatch    = apperr.Validation("booking: property reassignment is not supported")
	ErrCancelPaid          = apperr.New(apperr.KindStateConflict, "booking: cannot cancel a completed booking")
	ErrConcurrentUpdate    = apperr.New(apperr.KindConflict, "booking: concurrent update detected")
)

type ID string

type Booking struct {
	ID         ID
	PropertyID property.ID
	UserID     user.ID
	Range      daterange.DateRange
	TotalPrice money.Money
	Status     Status
	// PaymentID and ReviewID are denormalized back-references. Stores only
	// change them through AttachPayment / AttachReview.
	PaymentID string
	ReviewID  string
	BookedAt  time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	// Insert stores a new booking and fails with ErrDatesOverlap when an
	// active booking on the same property overlaps it.
	Insert(ctx context.Context, b *Booking) error
	// Save updates status, range and price. Back-references are left untouched.
	Save(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id ID) error
	AttachPayment(ctx context.Context, id ID, paymentID string) error
	AttachReview(ctx context.Context, id ID, reviewID string) error
	ListByUser(ctx context.Context, userID user.ID) ([]*Booking, error)
	ListByProperty(ctx context.Context, propertyID property.ID) ([]*Booking, error)
	// Overlapping returns active bookings on the property whose range
	// overlaps dr, skipping exclude when it is non-empty.
	Overlapping(ctx context.Context, propertyID property.ID, dr daterange.DateRange, exclude ID) ([]*Booking, error)
	// LockProperty serializes writers of the property's calendar for the
	// lifetime of the current transaction.
	LockProperty(ctx context.Context, propertyID property.ID) error
}

type CreateParams struct {
	ID           ID
	PropertyID   property.ID
	UserID       user.ID
	Range        daterange.DateRange
	NightlyPrice money.Money
	BookedAt     time.Time
}

// Quote prices a stay: nightly price times the number of nights.
func Quote(nightly money.Money, dr daterange.DateRange) (money.Money, error) {
	return nightly.Multiply(int64(dr.Nights()))
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.PropertyID)) == "" {
		return nil, ErrPropertyRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if _, err := money.New(params.NightlyPrice.Amount, params.NightlyPrice.Currency); err != nil {
		return nil, err
	}
	total, err := Quote(params.NightlyPrice, params.Range)
	if err != nil {
		return nil, err
	}
	now := params.BookedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		UserID:     params.UserID,
		Range:      params.Range,
		TotalPrice: total,
		Status:     StatusPending,
		BookedAt:   now,
		UpdatedAt:  now,
	}
	b.Record(BookingCreated{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		UserID:     b.UserID,
		Start:      b.Range.Start,
		End:        b.Range.End,
		TotalPrice: b.TotalPrice.Decimal(),
		Currency:   b.TotalPrice.Currency,
		At:         now,
	})
	return b, nil
}

// Reschedule moves the booking to dr. The total is re-quoted only when the
// range actually changes.
func (b *Booking) Reschedule(dr daterange.DateRange, nightly money.Money, now time.Time) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	if b.Range.Equal(dr) {
		return nil
	}
	total, err := Quote(nightly, dr)
	if err != nil {
		return err
	}
	b.Range = dr
	b.TotalPrice = total
	b.UpdatedAt = now.UTC()
	b.Record(BookingRescheduled{
		BookingID:  b.ID,
		Start:      dr.Start,
		End:        dr.End,
		TotalPrice: b.TotalPrice.Decimal(),
		At:         b.UpdatedAt,
	})
	return nil
}

// ChangeStatus applies the transition function. paymentCompleted must
// reflect the status of the booking's payment, if any.
func (b *Booking) ChangeStatus(target Status, paymentCompleted bool, now time.Time) (Effect, error) {
	effect, err := b.Status.TransitionTo(target)
	if err != nil {
		return 0, err
	}
	now = now.UTC()
	switch effect {
	case EffectRemove:
		if paymentCompleted {
			return 0, ErrCancelPaid
		}
		b.Record(BookingCancelled{BookingID: b.ID, PropertyID: b.PropertyID, From: b.Status, At: now})
		b.Status = StatusCancelled
	default:
		from := b.Status
		b.Status = target
		b.Record(BookingStatusChanged{BookingID: b.ID, From: from, To: target, At: now})
	}
	b.UpdatedAt = now
	return effect, nil
}

// MarkDeleted records an unconditional removal.
func (b *Booking) MarkDeleted(actor string, now time.Time) {
	b.Record(BookingDeleted{BookingID: b.ID, PropertyID: b.PropertyID, Actor: actor, At: now.UTC()})
}

// HasPayment reports whether a payment is linked.
func (b *Booking) HasPayment() bool {
	return b.PaymentID != ""
}

// HasReview reports whether a review is linked.
func (b *Booking) HasReview() bool {
	return b.ReviewID != ""
}

// Clone returns a copy without pending events.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	cp := *b
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}

// FindConflict returns the first active booking in candidates on propertyID
// whose range overlaps dr, ignoring exclude.
func FindConflict(candidates []*Booking, propertyID property.ID, dr daterange.DateRange, exclude ID) *Booking {
	for _, existing := range candidates {
		if existing == nil || existing.PropertyID != propertyID {
			continue
		}
		if exclude != "" && existing.ID == exclude {
			continue
		}
		if !existing.Status.Active() {
			continue
		}
		if existing.Range.Overlaps(dr) {
			return existing
		}
	}
	return nil
}
