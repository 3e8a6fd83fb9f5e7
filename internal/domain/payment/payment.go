package payment

import (
	"context"
	"strings"
	"time"

	"rentbook/internal/domain/booking"
	"rentbook/internal/domain/shared/apperr"
	"rentbook/internal/domain/shared/events"
	"rentbook/internal/domain/shared/money"
	"rentbook/internal/domain/user"
)

var (
	ErrNotFound       = apperr.New(apperr.KindNotFound, "payment: not found")
	ErrIDRequired     = apperr.Validation("payment: id is required")
	ErrAlreadyExists  = apperr.New(apperr.KindStateConflict, "payment: payment already exists for this booking")
	ErrAmountMismatch = apperr.Validation("payment: amount must equal the booking total price")
	ErrInvalidStatus  = apperr.Validation("payment: invalid status")
	ErrInvalidMethod  = apperr.Validation("payment: invalid method")
)

type ID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

type Method string

const (
	MethodCreditCard   Method = "CREDIT_CARD"
	MethodPayPal       Method = "PAYPAL"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodCash         Method = "CASH"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return s, nil
	default:
		return "", apperr.Validationf("payment: invalid status %q", raw)
	}
}

func ParseMethod(raw string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(raw))); m {
	case MethodCreditCard, MethodPayPal, MethodBankTransfer, MethodCash:
		return m, nil
	default:
		return "", apperr.Validationf("payment: invalid method %q", raw)
	}
}

type Payment struct {
	ID            ID
	BookingID     booking.ID
	PayerID       user.ID
	Amount        money.Money
	Status        Status
	Method        Method
	TransactionID string
	PaidAt        time.Time
	UpdatedAt     time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Payment, error)
	ByBooking(ctx context.Context, bookingID booking.ID) (*Payment, error)
	// Insert fails with ErrAlreadyExists if the booking already has a payment.
	Insert(ctx context.Context, p *Payment) error
	Save(ctx context.Context, p *Payment) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID            ID
	Booking       *booking.Booking
	Amount        money.Money
	Method        Method
	TransactionID string
	PaidAt        time.Time
}

// New links a pending payment to the booking. The amount must match the
// booking total exactly; no rounding is applied.
func New(params CreateParams) (*Payment, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if params.Booking == nil {
		return nil, booking.ErrNotFound
	}
	if _, err := ParseMethod(string(params.Method)); err != nil {
		return nil, err
	}
	if !params.Amount.Equal(params.Booking.TotalPrice) {
		return nil, ErrAmountMismatch
	}
	now := params.PaidAt.UTC()
	p := &Payment{
		ID:            params.ID,
		BookingID:     params.Booking.ID,
		PayerID:       params.Booking.UserID,
		Amount:        params.Booking.TotalPrice,
		Status:        StatusPending,
		Method:        params.Method,
		TransactionID: strings.TrimSpace(params.TransactionID),
		PaidAt:        now,
		UpdatedAt:     now,
	}
	p.Record(PaymentCreated{PaymentID: p.ID, BookingID: p.BookingID, Amount: p.Amount.Decimal(), Currency: p.Amount.Currency, Method: p.Method, At: now})
	return p, nil
}

func (p *Payment) ChangeStatus(status Status, now time.Time) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	if p.Status == status {
		return nil
	}
	from := p.Status
	p.Status = status
	p.UpdatedAt = now.UTC()
	p.Record(PaymentStatusChanged{PaymentID: p.ID, BookingID: p.BookingID, From: from, To: status, At: p.UpdatedAt})
	return nil
}

func (p *Payment) ChangeMethod(method Method, now time.Time) error {
	if _, err := ParseMethod(string(method)); err != nil {
		return err
	}
	p.Method = method
	p.UpdatedAt = now.UTC()
	return nil
}

func (p *Payment) SetTransactionID(id string, now time.Time) {
	p.TransactionID = strings.TrimSpace(id)
	p.UpdatedAt = now.UTC()
}

// Completed blocks cancellation of the owning booking.
func (p *Payment) Completed() bool {
	return p != nil && p.Status == StatusCompleted
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	cp := *p
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}

type PaymentCreated struct {
	PaymentID ID         `json:"payment_id"`
	BookingID booking.ID `json:"booking_id"`
	Amount    string     `json:"amount"`
	Currency  string     `json:"currency"`
	Method    Method     `json:"method"`
	At        time.Time  `json:"at"`
}

func (e PaymentCreated) EventName() string     { return "payment.created" }
func (e PaymentCreated) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentCreated) OccurredAt() time.Time { return e.At }

type PaymentStatusChanged struct {
	PaymentID ID         `json:"payment_id"`
	BookingID booking.ID `json:"booking_id"`
	From      Status     `json:"from"`
	To        Status     `json:"to"`
	At        time.Time  `json:"at"`
}

func (e PaymentStatusChanged) EventName() string     { return "payment.status_changed" }
func (e PaymentStatusChanged) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentStatusChanged) OccurredAt() time.Time { return e.At }
