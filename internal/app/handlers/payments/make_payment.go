package payments

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/uow"
	domainpayment "rentbook/internal/domain/payment"
	"rentbook/internal/domain/shared/money"
)

const makePaymentKey = "payment.make"

const paymentMadeMessage = "payment made successfully"

// MakePaymentCommand links a payment to a booking. Amount is a decimal
// string; Currency defaults to the booking's currency.
type MakePaymentCommand struct {
	PaymentID       string
	BookingID       string               `validate:"required"`
	Amount          string               `validate:"required"`
	Currency        string               `validate:"omitempty,len=3"`
	Method          domainpayment.Method `validate:"required"`
	TransactionID   string
	Username        string
	Trusted         bool
	IdempotencyKeyV string
	Now             time.Time
}

func (c MakePaymentCommand) Key() string { return makePaymentKey }

func (c MakePaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c MakePaymentCommand) IdempotencyActor() string { return c.Username }

func (c MakePaymentCommand) ResultPrototype() any { return &dto.Message{} }

func (c MakePaymentCommand) LockKeys() []string {
	return []string{middleware.BookingKey(c.BookingID)}
}

func (c MakePaymentCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceBooking, c.BookingID, c.Username
}

func (c MakePaymentCommand) TrustedCaller() bool { return c.Trusted }

type MakePaymentHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Metrics    policies.Recorder
	Logger     *slog.Logger
}

func (h *MakePaymentHandler) Handle(ctx context.Context, cmd MakePaymentCommand) (*dto.Message, error) {
	bookingID, err := requireBookingID(cmd.BookingID)
	if err != nil {
		return nil, err
	}
	method, err := domainpayment.ParseMethod(string(cmd.Method))
	if err != nil {
		return nil, err
	}

	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	booking, err := unit.Bookings().ByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.HasPayment() {
		return nil, domainpayment.ErrAlreadyExists
	}
	if _, err := unit.Payments().ByBooking(ctx, booking.ID); err == nil {
		return nil, domainpayment.ErrAlreadyExists
	} else if !errors.Is(err, domainpayment.ErrNotFound) {
		return nil, err
	}

	currency := strings.TrimSpace(cmd.Currency)
	if currency == "" {
		currency = booking.TotalPrice.Currency
	}
	amount, err := money.Parse(cmd.Amount, currency)
	if err != nil {
		return nil, err
	}

	payment, err := domainpayment.New(domainpayment.CreateParams{
		ID:            newPaymentID(cmd.PaymentID),
		Booking:       booking,
		Amount:        amount,
		Method:        method,
		TransactionID: cmd.TransactionID,
		PaidAt:        handlersupport.Now(cmd.Now),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Payments().Insert(ctx, payment); err != nil {
		return nil, err
	}
	if err := unit.Bookings().AttachPayment(ctx, booking.ID, string(payment.ID)); err != nil {
		return nil, err
	}
	if err := handlersupport.FlushEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), payment); err != nil {
		return nil, err
	}
	if err := unit.Commit(); err != nil {
		return nil, err
	}

	if h.Metrics != nil {
		h.Metrics.PaymentMade()
	}
	if h.Logger != nil {
		h.Logger.Info("payment made", "payment_id", payment.ID, "booking_id", booking.ID, "amount", payment.Amount.String(), "method", payment.Method)
	}
	return &dto.Message{Message: paymentMadeMessage}, nil
}

var _ commands.Handler[MakePaymentCommand, *dto.Message] = (*MakePaymentHandler)(nil)
var _ middleware.IdempotentCommand = MakePaymentCommand{}
var _ middleware.SerializedCommand = MakePaymentCommand{}
var _ middleware.OwnedCommand = MakePaymentCommand{}
