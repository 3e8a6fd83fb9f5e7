package payments

import (
	"context"
	"log/slog"
	"time"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/uow"
	domainpayment "rentbook/internal/domain/payment"
)

const (
	updatePaymentKey       = "payment.update"
	updatePaymentStatusKey = "payment.status.update"
	updatePaymentMethodKey = "payment.method.update"
)

// UpdatePaymentCommand patches the payment of a booking. The amount is
// fixed at creation and cannot be changed. Payment maintenance belongs to
// the host of the booked property.
type UpdatePaymentCommand struct {
	BookingID     string `validate:"required"`
	Status        *domainpayment.Status
	Method        *domainpayment.Method
	TransactionID *string
	Username      string
	Trusted       bool
	Now           time.Time
}

func (c UpdatePaymentCommand) Key() string { return updatePaymentKey }

func (c UpdatePaymentCommand) LockKeys() []string {
	return []string{middleware.BookingKey(c.BookingID)}
}

func (c UpdatePaymentCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceBookingHost, c.BookingID, c.Username
}

func (c UpdatePaymentCommand) TrustedCaller() bool { return c.Trusted }

type UpdatePaymentStatusCommand struct {
	BookingID string               `validate:"required"`
	Status    domainpayment.Status `validate:"required"`
	Username  string
	Trusted   bool
	Now       time.Time
}

func (c UpdatePaymentStatusCommand) Key() string { return updatePaymentStatusKey }

func (c UpdatePaymentStatusCommand) LockKeys() []string {
	return []string{middleware.BookingKey(c.BookingID)}
}

func (c UpdatePaymentStatusCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceBookingHost, c.BookingID, c.Username
}

func (c UpdatePaymentStatusCommand) TrustedCaller() bool { return c.Trusted }

type UpdatePaymentMethodCommand struct {
	BookingID string               `validate:"required"`
	Method    domainpayment.Method `validate:"required"`
	Username  string
	Trusted   bool
	Now       time.Time
}

func (c UpdatePaymentMethodCommand) Key() string { return updatePaymentMethodKey }

func (c UpdatePaymentMethodCommand) LockKeys() []string {
	return []string{middleware.BookingKey(c.BookingID)}
}

func (c UpdatePaymentMethodCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceBookingHost, c.BookingID, c.Username
}

func (c UpdatePaymentMethodCommand) TrustedCaller() bool { return c.Trusted }

// UpdatePaymentHandler serves the three payment update commands; the status
// and method variants are narrow patches.
type UpdatePaymentHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *UpdatePaymentHandler) Handle(ctx context.Context, cmd UpdatePaymentCommand) (dto.Payment, error) {
	bookingID, err := requireBookingID(cmd.BookingID)
	if err != nil {
		return dto.Payment{}, err
	}

	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Payment{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	if _, err := unit.Bookings().ByID(ctx, bookingID); err != nil {
		return dto.Payment{}, err
	}
	payment, err := unit.Payments().ByBooking(ctx, bookingID)
	if err != nil {
		return dto.Payment{}, err
	}

	now := handlersupport.Now(cmd.Now)
	if cmd.Status != nil {
		if err := payment.ChangeStatus(*cmd.Status, now); err != nil {
			return dto.Payment{}, err
		}
	}
	if cmd.Method != nil {
		if err := payment.ChangeMethod(*cmd.Method, now); err != nil {
			return dto.Payment{}, err
		}
	}
	if cmd.TransactionID != nil {
		payment.SetTransactionID(*cmd.TransactionID, now)
	}
	if err := unit.Payments().Save(ctx, payment); err != nil {
		return dto.Payment{}, err
	}
	if err := handlersupport.FlushEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), payment); err != nil {
		return dto.Payment{}, err
	}
	if err := unit.Commit(); err != nil {
		return dto.Payment{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("payment updated", "payment_id", payment.ID, "booking_id", payment.BookingID, "status", payment.Status, "method", payment.Method)
	}
	return dto.MapPayment(payment), nil
}

func (h *UpdatePaymentHandler) HandleStatus(ctx context.Context, cmd UpdatePaymentStatusCommand) (dto.Payment, error) {
	status := cmd.Status
	return h.Handle(ctx, UpdatePaymentCommand{BookingID: cmd.BookingID, Status: &status, Username: cmd.Username, Trusted: cmd.Trusted, Now: cmd.Now})
}

func (h *UpdatePaymentHandler) HandleMethod(ctx context.Context, cmd UpdatePaymentMethodCommand) (dto.Payment, error) {
	method := cmd.Method
	return h.Handle(ctx, UpdatePaymentCommand{BookingID: cmd.BookingID, Method: &method, Username: cmd.Username, Trusted: cmd.Trusted, Now: cmd.Now})
}

var _ commands.Handler[UpdatePaymentCommand, dto.Payment] = (*UpdatePaymentHandler)(nil)
var _ middleware.SerializedCommand = UpdatePaymentCommand{}
var _ middleware.SerializedCommand = UpdatePaymentStatusCommand{}
var _ middleware.SerializedCommand = UpdatePaymentMethodCommand{}
var _ middleware.OwnedCommand = UpdatePaymentCommand{}
var _ middleware.OwnedCommand = UpdatePaymentStatusCommand{}
var _ middleware.OwnedCommand = UpdatePaymentMethodCommand{}
