package payments

import (
	"context"
	"log/slog"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/uow"
)

const deletePaymentKey = "payment.delete"

const paymentDeletedMessage = "payment deleted"

type DeletePaymentCommand struct {
	BookingID string `validate:"required"`
	Username  string
	Trusted   bool
}

func (c DeletePaymentCommand) Key() string { return deletePaymentKey }

func (c DeletePaymentCommand) LockKeys() []string {
	return []string{middleware.BookingKey(c.BookingID)}
}

func (c DeletePaymentCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceBookingHost, c.BookingID, c.Username
}

func (c DeletePaymentCommand) TrustedCaller() bool { return c.Trusted }

type DeletePaymentHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *DeletePaymentHandler) Handle(ctx context.Context, cmd DeletePaymentCommand) (dto.Message, error) {
	bookingID, err := requireBookingID(cmd.BookingID)
	if err != nil {
		return dto.Message{}, err
	}

	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Message{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	if _, err := unit.Bookings().ByID(ctx, bookingID); err != nil {
		return dto.Message{}, err
	}
	payment, err := unit.Payments().ByBooking(ctx, bookingID)
	if err != nil {
		return dto.Message{}, err
	}
	if err := unit.Bookings().AttachPayment(ctx, bookingID, ""); err != nil {
		return dto.Message{}, err
	}
	if err := unit.Payments().Delete(ctx, payment.ID); err != nil {
		return dto.Message{}, err
	}
	if err := unit.Commit(); err != nil {
		return dto.Message{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("payment deleted", "payment_id", payment.ID, "booking_id", bookingID)
	}
	return dto.Message{Message: paymentDeletedMessage}, nil
}

var _ commands.Handler[DeletePaymentCommand, dto.Message] = (*DeletePaymentHandler)(nil)
var _ middleware.SerializedCommand = DeletePaymentCommand{}
var _ middleware.OwnedCommand = DeletePaymentCommand{}
