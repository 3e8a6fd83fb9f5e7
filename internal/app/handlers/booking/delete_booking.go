package booking

import (
	"context"
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
	domainbooking "rentbook/internal/domain/booking"
	domainproperty "rentbook/internal/domain/property"
)

const deleteBookingKey = "booking.delete"

const deletedMessage = "booking deleted"

// DeleteBookingCommand removes a booking regardless of its status or payment.
type DeleteBookingCommand struct {
	BookingID string `validate:"required"`
	// PropertyID is optional; when set it must match the booking.
	PropertyID string
	Username   string
	Trusted    bool
	Now        time.Time
}

func (c DeleteBookingCommand) Key() string { return deleteBookingKey }

func (c DeleteBookingCommand) LockKeys() []string {
	return []string{middleware.BookingKey(c.BookingID)}
}

func (c DeleteBookingCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceBooking, c.BookingID, c.Username
}

func (c DeleteBookingCommand) TrustedCaller() bool { return c.Trusted }

type DeleteBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Metrics    policies.Recorder
	Logger     *slog.Logger
}

func (h *DeleteBookingHandler) Handle(ctx context.Context, cmd DeleteBookingCommand) (dto.Message, error) {
	id, err := requireBookingID(cmd.BookingID)
	if err != nil {
		return dto.Message{}, err
	}

	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Message{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	booking, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return dto.Message{}, err
	}
	if propertyID := strings.TrimSpace(cmd.PropertyID); propertyID != "" && booking.PropertyID != domainproperty.ID(propertyID) {
		return dto.Message{}, domainbooking.ErrPropertyMismatch
	}
	payment, err := paymentOf(ctx, unit.UnitOfWork, booking.ID)
	if err != nil {
		return dto.Message{}, err
	}
	booking.MarkDeleted(cmd.Username, handlersupport.Now(cmd.Now))
	if err := removeWithDependents(ctx, unit.UnitOfWork, booking, payment); err != nil {
		return dto.Message{}, err
	}
	if err := handlersupport.FlushEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), booking); err != nil {
		return dto.Message{}, err
	}
	if err := unit.Commit(); err != nil {
		return dto.Message{}, err
	}

	if h.Metrics != nil {
		h.Metrics.BookingCancelled()
	}
	if h.Logger != nil {
		h.Logger.Info("booking deleted", "booking_id", booking.ID, "property_id", booking.PropertyID, "actor", cmd.Username)
	}
	return dto.Message{Message: deletedMessage}, nil
}

var _ commands.Handler[DeleteBookingCommand, dto.Message] = (*DeleteBookingHandler)(nil)
var _ middleware.SerializedCommand = DeleteBookingCommand{}
var _ middleware.OwnedCommand = DeleteBookingCommand{}
