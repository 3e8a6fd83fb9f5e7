package booking

import (
	"context"
	"fmt"
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

const changeStatusKey = "booking.status.change"

const cancelledMessage = "booking cancelled and removed"

// ChangeBookingStatusCommand accepts or rejects a booking on behalf of the
// property side. Cancelling removes the booking and frees its dates. Only
// the host of the property or a trusted caller may issue it.
type ChangeBookingStatusCommand struct {
	BookingID  string               `validate:"required"`
	PropertyID string               `validate:"required"`
	Status     domainbooking.Status `validate:"required"`
	Username   string
	Trusted    bool
	Now        time.Time
}

func (c ChangeBookingStatusCommand) Key() string { return changeStatusKey }

func (c ChangeBookingStatusCommand) LockKeys() []string {
	return []string{middleware.BookingKey(c.BookingID)}
}

func (c ChangeBookingStatusCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceBookingHost, c.BookingID, c.Username
}

func (c ChangeBookingStatusCommand) TrustedCaller() bool { return c.Trusted }

type ChangeBookingStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Metrics    policies.Recorder
	Logger     *slog.Logger
}

func (h *ChangeBookingStatusHandler) Handle(ctx context.Context, cmd ChangeBookingStatusCommand) (dto.Message, error) {
	id, err := requireBookingID(cmd.BookingID)
	if err != nil {
		return dto.Message{}, err
	}
	if !cmd.Status.Valid() {
		return dto.Message{}, domainbooking.ErrInvalidStatus
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
	if booking.PropertyID != domainproperty.ID(strings.TrimSpace(cmd.PropertyID)) {
		return dto.Message{}, domainbooking.ErrPropertyMismatch
	}
	payment, err := paymentOf(ctx, unit.UnitOfWork, booking.ID)
	if err != nil {
		return dto.Message{}, err
	}

	effect, err := booking.ChangeStatus(cmd.Status, payment.Completed(), handlersupport.Now(cmd.Now))
	if err != nil {
		return dto.Message{}, err
	}
	var message string
	switch effect {
	case domainbooking.EffectRemove:
		if err := removeWithDependents(ctx, unit.UnitOfWork, booking, payment); err != nil {
			return dto.Message{}, err
		}
		message = cancelledMessage
	default:
		if err := unit.Bookings().Save(ctx, booking); err != nil {
			return dto.Message{}, err
		}
		message = fmt.Sprintf("booking status updated to %s", booking.Status)
	}

	if err := handlersupport.FlushEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), booking); err != nil {
		return dto.Message{}, err
	}
	if err := unit.Commit(); err != nil {
		return dto.Message{}, err
	}

	if effect == domainbooking.EffectRemove && h.Metrics != nil {
		h.Metrics.BookingCancelled()
	}
	if h.Logger != nil {
		h.Logger.Info("booking status changed", "booking_id", booking.ID, "status", booking.Status)
	}
	return dto.Message{Message: message}, nil
}

var _ commands.Handler[ChangeBookingStatusCommand, dto.Message] = (*ChangeBookingStatusHandler)(nil)
var _ middleware.SerializedCommand = ChangeBookingStatusCommand{}
var _ middleware.OwnedCommand = ChangeBookingStatusCommand{}
