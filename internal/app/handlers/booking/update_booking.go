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
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domainproperty "rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/daterange"
)

const updateBookingKey = "booking.update"

// UpdateBookingCommand patches a booking. Nil fields keep their current
// value; the property can be restated but never changed.
type UpdateBookingCommand struct {
	BookingID  string `validate:"required"`
	PropertyID *string
	StartDate  *time.Time
	EndDate    *time.Time
	// Username is the acting renter. Trusted marks calls issued by the
	// system itself, which skip the ownership check.
	Username string
	Trusted  bool
	Now      time.Time
}

func (c UpdateBookingCommand) Key() string { return updateBookingKey }

func (c UpdateBookingCommand) LockKeys() []string {
	keys := []string{middleware.BookingKey(c.BookingID)}
	if c.PropertyID != nil {
		keys = append(keys, middleware.PropertyKey(*c.PropertyID))
	}
	return keys
}

func (c UpdateBookingCommand) OwnershipClaim() (string, string, string) {
	return handlersupport.ResourceBooking, c.BookingID, c.Username
}

func (c UpdateBookingCommand) TrustedCaller() bool { return c.Trusted }

type UpdateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *UpdateBookingHandler) Handle(ctx context.Context, cmd UpdateBookingCommand) (dto.Booking, error) {
	id, err := requireBookingID(cmd.BookingID)
	if err != nil {
		return dto.Booking{}, err
	}

	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	booking, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return dto.Booking{}, err
	}
	if cmd.PropertyID != nil {
		requested := domainproperty.ID(strings.TrimSpace(*cmd.PropertyID))
		if _, err := unit.Properties().ByID(ctx, requested); err != nil {
			return dto.Booking{}, err
		}
		if requested != booking.PropertyID {
			return dto.Booking{}, domainbooking.ErrPropertyMismatch
		}
	}

	start, end := booking.Range.Start, booking.Range.End
	if cmd.StartDate != nil {
		start = *cmd.StartDate
	}
	if cmd.EndDate != nil {
		end = *cmd.EndDate
	}
	dr, err := daterange.New(start, end)
	if err != nil {
		return dto.Booking{}, err
	}

	if !dr.Equal(booking.Range) {
		if err := unit.Bookings().LockProperty(ctx, booking.PropertyID); err != nil {
			return dto.Booking{}, err
		}
		// The booking's own current range never conflicts with its new one.
		conflicts, err := unit.Bookings().Overlapping(ctx, booking.PropertyID, dr, booking.ID)
		if err != nil {
			return dto.Booking{}, err
		}
		if len(conflicts) > 0 {
			return dto.Booking{}, domainbooking.ErrDatesOverlap
		}
		property, err := unit.Properties().ByID(ctx, booking.PropertyID)
		if err != nil {
			return dto.Booking{}, err
		}
		if err := booking.Reschedule(dr, property.NightlyPrice, handlersupport.Now(cmd.Now)); err != nil {
			return dto.Booking{}, err
		}
		if err := unit.Bookings().Save(ctx, booking); err != nil {
			return dto.Booking{}, err
		}
	}

	if err := handlersupport.FlushEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), booking); err != nil {
		return dto.Booking{}, err
	}
	if err := unit.Commit(); err != nil {
		return dto.Booking{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking updated", "booking_id", booking.ID, "range", booking.Range.String(), "total", booking.TotalPrice.String())
	}
	return dto.MapBooking(booking), nil
}

var _ commands.Handler[UpdateBookingCommand, dto.Booking] = (*UpdateBookingHandler)(nil)
var _ middleware.SerializedCommand = UpdateBookingCommand{}
var _ middleware.OwnedCommand = UpdateBookingCommand{}
