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
	"rentbook/internal/domain/shared/daterange"
	domainuser "rentbook/internal/domain/user"
)

const createBookingKey = "booking.create"

type CreateBookingCommand struct {
	// BookingID is optional; a random id is generated when empty.
	BookingID       string
	PropertyID      string    `validate:"required"`
	StartDate       time.Time `validate:"required"`
	EndDate         time.Time `validate:"required"`
	Username        string    `validate:"required"`
	IdempotencyKeyV string
	Now             time.Time
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) IdempotencyActor() string { return c.Username }

func (c CreateBookingCommand) ResultPrototype() any { return &dto.Booking{} }

func (c CreateBookingCommand) LockKeys() []string {
	return []string{middleware.PropertyKey(c.PropertyID)}
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Metrics    policies.Recorder
	Logger     *slog.Logger
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*dto.Booking, error) {
	propertyID := strings.TrimSpace(cmd.PropertyID)
	if propertyID == "" {
		return nil, domainbooking.ErrPropertyRequired
	}
	username := domainuser.NormalizeUsername(cmd.Username)
	if username == "" {
		return nil, domainuser.ErrUsernameRequired
	}
	// Date order is checked before any lookup so a bad request never
	// reaches storage.
	dr, err := daterange.New(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}

	unit, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	property, err := unit.Properties().ByID(ctx, domainproperty.ID(propertyID))
	if err != nil {
		return nil, err
	}
	if !property.Available {
		return nil, domainbooking.ErrPropertyUnavailable
	}

	if err := unit.Bookings().LockProperty(ctx, property.ID); err != nil {
		return nil, err
	}
	conflicts, err := unit.Bookings().Overlapping(ctx, property.ID, dr, "")
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, domainbooking.ErrDatesOverlap
	}

	renter, err := unit.Users().ByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	now := handlersupport.Now(cmd.Now)
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:           newBookingID(cmd.BookingID),
		PropertyID:   property.ID,
		UserID:       renter.ID,
		Range:        dr,
		NightlyPrice: property.NightlyPrice,
		BookedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Insert(ctx, booking); err != nil {
		return nil, err
	}
	if err := handlersupport.FlushEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), booking); err != nil {
		return nil, err
	}
	if err := unit.Commit(); err != nil {
		return nil, err
	}

	if h.Metrics != nil {
		h.Metrics.BookingCreated()
	}
	if h.Logger != nil {
		h.Logger.Info("booking created",
			"booking_id", booking.ID,
			"property_id", booking.PropertyID,
			"user_id", booking.UserID,
			"range", booking.Range.String(),
			"total", booking.TotalPrice.String(),
		)
	}
	result := dto.MapBooking(booking)
	return &result, nil
}

var _ commands.Handler[CreateBookingCommand, *dto.Booking] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
var _ middleware.SerializedCommand = CreateBookingCommand{}
