package booking

import (
	"context"
	"log/slog"
	"strings"

	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domainproperty "rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/apperr"
	domainuser "rentbook/internal/domain/user"
)

const (
	getBookingKey          = "booking.get"
	isBookingOwnerKey      = "booking.owner"
	listUserBookingsKey    = "booking.list.user"
	listPropertyBookingKey = "booking.list.property"
)

var (
	ErrNoBookingsForUser     = apperr.New(apperr.KindNotFound, "booking: no bookings found for user")
	ErrNoBookingsForProperty = apperr.New(apperr.KindNotFound, "booking: no bookings found for property")
)

type GetBookingQuery struct {
	BookingID string `validate:"required"`
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	id, err := requireBookingID(q.BookingID)
	if err != nil {
		return dto.Booking{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	booking, err := unit.Bookings().ByID(execCtx, id)
	if err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(booking), nil
}

type IsBookingOwnerQuery struct {
	BookingID string `validate:"required"`
	Username  string
}

func (q IsBookingOwnerQuery) Key() string { return isBookingOwnerKey }

type IsBookingOwnerHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *IsBookingOwnerHandler) Handle(ctx context.Context, q IsBookingOwnerQuery) (dto.Ownership, error) {
	id, err := requireBookingID(q.BookingID)
	if err != nil {
		return dto.Ownership{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Ownership{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	owner, err := handlersupport.BookingOwnedBy(execCtx, unit, id, q.Username)
	if err != nil {
		return dto.Ownership{}, err
	}
	return dto.Ownership{Owner: owner}, nil
}

type ListUserBookingsQuery struct {
	Username string `validate:"required"`
}

func (q ListUserBookingsQuery) Key() string { return listUserBookingsKey }

type ListUserBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListUserBookingsHandler) Handle(ctx context.Context, q ListUserBookingsQuery) (dto.BookingCollection, error) {
	username := domainuser.NormalizeUsername(q.Username)
	if username == "" {
		return dto.BookingCollection{}, domainuser.ErrUsernameRequired
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	renter, err := unit.Users().ByUsername(execCtx, username)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	bookings, err := unit.Bookings().ListByUser(execCtx, renter.ID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if len(bookings) == 0 {
		return dto.BookingCollection{}, ErrNoBookingsForUser
	}
	if h.Logger != nil {
		h.Logger.Debug("user bookings listed", "user_id", renter.ID, "count", len(bookings))
	}
	return dto.MapBookings(bookings), nil
}

type ListPropertyBookingsQuery struct {
	PropertyID string `validate:"required"`
}

func (q ListPropertyBookingsQuery) Key() string { return listPropertyBookingKey }

type ListPropertyBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListPropertyBookingsHandler) Handle(ctx context.Context, q ListPropertyBookingsQuery) (dto.BookingCollection, error) {
	propertyID := strings.TrimSpace(q.PropertyID)
	if propertyID == "" {
		return dto.BookingCollection{}, domainbooking.ErrPropertyRequired
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	property, err := unit.Properties().ByID(execCtx, domainproperty.ID(propertyID))
	if err != nil {
		return dto.BookingCollection{}, err
	}
	bookings, err := unit.Bookings().ListByProperty(execCtx, property.ID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if len(bookings) == 0 {
		return dto.BookingCollection{}, ErrNoBookingsForProperty
	}
	if h.Logger != nil {
		h.Logger.Debug("property bookings listed", "property_id", property.ID, "count", len(bookings))
	}
	return dto.MapBookings(bookings), nil
}

var (
	_ queries.Handler[GetBookingQuery, dto.Booking]                     = (*GetBookingHandler)(nil)
	_ queries.Handler[IsBookingOwnerQuery, dto.Ownership]               = (*IsBookingOwnerHandler)(nil)
	_ queries.Handler[ListUserBookingsQuery, dto.BookingCollection]     = (*ListUserBookingsHandler)(nil)
	_ queries.Handler[ListPropertyBookingsQuery, dto.BookingCollection] = (*ListPropertyBookingsHandler)(nil)
)
