package payments

import (
	"context"
	"errors"
	"strings"

	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
	domainproperty "rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/money"
	domainuser "rentbook/internal/domain/user"
)

const (
	getPaymentKey        = "payment.get"
	isPaymentOwnerKey    = "payment.owner"
	totalForPropertyKey  = "payment.total.property"
	totalForUserKey      = "payment.total.user"
	defaultTotalCurrency = "USD"
)

type GetPaymentQuery struct {
	BookingID string `validate:"required"`
}

func (q GetPaymentQuery) Key() string { return getPaymentKey }

type GetPaymentHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPaymentHandler) Handle(ctx context.Context, q GetPaymentQuery) (dto.Payment, error) {
	bookingID, err := requireBookingID(q.BookingID)
	if err != nil {
		return dto.Payment{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Payment{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if _, err := unit.Bookings().ByID(execCtx, bookingID); err != nil {
		return dto.Payment{}, err
	}
	payment, err := unit.Payments().ByBooking(execCtx, bookingID)
	if err != nil {
		return dto.Payment{}, err
	}
	return dto.MapPayment(payment), nil
}

type IsPaymentOwnerQuery struct {
	PaymentID string `validate:"required"`
	Username  string
}

func (q IsPaymentOwnerQuery) Key() string { return isPaymentOwnerKey }

type IsPaymentOwnerHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *IsPaymentOwnerHandler) Handle(ctx context.Context, q IsPaymentOwnerQuery) (dto.Ownership, error) {
	id := strings.TrimSpace(q.PaymentID)
	if id == "" {
		return dto.Ownership{}, domainpayment.ErrIDRequired
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Ownership{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	owner, err := handlersupport.PaymentOwnedBy(execCtx, unit, domainpayment.ID(id), q.Username)
	if err != nil {
		return dto.Ownership{}, err
	}
	return dto.Ownership{Owner: owner}, nil
}

type TotalPaidForPropertyQuery struct {
	PropertyID string `validate:"required"`
}

func (q TotalPaidForPropertyQuery) Key() string { return totalForPropertyKey }

type TotalPaidByUserQuery struct {
	Username string `validate:"required"`
}

func (q TotalPaidByUserQuery) Key() string { return totalForUserKey }

// TotalsHandler sums payment amounts over a set of bookings. Bookings
// without a payment contribute zero.
type TotalsHandler struct {
	UoWFactory uow.UoWFactory
	// DefaultCurrency labels the zero total of a renter with no payments.
	DefaultCurrency string
}

func (h *TotalsHandler) Handle(ctx context.Context, q TotalPaidForPropertyQuery) (dto.PaymentTotal, error) {
	propertyID := strings.TrimSpace(q.PropertyID)
	if propertyID == "" {
		return dto.PaymentTotal{}, domainbooking.ErrPropertyRequired
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PaymentTotal{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	property, err := unit.Properties().ByID(execCtx, domainproperty.ID(propertyID))
	if err != nil {
		return dto.PaymentTotal{}, err
	}
	bookings, err := unit.Bookings().ListByProperty(execCtx, property.ID)
	if err != nil {
		return dto.PaymentTotal{}, err
	}
	total, count, err := sumPayments(execCtx, unit, bookings, property.NightlyPrice.Currency)
	if err != nil {
		return dto.PaymentTotal{}, err
	}
	return dto.PaymentTotal{Scope: "property", ScopeID: string(property.ID), Total: dto.MapMoney(total), Payments: count}, nil
}

func (h *TotalsHandler) HandleUser(ctx context.Context, q TotalPaidByUserQuery) (dto.PaymentTotal, error) {
	username := domainuser.NormalizeUsername(q.Username)
	if username == "" {
		return dto.PaymentTotal{}, domainuser.ErrUsernameRequired
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PaymentTotal{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	renter, err := unit.Users().ByUsername(execCtx, username)
	if err != nil {
		return dto.PaymentTotal{}, err
	}
	bookings, err := unit.Bookings().ListByUser(execCtx, renter.ID)
	if err != nil {
		return dto.PaymentTotal{}, err
	}
	currency := h.DefaultCurrency
	if len(bookings) > 0 {
		currency = bookings[0].TotalPrice.Currency
	}
	if currency == "" {
		currency = defaultTotalCurrency
	}
	total, count, err := sumPayments(execCtx, unit, bookings, currency)
	if err != nil {
		return dto.PaymentTotal{}, err
	}
	return dto.PaymentTotal{Scope: "user", ScopeID: string(renter.ID), Total: dto.MapMoney(total), Payments: count}, nil
}

func sumPayments(ctx context.Context, unit uow.UnitOfWork, bookings []*domainbooking.Booking, currency string) (money.Money, int, error) {
	total := money.Zero(currency)
	count := 0
	for _, b := range bookings {
		payment, err := unit.Payments().ByBooking(ctx, b.ID)
		if err != nil {
			if errors.Is(err, domainpayment.ErrNotFound) {
				continue
			}
			return money.Money{}, 0, err
		}
		total, err = total.Add(payment.Amount)
		if err != nil {
			return money.Money{}, 0, err
		}
		count++
	}
	return total, count, nil
}

var (
	_ queries.Handler[GetPaymentQuery, dto.Payment]                = (*GetPaymentHandler)(nil)
	_ queries.Handler[IsPaymentOwnerQuery, dto.Ownership]          = (*IsPaymentOwnerHandler)(nil)
	_ queries.Handler[TotalPaidForPropertyQuery, dto.PaymentTotal] = (*TotalsHandler)(nil)
)
