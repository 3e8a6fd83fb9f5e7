package memory

import (
	"context"
	"errors"

	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
	domainproperty "rentbook/internal/domain/property"
	domainreviews "rentbook/internal/domain/reviews"
	domainuser "rentbook/internal/domain/user"
)

// Store bundles the in-memory repositories of one process.
type Store struct {
	Properties *PropertyRepository
	Users      *UserRepository
	Bookings   *BookingRepository
	Payments   *PaymentRepository
	Reviews    *ReviewRepository
}

func NewStore() *Store {
	return &Store{
		Properties: NewPropertyRepository(),
		Users:      NewUserRepository(),
		Bookings:   NewBookingRepository(),
		Payments:   NewPaymentRepository(),
		Reviews:    NewReviewRepository(),
	}
}

// Factory returns a unit-of-work factory over the store.
func (s *Store) Factory() Factory {
	return Factory{
		PropertiesRepo: s.Properties,
		UsersRepo:      s.Users,
		BookingsRepo:   s.Bookings,
		PaymentsRepo:   s.Payments,
		ReviewsRepo:    s.Reviews,
	}
}

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertiesRepo domainproperty.Directory
	UsersRepo      domainuser.Directory
	BookingsRepo   domainbooking.Repository
	PaymentsRepo   domainpayment.Repository
	ReviewsRepo    domainreviews.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. Writes are applied
// immediately and Rollback does not undo them; the invariants hold because
// each repository checks them atomically and commands on the same resource
// are serialized by the locker.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertiesRepo == nil || f.UsersRepo == nil || f.BookingsRepo == nil || f.PaymentsRepo == nil || f.ReviewsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Unit{
		properties: f.PropertiesRepo,
		users:      f.UsersRepo,
		bookings:   f.BookingsRepo,
		payments:   f.PaymentsRepo,
		reviews:    f.ReviewsRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	properties domainproperty.Directory
	users      domainuser.Directory
	bookings   domainbooking.Repository
	payments   domainpayment.Repository
	reviews    domainreviews.Repository
}

func (u *Unit) Properties() domainproperty.Directory { return u.properties }

func (u *Unit) Users() domainuser.Directory { return u.users }

func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }

func (u *Unit) Payments() domainpayment.Repository { return u.payments }

func (u *Unit) Reviews() domainreviews.Repository { return u.reviews }

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
