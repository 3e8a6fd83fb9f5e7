package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
	domainproperty "rentbook/internal/domain/property"
	domainreviews "rentbook/internal/domain/reviews"
	domainuser "rentbook/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory missing database")

type txKey struct{}

// conn returns the transaction bound to ctx, falling back to db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Factory opens one SQL transaction per unit of work.
type Factory struct {
	DB *gorm.DB

	PropertiesRepo domainproperty.Directory
	UsersRepo      domainuser.Directory
	BookingsRepo   domainbooking.Repository
	PaymentsRepo   domainpayment.Repository
	ReviewsRepo    domainreviews.Repository
}

// NewFactory builds a factory with the default repositories of db.
func NewFactory(db *gorm.DB, properties domainproperty.Directory) Factory {
	if properties == nil {
		properties = NewPropertyRepository(db)
	}
	return Factory{
		DB:             db,
		PropertiesRepo: properties,
		UsersRepo:      NewUserRepository(db),
		BookingsRepo:   NewBookingRepository(db),
		PaymentsRepo:   NewPaymentRepository(db),
		ReviewsRepo:    NewReviewRepository(db),
	}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	tx := f.DB.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: opts.ReadOnly})
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Unit{
		tx:         tx,
		properties: f.PropertiesRepo,
		users:      f.UsersRepo,
		bookings:   f.BookingsRepo,
		payments:   f.PaymentsRepo,
		reviews:    f.ReviewsRepo,
	}, nil
}

type Unit struct {
	tx *gorm.DB

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

func (u *Unit) Commit(context.Context) error {
	return translate(u.tx.Commit().Error, nil, nil)
}

func (u *Unit) Rollback(context.Context) error {
	err := u.tx.Rollback().Error
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// InjectContext binds the transaction so repositories pick it up.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, u.tx)
}

var _ uow.UoWFactory = Factory{}
