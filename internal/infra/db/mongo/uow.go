package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
	domainproperty "rentbook/internal/domain/property"
	domainreviews "rentbook/internal/domain/reviews"
	domainuser "rentbook/internal/domain/user"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PropertiesRepo domainproperty.Directory
	UsersRepo      domainuser.Directory
	BookingsRepo   domainbooking.Repository
	PaymentsRepo   domainpayment.Repository
	ReviewsRepo    domainreviews.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds a factory with the default repositories of db.
func NewFactory(db *mongo.Database, properties domainproperty.Directory) Factory {
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

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(readconcern.Snapshot()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = options.Transaction().SetReadConcern(readconcern.Majority())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:    session,
		properties: f.PropertiesRepo,
		users:      f.UsersRepo,
		bookings:   f.BookingsRepo,
		payments:   f.PaymentsRepo,
		reviews:    f.ReviewsRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	return mapWriteConflict(u.session.CommitTransaction(ctx))
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
