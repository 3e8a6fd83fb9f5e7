package uow

import (
	"context"

	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
	domainproperty "rentbook/internal/domain/property"
	domainreviews "rentbook/internal/domain/reviews"
	domainuser "rentbook/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Properties() domainproperty.Directory
	Users() domainuser.Directory
	Bookings() domainbooking.Repository
	Payments() domainpayment.Repository
	Reviews() domainreviews.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
