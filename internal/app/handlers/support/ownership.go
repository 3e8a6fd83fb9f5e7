package support

import (
	"context"
	"errors"

	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
	domainreviews "rentbook/internal/domain/reviews"
	"rentbook/internal/domain/shared/apperr"
	domainuser "rentbook/internal/domain/user"
)

const (
	ResourceBooking = "booking"
	ResourcePayment = "payment"
	ResourceReview  = "review"
	// ResourceBookingHost addresses a booking by id but is owned by the
	// host of the booked property.
	ResourceBookingHost = "booking-host"
)

var ErrUnknownResource = apperr.New(apperr.KindInternal, "ownership: unknown resource")

// resolveUser returns nil when the username is unknown: ownership questions
// about strangers are answered with false, not an error.
func resolveUser(ctx context.Context, unit uow.UnitOfWork, username string) (*domainuser.User, error) {
	normalized := domainuser.NormalizeUsername(username)
	if normalized == "" {
		return nil, nil
	}
	u, err := unit.Users().ByUsername(ctx, normalized)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// BookingOwnedBy fails with booking.ErrNotFound for an unknown booking.
func BookingOwnedBy(ctx context.Context, unit uow.UnitOfWork, id domainbooking.ID, username string) (bool, error) {
	b, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return false, err
	}
	u, err := resolveUser(ctx, unit, username)
	if err != nil || u == nil {
		return false, err
	}
	return b.UserID == u.ID, nil
}

// BookingHostedBy reports whether username is the owner of the property the
// booking belongs to.
func BookingHostedBy(ctx context.Context, unit uow.UnitOfWork, id domainbooking.ID, username string) (bool, error) {
	b, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return false, err
	}
	property, err := unit.Properties().ByID(ctx, b.PropertyID)
	if err != nil {
		return false, err
	}
	u, err := resolveUser(ctx, unit, username)
	if err != nil || u == nil {
		return false, err
	}
	return string(property.OwnerID) == string(u.ID), nil
}

func PaymentOwnedBy(ctx context.Context, unit uow.UnitOfWork, id domainpayment.ID, username string) (bool, error) {
	p, err := unit.Payments().ByID(ctx, id)
	if err != nil {
		return false, err
	}
	u, err := resolveUser(ctx, unit, username)
	if err != nil || u == nil {
		return false, err
	}
	return p.PayerID == u.ID, nil
}

func ReviewOwnedBy(ctx context.Context, unit uow.UnitOfWork, id domainreviews.ID, username string) (bool, error) {
	r, err := unit.Reviews().ByID(ctx, id)
	if err != nil {
		return false, err
	}
	u, err := resolveUser(ctx, unit, username)
	if err != nil || u == nil {
		return false, err
	}
	return r.UserID == u.ID, nil
}

// OwnershipPolicy answers ownership questions for the ownership middleware
// from a read-only unit of work.
type OwnershipPolicy struct {
	UoWFactory uow.UoWFactory
}

func (p OwnershipPolicy) IsOwner(ctx context.Context, resource, id, actor string) (bool, error) {
	unit, execCtx, cleanup, err := BeginReadOnlyUnit(ctx, p.UoWFactory)
	if err != nil {
		return false, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	switch resource {
	case ResourceBooking:
		return BookingOwnedBy(execCtx, unit, domainbooking.ID(id), actor)
	case ResourceBookingHost:
		return BookingHostedBy(execCtx, unit, domainbooking.ID(id), actor)
	case ResourcePayment:
		return PaymentOwnedBy(execCtx, unit, domainpayment.ID(id), actor)
	case ResourceReview:
		return ReviewOwnedBy(execCtx, unit, domainreviews.ID(id), actor)
	default:
		return false, ErrUnknownResource
	}
}
