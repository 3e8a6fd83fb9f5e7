package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"rentbook/internal/app/outbox"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
	domainreviews "rentbook/internal/domain/reviews"
)

func encoderOrDefault(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

func newBookingID(requested string) domainbooking.ID {
	if id := strings.TrimSpace(requested); id != "" {
		return domainbooking.ID(id)
	}
	return domainbooking.ID(uuid.NewString())
}

func requireBookingID(raw string) (domainbooking.ID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", domainbooking.ErrIDRequired
	}
	return domainbooking.ID(id), nil
}

// paymentOf returns the booking's payment or nil when none is linked.
func paymentOf(ctx context.Context, unit uow.UnitOfWork, id domainbooking.ID) (*domainpayment.Payment, error) {
	p, err := unit.Payments().ByBooking(ctx, id)
	if err != nil {
		if errors.Is(err, domainpayment.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// removeWithDependents hard-deletes the booking together with its payment
// and review so that no record points at a missing booking.
func removeWithDependents(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking, p *domainpayment.Payment) error {
	if p != nil {
		if err := unit.Payments().Delete(ctx, p.ID); err != nil && !errors.Is(err, domainpayment.ErrNotFound) {
			return err
		}
	}
	review, err := unit.Reviews().ByBooking(ctx, b.ID)
	switch {
	case err == nil:
		if err := unit.Reviews().Delete(ctx, review.ID); err != nil && !errors.Is(err, domainreviews.ErrNotFound) {
			return err
		}
	case !errors.Is(err, domainreviews.ErrNotFound):
		return err
	}
	return unit.Bookings().Delete(ctx, b.ID)
}
