package payments

import (
	"strings"

	"github.com/google/uuid"

	"rentbook/internal/app/outbox"
	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
)

func encoderOrDefault(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

func requireBookingID(raw string) (domainbooking.ID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", domainbooking.ErrIDRequired
	}
	return domainbooking.ID(id), nil
}

func newPaymentID(requested string) domainpayment.ID {
	if id := strings.TrimSpace(requested); id != "" {
		return domainpayment.ID(id)
	}
	return domainpayment.ID(uuid.NewString())
}
