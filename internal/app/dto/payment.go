package dto

import (
	"time"

	domainpayment "rentbook/internal/domain/payment"
)

type Payment struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"booking_id"`
	PayerID       string    `json:"payer_id"`
	Amount        MoneyDTO  `json:"amount"`
	Status        string    `json:"status"`
	Method        string    `json:"method"`
	TransactionID string    `json:"transaction_id,omitempty"`
	PaidAt        time.Time `json:"paid_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func MapPayment(p *domainpayment.Payment) Payment {
	return Payment{
		ID:            string(p.ID),
		BookingID:     string(p.BookingID),
		PayerID:       string(p.PayerID),
		Amount:        MapMoney(p.Amount),
		Status:        string(p.Status),
		Method:        string(p.Method),
		TransactionID: p.TransactionID,
		PaidAt:        p.PaidAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// PaymentTotal is the sum of payments over a property's or renter's bookings.
type PaymentTotal struct {
	Scope    string   `json:"scope"`
	ScopeID  string   `json:"scope_id"`
	Total    MoneyDTO `json:"total"`
	Payments int      `json:"payments"`
}
