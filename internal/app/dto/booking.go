package dto

import (
	"time"

	domainbooking "rentbook/internal/domain/booking"
	"rentbook/internal/domain/shared/daterange"
)

type Booking struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	UserID     string    `json:"user_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Nights     int       `json:"nights"`
	TotalPrice MoneyDTO  `json:"total_price"`
	Status     string    `json:"status"`
	PaymentID  string    `json:"payment_id,omitempty"`
	ReviewID   string    `json:"review_id,omitempty"`
	BookedAt   time.Time `json:"booked_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	return Booking{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		UserID:     string(b.UserID),
		StartDate:  b.Range.Start.Format(daterange.DateLayout),
		EndDate:    b.Range.End.Format(daterange.DateLayout),
		Nights:     b.Range.Nights(),
		TotalPrice: MapMoney(b.TotalPrice),
		Status:     string(b.Status),
		PaymentID:  b.PaymentID,
		ReviewID:   b.ReviewID,
		BookedAt:   b.BookedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func MapBookings(items []*domainbooking.Booking) BookingCollection {
	out := make([]Booking, 0, len(items))
	for _, b := range items {
		out = append(out, MapBooking(b))
	}
	return BookingCollection{Items: out}
}
