package dto

import (
	"time"

	domainreviews "rentbook/internal/domain/reviews"
)

type Review struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	ReviewedAt time.Time `json:"reviewed_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func MapReview(r *domainreviews.Review) Review {
	return Review{
		ID:         string(r.ID),
		BookingID:  string(r.BookingID),
		PropertyID: string(r.PropertyID),
		UserID:     string(r.UserID),
		Rating:     r.Rating,
		Comment:    r.Comment,
		ReviewedAt: r.ReviewedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
