package reviews

import (
	"context"
	"strings"
	"time"

	"rentbook/internal/domain/booking"
	"rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/apperr"
	"rentbook/internal/domain/shared/events"
	"rentbook/internal/domain/user"
)

var (
	ErrInvalidRating       = apperr.Validation("reviews: rating must be between 1 and 5")
	ErrNotFound            = apperr.New(apperr.KindNotFound, "reviews: not found")
	ErrIDRequired          = apperr.Validation("reviews: id is required")
	ErrDuplicateReview     = apperr.New(apperr.KindStateConflict, "reviews: review already exists for booking")
	ErrBookingNotCompleted = apperr.New(apperr.KindStateConflict, "reviews: booking must be completed to create a review")
)

type ID string

type Review struct {
	ID         ID
	BookingID  booking.ID
	PropertyID property.ID
	UserID     user.ID
	Rating     int
	Comment    string
	ReviewedAt time.Time
	UpdatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Review, error)
	ByBooking(ctx context.Context, bookingID booking.ID) (*Review, error)
	// Insert fails with ErrDuplicateReview if the booking already has a review.
	Insert(ctx context.Context, review *Review) error
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id ID) error
}

type SubmitParams struct {
	ID         ID
	Booking    *booking.Booking
	Rating     int
	Comment    string
	ReviewedAt time.Time
}

// Submit creates a review for a completed booking that has none yet.
func Submit(params SubmitParams) (*Review, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	b := params.Booking
	if b == nil {
		return nil, booking.ErrNotFound
	}
	if b.HasReview() {
		return nil, ErrDuplicateReview
	}
	if b.Status != booking.StatusCompleted {
		return nil, ErrBookingNotCompleted
	}
	if err := ValidateRating(params.Rating); err != nil {
		return nil, err
	}
	now := params.ReviewedAt.UTC()
	review := &Review{
		ID:         params.ID,
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		UserID:     b.UserID,
		Rating:     params.Rating,
		Comment:    strings.TrimSpace(params.Comment),
		ReviewedAt: now,
		UpdatedAt:  now,
	}
	review.Record(ReviewSubmitted{ReviewID: review.ID, BookingID: review.BookingID, PropertyID: review.PropertyID, Rating: review.Rating, At: now})
	return review, nil
}

func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

func (r *Review) UpdateRating(rating int, now time.Time) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	r.Rating = rating
	r.touch(now)
	return nil
}

func (r *Review) UpdateComment(comment string, now time.Time) {
	r.Comment = strings.TrimSpace(comment)
	r.touch(now)
}

func (r *Review) MarkDeleted(now time.Time) {
	r.Record(ReviewDeleted{ReviewID: r.ID, BookingID: r.BookingID, At: now.UTC()})
}

func (r *Review) touch(now time.Time) {
	r.UpdatedAt = now.UTC()
	r.Record(ReviewUpdated{ReviewID: r.ID, Rating: r.Rating, At: r.UpdatedAt})
}

func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}
	cp := *r
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}
