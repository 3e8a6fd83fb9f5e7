package reviews

import (
	"time"

	"rentbook/internal/domain/booking"
	"rentbook/internal/domain/property"
)

type ReviewSubmitted struct {
	ReviewID   ID          `json:"review_id"`
	BookingID  booking.ID  `json:"booking_id"`
	PropertyID property.ID `json:"property_id"`
	Rating     int         `json:"rating"`
	At         time.Time   `json:"at"`
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }

type ReviewUpdated struct {
	ReviewID ID        `json:"review_id"`
	Rating   int       `json:"rating"`
	At       time.Time `json:"at"`
}

func (e ReviewUpdated) EventName() string     { return "review.updated" }
func (e ReviewUpdated) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewUpdated) OccurredAt() time.Time { return e.At }

type ReviewDeleted struct {
	ReviewID  ID         `json:"review_id"`
	BookingID booking.ID `json:"booking_id"`
	At        time.Time  `json:"at"`
}

func (e ReviewDeleted) EventName() string     { return "review.deleted" }
func (e ReviewDeleted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewDeleted) OccurredAt() time.Time { return e.At }
