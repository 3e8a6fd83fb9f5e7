package booking

import (
	"time"

	"rentbook/internal/domain/property"
	"rentbook/internal/domain/user"
)

type BookingCreated struct {
	BookingID  ID          `json:"booking_id"`
	PropertyID property.ID `json:"property_id"`
	UserID     user.ID     `json:"user_id"`
	Start      time.Time   `json:"start_date"`
	End        time.Time   `json:"end_date"`
	TotalPrice string      `json:"total_price"`
	Currency   string      `json:"currency"`
	At         time.Time   `json:"at"`
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingRescheduled struct {
	BookingID  ID        `json:"booking_id"`
	Start      time.Time `json:"start_date"`
	End        time.Time `json:"end_date"`
	TotalPrice string    `json:"total_price"`
	At         time.Time `json:"at"`
}

func (e BookingRescheduled) EventName() string     { return "booking.rescheduled" }
func (e BookingRescheduled) AggregateID() string   { return string(e.BookingID) }
func (e BookingRescheduled) OccurredAt() time.Time { return e.At }

type BookingStatusChanged struct {
	BookingID ID        `json:"booking_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	At        time.Time `json:"at"`
}

func (e BookingStatusChanged) EventName() string     { return "booking.status_changed" }
func (e BookingStatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e BookingStatusChanged) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID  ID          `json:"booking_id"`
	PropertyID property.ID `json:"property_id"`
	From       Status      `json:"from"`
	At         time.Time   `json:"at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingDeleted struct {
	BookingID  ID          `json:"booking_id"`
	PropertyID property.ID `json:"property_id"`
	Actor      string      `json:"actor"`
	At         time.Time   `json:"at"`
}

func (e BookingDeleted) EventName() string     { return "booking.deleted" }
func (e BookingDeleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingDeleted) OccurredAt() time.Time { return e.At }
