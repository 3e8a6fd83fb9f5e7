// Package availability derives a property's occupancy from its bookings.
// It holds no state of its own; the bookings are the source of truth.
package availability

import (
	"sort"
	"time"

	"rentbook/internal/domain/booking"
	"rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/daterange"
)

// Block is one occupied range on a property's calendar.
type Block struct {
	Range     daterange.DateRange
	BookingID booking.ID
	Status    booking.Status
}

// Calendar lists the active bookings of a property that touch Window.
type Calendar struct {
	PropertyID property.ID
	Window     daterange.DateRange
	Blocks     []Block
}

// Build collects active bookings on propertyID overlapping window, ordered
// by start date. A zero window keeps every active booking.
func Build(propertyID property.ID, window daterange.DateRange, bookings []*booking.Booking) *Calendar {
	cal := &Calendar{PropertyID: propertyID, Window: window}
	unbounded := window.Start.IsZero() && window.End.IsZero()
	for _, b := range bookings {
		if b == nil || b.PropertyID != propertyID || !b.Status.Active() {
			continue
		}
		if !unbounded && !b.Range.Overlaps(window) {
			continue
		}
		cal.Blocks = append(cal.Blocks, Block{Range: b.Range, BookingID: b.ID, Status: b.Status})
	}
	sort.Slice(cal.Blocks, func(i, j int) bool {
		a, c := cal.Blocks[i], cal.Blocks[j]
		if !a.Range.Start.Equal(c.Range.Start) {
			return a.Range.Start.Before(c.Range.Start)
		}
		return a.BookingID < c.BookingID
	})
	return cal
}

// Conflicts returns the blocks that overlap dr.
func (c *Calendar) Conflicts(dr daterange.DateRange) []Block {
	var out []Block
	for _, block := range c.Blocks {
		if block.Range.Overlaps(dr) {
			out = append(out, block)
		}
	}
	return out
}

// CanReserve reports whether dr is free on this calendar.
func (c *Calendar) CanReserve(dr daterange.DateRange) bool {
	return len(c.Conflicts(dr)) == 0
}

// OccupiedOn reports whether the calendar day of t is held by a booking.
func (c *Calendar) OccupiedOn(t time.Time) bool {
	for _, block := range c.Blocks {
		if block.Range.ContainsDate(t) {
			return true
		}
	}
	return false
}

// BookedNights counts held nights inside the window. Blocks never overlap,
// so per-block counts can be summed.
func (c *Calendar) BookedNights() int {
	total := 0
	for _, block := range c.Blocks {
		r := block.Range
		if !c.Window.Start.IsZero() && r.Start.Before(c.Window.Start) {
			r.Start = c.Window.Start
		}
		if !c.Window.End.IsZero() && r.End.After(c.Window.End) {
			r.End = c.Window.End
		}
		if r.End.After(r.Start) {
			total += r.Nights()
		}
	}
	return total
}
