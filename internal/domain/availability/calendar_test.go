package availability

import (
	"testing"
	"time"

	"rentbook/internal/domain/booking"
	"rentbook/internal/domain/shared/daterange"
)

func rng(t *testing.T, start, end string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(start, end)
	if err != nil {
		t.Fatal(err)
	}
	return dr
}

func bookingsFixture(t *testing.T) []*booking.Booking {
	return []*booking.Booking{
		{ID: "b2", PropertyID: "p1", Range: rng(t, "2025-06-10", "2025-06-12"), Status: booking.StatusConfirmed},
		{ID: "b1", PropertyID: "p1", Range: rng(t, "2025-06-01", "2025-06-05"), Status: booking.StatusPending},
		{ID: "b3", PropertyID: "p1", Range: rng(t, "2025-06-20", "2025-06-25"), Status: booking.StatusCancelled},
		{ID: "b4", PropertyID: "p2", Range: rng(t, "2025-06-01", "2025-06-30"), Status: booking.StatusConfirmed},
	}
}

func TestBuildKeepsActiveBookingsInOrder(t *testing.T) {
	cal := Build("p1", daterange.DateRange{}, bookingsFixture(t))
	if len(cal.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %+v", cal.Blocks)
	}
	if cal.Blocks[0].BookingID != "b1" || cal.Blocks[1].BookingID != "b2" {
		t.Fatalf("blocks out of order: %+v", cal.Blocks)
	}
}

func TestBuildRespectsWindow(t *testing.T) {
	cal := Build("p1", rng(t, "2025-06-05", "2025-06-08"), bookingsFixture(t))
	if len(cal.Blocks) != 1 || cal.Blocks[0].BookingID != "b1" {
		t.Fatalf("expected only b1 touching the window, got %+v", cal.Blocks)
	}
}

func TestCanReserve(t *testing.T) {
	cal := Build("p1", daterange.DateRange{}, bookingsFixture(t))
	if cal.CanReserve(rng(t, "2025-06-05", "2025-06-07")) {
		t.Fatalf("touching an existing booking must conflict")
	}
	if !cal.CanReserve(rng(t, "2025-06-06", "2025-06-09")) {
		t.Fatalf("gap between bookings should be free")
	}
	if !cal.CanReserve(rng(t, "2025-06-21", "2025-06-22")) {
		t.Fatalf("cancelled bookings must not block")
	}
	if got := cal.Conflicts(rng(t, "2025-06-04", "2025-06-11")); len(got) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(got))
	}
}

func TestOccupiedOnAndBookedNights(t *testing.T) {
	cal := Build("p1", rng(t, "2025-06-03", "2025-06-11"), bookingsFixture(t))
	if !cal.OccupiedOn(time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("June 4 should be occupied")
	}
	if cal.OccupiedOn(time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("June 7 should be free")
	}
	// b1 clipped to 03..05 (2 nights), b2 clipped to 10..11 (1 night).
	if got := cal.BookedNights(); got != 3 {
		t.Fatalf("booked nights = %d, want 3", got)
	}
}
