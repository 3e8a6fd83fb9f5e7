package reviews

import (
	"testing"
	"time"

	"rentbook/internal/domain/booking"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

var now = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

func completedBooking(t *testing.T) *booking.Booking {
	t.Helper()
	dr, err := daterange.Parse("2025-06-01", "2025-06-04")
	if err != nil {
		t.Fatal(err)
	}
	b, err := booking.NewBooking(booking.CreateParams{
		ID: "b1", PropertyID: "p1", UserID: "u1", Range: dr,
		NightlyPrice: money.Must(5000, "USD"), BookedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}
	b.Status = booking.StatusCompleted
	return b
}

func TestSubmitGate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(b *booking.Booking)
		rating int
		want   error
	}{
		{"completed", func(*booking.Booking) {}, 5, nil},
		{"pending", func(b *booking.Booking) { b.Status = booking.StatusPending }, 5, ErrBookingNotCompleted},
		{"confirmed", func(b *booking.Booking) { b.Status = booking.StatusConfirmed }, 4, ErrBookingNotCompleted},
		{"already reviewed", func(b *booking.Booking) { b.ReviewID = "r0" }, 4, ErrDuplicateReview},
		{"rating too low", func(*booking.Booking) {}, 0, ErrInvalidRating},
		{"rating too high", func(*booking.Booking) {}, 6, ErrInvalidRating},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := completedBooking(t)
			tc.mutate(b)
			r, err := Submit(SubmitParams{ID: "r1", Booking: b, Rating: tc.rating, Comment: "  lovely  ", ReviewedAt: now})
			if err != tc.want {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if err == nil {
				if r.Comment != "lovely" || r.UserID != "u1" || r.PropertyID != "p1" {
					t.Fatalf("unexpected review %+v", r)
				}
			}
		})
	}
}

func TestUpdates(t *testing.T) {
	r, err := Submit(SubmitParams{ID: "r1", Booking: completedBooking(t), Rating: 3, ReviewedAt: now})
	if err != nil {
		t.Fatal(err)
	}
	r.ClearEvents()
	if err := r.UpdateRating(9, now); err != ErrInvalidRating {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if r.Rating != 3 {
		t.Fatalf("rating must be unchanged after a rejected update")
	}
	later := now.Add(time.Hour)
	if err := r.UpdateRating(5, later); err != nil {
		t.Fatal(err)
	}
	r.UpdateComment(" updated ", later)
	if r.Rating != 5 || r.Comment != "updated" || !r.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected review %+v", r)
	}
	if len(r.PullEvents()) != 2 {
		t.Fatalf("expected two update events")
	}
}
