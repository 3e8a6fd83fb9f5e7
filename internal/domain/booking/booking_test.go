package booking

import (
	"math"
	"testing"
	"time"

	"rentbook/internal/domain/shared/apperr"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

var now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func mustRange(t *testing.T, start, end string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(start, end)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return dr
}

func newTestBooking(t *testing.T, id ID, start, end string) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:           id,
		PropertyID:   "p1",
		UserID:       "u1",
		Range:        mustRange(t, start, end),
		NightlyPrice: money.Must(10000, "USD"),
		BookedAt:     now,
	})
	if err != nil {
		t.Fatalf("new booking: %v", err)
	}
	return b
}

func TestNewBookingQuotesAndStartsPending(t *testing.T) {
	b := newTestBooking(t, "b1", "2025-06-01", "2025-06-05")
	if b.Status != StatusPending {
		t.Fatalf("status = %s", b.Status)
	}
	if b.TotalPrice.Amount != 40000 || b.TotalPrice.Currency != "USD" {
		t.Fatalf("total = %s", b.TotalPrice)
	}
	evs := b.PullEvents()
	if len(evs) != 1 || evs[0].EventName() != "booking.created" {
		t.Fatalf("unexpected events %+v", evs)
	}
}

func TestNewBookingValidation(t *testing.T) {
	dr := mustRange(t, "2025-06-01", "2025-06-05")
	price := money.Must(100, "USD")
	cases := []struct {
		name   string
		params CreateParams
		want   error
	}{
		{"missing id", CreateParams{PropertyID: "p", UserID: "u", Range: dr, NightlyPrice: price}, ErrIDRequired},
		{"missing property", CreateParams{ID: "b", UserID: "u", Range: dr, NightlyPrice: price}, ErrPropertyRequired},
		{"missing user", CreateParams{ID: "b", PropertyID: "p", Range: dr, NightlyPrice: price}, ErrUserRequired},
		{"empty range", CreateParams{ID: "b", PropertyID: "p", UserID: "u", NightlyPrice: price}, daterange.ErrInvalidRange},
		{"bad currency", CreateParams{ID: "b", PropertyID: "p", UserID: "u", Range: dr, NightlyPrice: money.Money{Amount: 1}}, money.ErrInvalidCurrency},
		{"total out of range", CreateParams{ID: "b", PropertyID: "p", UserID: "u", Range: dr, NightlyPrice: money.Must(math.MaxInt64/2, "USD")}, money.ErrAmountOverflow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewBooking(tc.params); err != tc.want {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRescheduleRequotesOnlyOnChange(t *testing.T) {
	b := newTestBooking(t, "b1", "2025-06-01", "2025-06-05")
	b.ClearEvents()
	if err := b.Reschedule(b.Range, money.Must(99999, "USD"), now); err != nil {
		t.Fatalf("reschedule same: %v", err)
	}
	if b.TotalPrice.Amount != 40000 || len(b.PendingEvents()) != 0 {
		t.Fatalf("unchanged range must not requote")
	}
	if err := b.Reschedule(mustRange(t, "2025-06-10", "2025-06-12"), money.Must(15000, "USD"), now); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if b.TotalPrice.Amount != 30000 {
		t.Fatalf("total = %s", b.TotalPrice)
	}
	if err := b.Reschedule(daterange.DateRange{}, money.Must(1, "USD"), now); err != daterange.ErrInvalidRange {
		t.Fatalf("expected invalid range, got %v", err)
	}
}

func TestTransitionIsTotal(t *testing.T) {
	for _, from := range Statuses {
		for _, to := range Statuses {
			effect, err := from.TransitionTo(to)
			if err != nil {
				t.Fatalf("%s -> %s: %v", from, to, err)
			}
			want := EffectPersist
			if to == StatusCancelled {
				want = EffectRemove
			}
			if effect != want {
				t.Fatalf("%s -> %s effect = %v, want %v", from, to, effect, want)
			}
		}
	}
	if _, err := StatusPending.TransitionTo("ARCHIVED"); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" confirmed ")
	if err != nil || s != StatusConfirmed {
		t.Fatalf("ParseStatus = %q, %v", s, err)
	}
	if _, err := ParseStatus("done"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChangeStatus(t *testing.T) {
	t.Run("persist", func(t *testing.T) {
		b := newTestBooking(t, "b1", "2025-06-01", "2025-06-05")
		b.ClearEvents()
		effect, err := b.ChangeStatus(StatusCompleted, false, now)
		if err != nil || effect != EffectPersist || b.Status != StatusCompleted {
			t.Fatalf("got %v %v %s", effect, err, b.Status)
		}
		if evs := b.PullEvents(); len(evs) != 1 || evs[0].EventName() != "booking.status_changed" {
			t.Fatalf("unexpected events %+v", evs)
		}
	})
	t.Run("cancel", func(t *testing.T) {
		b := newTestBooking(t, "b1", "2025-06-01", "2025-06-05")
		b.ClearEvents()
		effect, err := b.ChangeStatus(StatusCancelled, false, now)
		if err != nil || effect != EffectRemove {
			t.Fatalf("got %v %v", effect, err)
		}
		if evs := b.PullEvents(); len(evs) != 1 || evs[0].EventName() != "booking.cancelled" {
			t.Fatalf("unexpected events %+v", evs)
		}
	})
	t.Run("cancel after completed payment", func(t *testing.T) {
		b := newTestBooking(t, "b1", "2025-06-01", "2025-06-05")
		if _, err := b.ChangeStatus(StatusCancelled, true, now); err != ErrCancelPaid {
			t.Fatalf("expected ErrCancelPaid, got %v", err)
		}
		if b.Status != StatusPending {
			t.Fatalf("status must be unchanged, got %s", b.Status)
		}
	})
}

func TestFindConflict(t *testing.T) {
	existing := newTestBooking(t, "b1", "2025-06-01", "2025-06-05")
	cancelled := newTestBooking(t, "b2", "2025-06-10", "2025-06-15")
	cancelled.Status = StatusCancelled
	candidates := []*Booking{existing, cancelled, nil}

	cases := []struct {
		name    string
		dr      daterange.DateRange
		exclude ID
		want    ID
	}{
		{"touching end", mustRange(t, "2025-06-05", "2025-06-07"), "", "b1"},
		{"free gap", mustRange(t, "2025-06-06", "2025-06-09"), "", ""},
		{"cancelled ignored", mustRange(t, "2025-06-11", "2025-06-12"), "", ""},
		{"self excluded", mustRange(t, "2025-06-02", "2025-06-03"), "b1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FindConflict(candidates, "p1", tc.dr, tc.exclude)
			var id ID
			if got != nil {
				id = got.ID
			}
			if id != tc.want {
				t.Fatalf("conflict = %q, want %q", id, tc.want)
			}
		})
	}
	if FindConflict(candidates, "other", mustRange(t, "2025-06-01", "2025-06-05"), "") != nil {
		t.Fatalf("other properties must not conflict")
	}
}

func TestCloneDropsPendingEvents(t *testing.T) {
	b := newTestBooking(t, "b1", "2025-06-01", "2025-06-05")
	cp := b.Clone()
	if len(cp.PendingEvents()) != 0 {
		t.Fatalf("clone should not carry events")
	}
	cp.Status = StatusConfirmed
	if b.Status != StatusPending {
		t.Fatalf("clone must be detached")
	}
}
