package payment

import (
	"testing"
	"time"

	"rentbook/internal/domain/booking"
	"rentbook/internal/domain/shared/apperr"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

var now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func testBooking(t *testing.T) *booking.Booking {
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
	return b
}

func TestNewRequiresExactAmount(t *testing.T) {
	b := testBooking(t)
	cases := []struct {
		name   string
		amount money.Money
		want   error
	}{
		{"exact", money.Must(15000, "USD"), nil},
		{"one cent short", money.Must(14999, "USD"), ErrAmountMismatch},
		{"one cent over", money.Must(15001, "USD"), ErrAmountMismatch},
		{"other currency", money.Must(15000, "EUR"), ErrAmountMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(CreateParams{ID: "pay1", Booking: b, Amount: tc.amount, Method: MethodCreditCard, PaidAt: now})
			if err != tc.want {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if err == nil {
				if p.Status != StatusPending || p.PayerID != "u1" || p.BookingID != "b1" {
					t.Fatalf("unexpected payment %+v", p)
				}
				if evs := p.PullEvents(); len(evs) != 1 || evs[0].EventName() != "payment.created" {
					t.Fatalf("unexpected events %+v", evs)
				}
			}
		})
	}
}

func TestNewValidatesInput(t *testing.T) {
	b := testBooking(t)
	if _, err := New(CreateParams{Booking: b, Amount: b.TotalPrice, Method: MethodCash}); err != ErrIDRequired {
		t.Fatalf("expected ErrIDRequired, got %v", err)
	}
	if _, err := New(CreateParams{ID: "pay1", Amount: b.TotalPrice, Method: MethodCash}); err != booking.ErrNotFound {
		t.Fatalf("expected booking not found, got %v", err)
	}
	if _, err := New(CreateParams{ID: "pay1", Booking: b, Amount: b.TotalPrice, Method: "BARTER"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChangeStatus(t *testing.T) {
	b := testBooking(t)
	p, err := New(CreateParams{ID: "pay1", Booking: b, Amount: b.TotalPrice, Method: MethodPayPal, PaidAt: now})
	if err != nil {
		t.Fatal(err)
	}
	p.ClearEvents()
	if err := p.ChangeStatus(StatusCompleted, now.Add(time.Hour)); err != nil {
		t.Fatalf("change status: %v", err)
	}
	if !p.Completed() {
		t.Fatalf("payment should be completed")
	}
	if err := p.ChangeStatus(StatusCompleted, now); err != nil || len(p.PullEvents()) != 1 {
		t.Fatalf("same status should be a no-op")
	}
	if err := p.ChangeStatus("LOST", now); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var nilPayment *Payment
	if nilPayment.Completed() {
		t.Fatalf("nil payment is never completed")
	}
}

func TestParseMethodAndStatus(t *testing.T) {
	if m, err := ParseMethod("bank_transfer"); err != nil || m != MethodBankTransfer {
		t.Fatalf("ParseMethod = %q, %v", m, err)
	}
	if s, err := ParseStatus(" refunded"); err != nil || s != StatusRefunded {
		t.Fatalf("ParseStatus = %q, %v", s, err)
	}
	if _, err := ParseMethod(""); err == nil {
		t.Fatalf("empty method must fail")
	}
}
