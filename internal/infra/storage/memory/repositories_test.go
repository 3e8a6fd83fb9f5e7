package memory

import (
	"context"
	"errors"
	"testing"

	domainbooking "rentbook/internal/domain/booking"
	domainpayment "rentbook/internal/domain/payment"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

func testBooking(t *testing.T, id, start, end string) *domainbooking.Booking {
	t.Helper()
	dr, err := daterange.Parse(start, end)
	if err != nil {
		t.Fatal(err)
	}
	return &domainbooking.Booking{ID: domainbooking.ID(id), PropertyID: "p1", UserID: "u1", Range: dr, Status: domainbooking.StatusPending, TotalPrice: money.Must(100, "USD")}
}

func TestBookingInsertChecksOverlap(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	if err := repo.Insert(ctx, testBooking(t, "b1", "2025-06-01", "2025-06-05")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Insert(ctx, testBooking(t, "b2", "2025-06-05", "2025-06-06")); !errors.Is(err, domainbooking.ErrDatesOverlap) {
		t.Fatalf("expected overlap, got %v", err)
	}
	if err := repo.Insert(ctx, testBooking(t, "b1", "2025-07-01", "2025-07-05")); !errors.Is(err, domainbooking.ErrConcurrentUpdate) {
		t.Fatalf("expected duplicate id rejection, got %v", err)
	}

	stored, _ := repo.ByID(ctx, "b1")
	stored.Status = domainbooking.StatusCancelled
	if err := repo.Save(ctx, stored); err != nil {
		t.Fatal(err)
	}
	if err := repo.Insert(ctx, testBooking(t, "b4", "2025-06-02", "2025-06-03")); err != nil {
		t.Fatalf("cancelled bookings must not block: %v", err)
	}
}

func TestBookingSaveUsesVersion(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	if err := repo.Insert(ctx, testBooking(t, "b1", "2025-06-01", "2025-06-05")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Insert(ctx, testBooking(t, "b2", "2025-06-10", "2025-06-12")); err != nil {
		t.Fatal(err)
	}
	first, _ := repo.ByID(ctx, "b1")
	stale, _ := repo.ByID(ctx, "b1")
	first.Status = domainbooking.StatusConfirmed
	if err := repo.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, stale); !errors.Is(err, domainbooking.ErrConcurrentUpdate) {
		t.Fatalf("expected concurrent update, got %v", err)
	}

	current, _ := repo.ByID(ctx, "b1")
	current.Range = testBooking(t, "x", "2025-06-08", "2025-06-10").Range
	if err := repo.Save(ctx, current); !errors.Is(err, domainbooking.ErrDatesOverlap) {
		t.Fatalf("expected overlap on reschedule, got %v", err)
	}
}

func TestAttachKeepsBackReferencesAcrossSave(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	if err := repo.Insert(ctx, testBooking(t, "b1", "2025-06-01", "2025-06-05")); err != nil {
		t.Fatal(err)
	}
	loaded, _ := repo.ByID(ctx, "b1")
	if err := repo.AttachPayment(ctx, "b1", "pay1"); err != nil {
		t.Fatal(err)
	}
	loaded.Status = domainbooking.StatusConfirmed
	if err := repo.Save(ctx, loaded); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.ByID(ctx, "b1")
	if got.PaymentID != "pay1" {
		t.Fatalf("Save must not clear back-references, got %+v", got)
	}
}

func TestPaymentRepositoryOnePerBooking(t *testing.T) {
	repo := NewPaymentRepository()
	ctx := context.Background()
	p := &domainpayment.Payment{ID: "pay1", BookingID: "b1", Amount: money.Must(100, "USD"), Status: domainpayment.StatusPending}
	if err := repo.Insert(ctx, p); err != nil {
		t.Fatal(err)
	}
	dup := &domainpayment.Payment{ID: "pay2", BookingID: "b1", Amount: money.Must(100, "USD")}
	if err := repo.Insert(ctx, dup); !errors.Is(err, domainpayment.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := repo.Delete(ctx, "pay1"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.ByBooking(ctx, "b1"); !errors.Is(err, domainpayment.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := repo.Insert(ctx, dup); err != nil {
		t.Fatalf("booking slot should be free after delete: %v", err)
	}
}
