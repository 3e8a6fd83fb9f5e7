package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	domainbooking "rentbook/internal/domain/booking"
	"rentbook/internal/domain/shared/apperr"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

var errDuplicate = apperr.New(apperr.KindStateConflict, "duplicate")

func TestTranslate(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		notFound error
		unique   error
		want     error
		kind     apperr.Kind
	}{
		{"nil", nil, nil, nil, nil, ""},
		{"exclusion violation", &pgconn.PgError{Code: codeExclusionViolation}, nil, nil, domainbooking.ErrDatesOverlap, apperr.KindConflict},
		{"wrapped exclusion violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: codeExclusionViolation}), nil, nil, domainbooking.ErrDatesOverlap, apperr.KindConflict},
		{"unique violation", &pgconn.PgError{Code: codeUniqueViolation}, nil, errDuplicate, errDuplicate, apperr.KindStateConflict},
		{"unique violation without mapping", &pgconn.PgError{Code: codeUniqueViolation}, nil, nil, nil, apperr.KindInternal},
		{"serialization failure", &pgconn.PgError{Code: codeSerializationFailure}, nil, nil, domainbooking.ErrConcurrentUpdate, apperr.KindConflict},
		{"deadlock", &pgconn.PgError{Code: codeDeadlockDetected}, nil, nil, domainbooking.ErrConcurrentUpdate, apperr.KindConflict},
		{"record not found", gorm.ErrRecordNotFound, domainbooking.ErrNotFound, nil, domainbooking.ErrNotFound, apperr.KindNotFound},
		{"record not found without mapping", gorm.ErrRecordNotFound, nil, nil, nil, apperr.KindInternal},
		{"other driver error", &pgconn.PgError{Code: "42P01"}, nil, nil, nil, apperr.KindInternal},
		{"plain error", errors.New("connection reset"), nil, nil, nil, apperr.KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translate(tc.err, tc.notFound, tc.unique)
			if tc.err == nil {
				if got != nil {
					t.Fatalf("translate(nil) = %v", got)
				}
				return
			}
			if tc.want != nil && got != tc.want {
				t.Fatalf("translate = %v, want %v", got, tc.want)
			}
			if k := apperr.KindOf(got); k != tc.kind {
				t.Fatalf("kind = %s, want %s", k, tc.kind)
			}
			if tc.kind == apperr.KindInternal && !errors.Is(got, tc.err) {
				t.Fatalf("internal error should wrap the driver error: %v", got)
			}
		})
	}
}

// dryRunDB renders statements without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=rentbook dbname=rentbook sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open dry run: %v", err)
	}
	return db
}

func TestOverlapScope(t *testing.T) {
	db := dryRunDB(t)
	dr := daterange.DateRange{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
	}

	t.Run("closed range", func(t *testing.T) {
		stmt := overlapScope(db.Model(&bookingRow{}), "p1", dr, "").Find(&[]bookingRow{}).Statement
		sql := stmt.SQL.String()
		// Inclusive comparisons make touching endpoints overlap.
		for _, part := range []string{`"bookings"`, "property_id = $1", "status <> $2", "start_date <= $3", "end_date >= $4"} {
			if !strings.Contains(sql, part) {
				t.Fatalf("sql %q lacks %q", sql, part)
			}
		}
		if strings.Contains(sql, "id <>") {
			t.Fatalf("no exclusion expected: %s", sql)
		}
		want := []any{"p1", string(domainbooking.StatusCancelled), dr.End, dr.Start}
		if len(stmt.Vars) != len(want) {
			t.Fatalf("vars = %v", stmt.Vars)
		}
		for i := range want {
			if stmt.Vars[i] != want[i] {
				t.Fatalf("var %d = %v, want %v", i, stmt.Vars[i], want[i])
			}
		}
	})

	t.Run("excludes the booking itself", func(t *testing.T) {
		stmt := overlapScope(db.Model(&bookingRow{}), "p1", dr, "b1").Find(&[]bookingRow{}).Statement
		if !strings.Contains(stmt.SQL.String(), "id <> $5") {
			t.Fatalf("sql %q lacks the exclusion", stmt.SQL.String())
		}
		if len(stmt.Vars) != 5 || stmt.Vars[4] != "b1" {
			t.Fatalf("vars = %v", stmt.Vars)
		}
	})
}

func TestBookingRowRoundTrip(t *testing.T) {
	booked := time.Date(2025, 5, 1, 12, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	b := &domainbooking.Booking{
		ID:         "b1",
		PropertyID: "p1",
		UserID:     "user-alice",
		Range: daterange.DateRange{
			Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		},
		TotalPrice: money.Must(40000, "USD"),
		Status:     domainbooking.StatusConfirmed,
		PaymentID:  "pay-1",
		ReviewID:   "rev-1",
		BookedAt:   booked,
		UpdatedAt:  booked.Add(time.Hour),
		Version:    3,
	}
	row := newBookingRow(b)
	if row.TotalMinor != 40000 || row.Currency != "USD" || row.Status != "CONFIRMED" {
		t.Fatalf("row = %+v", row)
	}
	if row.BookedAt.Location() != time.UTC {
		t.Fatalf("timestamps should be stored in UTC")
	}
	got := row.toAggregate()
	if got.ID != b.ID || got.PropertyID != b.PropertyID || got.UserID != b.UserID {
		t.Fatalf("ids = %+v", got)
	}
	if !got.Range.Equal(b.Range) || !got.TotalPrice.Equal(b.TotalPrice) || got.Status != b.Status {
		t.Fatalf("booking = %+v", got)
	}
	if got.PaymentID != "pay-1" || got.ReviewID != "rev-1" || got.Version != 3 {
		t.Fatalf("links = %+v", got)
	}
	if !got.BookedAt.Equal(booked) || !got.UpdatedAt.Equal(booked.Add(time.Hour)) {
		t.Fatalf("timestamps = %s %s", got.BookedAt, got.UpdatedAt)
	}
}
