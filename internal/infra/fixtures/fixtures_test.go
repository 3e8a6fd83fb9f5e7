package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	domainproperty "rentbook/internal/domain/property"
	"rentbook/internal/infra/obs"
	"rentbook/internal/infra/storage/memory"
)

const sample = `{
  "properties": [
    {"id": "p1", "owner": "host-1", "title": "Loft", "nightly_price": "100.00", "currency": "usd"},
    {"id": "p2", "owner": "host-1", "title": "Hidden", "nightly_price": "80", "currency": "EUR", "available": false},
    {"id": "", "nightly_price": "10", "currency": "USD"},
    {"id": "p3", "nightly_price": "abc", "currency": "USD"}
  ],
  "users": [
    {"id": "u1", "username": "Alice"},
    {"id": "u2", "username": "   "}
  ]
}`

func TestLoadImportsValidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.json")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	store := memory.NewStore()
	summary, err := Load(context.Background(), path, store.Properties, store.Users, obs.Discard())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if summary.Properties != 2 || summary.Users != 1 || summary.Skipped != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	p1, err := store.Properties.ByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("p1: %v", err)
	}
	if p1.NightlyPrice.Amount != 10000 || p1.NightlyPrice.Currency != "USD" || !p1.Available {
		t.Fatalf("unexpected p1 %+v", p1)
	}
	p2, err := store.Properties.ByID(context.Background(), "p2")
	if err != nil {
		t.Fatalf("p2: %v", err)
	}
	if p2.Available {
		t.Fatalf("p2 should be unavailable")
	}
	if _, err := store.Properties.ByID(context.Background(), "p3"); err != domainproperty.ErrNotFound {
		t.Fatalf("p3 should be skipped, got %v", err)
	}
	u, err := store.Users.ByUsername(context.Background(), "alice")
	if err != nil || u.ID != "u1" {
		t.Fatalf("alice lookup: %v %+v", err, u)
	}
}

func TestLoadMissingFileIsNoop(t *testing.T) {
	store := memory.NewStore()
	summary, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.json"), store.Properties, store.Users, obs.Discard())
	if err != nil || summary != (Summary{}) {
		t.Fatalf("expected no-op, got %+v %v", summary, err)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := memory.NewStore()
	if _, err := Load(context.Background(), path, store.Properties, store.Users, obs.Discard()); err == nil {
		t.Fatalf("expected decode error")
	}
}
