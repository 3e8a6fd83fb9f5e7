package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	domainproperty "rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/money"
)

type countingDirectory struct {
	items map[domainproperty.ID]*domainproperty.Property
	calls int
}

func (d *countingDirectory) ByID(_ context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	d.calls++
	p, ok := d.items[id]
	if !ok {
		return nil, domainproperty.ErrNotFound
	}
	return p.Clone(), nil
}

func newDirectory(t *testing.T) *countingDirectory {
	t.Helper()
	p, err := domainproperty.New(domainproperty.CreateParams{ID: "p1", NightlyPrice: money.Must(9000, "EUR"), Available: true})
	if err != nil {
		t.Fatal(err)
	}
	return &countingDirectory{items: map[domainproperty.ID]*domainproperty.Property{"p1": p}}
}

func TestPropertyDirectoryCachesHits(t *testing.T) {
	next := newDirectory(t)
	dir := NewPropertyDirectory(next, time.Minute, 0)
	defer dir.Stop()

	for i := 0; i < 3; i++ {
		p, err := dir.ByID(context.Background(), "p1")
		if err != nil || p.NightlyPrice.Amount != 9000 {
			t.Fatalf("lookup %d: %+v %v", i, p, err)
		}
		p.Available = false
	}
	if next.calls != 1 {
		t.Fatalf("backing directory called %d times", next.calls)
	}
	p, _ := dir.ByID(context.Background(), "p1")
	if !p.Available {
		t.Fatal("callers must not mutate the cached copy")
	}

	dir.Invalidate("p1")
	if _, err := dir.ByID(context.Background(), "p1"); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 {
		t.Fatalf("invalidate should force a reload, calls = %d", next.calls)
	}
}

func TestPropertyDirectoryDoesNotCacheMisses(t *testing.T) {
	next := newDirectory(t)
	dir := NewPropertyDirectory(next, time.Minute, 0)
	defer dir.Stop()

	for i := 0; i < 2; i++ {
		if _, err := dir.ByID(context.Background(), "ghost"); !errors.Is(err, domainproperty.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if next.calls != 2 {
		t.Fatalf("misses should reach the backing directory, calls = %d", next.calls)
	}
}
