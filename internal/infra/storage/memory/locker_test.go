package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rentbook/internal/app/policies"
)

func TestLockerSerializesSameKey(t *testing.T) {
	l := NewLocker(time.Second)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "property:p1")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("max concurrent holders = %d", maxSeen)
	}
	if l.held() != 0 {
		t.Fatalf("slots leaked: %d", l.held())
	}
}

func TestLockerTimesOut(t *testing.T) {
	l := NewLocker(10 * time.Millisecond)
	release, err := l.Acquire(context.Background(), "booking:b1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Acquire(context.Background(), "booking:b1"); !errors.Is(err, policies.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	other, err := l.Acquire(context.Background(), "booking:b2")
	if err != nil {
		t.Fatalf("different keys must not block: %v", err)
	}
	other()
	release()
	release()
	if l.held() != 0 {
		t.Fatalf("slots leaked: %d", l.held())
	}
}
