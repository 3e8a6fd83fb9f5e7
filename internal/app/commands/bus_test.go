package commands

import (
	"context"
	"errors"
	"testing"

	"rentbook/internal/domain/shared/apperr"
)

type ping struct{ key string }

func (p ping) Key() string { return p.key }

type pong struct{ N int }

func TestDispatchNarrowsResults(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[ping, *pong](bus, "ptr", HandlerFunc[ping, *pong](func(context.Context, ping) (*pong, error) {
		return &pong{N: 1}, nil
	}))
	RegisterHandler[ping, pong](bus, "val", HandlerFunc[ping, pong](func(context.Context, ping) (pong, error) {
		return pong{N: 2}, nil
	}))
	RegisterHandler[ping, *pong](bus, "nil", HandlerFunc[ping, *pong](func(context.Context, ping) (*pong, error) {
		return nil, nil
	}))

	if got, err := Dispatch[ping, pong](context.Background(), bus, ping{"ptr"}); err != nil || got.N != 1 {
		t.Fatalf("pointer result: %+v %v", got, err)
	}
	if got, err := Dispatch[ping, *pong](context.Background(), bus, ping{"ptr"}); err != nil || got.N != 1 {
		t.Fatalf("exact pointer result: %+v %v", got, err)
	}
	if got, err := Dispatch[ping, pong](context.Background(), bus, ping{"val"}); err != nil || got.N != 2 {
		t.Fatalf("value result: %+v %v", got, err)
	}
	if got, err := Dispatch[ping, pong](context.Background(), bus, ping{"nil"}); err != nil || got.N != 0 {
		t.Fatalf("nil pointer result: %+v %v", got, err)
	}
	if _, err := Dispatch[ping, string](context.Background(), bus, ping{"val"}); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected result type error, got %v", err)
	}
}

func TestDispatchWiringErrorsAreInternal(t *testing.T) {
	bus := NewInMemoryBus()
	_, err := Dispatch[ping, pong](context.Background(), bus, ping{"missing"})
	if !errors.Is(err, ErrHandlerNotFound) || apperr.KindOf(err) != apperr.KindInternal {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := Dispatch[ping, pong](context.Background(), nil, ping{"x"}); !errors.Is(err, ErrNilBus) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[ping, pong](func(context.Context, ping) (pong, error) { return pong{}, nil })
	RegisterHandler[ping, pong](bus, "dup", h)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	RegisterHandler[ping, pong](bus, "dup", h)
}
