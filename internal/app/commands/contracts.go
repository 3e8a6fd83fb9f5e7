package commands

import (
	"context"

	"rentbook/internal/domain/shared/apperr"
)

// Command is a write intent. Key selects the handler and doubles as the
// idempotency and metrics label.
type Command interface {
	Key() string
}

type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc lets plain functions and method values act as handlers.
type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

// Wiring mistakes surface as internal errors so the request layer never
// leaks them as client faults.
var (
	ErrHandlerNotFound = apperr.New(apperr.KindInternal, "commands: handler not found")
	ErrInvalidCommand  = apperr.New(apperr.KindInternal, "commands: invalid command for handler")
	ErrResultType      = apperr.New(apperr.KindInternal, "commands: result type mismatch")
	ErrNilBus          = apperr.New(apperr.KindInternal, "commands: nil bus")
)

// Dispatch sends cmd through bus and narrows the result to R. Handlers that
// return *R are accepted for callers asking for R, since replayed
// idempotency results and live results may differ in indirection.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil {
		return zero, err
	}
	return narrow[R](res)
}

func narrow[R any](res any) (R, error) {
	var zero R
	switch v := res.(type) {
	case nil:
		return zero, nil
	case R:
		return v, nil
	case *R:
		if v == nil {
			return zero, nil
		}
		return *v, nil
	default:
		return zero, ErrResultType
	}
}
