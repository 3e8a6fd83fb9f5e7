package queries

import (
	"context"

	"rentbook/internal/domain/shared/apperr"
)

// Query is a read request. Queries never pass the transaction or
// serialization stages.
type Query interface {
	Key() string
}

type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = apperr.New(apperr.KindInternal, "queries: handler not found")
	ErrInvalidQuery    = apperr.New(apperr.KindInternal, "queries: invalid query for handler")
	ErrResultType      = apperr.New(apperr.KindInternal, "queries: result type mismatch")
	ErrNilBus          = apperr.New(apperr.KindInternal, "queries: nil bus")
)

// Ask runs query through bus and narrows the result to R.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	if err != nil {
		return zero, err
	}
	value, ok := res.(R)
	if !ok {
		if res == nil {
			return zero, nil
		}
		return zero, ErrResultType
	}
	return value, nil
}
