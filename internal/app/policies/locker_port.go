package policies

import (
	"context"

	"rentbook/internal/domain/shared/apperr"
)

var ErrLockTimeout = apperr.New(apperr.KindConflict, "lock: resource busy, retry later")

// Locker is a keyed serialization point. Acquire blocks until the key is
// free or ctx is done; the returned release must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
