package middleware

import (
	"context"
	"strings"

	"rentbook/internal/app/commands"
	"rentbook/internal/domain/shared/apperr"
)

var (
	ErrNotOwner      = apperr.New(apperr.KindForbidden, "authorization: acting user does not own the resource")
	ErrActorRequired = apperr.New(apperr.KindForbidden, "authorization: acting user required")
)

// OwnedCommand is implemented by commands that act on a resource owned by a
// renter or a host. TrustedCaller marks calls issued by the system itself;
// only those may omit the actor.
type OwnedCommand interface {
	commands.Command
	OwnershipClaim() (resource, id, actor string)
	TrustedCaller() bool
}

// OwnershipChecker answers whether actor owns resource id.
type OwnershipChecker interface {
	IsOwner(ctx context.Context, resource, id, actor string) (bool, error)
}

// Ownership rejects owned commands whose actor is not the resource owner.
// It sits in front of the engine; the engine itself never authorizes.
func Ownership(checker OwnershipChecker) CommandMiddleware {
	if checker == nil {
		panic("middleware: ownership checker required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			owned, ok := cmd.(OwnedCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			if owned.TrustedCaller() {
				return nextFn(ctx, cmd)
			}
			resource, id, actor := owned.OwnershipClaim()
			if strings.TrimSpace(actor) == "" {
				return nil, ErrActorRequired
			}
			isOwner, err := checker.IsOwner(ctx, resource, id, actor)
			if err != nil {
				return nil, err
			}
			if !isOwner {
				return nil, ErrNotOwner
			}
			return nextFn(ctx, cmd)
		})
	}
}
