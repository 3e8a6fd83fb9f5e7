package middleware

import (
	"context"
	"sort"
	"strings"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/policies"
)

// SerializedCommand declares the resources a command must hold exclusively
// while it runs, e.g. "property:<id>" or "booking:<id>".
type SerializedCommand interface {
	commands.Command
	LockKeys() []string
}

// Serialize acquires every declared key before calling next and releases
// them after it returns. Register it outside Transaction so the locks are
// held until the unit of work has committed.
func Serialize(locker policies.Locker) CommandMiddleware {
	if locker == nil {
		panic("middleware: locker required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			serialized, ok := cmd.(SerializedCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			keys := normalizeLockKeys(serialized.LockKeys())
			releases := make([]func(), 0, len(keys))
			defer func() {
				for i := len(releases) - 1; i >= 0; i-- {
					releases[i]()
				}
			}()
			for _, key := range keys {
				release, err := locker.Acquire(ctx, key)
				if err != nil {
					return nil, err
				}
				releases = append(releases, release)
			}
			return nextFn(ctx, cmd)
		})
	}
}

// normalizeLockKeys drops blanks and duplicates and sorts the rest so that
// two commands sharing keys always acquire them in the same order.
func normalizeLockKeys(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	keys := make([]string, 0, len(raw))
	for _, key := range raw {
		key = strings.TrimSpace(key)
		if key == "" || strings.HasSuffix(key, ":") {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// PropertyKey, BookingKey and ReviewKey build the lock keys shared by handlers.
func PropertyKey(id string) string { return "property:" + strings.TrimSpace(id) }

func BookingKey(id string) string { return "booking:" + strings.TrimSpace(id) }

func ReviewKey(id string) string { return "review:" + strings.TrimSpace(id) }
