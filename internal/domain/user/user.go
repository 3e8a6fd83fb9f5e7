package user

import (
	"context"
	"strings"
	"time"

	"rentbook/internal/domain/shared/apperr"
)

var (
	ErrIDRequired       = apperr.Validation("user: id is required")
	ErrUsernameRequired = apperr.Validation("user: username is required")
	ErrNotFound         = apperr.New(apperr.KindNotFound, "user: not found")
)

type ID string

type User struct {
	ID        ID
	Username  string
	CreatedAt time.Time
}

// Directory resolves a principal identifier to a user record.
type Directory interface {
	ByUsername(ctx context.Context, username string) (*User, error)
	ByID(ctx context.Context, id ID) (*User, error)
}

// Repository is the writable side used by storage backends and fixtures.
type Repository interface {
	Directory
	Save(ctx context.Context, u *User) error
}

type CreateParams struct {
	ID        ID
	Username  string
	CreatedAt time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	username := NormalizeUsername(params.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &User{
		ID:        ID(id),
		Username:  username,
		CreatedAt: now.UTC(),
	}, nil
}

// NormalizeUsername trims and lowercases a username for lookups.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
