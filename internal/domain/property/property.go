package property

import (
	"context"
	"strings"
	"time"

	"rentbook/internal/domain/shared/apperr"
	"rentbook/internal/domain/shared/money"
)

var (
	ErrNotFound     = apperr.New(apperr.KindNotFound, "property: not found")
	ErrIDRequired   = apperr.Validation("property: id is required")
	ErrNightlyPrice = apperr.Validation("property: nightly price must be positive")
)

type ID string

type OwnerID string

// Property is owned by the listing system. The booking engine only reads it;
// the availability flag is a host toggle independent of bookings.
type Property struct {
	ID           ID
	OwnerID      OwnerID
	Title        string
	NightlyPrice money.Money
	Available    bool
	ListedAt     time.Time
}

// Directory resolves properties by id. Implementations return ErrNotFound
// (distinct from an unavailable property) when nothing matches.
type Directory interface {
	ByID(ctx context.Context, id ID) (*Property, error)
}

// Repository is the writable side used by storage backends and fixtures.
type Repository interface {
	Directory
	Save(ctx context.Context, p *Property) error
}

type CreateParams struct {
	ID           ID
	OwnerID      OwnerID
	Title        string
	NightlyPrice money.Money
	Available    bool
	ListedAt     time.Time
}

func New(params CreateParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if params.NightlyPrice.Amount <= 0 {
		return nil, ErrNightlyPrice
	}
	if _, err := money.New(params.NightlyPrice.Amount, params.NightlyPrice.Currency); err != nil {
		return nil, err
	}
	listed := params.ListedAt
	if listed.IsZero() {
		listed = time.Now()
	}
	return &Property{
		ID:           params.ID,
		OwnerID:      params.OwnerID,
		Title:        strings.TrimSpace(params.Title),
		NightlyPrice: params.NightlyPrice,
		Available:    params.Available,
		ListedAt:     listed.UTC(),
	}, nil
}

// Clone returns a detached copy.
func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
