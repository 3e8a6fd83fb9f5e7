// Package fixtures seeds the property and user directories from a JSON file.
package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	domainproperty "rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/money"
	domainuser "rentbook/internal/domain/user"
)

type File struct {
	Properties []PropertyFixture `json:"properties"`
	Users      []UserFixture     `json:"users"`
}

type PropertyFixture struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	Title        string `json:"title"`
	NightlyPrice string `json:"nightly_price"`
	Currency     string `json:"currency"`
	// Available defaults to true when omitted.
	Available *bool  `json:"available"`
	ListedAt  string `json:"listed_at"`
}

type UserFixture struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// Summary counts what was imported and what was skipped as invalid.
type Summary struct {
	Properties int
	Users      int
	Skipped    int
}

// Load reads path and imports it. A missing file is not an error.
func Load(ctx context.Context, path string, properties domainproperty.Repository, users domainuser.Repository, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return Summary{}, nil
		}
		return Summary{}, fmt.Errorf("read fixtures: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		logger.Warn("fixtures file empty", "path", path)
		return Summary{}, nil
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return Summary{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return Apply(ctx, file, properties, users, logger)
}

// Apply saves every valid entry; invalid ones are logged and skipped.
func Apply(ctx context.Context, file File, properties domainproperty.Repository, users domainuser.Repository, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var summary Summary
	now := time.Now()
	for _, fx := range file.Properties {
		p, err := fx.toProperty(now)
		if err != nil {
			logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			summary.Skipped++
			continue
		}
		if err := properties.Save(ctx, p); err != nil {
			return summary, fmt.Errorf("save property %s: %w", fx.ID, err)
		}
		summary.Properties++
	}
	for _, fx := range file.Users {
		u, err := domainuser.NewUser(domainuser.CreateParams{
			ID:        domainuser.ID(fx.ID),
			Username:  fx.Username,
			CreatedAt: parseFixtureTime(fx.CreatedAt, now),
		})
		if err != nil {
			logger.Error("fixture invalid", "user_id", fx.ID, "error", err)
			summary.Skipped++
			continue
		}
		if err := users.Save(ctx, u); err != nil {
			return summary, fmt.Errorf("save user %s: %w", fx.ID, err)
		}
		summary.Users++
	}
	logger.Info("fixtures imported", "properties", summary.Properties, "users", summary.Users, "skipped", summary.Skipped)
	return summary, nil
}

func (fx PropertyFixture) toProperty(now time.Time) (*domainproperty.Property, error) {
	price, err := money.Parse(fx.NightlyPrice, fx.Currency)
	if err != nil {
		return nil, err
	}
	available := true
	if fx.Available != nil {
		available = *fx.Available
	}
	return domainproperty.New(domainproperty.CreateParams{
		ID:           domainproperty.ID(strings.TrimSpace(fx.ID)),
		OwnerID:      domainproperty.OwnerID(fx.Owner),
		Title:        fx.Title,
		NightlyPrice: price,
		Available:    available,
		ListedAt:     parseFixtureTime(fx.ListedAt, now),
	})
}

func parseFixtureTime(value string, fallback time.Time) time.Time {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return fallback
}

// DefaultPath returns the first existing well-known fixtures location.
func DefaultPath() string {
	candidates := []string{
		filepath.Join("data", "fixtures.json"),
		filepath.Join("..", "data", "fixtures.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
