package booking

import (
	"strings"

	"rentbook/internal/domain/shared/apperr"
)

var ErrInvalidStatus = apperr.Validation("booking: invalid status")

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// Statuses lists every member of the closed status set.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

// ParseStatus converts a raw request value, rejecting anything outside the closed set.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", apperr.Validationf("booking: invalid status %q", raw)
	}
	return status, nil
}

func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Active reports whether a booking in this status holds its date range.
func (s Status) Active() bool {
	return s.Valid() && s != StatusCancelled
}

// Effect is what a status transition does to the stored booking.
type Effect int

const (
	// EffectPersist keeps the row and flips the status field.
	EffectPersist Effect = iota + 1
	// EffectRemove hard-deletes the row, freeing the date range.
	EffectRemove
)

// TransitionTo is total over the closed status set: moving to CANCELLED
// removes the booking, every other target is persisted in place.
func (s Status) TransitionTo(target Status) (Effect, error) {
	if !target.Valid() {
		return 0, ErrInvalidStatus
	}
	if target == StatusCancelled {
		return EffectRemove, nil
	}
	return EffectPersist, nil
}
