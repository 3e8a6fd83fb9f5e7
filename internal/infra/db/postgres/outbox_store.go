package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appoutbox "rentbook/internal/app/outbox"
	infraoutbox "rentbook/internal/infra/outbox"
)

type outboxRow struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Name        string    `gorm:"size:128;not null"`
	Payload     []byte    `gorm:"type:bytea"`
	OccurredAt  time.Time `gorm:"not null"`
	Aggregate   string    `gorm:"size:64"`
	Headers     []byte    `gorm:"type:jsonb"`
	State       string    `gorm:"size:16;not null;index:idx_outbox_due,priority:1"`
	Attempts    int       `gorm:"not null;default:0"`
	NextAttempt time.Time `gorm:"column:next_attempt_at;not null;index:idx_outbox_due,priority:2"`
	ClaimedBy   string    `gorm:"size:128"`
	ClaimedAt   *time.Time
	SentAt      *time.Time
	LastError   string `gorm:"type:text"`
	CreatedAt   time.Time
}

func (outboxRow) TableName() string { return "app_outbox" }

func (r outboxRow) toDocument() (*infraoutbox.EventDocument, error) {
	headers := map[string]string{}
	if len(r.Headers) > 0 {
		if err := json.Unmarshal(r.Headers, &headers); err != nil {
			return nil, err
		}
	}
	doc := &infraoutbox.EventDocument{
		ID:          r.ID,
		Name:        r.Name,
		Payload:     r.Payload,
		OccurredAt:  r.OccurredAt,
		Aggregate:   r.Aggregate,
		Headers:     headers,
		State:       r.State,
		Attempts:    r.Attempts,
		NextAttempt: r.NextAttempt,
		ClaimedBy:   r.ClaimedBy,
		LastError:   r.LastError,
	}
	if r.ClaimedAt != nil {
		doc.ClaimedAt = *r.ClaimedAt
	}
	if r.SentAt != nil {
		doc.SentAt = *r.SentAt
	}
	return doc, nil
}

// OutboxStore writes event records inside the caller's transaction and
// serves them to the delivery worker.
type OutboxStore struct {
	db *gorm.DB
}

func NewOutboxStore(db *gorm.DB) *OutboxStore {
	return &OutboxStore{db: db}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	headers, err := json.Marshal(record.Headers)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	row := outboxRow{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     record.Payload,
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     headers,
		State:       infraoutbox.StateNew,
		NextAttempt: now,
		CreatedAt:   now,
	}
	return translate(conn(ctx, s.db).Create(&row).Error, nil, nil)
}

// Flush is a no-op: rows become visible when the transaction commits.
func (s *OutboxStore) Flush(context.Context) error {
	return nil
}

// Claim picks the oldest due record with FOR UPDATE SKIP LOCKED so several
// workers can drain the table concurrently.
func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	var claimed *outboxRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row outboxRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("state IN ? AND next_attempt_at <= ?", []string{infraoutbox.StateNew, infraoutbox.StateFailed}, time.Now().UTC()).
			Order("next_attempt_at ASC").
			Take(&row).Error
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		row.State = infraoutbox.StateClaimed
		row.ClaimedBy = workerID
		row.ClaimedAt = &now
		if err := tx.Model(&outboxRow{}).Where("id = ?", row.ID).Updates(map[string]any{
			"state":      row.State,
			"claimed_by": workerID,
			"claimed_at": now,
		}).Error; err != nil {
			return err
		}
		claimed = &row
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return claimed.toDocument()
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&outboxRow{}).Where("id = ?", id).Updates(map[string]any{
		"state":   infraoutbox.StateSent,
		"sent_at": time.Now().UTC(),
	}).Error
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	return s.db.WithContext(ctx).Model(&outboxRow{}).Where("id = ?", id).Updates(map[string]any{
		"state":           infraoutbox.StateFailed,
		"next_attempt_at": next,
		"last_error":      errMsg,
		"attempts":        gorm.Expr("attempts + 1"),
	}).Error
}

var (
	_ appoutbox.Outbox  = (*OutboxStore)(nil)
	_ infraoutbox.Store = (*OutboxStore)(nil)
)
