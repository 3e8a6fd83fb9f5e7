package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentbook/internal/app/middleware"
)

type idempotencyRow struct {
	Key        string `gorm:"primaryKey;size:255"`
	Command    string `gorm:"size:128;not null"`
	Payload    []byte `gorm:"type:bytea"`
	Error      string `gorm:"type:text"`
	ErrorKind  string `gorm:"size:32"`
	OccurredAt time.Time
	CreatedAt  time.Time `gorm:"index"`
}

func (idempotencyRow) TableName() string { return "app_idempotency" }

// IdempotencyStore keeps command outcomes until they are older than TTL.
// Expired rows are ignored on read and removed by Prune.
type IdempotencyStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewIdempotencyStore keeps records for ttl; zero means one week.
func NewIdempotencyStore(db *gorm.DB, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = time.Hour * 24 * 7
	}
	return &IdempotencyStore{db: db, ttl: ttl}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var row idempotencyRow
	err := s.db.WithContext(ctx).
		Where("key = ? AND created_at > ?", key, time.Now().UTC().Add(-s.ttl)).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	return middleware.IdempotencyRecord{
		Key:        row.Key,
		Command:    row.Command,
		Payload:    row.Payload,
		Error:      row.Error,
		ErrorKind:  row.ErrorKind,
		OccurredAt: row.OccurredAt,
	}, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	row := idempotencyRow{
		Key:        rec.Key,
		Command:    rec.Command,
		Payload:    rec.Payload,
		Error:      rec.Error,
		ErrorKind:  rec.ErrorKind,
		OccurredAt: rec.OccurredAt,
		CreatedAt:  time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

// Prune deletes expired records and reports how many were removed.
func (s *IdempotencyStore) Prune(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at <= ?", time.Now().UTC().Add(-s.ttl)).Delete(&idempotencyRow{})
	return res.RowsAffected, res.Error
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
