package cache

import (
	"context"
	"errors"
	"time"

	"maturity_backend/internals/features/benchmarks/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Persisted keeps entries in the benchmark_cache table so they survive restarts.
type Persisted struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPersisted(db *gorm.DB) *Persisted {
	return &Persisted{db: db, now: time.Now}
}

func (p *Persisted) WithClock(now func() time.Time) *Persisted {
	cp := *p
	cp.now = now
	return &cp
}

func (p *Persisted) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row model.BenchmarkCacheModel
	err := p.db.WithContext(ctx).
		Where("cle = ? AND date_expiration > ?", key, p.now().UTC()).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(row.Payload), true, nil
}

func (p *Persisted) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	row := model.BenchmarkCacheModel{
		Key:       key,
		Payload:   datatypes.JSON(value),
		ExpiresAt: p.now().UTC().Add(ttl),
	}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cle"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "date_expiration", "date_modification"}),
	}).Create(&row).Error
}

// Purge drops expired rows.
func (p *Persisted) Purge(ctx context.Context) (int64, error) {
	res := p.db.WithContext(ctx).
		Where("date_expiration <= ?", p.now().UTC()).
		Delete(&model.BenchmarkCacheModel{})
	return res.RowsAffected, res.Error
}
