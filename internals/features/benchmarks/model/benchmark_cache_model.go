package model

import (
	"time"

	"gorm.io/datatypes"
)

// BenchmarkCacheModel is the persisted tier of the benchmark cache.
type BenchmarkCacheModel struct {
	Key       string         `gorm:"type:varchar(200);primaryKey;column:cle" json:"cle"`
	Payload   datatypes.JSON `gorm:"not null;column:payload" json:"payload"`
	ExpiresAt time.Time      `gorm:"not null;index:idx_benchmark_cache_exp;column:date_expiration" json:"date_expiration"`
	UpdatedAt time.Time      `gorm:"column:date_modification;autoUpdateTime" json:"date_modification"`
}

func (BenchmarkCacheModel) TableName() string { return "benchmark_cache" }
