package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrWeightSumInvalid   = errors.New("scoring weights must sum to 1")
	ErrIntervalOutOfRange = errors.New("interval minutes out of range")
	ErrTimeoutOutOfRange  = errors.New("timeout ms out of range")
	ErrMaxJobsOutOfRange  = errors.New("max jobs per sweep out of range")
)

type Repository interface {
	Get(ctx context.Context, db *gorm.DB, key string) (*Setting, error)
	Upsert(ctx context.Context, db *gorm.DB, key string, value []byte, now time.Time) error
}

// ScoringSavedHook runs after a scoring config write commits. The scoring
// weight cache registers one to pick up new weights without waiting for
// its TTL.
type ScoringSavedHook func(ctx context.Context, cfg ScoringConfig)

// SchedulerSavedHook runs after scheduler settings are written, so the
// dispatcher can install or remove the recurring sweep.
type SchedulerSavedHook func(ctx context.Context, s SchedulerSettings) error

type Service interface {
	GetScoringConfig(ctx context.Context) (ScoringConfig, error)
	SaveScoringConfig(ctx context.Context, cfg ScoringConfig) (ScoringConfig, error)
	GetSchedulerSettings(ctx context.Context) (SchedulerSettings, error)
	SaveSchedulerSettings(ctx context.Context, s SchedulerSettings) (SchedulerSettings, error)

	OnScoringSaved(hook ScoringSavedHook)
	OnSchedulerSaved(hook SchedulerSavedHook)
}
