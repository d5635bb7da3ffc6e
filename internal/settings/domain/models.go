package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is one durable configuration document, keyed by name with a
// JSON payload. The engine owns a small closed set of keys.
type Setting struct {
	Key       string         `json:"key" gorm:"primaryKey;type:text"`
	Value     datatypes.JSON `json:"value" gorm:"not null"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null;autoUpdateTime:false"`
}

func (Setting) TableName() string {
	return "settings"
}

const (
	KeyScoringConfig  = "scoring_config"
	KeyProbeScheduler = "probe_scheduler"
)

type Weights struct {
	Price  float64 `json:"price"`
	Uptime float64 `json:"uptime"`
	Review float64 `json:"review"`
}

func (w Weights) Sum() float64 {
	return w.Price + w.Uptime + w.Review
}

type ScoringConfig struct {
	Version int     `json:"version"`
	Formula string  `json:"formula"`
	Weights Weights `json:"weights"`
	Notes   *string `json:"notes,omitempty"`
}

type SchedulerSettings struct {
	Enabled         bool   `json:"enabled"`
	IntervalMinutes int    `json:"interval_minutes"`
	TimeoutMs       int    `json:"timeout_ms"`
	MaxJobsPerSweep int    `json:"max_jobs_per_sweep"`
	SampleModel     string `json:"sample_model"`
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Version: 1,
		Formula: "weighted_sum",
		Weights: DefaultWeights(),
	}
}

func DefaultWeights() Weights {
	return Weights{Price: 0.4, Uptime: 0.35, Review: 0.25}
}

func DefaultSchedulerSettings() SchedulerSettings {
	return SchedulerSettings{
		Enabled:         false,
		IntervalMinutes: 30,
		TimeoutMs:       8000,
		MaxJobsPerSweep: 200,
		SampleModel:     "gpt-5.2",
	}
}
