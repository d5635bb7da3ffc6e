package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrInvalidProbeType = errors.New("invalid probe type")
	ErrInvalidMethod    = errors.New("invalid probe method")
)

type RecordInput struct {
	ProviderID      snowflake.ID
	ProviderModelID *snowflake.ID
	ProbeType       ProbeType
	ProbeMethod     ProbeMethod
	IsSuccess       bool
	ResponseTimeMs  *float64
	StatusCode      *int
	ErrorMessage    *string
}

type ListFilter struct {
	ProviderID      snowflake.ID
	ProviderModelID snowflake.ID
	ProbeType       ProbeType
	Success         *bool
	WindowDays      int
}

// UptimeStats aggregates probes over a window. A provider with no probes
// is treated as fully available rather than fully down.
type UptimeStats struct {
	ProviderID        snowflake.ID `json:"provider_id"`
	WindowDays        int          `json:"window_days"`
	Total             int64        `json:"total"`
	Success           int64        `json:"success"`
	Ratio             float64      `json:"ratio"`
	AvgResponseTimeMs *float64     `json:"avg_response_time_ms,omitempty"`
}

type LatencyStats struct {
	WindowDays int      `json:"window_days"`
	Count      int64    `json:"count"`
	AvgMs      *float64 `json:"avg_ms,omitempty"`
	MinMs      *float64 `json:"min_ms,omitempty"`
	MaxMs      *float64 `json:"max_ms,omitempty"`
}

// UptimeRow is the per-provider aggregate the repository computes in SQL.
type UptimeRow struct {
	ProviderID        snowflake.ID
	Total             int64
	Success           int64
	AvgResponseTimeMs *float64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, probe *AvailabilityProbe) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, since time.Time, page pagination.Page) ([]AvailabilityProbe, int64, error)
	Aggregate(ctx context.Context, db *gorm.DB, providerIDs []snowflake.ID, since time.Time) ([]UptimeRow, error)
	Latency(ctx context.Context, db *gorm.DB, since time.Time) (*LatencyStats, error)
}

type Service interface {
	Record(ctx context.Context, input RecordInput) (*AvailabilityProbe, error)
	Uptime(ctx context.Context, providerID snowflake.ID, windowDays int) (*UptimeStats, error)
	UptimeSummary(ctx context.Context, windowDays int) ([]UptimeStats, error)

	// UptimeByProvider feeds the scoring engine: one ratio per requested
	// provider, defaulting to 1.0 when a provider has no probes in window.
	UptimeByProvider(ctx context.Context, providerIDs []snowflake.ID, windowDays int) (map[snowflake.ID]UptimeStats, error)

	LatencySummary(ctx context.Context, windowDays int) (*LatencyStats, error)
	List(ctx context.Context, filter ListFilter, page pagination.Page) ([]AvailabilityProbe, pagination.PageInfo, error)
}
