package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	QueueProbeCheck = "probe-check"
	QueueProbeSweep = "probe-sweep"

	// RecurringSweepID keys the single recurring sweep entry. Re-installing
	// it replaces the existing schedule instead of adding a second one.
	RecurringSweepID = "auto-probe-sweep"
)

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrBackendDisabled = errors.New("queue backend disabled")
	ErrUnknownQueue    = errors.New("unknown queue")
)

type JobState string

const (
	StateWaiting   JobState = "waiting"
	StateActive    JobState = "active"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateDelayed   JobState = "delayed"
)

func (s JobState) Valid() bool {
	switch s {
	case StateWaiting, StateActive, StateCompleted, StateFailed, StateDelayed:
		return true
	}
	return false
}

// Job is the queued unit of work. Probe-check jobs carry one provider id;
// sweep jobs carry none and fan out when processed.
type Job struct {
	ID         string       `json:"id"`
	Queue      string       `json:"queue"`
	ProviderID snowflake.ID `json:"provider_id,omitempty"`
	TimeoutMs  int          `json:"timeout_ms"`
	State      JobState     `json:"state"`
	Attempts   int          `json:"attempts"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Error      *string      `json:"error,omitempty"`
}

// Result reports a dispatch round. Queued counts jobs handed to the
// backend; Created counts probe rows written synchronously when no
// backend is configured.
type Result struct {
	Queued  int  `json:"queued"`
	Created int  `json:"created"`
	Enabled bool `json:"enabled"`
}

type Dispatcher interface {
	// DispatchOnce issues one probe job per provider id. The timeout
	// travels with each job so workers honor the settings that were
	// current at dispatch time.
	DispatchOnce(ctx context.Context, providerIDs []snowflake.ID, timeoutMs int) (*Result, error)

	ListJobs(ctx context.Context, queue string, state JobState, limit int) ([]Job, error)
	RetryJob(ctx context.Context, queue, id string) (*Job, error)

	EnsureRecurringSweep(ctx context.Context, intervalMinutes int) error
	CancelRecurringSweep(ctx context.Context) error

	Enabled() bool
}

// SweepHandler runs one sweep: select due providers and dispatch checks.
// Implemented outside this package so the consumer stays queue-only.
type SweepHandler interface {
	Sweep(ctx context.Context) error
}
