package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/providerpulse/providerpulse/internal/clock"
	"github.com/providerpulse/providerpulse/internal/observability/metrics"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const failedRetention = 1000

// QueuedDispatcher hands probe jobs to redis lists and leaves execution
// to worker processes. Completed jobs are deleted outright; failed jobs
// are retained up to failedRetention for inspection and retry.
type QueuedDispatcher struct {
	log     *zap.Logger
	client  *redis.Client
	clock   clock.Clock
	metrics *metrics.Dispatch
}

func NewQueuedDispatcher(log *zap.Logger, client *redis.Client, clk clock.Clock, m *metrics.Dispatch) *QueuedDispatcher {
	return &QueuedDispatcher{
		log:     log.Named("dispatch.queued"),
		client:  client,
		clock:   clk,
		metrics: m,
	}
}

func (d *QueuedDispatcher) Enabled() bool { return true }

func jobKey(queue, id string) string {
	return fmt.Sprintf("queue:%s:job:%s", queue, id)
}

func stateKey(queue string, state JobState) string {
	return fmt.Sprintf("queue:%s:%s", queue, state)
}

func recurringKey() string {
	return fmt.Sprintf("queue:%s:recurring:%s", QueueProbeSweep, RecurringSweepID)
}

func validQueue(queue string) bool {
	return queue == QueueProbeCheck || queue == QueueProbeSweep
}

func (d *QueuedDispatcher) DispatchOnce(ctx context.Context, providerIDs []snowflake.ID, timeoutMs int) (*Result, error) {
	result := &Result{Enabled: true}
	for _, id := range providerIDs {
		job := Job{
			ID:         uuid.NewString(),
			Queue:      QueueProbeCheck,
			ProviderID: id,
			TimeoutMs:  timeoutMs,
			State:      StateWaiting,
			Attempts:   1,
			EnqueuedAt: d.clock.Now(),
		}
		if err := d.enqueue(ctx, job); err != nil {
			d.metrics.IncDispatchError()
			return nil, err
		}
		result.Queued++
	}
	d.metrics.AddQueued(QueueProbeCheck, result.Queued)
	return result, nil
}

// EnqueueSweep queues one sweep marker job. Workers expand it into
// per-provider checks.
func (d *QueuedDispatcher) EnqueueSweep(ctx context.Context) error {
	job := Job{
		ID:         uuid.NewString(),
		Queue:      QueueProbeSweep,
		State:      StateWaiting,
		Attempts:   1,
		EnqueuedAt: d.clock.Now(),
	}
	if err := d.enqueue(ctx, job); err != nil {
		return err
	}
	d.metrics.AddQueued(QueueProbeSweep, 1)
	return nil
}

func (d *QueuedDispatcher) enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	pipe := d.client.TxPipeline()
	pipe.Set(ctx, jobKey(job.Queue, job.ID), payload, 0)
	pipe.LPush(ctx, stateKey(job.Queue, StateWaiting), job.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (d *QueuedDispatcher) ListJobs(ctx context.Context, queue string, state JobState, limit int) ([]Job, error) {
	if !validQueue(queue) {
		return nil, ErrUnknownQueue
	}
	if !state.Valid() {
		return nil, fmt.Errorf("invalid job state %q", state)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	// Completed jobs are removed on completion, so there is nothing to
	// page through.
	if state == StateCompleted || state == StateDelayed {
		return []Job{}, nil
	}

	ids, err := d.client.LRange(ctx, stateKey(queue, state), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(ids))
	for _, id := range ids {
		job, err := d.loadJob(ctx, queue, id)
		if err != nil {
			if errors.Is(err, ErrJobNotFound) {
				continue
			}
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

func (d *QueuedDispatcher) RetryJob(ctx context.Context, queue, id string) (*Job, error) {
	if !validQueue(queue) {
		return nil, ErrUnknownQueue
	}
	job, err := d.loadJob(ctx, queue, id)
	if err != nil {
		d.metrics.IncRetry("not_found")
		return nil, err
	}

	job.State = StateWaiting
	job.Attempts++
	job.Error = nil
	job.FinishedAt = nil

	payload, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	pipe := d.client.TxPipeline()
	pipe.LRem(ctx, stateKey(queue, StateFailed), 0, id)
	pipe.Set(ctx, jobKey(queue, id), payload, 0)
	pipe.LPush(ctx, stateKey(queue, StateWaiting), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	d.metrics.IncRetry("retried")
	return job, nil
}

func (d *QueuedDispatcher) EnsureRecurringSweep(ctx context.Context, intervalMinutes int) error {
	return d.client.HSet(ctx, recurringKey(),
		"id", RecurringSweepID,
		"interval_minutes", intervalMinutes,
		"updated_at", d.clock.Now().Format(time.RFC3339),
	).Err()
}

func (d *QueuedDispatcher) CancelRecurringSweep(ctx context.Context) error {
	return d.client.Del(ctx, recurringKey()).Err()
}

// RecurringSweepInterval reads the installed schedule. Zero means no
// schedule is installed.
func (d *QueuedDispatcher) RecurringSweepInterval(ctx context.Context) (int, error) {
	value, err := d.client.HGet(ctx, recurringKey(), "interval_minutes").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.Atoi(value)
}

// NextWaiting blocks up to wait for a job to become active. Returns nil
// when the queue stayed empty.
func (d *QueuedDispatcher) NextWaiting(ctx context.Context, queue string, wait time.Duration) (*Job, error) {
	id, err := d.client.BLMove(ctx, stateKey(queue, StateWaiting), stateKey(queue, StateActive), "RIGHT", "LEFT", wait).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	job, err := d.loadJob(ctx, queue, id)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			d.client.LRem(ctx, stateKey(queue, StateActive), 0, id)
			return nil, nil
		}
		return nil, err
	}
	job.State = StateActive
	return job, nil
}

// Complete removes the job entirely, matching remove-on-complete queues.
func (d *QueuedDispatcher) Complete(ctx context.Context, job *Job) error {
	pipe := d.client.TxPipeline()
	pipe.LRem(ctx, stateKey(job.Queue, StateActive), 0, job.ID)
	pipe.Del(ctx, jobKey(job.Queue, job.ID))
	_, err := pipe.Exec(ctx)
	return err
}

func (d *QueuedDispatcher) Fail(ctx context.Context, job *Job, cause error) error {
	now := d.clock.Now()
	job.State = StateFailed
	job.FinishedAt = &now
	if cause != nil {
		msg := cause.Error()
		job.Error = &msg
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	pipe := d.client.TxPipeline()
	pipe.LRem(ctx, stateKey(job.Queue, StateActive), 0, job.ID)
	pipe.Set(ctx, jobKey(job.Queue, job.ID), payload, 0)
	pipe.LPush(ctx, stateKey(job.Queue, StateFailed), job.ID)
	pipe.LTrim(ctx, stateKey(job.Queue, StateFailed), 0, failedRetention-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (d *QueuedDispatcher) loadJob(ctx context.Context, queue, id string) (*Job, error) {
	payload, err := d.client.Get(ctx, jobKey(queue, id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	var job Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return nil, err
	}
	return &job, nil
}
