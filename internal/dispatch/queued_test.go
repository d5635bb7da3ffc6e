package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/internal/clock"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newQueuedDispatcher(t *testing.T) (*QueuedDispatcher, *clock.FakeClock) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewQueuedDispatcher(zap.NewNop(), client, clk, nil), clk
}

func TestQueuedDispatchOnce_EnqueuesWaitingJobs(t *testing.T) {
	d, clk := newQueuedDispatcher(t)
	ctx := context.Background()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	ids := []snowflake.ID{node.Generate(), node.Generate()}

	result, err := d.DispatchOnce(ctx, ids, 5000)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Queued)
	assert.Equal(t, 0, result.Created)
	assert.True(t, result.Enabled)

	jobs, err := d.ListJobs(ctx, QueueProbeCheck, StateWaiting, 50)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	seen := map[snowflake.ID]bool{}
	for _, job := range jobs {
		assert.Equal(t, QueueProbeCheck, job.Queue)
		assert.Equal(t, StateWaiting, job.State)
		assert.Equal(t, 5000, job.TimeoutMs)
		assert.Equal(t, 1, job.Attempts)
		assert.Equal(t, clk.Now().UTC(), job.EnqueuedAt.UTC())
		seen[job.ProviderID] = true
	}
	assert.True(t, seen[ids[0]])
	assert.True(t, seen[ids[1]])
}

func TestQueuedListJobs_Validation(t *testing.T) {
	d, _ := newQueuedDispatcher(t)
	ctx := context.Background()

	_, err := d.ListJobs(ctx, "invoices", StateWaiting, 10)
	assert.ErrorIs(t, err, ErrUnknownQueue)

	_, err = d.ListJobs(ctx, QueueProbeCheck, JobState("paused"), 10)
	assert.Error(t, err)

	// Completed jobs are removed on completion.
	jobs, err := d.ListJobs(ctx, QueueProbeCheck, StateCompleted, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestQueuedNextWaiting_MovesToActive(t *testing.T) {
	d, _ := newQueuedDispatcher(t)
	ctx := context.Background()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	_, err = d.DispatchOnce(ctx, []snowflake.ID{node.Generate()}, 3000)
	require.NoError(t, err)

	job, err := d.NextWaiting(ctx, QueueProbeCheck, 100*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, StateActive, job.State)

	waiting, err := d.ListJobs(ctx, QueueProbeCheck, StateWaiting, 10)
	require.NoError(t, err)
	assert.Empty(t, waiting)

	active, err := d.ListJobs(ctx, QueueProbeCheck, StateActive, 10)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, job.ID, active[0].ID)
}

func TestQueuedComplete_RemovesJobEntirely(t *testing.T) {
	d, _ := newQueuedDispatcher(t)
	ctx := context.Background()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	_, err = d.DispatchOnce(ctx, []snowflake.ID{node.Generate()}, 3000)
	require.NoError(t, err)

	job, err := d.NextWaiting(ctx, QueueProbeCheck, 100*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, d.Complete(ctx, job))

	active, err := d.ListJobs(ctx, QueueProbeCheck, StateActive, 10)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = d.RetryJob(ctx, QueueProbeCheck, job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestQueuedFail_RetainsForRetry(t *testing.T) {
	d, _ := newQueuedDispatcher(t)
	ctx := context.Background()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	_, err = d.DispatchOnce(ctx, []snowflake.ID{node.Generate()}, 3000)
	require.NoError(t, err)

	job, err := d.NextWaiting(ctx, QueueProbeCheck, 100*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, d.Fail(ctx, job, errors.New("probe timed out")))

	failed, err := d.ListJobs(ctx, QueueProbeCheck, StateFailed, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, StateFailed, failed[0].State)
	require.NotNil(t, failed[0].Error)
	assert.Equal(t, "probe timed out", *failed[0].Error)
	assert.NotNil(t, failed[0].FinishedAt)

	retried, err := d.RetryJob(ctx, QueueProbeCheck, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StateWaiting, retried.State)
	assert.Equal(t, 2, retried.Attempts)
	assert.Nil(t, retried.Error)
	assert.Nil(t, retried.FinishedAt)

	failed, err = d.ListJobs(ctx, QueueProbeCheck, StateFailed, 10)
	require.NoError(t, err)
	assert.Empty(t, failed)

	waiting, err := d.ListJobs(ctx, QueueProbeCheck, StateWaiting, 10)
	require.NoError(t, err)
	require.Len(t, waiting, 1)
	assert.Equal(t, job.ID, waiting[0].ID)
}

func TestQueuedRetryJob_UnknownQueue(t *testing.T) {
	d, _ := newQueuedDispatcher(t)

	_, err := d.RetryJob(context.Background(), "invoices", "abc")
	assert.ErrorIs(t, err, ErrUnknownQueue)
}

func TestQueuedRecurringSweep_UpsertAndCancel(t *testing.T) {
	d, _ := newQueuedDispatcher(t)
	ctx := context.Background()

	interval, err := d.RecurringSweepInterval(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, interval)

	require.NoError(t, d.EnsureRecurringSweep(ctx, 30))
	interval, err = d.RecurringSweepInterval(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, interval)

	// Re-installing replaces the schedule instead of duplicating it.
	require.NoError(t, d.EnsureRecurringSweep(ctx, 45))
	interval, err = d.RecurringSweepInterval(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, interval)

	require.NoError(t, d.CancelRecurringSweep(ctx))
	interval, err = d.RecurringSweepInterval(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, interval)
}

func TestQueuedEnqueueSweep(t *testing.T) {
	d, _ := newQueuedDispatcher(t)
	ctx := context.Background()

	require.NoError(t, d.EnqueueSweep(ctx))

	jobs, err := d.ListJobs(ctx, QueueProbeSweep, StateWaiting, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, QueueProbeSweep, jobs[0].Queue)
	assert.Equal(t, snowflake.ID(0), jobs[0].ProviderID)
}
