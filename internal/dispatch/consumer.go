package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/internal/observability/metrics"
	probedomain "github.com/providerpulse/providerpulse/internal/probe/domain"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	"go.uber.org/zap"
)

const consumerPollWait = 5 * time.Second

// Consumer drains the probe queues in a worker process. Check jobs run
// the probe runner and persist one probe row; sweep jobs delegate to the
// sweep handler, which fans out fresh check jobs.
type Consumer struct {
	log       *zap.Logger
	queue     *QueuedDispatcher
	runner    Runner
	providers providerdomain.Service
	probes    probedomain.Service
	sweeper   SweepHandler
	metrics   *metrics.Dispatch
}

func NewConsumer(log *zap.Logger, queue *QueuedDispatcher, runner Runner, providers providerdomain.Service, probes probedomain.Service, sweeper SweepHandler, m *metrics.Dispatch) *Consumer {
	return &Consumer{
		log:       log.Named("dispatch.consumer"),
		queue:     queue,
		runner:    runner,
		providers: providers,
		probes:    probes,
		sweeper:   sweeper,
		metrics:   m,
	}
}

// Run blocks until ctx is done, alternating between the two queues.
func (c *Consumer) Run(ctx context.Context) error {
	if c.queue == nil {
		return ErrBackendDisabled
	}
	queues := []string{QueueProbeSweep, QueueProbeCheck}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, queue := range queues {
			if err := c.drainOne(ctx, queue); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				c.log.Error("queue poll failed", zap.String("queue", queue), zap.Error(err))
			}
		}
	}
}

func (c *Consumer) drainOne(ctx context.Context, queue string) error {
	job, err := c.queue.NextWaiting(ctx, queue, consumerPollWait)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}
	return c.Process(ctx, job)
}

// Process executes one job and settles its queue state.
func (c *Consumer) Process(ctx context.Context, job *Job) error {
	var err error
	switch job.Queue {
	case QueueProbeCheck:
		err = c.runCheck(ctx, job)
	case QueueProbeSweep:
		err = c.sweeper.Sweep(ctx)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownQueue, job.Queue)
	}

	if err != nil {
		c.metrics.IncDispatchError()
		c.log.Warn("job failed",
			zap.String("queue", job.Queue),
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return c.queue.Fail(ctx, job, err)
	}
	return c.queue.Complete(ctx, job)
}

func (c *Consumer) runCheck(ctx context.Context, job *Job) error {
	row, err := c.providers.ListByIDs(ctx, []snowflake.ID{job.ProviderID})
	if err != nil {
		return err
	}
	if len(row) == 0 {
		return probedomain.ErrProviderNotFound
	}
	provider := row[0]

	outcome := c.runner.Probe(ctx, Target{
		ProviderID: provider.ID,
		Website:    provider.Website,
		TimeoutMs:  job.TimeoutMs,
	})
	_, err = c.probes.Record(ctx, probedomain.RecordInput{
		ProviderID:     provider.ID,
		ProbeType:      probedomain.ProbeHealthCheck,
		ProbeMethod:    probedomain.MethodScheduled,
		IsSuccess:      outcome.Success,
		ResponseTimeMs: outcome.ResponseTimeMs,
		StatusCode:     outcome.StatusCode,
		ErrorMessage:   outcome.ErrorMessage,
	})
	if err != nil {
		return err
	}
	c.metrics.AddProbesCreated("queued", 1)
	return nil
}
