package dispatch

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/internal/observability/metrics"
	probedomain "github.com/providerpulse/providerpulse/internal/probe/domain"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	"go.uber.org/zap"
)

// InlineDispatcher runs probes synchronously in the calling process. It is
// the fallback when no queue backend is configured; job listing and retry
// have nothing to report in this mode.
type InlineDispatcher struct {
	log       *zap.Logger
	runner    Runner
	providers providerdomain.Service
	probes    probedomain.Service
	metrics   *metrics.Dispatch
}

func NewInlineDispatcher(log *zap.Logger, runner Runner, providers providerdomain.Service, probes probedomain.Service, m *metrics.Dispatch) *InlineDispatcher {
	return &InlineDispatcher{
		log:       log.Named("dispatch.inline"),
		runner:    runner,
		providers: providers,
		probes:    probes,
		metrics:   m,
	}
}

func (d *InlineDispatcher) Enabled() bool { return false }

func (d *InlineDispatcher) DispatchOnce(ctx context.Context, providerIDs []snowflake.ID, timeoutMs int) (*Result, error) {
	result := &Result{Enabled: false}
	if len(providerIDs) == 0 {
		return result, nil
	}

	rows, err := d.providers.ListByIDs(ctx, providerIDs)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		outcome := d.runner.Probe(ctx, Target{
			ProviderID: row.ID,
			Website:    row.Website,
			TimeoutMs:  timeoutMs,
		})
		_, err := d.probes.Record(ctx, probedomain.RecordInput{
			ProviderID:     row.ID,
			ProbeType:      probedomain.ProbeHealthCheck,
			ProbeMethod:    probedomain.MethodScheduled,
			IsSuccess:      outcome.Success,
			ResponseTimeMs: outcome.ResponseTimeMs,
			StatusCode:     outcome.StatusCode,
			ErrorMessage:   outcome.ErrorMessage,
		})
		if err != nil {
			d.metrics.IncDispatchError()
			d.log.Error("inline probe record failed",
				zap.String("provider_id", row.ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Created++
	}

	d.metrics.AddProbesCreated("inline", result.Created)
	return result, nil
}

func (d *InlineDispatcher) ListJobs(_ context.Context, _ string, _ JobState, _ int) ([]Job, error) {
	return nil, ErrBackendDisabled
}

func (d *InlineDispatcher) RetryJob(_ context.Context, _, _ string) (*Job, error) {
	return nil, ErrBackendDisabled
}

func (d *InlineDispatcher) EnsureRecurringSweep(_ context.Context, _ int) error {
	return nil
}

func (d *InlineDispatcher) CancelRecurringSweep(_ context.Context) error {
	return nil
}
