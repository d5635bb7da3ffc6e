package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/providerpulse/providerpulse/internal/clock"
	"github.com/providerpulse/providerpulse/internal/dispatch"
	"github.com/providerpulse/providerpulse/internal/observability/metrics"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	settingsdomain "github.com/providerpulse/providerpulse/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	tickInterval = time.Minute
	lockKey      = "sweep:lock"
	lockTTL      = time.Minute
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Settings   settingsdomain.Service
	Providers  providerdomain.Service
	Dispatcher dispatch.Dispatcher
	Queued     *dispatch.QueuedDispatcher `optional:"true"`
	Locker     *dispatch.SweepLocker      `optional:"true"`
	Metrics    *metrics.Dispatch
}

// Executor fires recurring probe sweeps. Each firing re-reads scheduler
// settings so interval, timeout and batch changes take effect without a
// restart.
type Executor struct {
	log        *zap.Logger
	clock      clock.Clock
	settings   settingsdomain.Service
	providers  providerdomain.Service
	dispatcher dispatch.Dispatcher
	queued     *dispatch.QueuedDispatcher
	locker     *dispatch.SweepLocker
	metrics    *metrics.Dispatch

	mu      sync.Mutex
	nextDue time.Time
}

func New(p Params) *Executor {
	e := &Executor{
		log:        p.Log.Named("sweep"),
		clock:      p.Clock,
		settings:   p.Settings,
		providers:  p.Providers,
		dispatcher: p.Dispatcher,
		queued:     p.Queued,
		locker:     p.Locker,
		metrics:    p.Metrics,
	}
	p.Settings.OnSchedulerSaved(e.applySchedule)
	return e
}

// applySchedule keeps the installed recurring sweep in step with saved
// settings: enabling installs or replaces it, disabling removes it.
func (e *Executor) applySchedule(ctx context.Context, s settingsdomain.SchedulerSettings) error {
	if !s.Enabled {
		e.mu.Lock()
		e.nextDue = time.Time{}
		e.mu.Unlock()
		return e.dispatcher.CancelRecurringSweep(ctx)
	}

	e.mu.Lock()
	e.nextDue = e.clock.Now().Add(time.Duration(s.IntervalMinutes) * time.Minute)
	e.mu.Unlock()
	return e.dispatcher.EnsureRecurringSweep(ctx, s.IntervalMinutes)
}

// Sweep selects due providers and dispatches one check per provider.
func (e *Executor) Sweep(ctx context.Context) error {
	start := e.clock.Now()
	settings, err := e.settings.GetSchedulerSettings(ctx)
	if err != nil {
		e.metrics.ObserveSweep(0, err)
		return err
	}
	if !settings.Enabled {
		return nil
	}

	ids, err := e.providers.ActiveIDs(ctx, settings.MaxJobsPerSweep)
	if err != nil {
		e.metrics.ObserveSweep(e.clock.Now().Sub(start), err)
		return err
	}

	result, err := e.dispatcher.DispatchOnce(ctx, ids, settings.TimeoutMs)
	e.metrics.ObserveSweep(e.clock.Now().Sub(start), err)
	if err != nil {
		return err
	}

	e.log.Info("sweep dispatched",
		zap.Int("providers", len(ids)),
		zap.Int("queued", result.Queued),
		zap.Int("created", result.Created),
	)
	return nil
}

// RunOnce fires the sweep if it is due. On the queued backend the firing
// enqueues a sweep job under a cross-replica lock; inline it sweeps in
// process.
func (e *Executor) RunOnce(ctx context.Context) error {
	settings, err := e.settings.GetSchedulerSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.Enabled {
		return nil
	}

	interval := time.Duration(settings.IntervalMinutes) * time.Minute
	now := e.clock.Now()

	e.mu.Lock()
	if e.nextDue.IsZero() {
		e.nextDue = now.Add(interval)
		e.mu.Unlock()
		return nil
	}
	if now.Before(e.nextDue) {
		e.mu.Unlock()
		return nil
	}
	e.nextDue = now.Add(interval)
	e.mu.Unlock()

	if e.queued != nil {
		token, ok, err := e.locker.TryLock(ctx, lockKey, lockTTL)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		defer func() {
			if err := e.locker.Release(ctx, lockKey, token); err != nil {
				e.log.Warn("sweep lock release failed", zap.Error(err))
			}
		}()
		return e.queued.EnqueueSweep(ctx)
	}
	return e.Sweep(ctx)
}

func (e *Executor) RunForever(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		if err := e.RunOnce(ctx); err != nil {
			e.log.Warn("sweep run failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
