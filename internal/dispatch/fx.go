package dispatch

import (
	"context"

	"github.com/providerpulse/providerpulse/internal/clock"
	"github.com/providerpulse/providerpulse/internal/config"
	"github.com/providerpulse/providerpulse/internal/observability/metrics"
	probedomain "github.com/providerpulse/providerpulse/internal/probe/domain"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("dispatch",
	fx.Provide(provideRedis),
	fx.Provide(provideRunner),
	fx.Provide(provideDispatcher),
	fx.Provide(NewSweepLocker),
	fx.Provide(NewConsumer),
)

func provideRedis(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		log.Info("redis url not set, probe dispatch runs inline")
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func provideRunner(cfg config.Config, clk clock.Clock) Runner {
	if cfg.ProbeRunner == "health" {
		return NewHealthCheckRunner(clk)
	}
	return NewSimulatedRunner(clk.Now().UnixNano())
}

func provideDispatcher(
	log *zap.Logger,
	client *redis.Client,
	clk clock.Clock,
	m *metrics.Dispatch,
	runner Runner,
	providers providerdomain.Service,
	probes probedomain.Service,
) (Dispatcher, *QueuedDispatcher) {
	if client == nil {
		return NewInlineDispatcher(log, runner, providers, probes, m), nil
	}
	queued := NewQueuedDispatcher(log, client, clk, m)
	return queued, queued
}
