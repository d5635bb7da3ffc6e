package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/providerpulse/providerpulse/internal/catalog"
	"github.com/providerpulse/providerpulse/internal/clock"
	"github.com/providerpulse/providerpulse/internal/config"
	"github.com/providerpulse/providerpulse/internal/dispatch"
	"github.com/providerpulse/providerpulse/internal/migration"
	"github.com/providerpulse/providerpulse/internal/observability"
	"github.com/providerpulse/providerpulse/internal/pricing"
	"github.com/providerpulse/providerpulse/internal/probe"
	"github.com/providerpulse/providerpulse/internal/provider"
	"github.com/providerpulse/providerpulse/internal/review"
	"github.com/providerpulse/providerpulse/internal/scoring"
	"github.com/providerpulse/providerpulse/internal/settings"
	"github.com/providerpulse/providerpulse/internal/sweep"
	"github.com/providerpulse/providerpulse/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// The worker drains the probe queues and fires the recurring sweep. It
// runs no HTTP server; deploy it alongside cmd/providerpulse when a
// redis backend is configured.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		provider.Module,
		catalog.Module,
		review.Module,
		settings.Module,
		probe.Module,
		pricing.Module,
		scoring.Module,
		dispatch.Module,
		sweep.Module,

		fx.Invoke(runConsumer),
	)
	app.Run()
}

func runConsumer(lc fx.Lifecycle, consumer *dispatch.Consumer, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
					log.Error("consumer stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
