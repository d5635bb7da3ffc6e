package main

import (
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
	"github.com/providerpulse/providerpulse/internal/server"
	"github.com/providerpulse/providerpulse/internal/settings"
	"github.com/providerpulse/providerpulse/internal/sweep"
	"github.com/providerpulse/providerpulse/pkg/db"
	"go.uber.org/fx"
)

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

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
