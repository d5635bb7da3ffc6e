package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/providerpulse/providerpulse/internal/config"
	"github.com/providerpulse/providerpulse/internal/observability/logger"
	"github.com/providerpulse/providerpulse/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		provideDispatchMetrics,
	),
)

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName:         cfg.AppName,
		Environment:         cfg.Environment,
		Version:             cfg.AppVersion,
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		Debug:               cfg.Debug(),
		IncludeCaller:       true,
		IncludeStackOnError: cfg.Debug(),
	}
}

func provideDispatchMetrics() *metrics.Dispatch {
	return metrics.NewDispatch(prometheus.DefaultRegisterer)
}
