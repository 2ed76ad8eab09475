// Package observability wires logging and metrics into the fx graph.
package observability

import (
	"github.com/propworks/rentaudit/internal/config"
	"github.com/propworks/rentaudit/internal/observability/logger"
	"github.com/propworks/rentaudit/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		metrics.New,
	),
)

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Debug:       cfg.Debug(),
	}
}
