package app

import (
	"io"
	"log/slog"

	"github.com/felixgeelhaar/huddle/pkg/config"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

// NewLogger builds the process logger from configuration.
func NewLogger(cfg *config.Config, service string, out io.Writer) *slog.Logger {
	return observability.NewLogger(LogConfig(cfg, service, out))
}

// LogConfig maps configuration onto observability.LogConfig.
func LogConfig(cfg *config.Config, service string, out io.Writer) observability.LogConfig {
	return observability.LogConfig{
		Level:  observability.LogLevel(cfg.LogLevel),
		Format: observability.LogFormat(cfg.ResolvedLogFormat()),
		Output: out,
		File: observability.LogFileConfig{
			Path:       cfg.LogFile,
			MaxSizeMB:  cfg.LogFileMaxSizeMB,
			MaxBackups: cfg.LogFileMaxBackups,
			MaxAgeDays: cfg.LogFileMaxAgeDays,
			Compress:   cfg.LogFileCompress,
		},
		AddSource:      cfg.IsProduction(),
		ServiceName:    service,
		ServiceVersion: cfg.Version,
	}
}
