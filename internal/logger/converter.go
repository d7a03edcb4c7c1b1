package logger

import (
	"github.com/aleister1102/sgpatch/internal/config"
)

// FromConfig converts the application's log section into a LoggerConfig.
// An invalid level falls back to info; ValidateConfig reports it separately.
func FromConfig(cfg config.LogConfig) LoggerConfig {
	level, _ := ParseLevel(cfg.LogLevel)

	out := DefaultLoggerConfig()
	out.Level = level
	out.Format = ParseFormat(cfg.LogFormat)
	out.EnableFile = cfg.LogFile != ""
	out.FilePath = cfg.LogFile
	if cfg.MaxLogSizeMB > 0 {
		out.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		out.MaxBackups = cfg.MaxLogBackups
	}
	return out
}
