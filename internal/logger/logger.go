// Package logger builds the application's zerolog logger from configuration.
package logger

import (
	"errors"
	"io"

	"github.com/aleister1102/sgpatch/internal/config"
	"github.com/rs/zerolog"
)

// Logger represents the main logger with configuration
type Logger struct {
	zerolog zerolog.Logger
	config  LoggerConfig
	closers []io.Closer
}

// GetZerolog returns the underlying zerolog instance
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

// GetConfig returns the settings the logger was built with
func (l *Logger) GetConfig() LoggerConfig {
	return l.config
}

// Close flushes and closes file outputs
func (l *Logger) Close() error {
	var errs []error
	for _, c := range l.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// New creates a logger from the application log section
func New(cfg config.LogConfig) (*Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}
