package logger

import (
	"io"
	stdlog "log"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/aleister1102/sgpatch/internal/config"
	"github.com/rs/zerolog"
)

// LoggerBuilder provides fluent interface for building loggers
type LoggerBuilder struct {
	config  LoggerConfig
	factory *WriterFactory
	extra   []io.Writer
}

// NewLoggerBuilder creates a new logger builder
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		config:  DefaultLoggerConfig(),
		factory: NewWriterFactory(),
	}
}

// WithConfig replaces the builder settings with the application log section
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	lb.config = FromConfig(cfg)
	return lb
}

func (lb *LoggerBuilder) WithLevel(level zerolog.Level) *LoggerBuilder {
	lb.config.Level = level
	return lb
}

func (lb *LoggerBuilder) WithFormat(format LogFormat) *LoggerBuilder {
	lb.config.Format = format
	return lb
}

func (lb *LoggerBuilder) WithConsole(enabled bool) *LoggerBuilder {
	lb.config.EnableConsole = enabled
	return lb
}

// WithFile enables rotated file output
func (lb *LoggerBuilder) WithFile(path string, maxSizeMB, maxBackups int) *LoggerBuilder {
	lb.config.EnableFile = true
	lb.config.FilePath = path
	lb.config.MaxSizeMB = maxSizeMB
	lb.config.MaxBackups = maxBackups
	return lb
}

// WithWriter adds an extra destination, written in the configured format
func (lb *LoggerBuilder) WithWriter(w io.Writer) *LoggerBuilder {
	lb.extra = append(lb.extra, w)
	return lb
}

// Build creates the logger instance and redirects the standard log package
// into it.
func (lb *LoggerBuilder) Build() (*Logger, error) {
	if err := lb.validateConfig(); err != nil {
		return nil, err
	}

	var writers []io.Writer
	var closers []io.Closer

	if lb.config.EnableConsole {
		writers = append(writers, lb.factory.CreateConsoleWriter(lb.config.Format))
	}
	if lb.config.EnableFile {
		w, c := lb.factory.CreateFileWriter(lb.config)
		writers = append(writers, w)
		closers = append(closers, c)
	}
	for _, w := range lb.extra {
		writers = append(writers, lb.factory.strategy(lb.config.Format, true).CreateWriter(w))
	}

	if len(writers) == 0 {
		return nil, errorwrapper.NewError("no output writers configured")
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lb.config.Level).
		With().
		Timestamp().
		Logger()

	stdlog.SetOutput(zl)
	stdlog.SetFlags(0)

	return &Logger{
		zerolog: zl,
		config:  lb.config,
		closers: closers,
	}, nil
}

func (lb *LoggerBuilder) validateConfig() error {
	if lb.config.EnableFile && lb.config.FilePath == "" {
		return errorwrapper.NewValidationError("file_path", lb.config.FilePath, "file path required when file logging enabled")
	}
	if lb.config.EnableFile && lb.config.MaxSizeMB <= 0 {
		return errorwrapper.NewValidationError("max_size_mb", lb.config.MaxSizeMB, "max size must be positive")
	}
	return nil
}
