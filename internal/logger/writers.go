package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// WriterStrategy defines interface for creating log writers
type WriterStrategy interface {
	CreateWriter(output io.Writer) io.Writer
}

// JSONWriterStrategy writes raw zerolog JSON
type JSONWriterStrategy struct{}

func (jws *JSONWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return output
}

// ConsoleWriterStrategy writes human readable lines, optionally colored
type ConsoleWriterStrategy struct {
	NoColor bool
}

func (cws *ConsoleWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
		NoColor:    cws.NoColor,
	}
}

// WriterFactory creates writers based on format
type WriterFactory struct {
	console io.Writer
}

// NewWriterFactory creates a factory whose console output goes to stderr
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{console: os.Stderr}
}

func (wf *WriterFactory) strategy(format LogFormat, toFile bool) WriterStrategy {
	switch format {
	case FormatJSON:
		return &JSONWriterStrategy{}
	case FormatText:
		return &ConsoleWriterStrategy{NoColor: true}
	default:
		return &ConsoleWriterStrategy{NoColor: toFile}
	}
}

// CreateConsoleWriter creates the console writer
func (wf *WriterFactory) CreateConsoleWriter(format LogFormat) io.Writer {
	return wf.strategy(format, false).CreateWriter(wf.console)
}

// CreateFileWriter creates a rotating file writer. The returned closer
// releases the underlying file.
func (wf *WriterFactory) CreateFileWriter(cfg LoggerConfig) (io.Writer, io.Closer) {
	_ = os.MkdirAll(filepath.Dir(cfg.FilePath), 0755)

	rotating := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}

	return wf.strategy(cfg.Format, true).CreateWriter(rotating), rotating
}
