package logger

import (
	"strings"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// ParseLevel parses a level name, falling back to info on error
func ParseLevel(levelStr string) (zerolog.Level, error) {
	if strings.TrimSpace(levelStr) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return zerolog.InfoLevel, errorwrapper.WrapError(err, "invalid log level")
	}
	return level, nil
}

// ParseFormat maps a format name to LogFormat; unknown names mean console
func ParseFormat(formatStr string) LogFormat {
	switch strings.ToLower(formatStr) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatConsole
	}
}
