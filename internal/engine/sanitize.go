package engine

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// decorationGlyph prefixes the engine's hint lines.
const decorationGlyph = "╰▻"

// SanitizeDiagnostic reduces engine stderr to its last non-empty line with
// terminal escapes and decoration removed.
func SanitizeDiagnostic(stderr string) string {
	var last string
	for _, line := range strings.Split(stderr, "\n") {
		if strings.TrimSpace(ansi.Strip(line)) != "" {
			last = line
		}
	}

	cleaned := ansi.Strip(last)
	cleaned = strings.ReplaceAll(cleaned, decorationGlyph, "")
	return strings.TrimSpace(cleaned)
}

func looksLikeError(diagnostic string) bool {
	return strings.HasPrefix(strings.ToLower(diagnostic), "error")
}
