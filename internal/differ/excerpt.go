package differ

import (
	"strings"
	"unicode/utf8"

	"github.com/aleister1102/sgpatch/internal/models"
)

// SpliceReplacement returns the match excerpt with the matched text replaced
// at the match's own position. The position is taken from the leading
// character count, then from the start column (as characters, then as
// bytes), then from the first occurrence of the matched text. ok is false when
// none of these locate the text, in which case the excerpt is returned as is.
func SpliceReplacement(record models.MatchRecord) (spliced string, ok bool) {
	lines := record.Lines
	text := record.Text
	replacement := ""
	if record.Replacement != nil {
		replacement = *record.Replacement
	}

	candidates := make([]int, 0, 3)
	if off, found := runeOffset(lines, int(record.CharCount.Leading)); found {
		candidates = append(candidates, off)
	}
	if off, found := runeOffset(lines, record.Range.Start.Column); found {
		candidates = append(candidates, off)
	}
	candidates = append(candidates, record.Range.Start.Column)

	for _, off := range candidates {
		if off < 0 || off > len(lines) {
			continue
		}
		if strings.HasPrefix(lines[off:], text) {
			return lines[:off] + replacement + lines[off+len(text):], true
		}
	}

	if idx := strings.Index(lines, text); idx >= 0 {
		return lines[:idx] + replacement + lines[idx+len(text):], true
	}

	return lines, false
}

// runeOffset converts a character count into a byte offset within s.
func runeOffset(s string, chars int) (int, bool) {
	if chars < 0 {
		return 0, false
	}
	off := 0
	for i := 0; i < chars; i++ {
		if off >= len(s) {
			return 0, false
		}
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off, true
}
