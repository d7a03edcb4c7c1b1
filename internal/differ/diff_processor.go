package differ

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineChange is one line of a line-level diff. Text keeps its trailing
// newline, if it had one.
type LineChange struct {
	Op   diffmatchpatch.Operation
	Text string
}

// DiffProcessor handles the core diffing logic
type DiffProcessor struct {
	dmp    *diffmatchpatch.DiffMatchPatch
	config DiffConfig
}

// NewDiffProcessor creates a new diff processor
func NewDiffProcessor(config DiffConfig) *DiffProcessor {
	return &DiffProcessor{
		dmp:    diffmatchpatch.New(),
		config: config,
	}
}

// DiffLines compares before and after line by line. Every line of both
// inputs appears exactly once in the result, in order.
func (dp *DiffProcessor) DiffLines(before, after string) []LineChange {
	encoder := newLineEncoder()
	runes1 := encoder.encode(before)
	runes2 := encoder.encode(after)

	diffs := dp.dmp.DiffMainRunes(runes1, runes2, false)
	if dp.config.EnableSemanticCleanup {
		diffs = dp.dmp.DiffCleanupSemantic(diffs)
	}

	var changes []LineChange
	for _, diff := range diffs {
		for _, r := range diff.Text {
			changes = append(changes, LineChange{Op: diff.Type, Text: encoder.decode(r)})
		}
	}
	return changes
}

// lineEncoder maps each distinct line to a single rune so the character
// diff runs over whole lines. Surrogate code points are skipped because they
// do not survive a round trip through string.
type lineEncoder struct {
	lines []string
	index map[string]rune
}

func newLineEncoder() *lineEncoder {
	return &lineEncoder{index: make(map[string]rune)}
}

func (le *lineEncoder) encode(text string) []rune {
	if text == "" {
		return nil
	}
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	runes := make([]rune, 0, len(parts))
	for _, line := range parts {
		r, ok := le.index[line]
		if !ok {
			r = indexToRune(len(le.lines))
			le.lines = append(le.lines, line)
			le.index[line] = r
		}
		runes = append(runes, r)
	}
	return runes
}

func (le *lineEncoder) decode(r rune) string {
	i := runeToIndex(r)
	if i < 0 || i >= len(le.lines) {
		return ""
	}
	return le.lines[i]
}

const surrogateStart, surrogateEnd = 0xD800, 0xE000

func indexToRune(i int) rune {
	r := rune(i + 1)
	if r >= surrogateStart {
		r += surrogateEnd - surrogateStart
	}
	return r
}

func runeToIndex(r rune) int {
	if r >= surrogateEnd {
		r -= surrogateEnd - surrogateStart
	}
	return int(r) - 1
}

// DiffStatistics summarizes rendered diff lines
type DiffStatistics struct {
	LinesAdded     int
	LinesRemoved   int
	LinesUnchanged int
}

// IsIdentical reports whether nothing was added or removed
func (s DiffStatistics) IsIdentical() bool {
	return s.LinesAdded == 0 && s.LinesRemoved == 0
}

// Add accumulates other into s
func (s *DiffStatistics) Add(other DiffStatistics) {
	s.LinesAdded += other.LinesAdded
	s.LinesRemoved += other.LinesRemoved
	s.LinesUnchanged += other.LinesUnchanged
}
