package differ

import (
	"encoding/json"
	"testing"

	"github.com/aleister1102/sgpatch/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func record(file string, start, end uint32, line int, lines, text string, replacement *string) models.MatchRecord {
	return models.MatchRecord{
		Text: text,
		Range: models.Range{
			ByteOffset: models.ByteOffset{Start: start, End: end},
			Start:      models.Position{Line: line},
		},
		File:        file,
		Lines:       lines,
		Replacement: replacement,
		Language:    "TypeScript",
	}
}

func plain(n uint32, text string) models.DiffLine {
	return models.DiffLine{BeforeLine: models.LineNumber(n), Marker: models.MarkerNone, Text: text}
}

func removed(n uint32, text string) models.DiffLine {
	return models.DiffLine{BeforeLine: models.LineNumber(n), Marker: models.MarkerRemoved, Text: text}
}

func added(n uint32, text string) models.DiffLine {
	return models.DiffLine{AfterLine: models.LineNumber(n), Marker: models.MarkerAdded, Text: text}
}

func same(before, after uint32, text string) models.DiffLine {
	return models.DiffLine{BeforeLine: models.LineNumber(before), AfterLine: models.LineNumber(after), Marker: models.MarkerUnchanged, Text: text}
}

func newTestAggregator() *Aggregator {
	return NewAggregator(DefaultDiffConfig(), zerolog.Nop())
}

func TestAggregator_FormatLines_NoReplacement(t *testing.T) {
	tests := []struct {
		name     string
		rec      models.MatchRecord
		expected []models.DiffLine
	}{
		{
			name:     "two lines",
			rec:      record("a.ts", 0, 5, 4, "foo()\nbar()", "foo()\nbar()", nil),
			expected: []models.DiffLine{plain(5, "foo()"), plain(6, "bar()")},
		},
		{
			name:     "trailing newline yields empty last line",
			rec:      record("a.ts", 0, 1, 0, "a\n", "a", nil),
			expected: []models.DiffLine{plain(1, "a"), plain(2, "")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, newTestAggregator().FormatLines(tt.rec))
		})
	}
}

func TestAggregator_FormatLines_WithReplacement(t *testing.T) {
	singleLine := record("a.ts", 2, 16, 9, "  console.log(x);", "console.log(x)", strPtr("logger.info(x)"))
	singleLine.CharCount.Leading = 2

	tests := []struct {
		name     string
		rec      models.MatchRecord
		expected []models.DiffLine
	}{
		{
			name: "single line rewrite",
			rec:  singleLine,
			expected: []models.DiffLine{
				removed(10, "  console.log(x);"),
				added(10, "  logger.info(x);"),
			},
		},
		{
			name: "call rewrite",
			rec:  record("a.ts", 0, 9, 0, "call(foo)", "call(foo)", strPtr("call(bar)")),
			expected: []models.DiffLine{
				removed(1, "call(foo)"),
				added(1, "call(bar)"),
			},
		},
		{
			name: "multi-line match collapsed",
			rec:  record("a.ts", 0, 17, 0, "if (x) {\n  y();\n}", "if (x) {\n  y();\n}", strPtr("if (x) y();")),
			expected: []models.DiffLine{
				removed(1, "if (x) {"),
				removed(2, "  y();"),
				removed(3, "}"),
				added(1, "if (x) y();"),
			},
		},
		{
			name: "unchanged lines keep both numbers",
			rec:  record("a.ts", 0, 16, 0, "foo(\n  a,\n  b\n)", "foo(\n  a,\n  b\n)", strPtr("foo(\n  a,\n  c\n)")),
			expected: []models.DiffLine{
				same(1, 1, "foo("),
				same(2, 2, "  a,"),
				removed(3, "  b"),
				added(3, "  c"),
				same(4, 4, ")"),
			},
		},
		{
			name: "text missing from excerpt leaves it unchanged",
			rec:  record("a.ts", 0, 3, 2, "abc", "zzz", strPtr("y")),
			expected: []models.DiffLine{
				same(3, 3, "abc"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, newTestAggregator().FormatLines(tt.rec))
		})
	}
}

func TestAggregator_EmptyReplacementIsStillAReplacement(t *testing.T) {
	rec := record("a.ts", 0, 9, 0, "debugger;", "debugger;", strPtr(""))

	lines := newTestAggregator().FormatLines(rec)

	require.NotEmpty(t, lines)
	assert.Equal(t, removed(1, "debugger;"), lines[0])
	for _, line := range lines[1:] {
		assert.Equal(t, models.MarkerAdded, line.Marker)
	}
}

func TestAggregator_Aggregate_Grouping(t *testing.T) {
	records := []models.MatchRecord{
		record("src/b.ts", 3, 4, 0, "x", "x", nil),
		record("src/a.ts", 20, 25, 2, "hello", "hello", nil),
		record("src/a.ts", 5, 9, 0, "abcd", "abcd", nil),
		record("src/a.ts", 5, 7, 0, "ab", "ab", nil),
	}

	groups := newTestAggregator().Aggregate(records)

	require.Len(t, groups, 2)
	assert.Equal(t, "src/a.ts", groups[0].FilePath)
	assert.Equal(t, "src/b.ts", groups[1].FilePath)

	ids := []string{}
	for _, result := range groups[0].Results {
		ids = append(ids, result.ID)
	}
	assert.Equal(t, []string{"src/a.ts:5:7", "src/a.ts:5:9", "src/a.ts:20:25"}, ids)
	assert.Equal(t, "", groups[0].Results[0].Replacement)

	reversed := make([]models.MatchRecord, len(records))
	for i, rec := range records {
		reversed[len(records)-1-i] = rec
	}
	assert.Equal(t, groups, newTestAggregator().Aggregate(reversed))
}

func TestAggregator_Aggregate_Empty(t *testing.T) {
	groups := newTestAggregator().Aggregate(nil)
	assert.Empty(t, groups)

	data, err := json.Marshal(groups)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestAggregator_Aggregate_WireShape(t *testing.T) {
	groups := newTestAggregator().Aggregate([]models.MatchRecord{
		record("a.ts", 0, 1, 0, "a", "a", strPtr("b")),
	})

	data, err := json.Marshal(groups)
	require.NoError(t, err)
	assert.JSONEq(t, `[["a.ts", [{
		"id": "a.ts:0:1",
		"formattedLines": [
			{"bln": 1, "aln": null, "sign": "-", "val": "a"},
			{"bln": null, "aln": 1, "sign": "+", "val": "b"}
		],
		"file": "a.ts",
		"replacement": "b",
		"byteStart": 0,
		"byteEnd": 1
	}]]]`, string(data))
}

func TestStatsFromLines(t *testing.T) {
	groups := newTestAggregator().Aggregate([]models.MatchRecord{
		record("a.ts", 0, 16, 0, "foo(\n  a,\n  b\n)", "foo(\n  a,\n  b\n)", strPtr("foo(\n  a,\n  c\n)")),
		record("b.ts", 0, 1, 0, "q", "q", nil),
	})

	stats := StatsFromLines(groups)

	assert.Equal(t, 1, stats.LinesAdded)
	assert.Equal(t, 1, stats.LinesRemoved)
	assert.Equal(t, 4, stats.LinesUnchanged)
	assert.False(t, stats.IsIdentical())
}
