// Package differ turns structural-search matches into line-level previews
// grouped by file.
package differ

import (
	"cmp"
	"slices"
	"strings"

	"github.com/aleister1102/sgpatch/internal/models"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Aggregator renders match records and groups them by file
type Aggregator struct {
	processor *DiffProcessor
	logger    zerolog.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(config DiffConfig, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		processor: NewDiffProcessor(config),
		logger:    logger.With().Str("component", "Aggregator").Logger(),
	}
}

// Aggregate renders every record and groups the results by file. Files are
// ordered by name and results within a file by byte range, so the output
// does not depend on the order of records.
func (a *Aggregator) Aggregate(records []models.MatchRecord) []models.FileResults {
	byFile := make(map[string][]models.DisplayResult)
	for _, record := range records {
		byFile[record.File] = append(byFile[record.File], a.Render(record))
	}

	groups := make([]models.FileResults, 0, len(byFile))
	for file, results := range byFile {
		slices.SortStableFunc(results, func(x, y models.DisplayResult) int {
			if c := cmp.Compare(x.ByteStart, y.ByteStart); c != 0 {
				return c
			}
			return cmp.Compare(x.ByteEnd, y.ByteEnd)
		})
		groups = append(groups, models.FileResults{FilePath: file, Results: results})
	}
	slices.SortFunc(groups, func(x, y models.FileResults) int {
		return strings.Compare(x.FilePath, y.FilePath)
	})

	a.logger.Debug().
		Int("records", len(records)).
		Int("files", len(groups)).
		Msg("Aggregated match records")

	return groups
}

// Render converts one record into a display result
func (a *Aggregator) Render(record models.MatchRecord) models.DisplayResult {
	return NewDisplayResultBuilder(record).
		WithReplacement(record.Replacement).
		WithLines(a.FormatLines(record)).
		Build()
}

// FormatLines produces the rendered lines of a record. Without a
// replacement every excerpt line is listed with its original line number;
// with one, the excerpt is diffed against the rewritten excerpt.
func (a *Aggregator) FormatLines(record models.MatchRecord) []models.DiffLine {
	startLineNo := uint32(record.Range.Start.Line + 1)

	if !record.HasReplacement() {
		parts := strings.Split(record.Lines, "\n")
		lines := make([]models.DiffLine, 0, len(parts))
		for i, part := range parts {
			lines = append(lines, models.DiffLine{
				BeforeLine: models.LineNumber(startLineNo + uint32(i)),
				Marker:     models.MarkerNone,
				Text:       part,
			})
		}
		return lines
	}

	after, ok := SpliceReplacement(record)
	if !ok {
		a.logger.Debug().
			Str("file", record.File).
			Uint32("byte_start", record.Range.ByteOffset.Start).
			Msg("Matched text not found in excerpt, diff will be empty")
	}

	changes := a.processor.DiffLines(record.Lines, after)
	lines := make([]models.DiffLine, 0, len(changes))
	var oldIndex, newIndex uint32
	for _, change := range changes {
		line := models.DiffLine{Text: strings.TrimSuffix(change.Text, "\n")}
		switch change.Op {
		case diffmatchpatch.DiffDelete:
			line.BeforeLine = models.LineNumber(startLineNo + oldIndex)
			line.Marker = models.MarkerRemoved
			oldIndex++
		case diffmatchpatch.DiffInsert:
			line.AfterLine = models.LineNumber(startLineNo + newIndex)
			line.Marker = models.MarkerAdded
			newIndex++
		default:
			line.BeforeLine = models.LineNumber(startLineNo + oldIndex)
			line.AfterLine = models.LineNumber(startLineNo + newIndex)
			line.Marker = models.MarkerUnchanged
			oldIndex++
			newIndex++
		}
		lines = append(lines, line)
	}
	return lines
}

// StatsFromLines counts added, removed and unchanged lines across results
func StatsFromLines(groups []models.FileResults) DiffStatistics {
	stats := DiffStatistics{}
	for _, group := range groups {
		for _, result := range group.Results {
			for _, line := range result.FormattedLines {
				switch line.Marker {
				case models.MarkerAdded:
					stats.LinesAdded++
				case models.MarkerRemoved:
					stats.LinesRemoved++
				default:
					stats.LinesUnchanged++
				}
			}
		}
	}
	return stats
}
