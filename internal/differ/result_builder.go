package differ

import (
	"fmt"

	"github.com/aleister1102/sgpatch/internal/models"
)

// DisplayResultBuilder builds DisplayResult objects from engine matches
type DisplayResultBuilder struct {
	result models.DisplayResult
}

// NewDisplayResultBuilder seeds a result with the identity of record
func NewDisplayResultBuilder(record models.MatchRecord) *DisplayResultBuilder {
	start := record.Range.ByteOffset.Start
	end := record.Range.ByteOffset.End

	return &DisplayResultBuilder{
		result: models.DisplayResult{
			ID:        ResultID(record.File, start, end),
			File:      record.File,
			ByteStart: start,
			ByteEnd:   end,
		},
	}
}

// WithReplacement sets the proposed replacement ("" when there is none)
func (rb *DisplayResultBuilder) WithReplacement(replacement *string) *DisplayResultBuilder {
	if replacement != nil {
		rb.result.Replacement = *replacement
	}
	return rb
}

// WithLines sets the rendered lines
func (rb *DisplayResultBuilder) WithLines(lines []models.DiffLine) *DisplayResultBuilder {
	rb.result.FormattedLines = lines
	return rb
}

// Build creates the final DisplayResult
func (rb *DisplayResultBuilder) Build() models.DisplayResult {
	if rb.result.FormattedLines == nil {
		rb.result.FormattedLines = []models.DiffLine{}
	}
	return rb.result
}

// ResultID identifies a match by file and byte range
func ResultID(file string, start, end uint32) string {
	return fmt.Sprintf("%s:%d:%d", file, start, end)
}
