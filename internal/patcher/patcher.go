// Package patcher applies byte-range replacements to file contents.
//
// Every edit is expressed against the original buffer. ApplyEdits walks the
// edits left to right and keeps two running totals, the original bytes
// replaced so far and the replacement bytes emitted so far, so each edit can
// be translated into working-buffer coordinates without the caller having to
// account for earlier length changes.
package patcher

import (
	"cmp"
	"slices"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/aleister1102/sgpatch/internal/models"
)

// ApplyEdits returns original with every edit applied. Edits must be sorted
// by ByteStart and must not overlap; violations are reported as a
// MalformedEditError before any byte is changed. original is never modified.
func ApplyEdits(original []byte, edits []models.Edit) ([]byte, error) {
	working := make([]byte, len(original))
	copy(working, original)
	if len(edits) == 0 {
		return working, nil
	}

	if err := ValidateEdits(len(original), edits); err != nil {
		return nil, err
	}

	srcConsumed, dstProduced := 0, 0
	for i, edit := range edits {
		start := int(edit.ByteStart) + dstProduced - srcConsumed
		end := int(edit.ByteEnd) + dstProduced - srcConsumed
		if start < 0 || end < start || end > len(working) {
			return nil, errorwrapper.NewMalformedEditError(i, edit.ByteStart, edit.ByteEnd, "splice range outside working buffer")
		}

		working = slices.Replace(working, start, end, edit.Replacement...)

		srcConsumed += int(edit.ByteEnd) - int(edit.ByteStart)
		dstProduced += len(edit.Replacement)
	}

	return working, nil
}

// ValidateEdits checks that edits fit a buffer of size bytes, are ordered by
// ByteStart and do not overlap.
func ValidateEdits(size int, edits []models.Edit) error {
	for i, edit := range edits {
		if edit.ByteEnd < edit.ByteStart {
			return errorwrapper.NewMalformedEditError(i, edit.ByteStart, edit.ByteEnd, "end before start")
		}
		if int(edit.ByteEnd) > size {
			return errorwrapper.NewMalformedEditError(i, edit.ByteStart, edit.ByteEnd, "range exceeds buffer")
		}
		if i == 0 {
			continue
		}
		prev := edits[i-1]
		if edit.ByteStart < prev.ByteStart {
			return errorwrapper.NewMalformedEditError(i, edit.ByteStart, edit.ByteEnd, "edits not sorted by start offset")
		}
		if edit.ByteStart < prev.ByteEnd {
			return errorwrapper.NewMalformedEditError(i, edit.ByteStart, edit.ByteEnd, "overlaps previous edit")
		}
	}
	return nil
}

// SortEdits returns a copy of edits ordered by ByteStart, then ByteEnd.
// Equal edits keep their relative order.
func SortEdits(edits []models.Edit) []models.Edit {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b models.Edit) int {
		if c := cmp.Compare(a.ByteStart, b.ByteStart); c != 0 {
			return c
		}
		return cmp.Compare(a.ByteEnd, b.ByteEnd)
	})
	return sorted
}
