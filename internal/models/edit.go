package models

import (
	"encoding/json"
	"fmt"
)

// Edit is one requested change: replace the half-open byte range
// [ByteStart, ByteEnd) of the original file with Replacement.
type Edit struct {
	ByteStart   uint32
	ByteEnd     uint32
	Replacement []byte
}

// Len returns the number of original bytes the edit replaces.
func (e Edit) Len() uint32 {
	if e.ByteEnd < e.ByteStart {
		return 0
	}
	return e.ByteEnd - e.ByteStart
}

// EditTuple is the wire form of an Edit: [byteOffsetStart, byteOffsetEnd, replacementText].
type EditTuple struct {
	ByteOffsetStart uint32
	ByteOffsetEnd   uint32
	ReplacementText string
}

// ToEdit converts the wire tuple into an Edit.
func (t EditTuple) ToEdit() Edit {
	return Edit{
		ByteStart:   t.ByteOffsetStart,
		ByteEnd:     t.ByteOffsetEnd,
		Replacement: []byte(t.ReplacementText),
	}
}

// MarshalJSON encodes the tuple as a three element array.
func (t EditTuple) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{t.ByteOffsetStart, t.ByteOffsetEnd, t.ReplacementText})
}

// UnmarshalJSON decodes a three element array of (number, number, string).
func (t *EditTuple) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("edit tuple must be an array: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("edit tuple must have 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &t.ByteOffsetStart); err != nil {
		return fmt.Errorf("edit tuple start: %w", err)
	}
	if err := json.Unmarshal(raw[1], &t.ByteOffsetEnd); err != nil {
		return fmt.Errorf("edit tuple end: %w", err)
	}
	if err := json.Unmarshal(raw[2], &t.ReplacementText); err != nil {
		return fmt.Errorf("edit tuple replacement: %w", err)
	}
	return nil
}

// PatchRequest maps file paths, relative to ProjectPath, to the edits to apply.
type PatchRequest struct {
	ProjectPath  string                 `json:"projectPath" validate:"required"`
	Replacements map[string][]EditTuple `json:"replacements" validate:"required,dive,keys,required,endkeys"`
}
