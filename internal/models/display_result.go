package models

import (
	"encoding/json"
	"fmt"
)

// ChangeMarker classifies a rendered line.
type ChangeMarker int

const (
	// MarkerNone marks a plain excerpt line with no diff attached.
	MarkerNone ChangeMarker = iota
	// MarkerUnchanged marks a context line inside a diff.
	MarkerUnchanged
	// MarkerAdded marks a line present only after the replacement.
	MarkerAdded
	// MarkerRemoved marks a line present only before the replacement.
	MarkerRemoved
)

// Sign returns the wire sign for the marker, or "" when it has none.
func (m ChangeMarker) Sign() string {
	switch m {
	case MarkerAdded:
		return "+"
	case MarkerRemoved:
		return "-"
	default:
		return ""
	}
}

// MarshalJSON encodes added/removed as "+"/"-" and everything else as null.
func (m ChangeMarker) MarshalJSON() ([]byte, error) {
	if s := m.Sign(); s != "" {
		return json.Marshal(s)
	}
	return []byte("null"), nil
}

// UnmarshalJSON is the inverse of MarshalJSON. A null sign decodes to MarkerNone.
func (m *ChangeMarker) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch {
	case s == nil:
		*m = MarkerNone
	case *s == "+":
		*m = MarkerAdded
	case *s == "-":
		*m = MarkerRemoved
	default:
		return fmt.Errorf("unknown diff sign %q", *s)
	}
	return nil
}

// DiffLine is one rendered line of a match preview.
type DiffLine struct {
	BeforeLine *uint32      `json:"bln"`
	AfterLine  *uint32      `json:"aln"`
	Marker     ChangeMarker `json:"sign"`
	Text       string       `json:"val"`
}

// DisplayResult is a match prepared for presentation.
type DisplayResult struct {
	ID             string     `json:"id"`
	FormattedLines []DiffLine `json:"formattedLines"`
	File           string     `json:"file"`
	Replacement    string     `json:"replacement"`
	ByteStart      uint32     `json:"byteStart"`
	ByteEnd        uint32     `json:"byteEnd"`
}

// FileResults groups the display results of one file. It is encoded as a
// two element array [filePath, results].
type FileResults struct {
	FilePath string
	Results  []DisplayResult
}

// MarshalJSON encodes the group as [filePath, results].
func (f FileResults) MarshalJSON() ([]byte, error) {
	results := f.Results
	if results == nil {
		results = []DisplayResult{}
	}
	return json.Marshal([]any{f.FilePath, results})
}

// UnmarshalJSON decodes a [filePath, results] pair.
func (f *FileResults) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("file results must have 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &f.FilePath); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &f.Results)
}

// LineNumber returns a pointer to n, for populating optional line numbers.
func LineNumber(n uint32) *uint32 {
	return &n
}
