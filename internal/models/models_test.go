package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditTuple_UnmarshalJSON(t *testing.T) {
	var tuple EditTuple
	require.NoError(t, json.Unmarshal([]byte(`[1, 3, "XYZ"]`), &tuple))
	assert.Equal(t, EditTuple{ByteOffsetStart: 1, ByteOffsetEnd: 3, ReplacementText: "XYZ"}, tuple)
	assert.Equal(t, Edit{ByteStart: 1, ByteEnd: 3, Replacement: []byte("XYZ")}, tuple.ToEdit())

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"object", `{"start":1}`, "edit tuple must be an array"},
		{"too short", `[1, 2]`, "edit tuple must have 3 elements, got 2"},
		{"negative start", `[-1, 2, ""]`, "edit tuple start"},
		{"string end", `[1, "2", ""]`, "edit tuple end"},
		{"numeric replacement", `[1, 2, 3]`, "edit tuple replacement"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bad EditTuple
			assert.ErrorContains(t, json.Unmarshal([]byte(tt.input), &bad), tt.wantErr)
		})
	}
}

func TestPatchRequest_WireShape(t *testing.T) {
	var req PatchRequest
	body := `{"projectPath":"/p","replacements":{"src/a.ts":[[0,4,""],[4,8,"X"]]}}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, "/p", req.ProjectPath)
	require.Len(t, req.Replacements["src/a.ts"], 2)
	assert.Equal(t, uint32(4), req.Replacements["src/a.ts"][1].ByteOffsetStart)

	encoded, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(encoded))
}

func TestEdit_Len(t *testing.T) {
	assert.Equal(t, uint32(3), Edit{ByteStart: 2, ByteEnd: 5}.Len())
	assert.Equal(t, uint32(0), Edit{ByteStart: 5, ByteEnd: 5}.Len())
	assert.Equal(t, uint32(0), Edit{ByteStart: 6, ByteEnd: 5}.Len())
}

func TestChangeMarker_JSON(t *testing.T) {
	line := DiffLine{BeforeLine: LineNumber(3), Marker: MarkerUnchanged, Text: "x"}
	data, err := json.Marshal(line)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bln":3,"aln":null,"sign":null,"val":"x"}`, string(data))

	var decoded DiffLine
	require.NoError(t, json.Unmarshal([]byte(`{"bln":null,"aln":1,"sign":"+","val":"y"}`), &decoded))
	assert.Equal(t, MarkerAdded, decoded.Marker)
	assert.Nil(t, decoded.BeforeLine)

	var marker ChangeMarker
	assert.ErrorContains(t, json.Unmarshal([]byte(`"~"`), &marker), `unknown diff sign "~"`)
}

func TestFileResults_JSON(t *testing.T) {
	data, err := json.Marshal(FileResults{FilePath: "a.go"})
	require.NoError(t, err)
	assert.JSONEq(t, `["a.go",[]]`, string(data))

	var group FileResults
	assert.ErrorContains(t, json.Unmarshal([]byte(`["a.go"]`), &group), "file results must have 2 elements")
}
