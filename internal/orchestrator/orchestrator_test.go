package orchestrator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/aleister1102/sgpatch/internal/config"
	"github.com/aleister1102/sgpatch/internal/engine"
	"github.com/aleister1102/sgpatch/internal/models"
	"github.com/aleister1102/sgpatch/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	mu     sync.Mutex
	result engine.CommandResult
	err    error
	calls  []engine.Command
}

func (f *fakeExecutor) Run(_ context.Context, cmd engine.Command) (engine.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	return f.result, f.err
}

const matchOutput = `[
{"text":"call(foo)","range":{"byteOffset":{"start":6,"end":15},"start":{"line":1,"column":0},"end":{"line":1,"column":9}},"file":"b.js","lines":"call(foo)","charCount":{"leading":0,"trailing":0},"replacement":"call(bar)","language":"JavaScript"},
{"text":"call(x)","range":{"byteOffset":{"start":0,"end":7},"start":{"line":0,"column":0},"end":{"line":0,"column":7}},"file":"a.js","lines":"call(x);","charCount":{"leading":0,"trailing":1},"replacement":null,"language":"JavaScript"}
]`

func newTestService(t *testing.T, fake *fakeExecutor, withStore bool) (*Service, *store.DB) {
	t.Helper()
	builder := NewServiceBuilder(zerolog.Nop()).WithExecutor(fake)

	var db *store.DB
	if withStore {
		var err error
		db, err = store.NewDB(filepath.Join(t.TempDir(), "state.db"), zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		builder = builder.WithStore(db)
	}
	return builder.Build(), db
}

func TestSearchRequest_QueryDefaults(t *testing.T) {
	cfg := config.NewDefaultEngineConfig()

	q := SearchRequest{Rule: "r", ProjectPath: "/p"}.Query(cfg)
	assert.Equal(t, "tsx", q.Language)
	assert.Equal(t, "*", q.Globs)

	q = SearchRequest{Rule: "r", ProjectPath: "/p", Language: " go ", Globs: "src/**"}.Query(cfg)
	assert.Equal(t, "go", q.Language)
	assert.Equal(t, "src/**", q.Globs)
}

func TestService_Search(t *testing.T) {
	fake := &fakeExecutor{result: engine.CommandResult{Stdout: []byte(matchOutput)}}
	svc, db := newTestService(t, fake, true)
	ctx := context.Background()

	resp, err := svc.SearchWithStats(ctx, SearchRequest{
		Rule:        "rule:\n  pattern: call($A)\n",
		Language:    "javascript",
		ProjectPath: "/work/app",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Matches)
	require.Len(t, resp.Files, 2)
	assert.Equal(t, "a.js", resp.Files[0].FilePath)
	assert.Equal(t, "b.js", resp.Files[1].FilePath)
	assert.Equal(t, 1, resp.Stats.LinesAdded)
	assert.Equal(t, 1, resp.Stats.LinesRemoved)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, "/work/app", fake.calls[0].Dir)
	assert.Contains(t, fake.calls[0].Args, "--globs")

	active, err := db.ActiveProject(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/work/app", active)

	inputs, err := db.ProjectInputs(ctx, "/work/app")
	require.NoError(t, err)
	assert.Equal(t, "javascript", inputs.Language)
	assert.Equal(t, "*", inputs.Globs)
}

func TestService_Search_EngineError(t *testing.T) {
	fake := &fakeExecutor{result: engine.CommandResult{Stderr: []byte("Error: Cannot parse rule\n"), ExitCode: 2}}
	svc, db := newTestService(t, fake, true)

	_, err := svc.Search(context.Background(), SearchRequest{Rule: "rule:\n  pattern: x\n", ProjectPath: "/p"})

	kind, ok := errorwrapper.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errorwrapper.KindEngine, kind)
	assert.Equal(t, "Error: Cannot parse rule", err.Error())

	active, err := db.ActiveProject(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestService_Search_ConfigErrorSkipsEngine(t *testing.T) {
	fake := &fakeExecutor{}
	svc, _ := newTestService(t, fake, false)

	_, err := svc.Search(context.Background(), SearchRequest{Rule: "rule:\n  pattern: x\n", Language: "cobol", ProjectPath: "/p"})

	kind, _ := errorwrapper.KindOf(err)
	assert.Equal(t, errorwrapper.KindConfig, kind)
	assert.Empty(t, fake.calls)
}

func TestService_Search_UsesConfigSource(t *testing.T) {
	cfg := config.NewDefaultGlobalConfig()
	cfg.EngineConfig.BinaryPath = "/opt/bin/ast-grep"
	cfg.EngineConfig.DefaultGlobs = "lib/**"

	fake := &fakeExecutor{result: engine.CommandResult{Stdout: []byte("[]")}}
	svc := NewServiceBuilder(zerolog.Nop()).
		WithConfigSource(config.NewStatic(cfg)).
		WithExecutor(fake).
		Build()

	files, err := svc.Search(context.Background(), SearchRequest{Rule: "rule:\n  pattern: x\n", ProjectPath: "/p"})
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, "/opt/bin/ast-grep", fake.calls[0].Name)
	assert.Equal(t, "lib/**", fake.calls[0].Args[len(fake.calls[0].Args)-1])
}

func TestValidatePatchRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.PatchRequest
		wantErr bool
	}{
		{
			name: "valid",
			req: models.PatchRequest{ProjectPath: "/p", Replacements: map[string][]models.EditTuple{
				"a.js": {{ByteOffsetStart: 0, ByteOffsetEnd: 3, ReplacementText: "x"}},
			}},
		},
		{
			name: "insertion",
			req: models.PatchRequest{ProjectPath: "/p", Replacements: map[string][]models.EditTuple{
				"a.js": {{ByteOffsetStart: 3, ByteOffsetEnd: 3, ReplacementText: "x"}},
			}},
		},
		{
			name:    "missing project",
			req:     models.PatchRequest{Replacements: map[string][]models.EditTuple{}},
			wantErr: true,
		},
		{
			name:    "missing replacements",
			req:     models.PatchRequest{ProjectPath: "/p"},
			wantErr: true,
		},
		{
			name: "empty file key",
			req: models.PatchRequest{ProjectPath: "/p", Replacements: map[string][]models.EditTuple{
				"": {{ByteOffsetStart: 0, ByteOffsetEnd: 1}},
			}},
			wantErr: true,
		},
		{
			name: "start after end",
			req: models.PatchRequest{ProjectPath: "/p", Replacements: map[string][]models.EditTuple{
				"a.js": {{ByteOffsetStart: 5, ByteOffsetEnd: 2}},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePatchRequest(tt.req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			kind, ok := errorwrapper.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, errorwrapper.KindValidation, kind)
		})
	}
}

func TestService_Replace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abcdef"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("aaaabbbbcccc"), 0644))

	var req models.PatchRequest
	body := `{"projectPath":` + mustJSON(t, dir) + `,"replacements":{
		"a.txt":[[1,3,"XYZ"],[4,5,"Q"]],
		"b.txt":[[0,4,""],[4,8,"X"]],
		"missing.txt":[[0,1,"z"]]
	}}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	svc, db := newTestService(t, &fakeExecutor{}, true)
	result, err := svc.Replace(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Error(t, result.Err())

	a, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "aXYZdQf", string(a))

	b, err := os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Xcccc", string(b))

	runs, err := db.RecentPatchRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].RunID)
	assert.Equal(t, store.RunStatusPartial, runs[0].Status)
	assert.Equal(t, 3, runs[0].NumFiles)
	assert.Equal(t, 5, runs[0].NumEdits)
}

func TestService_Replace_InvalidRequestTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("abcdef"), 0644))

	svc, db := newTestService(t, &fakeExecutor{}, true)
	_, err := svc.Replace(context.Background(), models.PatchRequest{
		ProjectPath: dir,
		Replacements: map[string][]models.EditTuple{
			"a.txt": {{ByteOffsetStart: 4, ByteOffsetEnd: 1, ReplacementText: "x"}},
		},
	})
	require.Error(t, err)

	content, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "abcdef", string(content))

	runs, err := db.RecentPatchRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestService_State(t *testing.T) {
	svc, _ := newTestService(t, &fakeExecutor{}, true)
	ctx := context.Background()

	_, found, err := svc.GetState(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.PutState(ctx, "theme", json.RawMessage(`{"dark":true}`)))
	value, found, err := svc.GetState(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"dark":true}`, string(value))

	assert.Error(t, svc.PutState(ctx, "theme", json.RawMessage(`{bad`)))
	assert.Error(t, svc.PutState(ctx, "", json.RawMessage(`1`)))
}

func TestService_StateWithoutStore(t *testing.T) {
	svc, _ := newTestService(t, &fakeExecutor{}, false)

	assert.False(t, svc.HasStore())
	_, _, err := svc.GetState(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNoStore)
	_, err = svc.RecentRuns(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestService_CheckEngine(t *testing.T) {
	fake := &fakeExecutor{result: engine.CommandResult{Stdout: []byte("ast-grep 0.38.1\n")}}
	svc, _ := newTestService(t, fake, false)

	ok, version := svc.CheckEngine(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "ast-grep 0.38.1", version)
	assert.Equal(t, []string{"--version"}, fake.calls[0].Args)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
