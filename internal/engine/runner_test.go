package engine

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	result CommandResult
	err    error
	calls  []Command
	block  bool
}

func (f *fakeExecutor) Run(ctx context.Context, cmd Command) (CommandResult, error) {
	f.calls = append(f.calls, cmd)
	if f.block {
		<-ctx.Done()
		return CommandResult{}, ctx.Err()
	}
	return f.result, f.err
}

const sampleOutput = `[{"text":"console.log(a)","range":{"byteOffset":{"start":10,"end":24},"start":{"line":1,"column":2},"end":{"line":1,"column":16}},"file":"src/a.ts","lines":"  console.log(a);","charCount":{"leading":2,"trailing":1},"replacement":"logger.info(a)","language":"TypeScript"}]`

func validQuery() Query {
	return Query{
		Rule:        "rule:\n  pattern: console.log($A)\nfix: logger.info($A)\n",
		Language:    "typescript",
		ProjectPath: "/work/project",
		Globs:       "src/**",
	}
}

func newTestRunner(fake *fakeExecutor) *Runner {
	return NewRunner(DefaultRunnerConfig(), fake, zerolog.Nop())
}

func TestRunner_Search_Success(t *testing.T) {
	fake := &fakeExecutor{result: CommandResult{Stdout: []byte(sampleOutput)}}

	records, err := newTestRunner(fake).Search(context.Background(), validQuery())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "src/a.ts", records[0].File)
	assert.Equal(t, uint32(10), records[0].Range.ByteOffset.Start)
	assert.Equal(t, int64(2), records[0].CharCount.Leading)
	require.True(t, records[0].HasReplacement())
	assert.Equal(t, "logger.info(a)", *records[0].Replacement)

	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	assert.Equal(t, "sg", call.Name)
	assert.Equal(t, "/work/project", call.Dir)
	require.Len(t, call.Args, 6)
	assert.Equal(t, []string{"scan", "--inline-rules"}, call.Args[:2])
	assert.Equal(t, []string{"--json=compact", "--globs", "src/**"}, call.Args[3:])

	var rule map[string]any
	require.NoError(t, json.Unmarshal([]byte(call.Args[2]), &rule))
	assert.Equal(t, "default-rule", rule["id"])
	assert.Equal(t, "TypeScript", rule["language"])
	assert.Equal(t, "logger.info($A)", rule["fix"])
}

func TestRunner_Search_EmptyGlobsOmitsFlag(t *testing.T) {
	fake := &fakeExecutor{result: CommandResult{Stdout: []byte("[]")}}
	q := validQuery()
	q.Globs = ""

	records, err := newTestRunner(fake).Search(context.Background(), q)

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotContains(t, fake.calls[0].Args, "--globs")
}

func TestRunner_Search_EmptyStdout(t *testing.T) {
	fake := &fakeExecutor{result: CommandResult{Stdout: []byte("  \n")}}

	records, err := newTestRunner(fake).Search(context.Background(), validQuery())

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRunner_Search_ConfigErrorsBeforeExecution(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *Query)
	}{
		{"rule is a list", func(q *Query) { q.Rule = "- a\n- b\n" }},
		{"rule is a scalar", func(q *Query) { q.Rule = "just text" }},
		{"rule is not yaml", func(q *Query) { q.Rule = "rule: [unclosed" }},
		{"empty rule", func(q *Query) { q.Rule = "  " }},
		{"unknown language", func(q *Query) { q.Language = "cobol" }},
		{"missing project", func(q *Query) { q.ProjectPath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeExecutor{}
			q := validQuery()
			tt.mutate(&q)

			_, err := newTestRunner(fake).Search(context.Background(), q)

			var cfgErr *errorwrapper.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Empty(t, fake.calls, "engine must not be started")
		})
	}
}

func TestRunner_Search_Diagnostics(t *testing.T) {
	tests := []struct {
		name        string
		result      CommandResult
		expectError string
		expectCode  int
		expectCount int
	}{
		{
			name: "non-zero exit uses last stderr line",
			result: CommandResult{
				Stderr:   []byte("\x1b[31mError\x1b[0m: Cannot parse rule\n\x1b[2m╰▻ Rule must specify a set of AST kinds to match.\x1b[0m\n\n"),
				ExitCode: 2,
			},
			expectError: "Rule must specify a set of AST kinds to match.",
			expectCode:  2,
		},
		{
			name:        "non-zero exit without stderr",
			result:      CommandResult{ExitCode: 1},
			expectError: "sg exited with status 1",
			expectCode:  1,
		},
		{
			name:        "non-zero exit with output still fails",
			result:      CommandResult{Stdout: []byte(sampleOutput), Stderr: []byte("boom"), ExitCode: 3},
			expectError: "boom",
			expectCode:  3,
		},
		{
			name:        "stderr with no output is ambiguous",
			result:      CommandResult{Stderr: []byte("something odd happened\n")},
			expectError: "something odd happened",
		},
		{
			name:        "stderr starting with error fails even with output",
			result:      CommandResult{Stdout: []byte(sampleOutput), Stderr: []byte("ERROR: partial scan\n")},
			expectError: "ERROR: partial scan",
		},
		{
			name:        "warnings keep results",
			result:      CommandResult{Stdout: []byte(sampleOutput), Stderr: []byte("warning: file skipped\n")},
			expectCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeExecutor{result: tt.result}

			records, err := newTestRunner(fake).Search(context.Background(), validQuery())

			if tt.expectError == "" {
				require.NoError(t, err)
				assert.Len(t, records, tt.expectCount)
				return
			}
			var engineErr *errorwrapper.EngineError
			require.ErrorAs(t, err, &engineErr)
			assert.Equal(t, tt.expectError, engineErr.Error())
			assert.Equal(t, tt.expectCode, engineErr.ExitCode)
			assert.Nil(t, records)
		})
	}
}

func TestRunner_Search_ParseError(t *testing.T) {
	fake := &fakeExecutor{result: CommandResult{Stdout: []byte(`{"not":"an array"}`)}}

	_, err := newTestRunner(fake).Search(context.Background(), validQuery())

	var parseErr *errorwrapper.ParseError
	require.ErrorAs(t, err, &parseErr)
	kind, _ := errorwrapper.KindOf(err)
	assert.Equal(t, errorwrapper.KindParse, kind)
}

func TestRunner_Search_StartFailures(t *testing.T) {
	t.Run("binary missing", func(t *testing.T) {
		fake := &fakeExecutor{err: &exec.Error{Name: "sg", Err: exec.ErrNotFound}}

		_, err := newTestRunner(fake).Search(context.Background(), validQuery())

		var engineErr *errorwrapper.EngineError
		require.ErrorAs(t, err, &engineErr)
		assert.Contains(t, engineErr.Error(), "not installed")
		assert.ErrorIs(t, err, errorwrapper.ErrEngineUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		fake := &fakeExecutor{block: true}
		runner := NewRunner(RunnerConfig{BinaryPath: "sg", Timeout: 10 * time.Millisecond}, fake, zerolog.Nop())

		_, err := runner.Search(context.Background(), validQuery())

		var engineErr *errorwrapper.EngineError
		require.ErrorAs(t, err, &engineErr)
		assert.Contains(t, engineErr.Error(), "timed out")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("other", func(t *testing.T) {
		fake := &fakeExecutor{err: errors.New("chdir /work/project: no such file or directory")}

		_, err := newTestRunner(fake).Search(context.Background(), validQuery())

		kind, _ := errorwrapper.KindOf(err)
		assert.Equal(t, errorwrapper.KindEngine, kind)
	})
}

func TestRunner_CheckInstalled(t *testing.T) {
	fake := &fakeExecutor{result: CommandResult{Stdout: []byte("ast-grep 0.30.1\n")}}
	installed, version := newTestRunner(fake).CheckInstalled(context.Background())
	assert.True(t, installed)
	assert.Equal(t, "ast-grep 0.30.1", version)
	assert.Equal(t, []string{"--version"}, fake.calls[0].Args)

	missing := &fakeExecutor{err: exec.ErrNotFound}
	installed, version = newTestRunner(missing).CheckInstalled(context.Background())
	assert.False(t, installed)
	assert.Empty(t, version)
}
