package engine

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Command is a process invocation
type Command struct {
	Name string
	Args []string
	Dir  string
}

// CommandResult holds the captured output of a finished process
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandExecutor runs a command to completion. A process that starts and
// exits non-zero is not an error; err is reserved for failures to start or
// wait on the process.
type CommandExecutor interface {
	Run(ctx context.Context, cmd Command) (CommandResult, error)
}

// ExecExecutor runs commands with os/exec
type ExecExecutor struct{}

// NewExecExecutor creates a new process executor
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Run starts the command and waits for it. The process is killed when ctx
// is done.
func (e *ExecExecutor) Run(ctx context.Context, command Command) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.Dir = command.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		return result, err
	}
	return result, nil
}
