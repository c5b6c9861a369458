package adapter

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	m "vbuild.dev/pkg/vbuild/internal/model"
	"vbuild.dev/pkg/vbuild/pkg/environ"
)

// DefaultShell is the interpreter used for build command strings.
const DefaultShell = "/bin/sh"

// ShellRunnerAdapter abstracts running external build tools.
//
// A tool that starts and exits non-zero is reported as
// m.ToolReportedFailure in the result, never as an error. The error return
// is reserved for processes that could not be started (missing directory,
// missing binary) or were cancelled through ctx.
type ShellRunnerAdapter interface {
	// RunShell runs command through the shell with dir as working directory.
	RunShell(ctx context.Context, dir m.Path, command string, env environ.Env, showStderr bool) (m.RunResult, error)

	// RunTool runs name with args directly, without a shell.
	RunTool(ctx context.Context, dir m.Path, name string, args []string, env environ.Env, showStderr bool) (m.RunResult, error)
}

// LocalShellRunnerAdapter provides a concrete implementation using os/exec.
// Standard output of tools is discarded; standard error goes to stderr when
// the caller asks for it and is discarded otherwise.
type LocalShellRunnerAdapter struct {
	shell  string
	stderr io.Writer
}

// NewLocalShellRunnerAdapter constructs a LocalShellRunnerAdapter writing
// shown stderr to os.Stderr.
func NewLocalShellRunnerAdapter() *LocalShellRunnerAdapter {
	return NewLocalShellRunnerAdapterWithStderr(os.Stderr)
}

// NewLocalShellRunnerAdapterWithStderr constructs a LocalShellRunnerAdapter
// writing shown stderr to w.
func NewLocalShellRunnerAdapterWithStderr(w io.Writer) *LocalShellRunnerAdapter {
	return &LocalShellRunnerAdapter{
		shell:  DefaultShell,
		stderr: w,
	}
}

// RunShell runs a shell command string in dir.
func (a *LocalShellRunnerAdapter) RunShell(ctx context.Context, dir m.Path, command string, env environ.Env, showStderr bool) (m.RunResult, error) {
	return a.RunTool(ctx, dir, a.shell, []string{"-c", command}, env, showStderr)
}

// RunTool runs an executable with explicit arguments in dir.
func (a *LocalShellRunnerAdapter) RunTool(ctx context.Context, dir m.Path, name string, args []string, env environ.Env, showStderr bool) (m.RunResult, error) {
	// #nosec G204 - commands come from the run manifest
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = string(dir)
	cmd.Env = env.Slice()
	cmd.Stdout = io.Discard

	if showStderr {
		cmd.Stderr = a.stderr
	}

	err := cmd.Run()
	if err == nil {
		return m.RunResult{Outcome: m.Succeeded}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return m.RunResult{}, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return m.RunResult{Outcome: m.ToolReportedFailure, ExitCode: exitErr.ExitCode()}, nil
	}

	return m.RunResult{}, err
}
