// Package domain contains the variant build protocols.
package domain

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"vbuild.dev/pkg/vbuild/internal/adapter"
	m "vbuild.dev/pkg/vbuild/internal/model"
	"vbuild.dev/pkg/vbuild/pkg/environ"
)

const (
	// DefaultMessagesEnv names the variable through which the compiler
	// wrapper learns where to append the paths of files it failed to build.
	DefaultMessagesEnv = "ANGELIX_COMPILER_MESSAGES"

	// CompilerEnv is the variable build systems read the C compiler from.
	CompilerEnv = "CC"

	messagesFileName  = "messages"
	messagesDirPrefix = "vbuild-messages-*"
)

// Executor runs build commands inside a directory with an explicit
// environment and collects the per-file failures the compiler wrapper
// reports on the message channel.
type Executor interface {
	// BuildInEnv runs command in dir with env plus the message channel
	// variable. A non-zero exit is logged and reported in the result.
	BuildInEnv(ctx context.Context, dir m.Path, command string, env environ.Env) (m.BuildResult, error)

	// BuildWithCC is BuildInEnv with CC overridden to cc in a copy of env.
	BuildWithCC(ctx context.Context, dir m.Path, command string, env environ.Env, cc string) (m.BuildResult, error)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*executor)

// WithMessagesEnv overrides the message channel variable name.
func WithMessagesEnv(name string) ExecutorOption {
	return func(e *executor) {
		if name != "" {
			e.messagesEnv = name
		}
	}
}

// WithShowOutput makes executed tools print their stderr.
func WithShowOutput(show bool) ExecutorOption {
	return func(e *executor) {
		e.showOutput = show
	}
}

type executor struct {
	fsAdapter    adapter.SourceFSAdapter
	shellAdapter adapter.ShellRunnerAdapter
	messagesEnv  string
	showOutput   bool
}

// NewExecutor constructs an Executor backed by the provided filesystem and
// shell adapters.
func NewExecutor(fsAdapter adapter.SourceFSAdapter, shellAdapter adapter.ShellRunnerAdapter, opts ...ExecutorOption) Executor {
	e := &executor{
		fsAdapter:    fsAdapter,
		shellAdapter: shellAdapter,
		messagesEnv:  DefaultMessagesEnv,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *executor) BuildWithCC(ctx context.Context, dir m.Path, command string, env environ.Env, cc string) (m.BuildResult, error) {
	return e.BuildInEnv(ctx, dir, command, env.With(CompilerEnv, cc))
}

func (e *executor) BuildInEnv(ctx context.Context, dir m.Path, command string, env environ.Env) (m.BuildResult, error) {
	tmpDir, err := e.fsAdapter.CreateTempDir(ctx, messagesDirPrefix)
	if err != nil {
		slog.Error("Failed to create message channel dir", "error", err)
		return m.BuildResult{}, fmt.Errorf("failed to create message channel dir: %w", err)
	}

	defer e.cleanupTempDir(ctx, tmpDir)

	messages := e.fsAdapter.JoinPath(ctx, string(tmpDir), messagesFileName)

	run, err := e.shellAdapter.RunShell(ctx, dir, command, env.With(e.messagesEnv, string(messages)), e.showOutput)
	if err != nil {
		slog.Error("Failed to run build command", "dir", dir, "command", command, "error", err)
		return m.BuildResult{}, fmt.Errorf("failed to run build command in %s: %w", dir, err)
	}

	if !run.OK() {
		slog.Warn("compilation returned non-zero code", "dir", dir, "exit_code", run.ExitCode)
	}

	failed, err := e.readMessages(ctx, messages)
	if err != nil {
		return m.BuildResult{RunResult: run}, err
	}

	for _, file := range failed {
		slog.Warn("failed to build", "file", file, "dir", dir)
	}

	return m.BuildResult{RunResult: run, FailedFiles: failed}, nil
}

// readMessages returns the trimmed, non-empty lines of the message file.
// A missing file means the wrapper reported nothing.
func (e *executor) readMessages(ctx context.Context, messages m.Path) ([]string, error) {
	ok, err := e.fsAdapter.Exists(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to stat message channel: %w", err)
	}

	if !ok {
		return nil, nil
	}

	content, err := e.fsAdapter.ReadFile(ctx, messages)
	if err != nil {
		slog.Error("Failed to read message channel", "path", messages, "error", err)
		return nil, fmt.Errorf("failed to read message channel: %w", err)
	}

	var failed []string

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			failed = append(failed, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return failed, fmt.Errorf("failed to scan message channel: %w", err)
	}

	return failed, nil
}

// cleanupTempDir removes the temporary directory, logging errors if cleanup fails.
func (e *executor) cleanupTempDir(ctx context.Context, tmpDir m.Path) {
	if err := e.fsAdapter.RemoveAll(ctx, tmpDir); err != nil {
		slog.Error("Failed to cleanup temp dir", "tmpDir", tmpDir, "error", err)
	}
}
