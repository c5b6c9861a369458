package domain

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vbuild.dev/pkg/vbuild/internal/adapter"
	m "vbuild.dev/pkg/vbuild/internal/model"
	"vbuild.dev/pkg/vbuild/pkg/environ"
)

// captureLogs routes the default slog logger into a buffer for the duration
// of the test. Tests using it must not run in parallel.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	t.Cleanup(func() { slog.SetDefault(previous) })

	return &buf
}

func writeSource(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func readSource(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// baseEnv is a minimal child environment that still finds coreutils.
func baseEnv() environ.Env {
	return environ.FromMap(map[string]string{
		"PATH":               os.Getenv("PATH"),
		"LLVM3_INCLUDE_PATH": "/opt/llvm3/include",
	})
}

func newTestExecutor() Executor {
	return NewExecutor(adapter.NewLocalSourceFSAdapter(), adapter.NewLocalShellRunnerAdapter())
}

// writeScript writes an executable shell script and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)) //nolint:gosec // test tool

	return path
}

// newTestProject builds a project of variant v over a fresh working copy
// holding src/lib.c and returns it with its root.
func newTestProject(t *testing.T, v m.Variant, buildCmd string, tests m.TestSpec, tools Toolchain) (*Project, string) {
	t.Helper()

	root := t.TempDir()
	writeSource(t, filepath.Join(root, "src", "lib.c"), "int f(int x) {\n  return x + 1;\n}\n")

	if tools.BaseEnv.IsZero() {
		tools.BaseEnv = baseEnv()
	}

	project, err := NewProject(context.Background(), v, m.ProjectConfig{
		Dir:      m.Path(root),
		Buggy:    "src/lib.c",
		BuildCmd: buildCmd,
		Tests:    tests,
	}, tools, NewLocalProjectDeps())
	require.NoError(t, err)

	return project, root
}
