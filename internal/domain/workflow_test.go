package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vbuild.dev/pkg/vbuild/internal/adapter"
	"vbuild.dev/pkg/vbuild/internal/controller"
	controllermocks "vbuild.dev/pkg/vbuild/internal/controller/mocks"
	m "vbuild.dev/pkg/vbuild/internal/model"
)

const workflowManifest = `buggy: src/lib.c
build: mkdir -p bin && printf '%%s' "$CC" > bin/cc
tests:
  t1:
    executable: bin/t1
    build:
      directory: .
      command: touch bin/t1
  t2:
    executable: bin/t2
variants:
%s`

// writeWorkflowFixture lays out one working copy per variant next to a
// manifest and returns the manifest path and the variant roots.
func writeWorkflowFixture(t *testing.T, variants ...m.Variant) (m.Path, map[m.Variant]string) {
	t.Helper()

	base := t.TempDir()
	roots := make(map[m.Variant]string, len(variants))

	var lines strings.Builder

	for _, v := range variants {
		root := filepath.Join(base, v.String())
		writeSource(t, filepath.Join(root, "src", "lib.c"), pristine)
		roots[v] = root

		fmt.Fprintf(&lines, "  %s: %s\n", v, v)
	}

	path := filepath.Join(base, "vbuild-manifest.yaml")
	writeSource(t, path, fmt.Sprintf(workflowManifest, lines.String()))

	return m.Path(path), roots
}

func newTestWorkflow(ui controller.UI) Workflow {
	return NewWorkflow(adapter.NewManifestLoader(), NewLocalProjectDeps(), ui)
}

func expectRunUI(ui *controllermocks.MockUI) {
	ui.On("Start", mock.Anything, mock.Anything).Return(nil).Once()
	ui.On("Close", mock.Anything).Return().Once()
	ui.On("DisplayStage", mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	ui.On("DisplayTestCase", mock.Anything, mock.Anything).Return().Maybe()
	ui.On("DisplayVariantReport", mock.Anything, mock.Anything).Return().Maybe()
}

func newBufferUI() (controller.UI, *bytes.Buffer) {
	var out bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	return controller.NewSimpleUI(cmd), &out
}

func TestWorkflow_Run(t *testing.T) {
	manifest, roots := writeWorkflowFixture(t, m.VariantFrontend, m.VariantValidation)

	ui := controllermocks.NewMockUI(t)
	expectRunUI(ui)
	ui.On("DisplayReport", mock.Anything, mock.MatchedBy(func(r m.Report) bool {
		return r.RunID != "" && len(r.Variants) == 2
	})).Return(nil).Once()

	tools := Toolchain{
		CompilerWrapper: "wrap",
		Interceptor:     fakeInterceptor(t, roots[m.VariantValidation]),
		BaseEnv:         baseEnv(),
	}

	report, err := newTestWorkflow(ui).Run(context.Background(), RunArgs{
		ProjectArgs:         ProjectArgs{Manifest: manifest, Toolchain: tools},
		Parallel:            2,
		ExportCompilationDB: true,
	})
	require.NoError(t, err)

	require.Len(t, report.Variants, 2)
	assert.Equal(t, m.VariantValidation, report.Variants[0].Variant)
	assert.Equal(t, m.VariantFrontend, report.Variants[1].Variant)

	for _, vr := range report.Variants {
		require.Len(t, vr.Tests, 2, vr.Variant)
		assert.Equal(t, m.Built, vr.Tests[0].Status)
		assert.Equal(t, "t2", vr.Tests[1].TestCase)
		assert.Equal(t, m.Failed, vr.Tests[1].Status)
		assert.ErrorIs(t, vr.Tests[1].Err, ErrCompilation)
		assert.Equal(t, m.Path("bin/t2"), vr.Tests[1].Artifact)
	}

	assert.Equal(t, "", readSource(t, filepath.Join(roots[m.VariantValidation], "bin", "cc")))
	assert.Equal(t, "wrap --test", readSource(t, filepath.Join(roots[m.VariantFrontend], "bin", "cc")))

	imported, err := adapter.NewCompilationDBStore().LoadCompilationDB(context.Background(),
		m.Path(filepath.Join(roots[m.VariantFrontend], m.CompilationDBFile)))
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, filepath.Join(roots[m.VariantFrontend], "src"), imported[0].Directory)
	assert.Equal(t, "cc -c lib.c -I/opt/llvm3/include", imported[0].Command)

	for _, root := range roots {
		assert.False(t, fileExists(filepath.Join(root, "src", "lib.c.backup")), "backups are removed after the run")
	}
}

func TestWorkflow_Run_KeepBackups(t *testing.T) {
	manifest, roots := writeWorkflowFixture(t, m.VariantValidation, m.VariantGolden)

	ui := controllermocks.NewMockUI(t)
	expectRunUI(ui)
	ui.On("DisplayReport", mock.Anything, mock.Anything).Return(nil).Once()

	report, err := newTestWorkflow(ui).Run(context.Background(), RunArgs{
		ProjectArgs: ProjectArgs{Manifest: manifest, Toolchain: Toolchain{BaseEnv: baseEnv()}},
		Variants:    []m.Variant{m.VariantGolden},
		Tests:       []string{"t1"},
		KeepBackups: true,
	})
	require.NoError(t, err)

	require.Len(t, report.Variants, 1)
	assert.Equal(t, m.VariantGolden, report.Variants[0].Variant)
	require.Len(t, report.Variants[0].Tests, 1)
	assert.Equal(t, m.Built, report.Variants[0].Tests[0].Status)

	assert.True(t, fileExists(filepath.Join(roots[m.VariantGolden], "src", "lib.c.backup")))
	assert.False(t, fileExists(filepath.Join(roots[m.VariantValidation], "src", "lib.c.backup")), "unselected variants are untouched")
}

func TestWorkflow_Run_ReusesKeptBackup(t *testing.T) {
	ctx := context.Background()
	manifest, roots := writeWorkflowFixture(t, m.VariantGolden)
	buggy := filepath.Join(roots[m.VariantGolden], "src", "lib.c")

	ui, _ := newBufferUI()
	wf := newTestWorkflow(ui)
	args := RunArgs{
		ProjectArgs: ProjectArgs{Manifest: manifest, Toolchain: Toolchain{BaseEnv: baseEnv()}},
		Tests:       []string{"t1"},
		KeepBackups: true,
	}

	_, err := wf.Run(ctx, args)
	require.NoError(t, err)

	writeSource(t, buggy, "MUTATED\n")

	_, err = wf.Run(ctx, args)
	require.NoError(t, err)

	assert.Equal(t, pristine, readSource(t, buggy+BackupSuffix))

	require.NoError(t, wf.Restore(ctx, RestoreArgs{ProjectArgs: args.ProjectArgs, Variant: m.VariantGolden}))
	assert.Equal(t, pristine, readSource(t, buggy))
}

func TestWorkflow_Run_RemovesPartialBackups(t *testing.T) {
	manifest, roots := writeWorkflowFixture(t, m.VariantValidation, m.VariantFrontend, m.VariantGolden)
	require.NoError(t, os.Remove(filepath.Join(roots[m.VariantGolden], "src", "lib.c")))

	ui := controllermocks.NewMockUI(t)
	expectRunUI(ui)

	_, err := newTestWorkflow(ui).Run(context.Background(), RunArgs{
		ProjectArgs: ProjectArgs{Manifest: manifest, Toolchain: Toolchain{BaseEnv: baseEnv()}},
	})
	require.Error(t, err)

	for _, v := range []m.Variant{m.VariantValidation, m.VariantFrontend} {
		assert.False(t, fileExists(filepath.Join(roots[v], "src", "lib.c.backup")), v)
	}
}

func TestWorkflow_Run_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing manifest", func(t *testing.T) {
		ui := controllermocks.NewMockUI(t)

		_, err := newTestWorkflow(ui).Run(ctx, RunArgs{ProjectArgs: ProjectArgs{Manifest: m.Path(filepath.Join(t.TempDir(), "none.yaml"))}})
		assert.Error(t, err)
	})

	t.Run("undeclared variant", func(t *testing.T) {
		manifest, _ := writeWorkflowFixture(t, m.VariantValidation)
		ui := controllermocks.NewMockUI(t)

		_, err := newTestWorkflow(ui).Run(ctx, RunArgs{
			ProjectArgs: ProjectArgs{Manifest: manifest},
			Variants:    []m.Variant{m.VariantBackend},
		})
		assert.ErrorIs(t, err, m.ErrVariantNotDeclared)
	})

	t.Run("unknown test case", func(t *testing.T) {
		manifest, _ := writeWorkflowFixture(t, m.VariantValidation)
		ui := controllermocks.NewMockUI(t)

		_, err := newTestWorkflow(ui).Run(ctx, RunArgs{
			ProjectArgs: ProjectArgs{Manifest: manifest},
			Tests:       []string{"t9"},
		})
		assert.ErrorIs(t, err, ErrUnknownTestCase)
	})

	t.Run("ui start failure", func(t *testing.T) {
		manifest, _ := writeWorkflowFixture(t, m.VariantValidation)
		startErr := errors.New("no terminal")

		ui := controllermocks.NewMockUI(t)
		ui.On("Start", mock.Anything, mock.Anything).Return(startErr).Once()

		_, err := newTestWorkflow(ui).Run(ctx, RunArgs{ProjectArgs: ProjectArgs{Manifest: manifest}})
		assert.ErrorIs(t, err, startErr)
	})

	t.Run("missing compilation database aborts", func(t *testing.T) {
		manifest, _ := writeWorkflowFixture(t, m.VariantValidation)

		ui := controllermocks.NewMockUI(t)
		expectRunUI(ui)

		tools := Toolchain{Interceptor: filepath.Join(t.TempDir(), "no-such-interceptor"), BaseEnv: baseEnv()}

		_, err := newTestWorkflow(ui).Run(ctx, RunArgs{
			ProjectArgs:         ProjectArgs{Manifest: manifest, Toolchain: tools},
			ExportCompilationDB: true,
		})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrCompilation)
	})
}

func TestWorkflow_Build(t *testing.T) {
	ctx := context.Background()
	manifest, roots := writeWorkflowFixture(t, m.VariantValidation)
	root := roots[m.VariantValidation]

	ui := controllermocks.NewMockUI(t)
	ui.On("DisplayStage", mock.Anything, m.VariantValidation, mock.Anything).Return()
	ui.On("DisplayTestCase", mock.Anything, mock.Anything).Return()
	ui.On("DisplayVariantReport", mock.Anything, mock.Anything).Return()

	wf := newTestWorkflow(ui)
	args := ProjectArgs{Manifest: manifest, Toolchain: Toolchain{BaseEnv: baseEnv()}}

	report, err := wf.Build(ctx, BuildArgs{ProjectArgs: args, Variant: m.VariantValidation})
	require.NoError(t, err)
	assert.True(t, report.Build.OK())
	assert.Empty(t, report.Tests)
	assert.True(t, fileExists(filepath.Join(root, "src", "lib.c.backup")))

	// A second command reuses the backup taken by the first.
	writeSource(t, filepath.Join(root, "src", "lib.c"), "patched\n")

	report, err = wf.Build(ctx, BuildArgs{ProjectArgs: args, Variant: m.VariantValidation, Tests: []string{"t1"}, SkipBuild: true})
	require.NoError(t, err)
	require.Len(t, report.Tests, 1)
	assert.Equal(t, m.Built, report.Tests[0].Status)
	assert.Equal(t, pristine, readSource(t, filepath.Join(root, "src", "lib.c.backup")))

	_, err = wf.Build(ctx, BuildArgs{ProjectArgs: args, Variant: m.VariantValidation, SkipBuild: true})
	assert.ErrorIs(t, err, ErrUnknownTestCase)
}

func TestWorkflow_CompilationDB(t *testing.T) {
	ctx := context.Background()
	manifest, roots := writeWorkflowFixture(t, m.VariantValidation, m.VariantBackend)

	wf := newTestWorkflow(controllermocks.NewMockUI(t))
	tools := Toolchain{Interceptor: fakeInterceptor(t, roots[m.VariantValidation]), BaseEnv: baseEnv()}
	output := filepath.Join(t.TempDir(), "exported.json")

	db, err := wf.ExportCompilationDB(ctx, ExportArgs{
		ProjectArgs: ProjectArgs{Manifest: manifest, Toolchain: tools},
		Output:      m.Path(output),
	})
	require.NoError(t, err)
	require.Len(t, db, 2)
	assert.Equal(t, "src", db[0].Directory)
	assert.True(t, fileExists(output))

	err = wf.ImportCompilationDB(ctx, ImportArgs{
		ProjectArgs: ProjectArgs{Manifest: manifest, Toolchain: tools},
		Variant:     m.VariantBackend,
		Input:       m.Path(output),
	})
	require.NoError(t, err)

	imported := readSource(t, filepath.Join(roots[m.VariantBackend], m.CompilationDBFile))
	assert.Contains(t, imported, filepath.Join(roots[m.VariantBackend], "src"))
	assert.Equal(t, 1, strings.Count(imported, `"cc -c lib.c -I/opt/llvm3/include"`))
}

func TestWorkflow_DiffRestoreClean(t *testing.T) {
	ctx := context.Background()
	manifest, roots := writeWorkflowFixture(t, m.VariantValidation, m.VariantFrontend)
	root := roots[m.VariantFrontend]

	ui, out := newBufferUI()
	wf := newTestWorkflow(ui)
	args := ProjectArgs{Manifest: manifest, Toolchain: Toolchain{BaseEnv: baseEnv()}}

	_, err := wf.Diff(ctx, DiffArgs{ProjectArgs: args, Variant: m.VariantFrontend})
	assert.ErrorIs(t, err, ErrBackupMissing, "diff never takes a backup")

	_, err = wf.Build(ctx, BuildArgs{ProjectArgs: args, Variant: m.VariantFrontend})
	require.NoError(t, err)

	writeSource(t, filepath.Join(root, "src", "lib.c"), "int f(int x) {\n  return x - 1;\n}\n")

	out.Reset()

	diff, err := wf.Diff(ctx, DiffArgs{ProjectArgs: args, Variant: m.VariantFrontend})
	require.NoError(t, err)
	assert.False(t, diff.Empty())
	assert.Equal(t, "+1 -1", diff.Summary.String())
	assert.Contains(t, out.String(), "+  return x - 1;")

	out.Reset()

	_, err = wf.Diff(ctx, DiffArgs{ProjectArgs: args, Variant: m.VariantFrontend, StatOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "frontend: src/lib.c +1 -1\n", out.String())

	require.NoError(t, wf.Restore(ctx, RestoreArgs{ProjectArgs: args, Variant: m.VariantFrontend}))
	assert.Equal(t, pristine, readSource(t, filepath.Join(root, "src", "lib.c")))

	diff, err = wf.Diff(ctx, DiffArgs{ProjectArgs: args, Variant: m.VariantFrontend})
	require.NoError(t, err)
	assert.True(t, diff.Empty())

	require.NoError(t, wf.Clean(ctx, CleanArgs{ProjectArgs: args}))
	assert.False(t, fileExists(filepath.Join(root, "src", "lib.c.backup")))

	require.NoError(t, wf.Clean(ctx, CleanArgs{ProjectArgs: args}), "clean without backups is a no-op")

	err = wf.Restore(ctx, RestoreArgs{ProjectArgs: args, Variant: m.VariantFrontend})
	assert.ErrorIs(t, err, ErrBackupMissing)
}
