package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"vbuild.dev/pkg/vbuild/internal/adapter"
	m "vbuild.dev/pkg/vbuild/internal/model"
	"vbuild.dev/pkg/vbuild/pkg/environ"
)

const (
	// BackupSuffix is appended to the buggy file path to name its backup.
	BackupSuffix = ".backup"

	// DefaultCompilerWrapper is the external compiler wrapper binary.
	DefaultCompilerWrapper = "angelix-compiler"
	// DefaultBitcodePatcher is the external bitcode patcher binary.
	DefaultBitcodePatcher = "angelix-patch-bitcode"
	// DefaultInterceptor wraps a build to record its compile commands.
	DefaultInterceptor = "bear"
	// DefaultIncludePathEnv names the variable holding the extra header path
	// added to imported compilation databases.
	DefaultIncludePathEnv = "LLVM3_INCLUDE_PATH"

	diffContextLines = 3
	noNewlineMarker  = `\ No newline at end of file`
)

// Toolchain names the external programs and settings shared by all variants.
type Toolchain struct {
	CompilerWrapper string
	BitcodePatcher  string
	Interceptor     string
	IncludePathEnv  string
	MessagesEnv     string
	// Verbose shows the stderr of external tools.
	Verbose bool
	// BaseEnv is the environment every child process starts from. The zero
	// value means the current process environment.
	BaseEnv environ.Env
}

// DefaultToolchain returns the toolchain with every default filled in.
func DefaultToolchain() Toolchain {
	return Toolchain{}.withDefaults()
}

func (t Toolchain) withDefaults() Toolchain {
	if t.CompilerWrapper == "" {
		t.CompilerWrapper = DefaultCompilerWrapper
	}

	if t.BitcodePatcher == "" {
		t.BitcodePatcher = DefaultBitcodePatcher
	}

	if t.Interceptor == "" {
		t.Interceptor = DefaultInterceptor
	}

	if t.IncludePathEnv == "" {
		t.IncludePathEnv = DefaultIncludePathEnv
	}

	if t.MessagesEnv == "" {
		t.MessagesEnv = DefaultMessagesEnv
	}

	if t.BaseEnv.IsZero() {
		t.BaseEnv = environ.FromOS()
	}

	return t
}

// ProjectDeps are the adapters a Project works through.
type ProjectDeps struct {
	FS     adapter.SourceFSAdapter
	Shell  adapter.ShellRunnerAdapter
	CompDB adapter.CompilationDBStore
}

// NewLocalProjectDeps returns adapters backed by the local OS.
func NewLocalProjectDeps() ProjectDeps {
	return ProjectDeps{
		FS:     adapter.NewLocalSourceFSAdapter(),
		Shell:  adapter.NewLocalShellRunnerAdapter(),
		CompDB: adapter.NewCompilationDBStore(),
	}
}

// Project is one variant's working copy of the source tree. It owns the
// buggy file's backup and builds the variant's artifacts.
//
// A Project runs at most one external process at a time. Distinct Projects
// share no mutable state and may be used from different goroutines.
type Project struct {
	profile  VariantProfile
	cfg      m.ProjectConfig
	tools    Toolchain
	deps     ProjectDeps
	executor Executor
	backup   m.Path
}

// NewProject creates the Project for variant v and copies the buggy file to
// its backup. The backup is the pristine state used by RestoreBuggy and
// DiffBuggy for the lifetime of the Project.
func NewProject(ctx context.Context, v m.Variant, cfg m.ProjectConfig, tools Toolchain, deps ProjectDeps) (*Project, error) {
	p, err := newProject(ctx, v, cfg, tools, deps)
	if err != nil {
		return nil, err
	}

	if err := deps.FS.CopyFile(ctx, p.BuggyPath(), p.backup); err != nil {
		slog.Error("Failed to back up buggy file", "variant", v, "buggy", p.BuggyPath(), "error", err)
		return nil, fmt.Errorf("failed to back up buggy file: %w", err)
	}

	return p, nil
}

// ReopenProject attaches to a working copy whose backup was taken by an
// earlier NewProject, without touching the backup.
func ReopenProject(ctx context.Context, v m.Variant, cfg m.ProjectConfig, tools Toolchain, deps ProjectDeps) (*Project, error) {
	p, err := newProject(ctx, v, cfg, tools, deps)
	if err != nil {
		return nil, err
	}

	ok, err := deps.FS.Exists(ctx, p.backup)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackupMissing, p.backup)
	}

	return p, nil
}

func newProject(ctx context.Context, v m.Variant, cfg m.ProjectConfig, tools Toolchain, deps ProjectDeps) (*Project, error) {
	profile, err := ProfileFor(v)
	if err != nil {
		return nil, err
	}

	dir, err := deps.FS.Abs(ctx, cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project dir: %w", err)
	}

	cfg.Dir = dir
	tools = tools.withDefaults()

	return &Project{
		profile: profile,
		cfg:     cfg,
		tools:   tools,
		deps:    deps,
		executor: NewExecutor(deps.FS, deps.Shell,
			WithMessagesEnv(tools.MessagesEnv),
			WithShowOutput(tools.Verbose),
		),
		backup: m.Path(string(deps.FS.JoinPath(ctx, string(dir), cfg.Buggy)) + BackupSuffix),
	}, nil
}

// Variant returns the variant the project builds.
func (p *Project) Variant() m.Variant {
	return p.profile.Variant
}

// Dir returns the absolute project root.
func (p *Project) Dir() m.Path {
	return p.cfg.Dir
}

// Config returns the project's build metadata.
func (p *Project) Config() m.ProjectConfig {
	return p.cfg
}

// BuggyPath returns the absolute path of the buggy file.
func (p *Project) BuggyPath() m.Path {
	return p.deps.FS.JoinPath(context.Background(), string(p.cfg.Dir), p.cfg.Buggy)
}

// BackupPath returns the absolute path of the pristine backup.
func (p *Project) BackupPath() m.Path {
	return p.backup
}

// RestoreBuggy copies the pristine backup over the buggy file.
func (p *Project) RestoreBuggy(ctx context.Context) error {
	if err := p.deps.FS.CopyFile(ctx, p.backup, p.BuggyPath()); err != nil {
		slog.Error("Failed to restore buggy file", "variant", p.Variant(), "buggy", p.cfg.Buggy, "error", err)
		return fmt.Errorf("failed to restore buggy file: %w", err)
	}

	return nil
}

// DiffBuggy returns the unified diff from the backup to the current buggy
// file, labelled a/<buggy> and b/<buggy>. It is empty when nothing changed.
func (p *Project) DiffBuggy(ctx context.Context) (string, error) {
	before, err := p.deps.FS.ReadFile(ctx, p.backup)
	if err != nil {
		return "", fmt.Errorf("failed to read backup: %w", err)
	}

	after, err := p.deps.FS.ReadFile(ctx, p.BuggyPath())
	if err != nil {
		return "", fmt.Errorf("failed to read buggy file: %w", err)
	}

	buggy := filepath.ToSlash(p.cfg.Buggy)

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        diffLines(string(before)),
		B:        diffLines(string(after)),
		FromFile: "a/" + buggy,
		ToFile:   "b/" + buggy,
		Context:  diffContextLines,
	})
}

// RemoveBackup deletes the backup. The Project must not be used for
// RestoreBuggy or DiffBuggy afterwards.
func (p *Project) RemoveBackup(ctx context.Context) error {
	if err := p.deps.FS.RemoveAll(ctx, p.backup); err != nil {
		slog.Error("Failed to remove backup", "backup", p.backup, "error", err)
		return fmt.Errorf("failed to remove backup: %w", err)
	}

	return nil
}

// Configure runs the configure command once, if one is declared. A
// non-zero exit is logged and otherwise ignored.
func (p *Project) Configure(ctx context.Context) error {
	slog.Info("configuring source", "variant", p.Variant(), "src", filepath.Base(string(p.cfg.Dir)))

	if !p.cfg.HasConfigure() {
		return nil
	}

	run, err := p.deps.Shell.RunShell(ctx, p.cfg.Dir, p.cfg.ConfigureCmd, p.tools.BaseEnv, p.tools.Verbose)
	if err != nil {
		slog.Error("Failed to run configure command", "dir", p.cfg.Dir, "error", err)
		return fmt.Errorf("failed to configure %s: %w", p.Variant(), err)
	}

	if !run.OK() {
		slog.Warn("configuration returned non-zero code", "dir", p.cfg.Dir, "exit_code", run.ExitCode)
	}

	return nil
}

// ImportCompilationDB writes db to compile_commands.json at the project
// root with every directory and file made absolute under the root and the
// include path flag appended to each command. db is not modified.
func (p *Project) ImportCompilationDB(ctx context.Context, db m.CompilationDB) error {
	include, ok := p.tools.BaseEnv.Lookup(p.tools.IncludePathEnv)
	if !ok || include == "" {
		return fmt.Errorf("%w: %s", ErrMissingIncludePath, p.tools.IncludePathEnv)
	}

	imported := absolutizeCompilationDB(db, string(p.cfg.Dir), "-I"+include)
	target := p.deps.FS.JoinPath(ctx, string(p.cfg.Dir), m.CompilationDBFile)

	if err := p.deps.CompDB.SaveCompilationDB(ctx, target, imported); err != nil {
		slog.Error("Failed to write compilation database", "path", target, "error", err)
		return fmt.Errorf("failed to write compilation database: %w", err)
	}

	slog.Debug("imported compilation database", "variant", p.Variant(), "records", len(imported))

	return nil
}

// diffLines splits into lines and keeps newline characters, which produces
// exact unified hunks. A last line without a newline carries the
// "\ No newline at end of file" marker so hunks stay well formed.
func diffLines(s string) []string {
	if s == "" {
		return []string{}
	}

	lines := strings.SplitAfter(s, "\n")
	if last := lines[len(lines)-1]; last == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] = last + "\n" + noNewlineMarker + "\n"
	}

	return lines
}
