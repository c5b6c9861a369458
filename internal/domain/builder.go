package domain

import (
	"context"
	"fmt"
	"log/slog"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

const (
	bitcodeSuffix        = ".bc"
	patchedBitcodeSuffix = ".patched.bc"
)

// Build runs the whole-project build command with the variant's compiler.
func (p *Project) Build(ctx context.Context) (m.BuildResult, error) {
	slog.Info("building source", "variant", p.Variant(), "dir", p.cfg.Dir)

	return p.runBuild(ctx, p.cfg.Dir, p.cfg.BuildCmd)
}

// BuildTest materializes the dependency of one test case and returns the
// path of the artifact a test runner needs. When that artifact is absent
// after every applicable step the error is a *CompilationError.
func (p *Project) BuildTest(ctx context.Context, testCase string) (m.Path, error) {
	tc, ok := p.cfg.Tests[testCase]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTestCase, testCase)
	}

	if tc.Build != nil {
		dir := p.deps.FS.JoinPath(ctx, string(p.cfg.Dir), tc.Build.Directory)
		if _, err := p.runBuild(ctx, dir, tc.Build.Command); err != nil {
			return "", err
		}
	}

	executable := p.deps.FS.JoinPath(ctx, string(p.cfg.Dir), tc.Executable)

	switch p.profile.PostBuild {
	case PostBuildPatchBitcode:
		return p.patchBitcode(ctx, testCase, executable)
	default:
		return executable, p.requireArtifact(ctx, testCase, executable)
	}
}

// TestArtifact returns where BuildTest places the dependency of testCase,
// without building anything.
func (p *Project) TestArtifact(testCase string) (m.Path, error) {
	tc, ok := p.cfg.Tests[testCase]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTestCase, testCase)
	}

	executable := string(p.deps.FS.JoinPath(context.Background(), string(p.cfg.Dir), tc.Executable))
	if p.profile.PostBuild == PostBuildPatchBitcode {
		return m.Path(executable + patchedBitcodeSuffix), nil
	}

	return m.Path(executable), nil
}

// patchBitcode requires the bitcode, runs the patcher on it and requires
// the patched sibling. The patcher's exit code is advisory.
func (p *Project) patchBitcode(ctx context.Context, testCase string, executable m.Path) (m.Path, error) {
	bitcode := m.Path(string(executable) + bitcodeSuffix)
	if err := p.requireArtifact(ctx, testCase, bitcode); err != nil {
		return "", err
	}

	run, err := p.deps.Shell.RunTool(ctx, p.cfg.Dir, p.tools.BitcodePatcher, []string{string(bitcode)}, p.tools.BaseEnv, p.tools.Verbose)
	if err != nil {
		slog.Error("Failed to run bitcode patcher", "patcher", p.tools.BitcodePatcher, "error", err)
		return "", fmt.Errorf("failed to run bitcode patcher: %w", err)
	}

	if !run.OK() {
		slog.Warn("patching returned non-zero code", "bitcode", p.relative(ctx, bitcode), "exit_code", run.ExitCode)
	}

	patched := m.Path(string(executable) + patchedBitcodeSuffix)

	return patched, p.requireArtifact(ctx, testCase, patched)
}

func (p *Project) requireArtifact(ctx context.Context, testCase string, artifact m.Path) error {
	ok, err := p.deps.FS.Exists(ctx, artifact)
	if err != nil {
		return fmt.Errorf("failed to check test dependency: %w", err)
	}

	if ok {
		return nil
	}

	rel := p.relative(ctx, artifact)
	slog.Error("failed to build test dependency", "variant", p.Variant(), "test", testCase, "dependency", rel)

	return &CompilationError{Variant: p.Variant(), TestCase: testCase, Artifact: rel}
}

// runBuild routes a build through the executor with the variant's compiler.
func (p *Project) runBuild(ctx context.Context, dir m.Path, command string) (m.BuildResult, error) {
	if cc, ok := p.profile.CC(p.tools.CompilerWrapper); ok {
		return p.executor.BuildWithCC(ctx, dir, command, p.tools.BaseEnv, cc)
	}

	return p.executor.BuildInEnv(ctx, dir, command, p.tools.BaseEnv)
}

// relative renders path relative to the project root for messages.
func (p *Project) relative(ctx context.Context, path m.Path) m.Path {
	rel, err := p.deps.FS.RelPath(ctx, p.cfg.Dir, path)
	if err != nil {
		return path
	}

	return rel
}
