package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vbuild.dev/pkg/vbuild/internal/adapter"
	"vbuild.dev/pkg/vbuild/internal/controller"
	m "vbuild.dev/pkg/vbuild/internal/model"
)

// ProjectArgs locate the manifest and the toolchain shared by every command.
type ProjectArgs struct {
	Manifest  m.Path
	Toolchain Toolchain
}

// RunArgs contains the arguments for a full build run.
type RunArgs struct {
	ProjectArgs
	// Variants restricts the run; empty means every declared variant.
	Variants []m.Variant
	// Tests restricts the test cases; empty means every declared test.
	Tests    []string
	Parallel int
	// ExportCompilationDB exports validation's database into the others.
	ExportCompilationDB bool
	// KeepBackups leaves the buggy file backups in place after the run.
	KeepBackups bool
}

// BuildArgs contains the arguments for building a single variant.
type BuildArgs struct {
	ProjectArgs
	Variant m.Variant
	Tests   []string
	// SkipBuild builds only the listed test cases.
	SkipBuild bool
}

// ExportArgs contains the arguments for exporting the compilation database.
type ExportArgs struct {
	ProjectArgs
	// Output is written when set.
	Output m.Path
}

// ImportArgs contains the arguments for importing a compilation database.
type ImportArgs struct {
	ProjectArgs
	Variant m.Variant
	Input   m.Path
}

// DiffArgs contains the arguments for diffing a variant's buggy file.
type DiffArgs struct {
	ProjectArgs
	Variant  m.Variant
	StatOnly bool
}

// RestoreArgs contains the arguments for restoring a variant's buggy file.
type RestoreArgs struct {
	ProjectArgs
	Variant m.Variant
}

// CleanArgs contains the arguments for removing backups.
type CleanArgs struct {
	ProjectArgs
	// Variants restricts the cleanup; empty means every declared variant.
	Variants []m.Variant
}

// Workflow drives the variants of one manifest.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) (m.Report, error)
	Build(ctx context.Context, args BuildArgs) (m.VariantReport, error)
	ExportCompilationDB(ctx context.Context, args ExportArgs) (m.CompilationDB, error)
	ImportCompilationDB(ctx context.Context, args ImportArgs) error
	Diff(ctx context.Context, args DiffArgs) (m.VariantDiff, error)
	Restore(ctx context.Context, args RestoreArgs) error
	Clean(ctx context.Context, args CleanArgs) error
}

type workflow struct {
	adapter.ManifestLoader
	controller.UI
	deps ProjectDeps
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(loader adapter.ManifestLoader, deps ProjectDeps, ui controller.UI) Workflow {
	return &workflow{
		ManifestLoader: loader,
		UI:             ui,
		deps:           deps,
	}
}

// Run configures every selected variant, shares validation's compilation
// database, builds the variants in parallel and then their test cases.
func (w *workflow) Run(ctx context.Context, args RunArgs) (m.Report, error) {
	manifest, err := w.LoadManifest(ctx, args.Manifest)
	if err != nil {
		slog.Error("Failed to load manifest", "manifest", args.Manifest, "error", err)
		return m.Report{}, err
	}

	variants, err := selectVariants(&manifest, args.Variants)
	if err != nil {
		return m.Report{}, err
	}

	tests, err := selectTests(&manifest, args.Tests)
	if err != nil {
		return m.Report{}, err
	}

	report := m.Report{RunID: uuid.NewString()}
	logger := slog.With("run_id", report.RunID)

	if err := w.Start(ctx, controller.WithRun(report.RunID, variants)); err != nil {
		logger.Error("Failed to start workflow UI", "error", err)
		return m.Report{}, err
	}
	defer w.Close(ctx)

	projects, err := w.createProjects(ctx, &manifest, variants, args.Toolchain)
	if !args.KeepBackups {
		defer w.removeBackups(ctx, projects)
	}

	if err != nil {
		return m.Report{}, err
	}

	logger.Info("starting run", "variants", len(projects), "tests", len(tests), "parallel", args.Parallel)

	if err := w.configureAll(ctx, projects, args.Parallel); err != nil {
		return m.Report{}, err
	}

	if args.ExportCompilationDB {
		if err := w.shareCompilationDB(ctx, projects); err != nil {
			return m.Report{}, err
		}
	}

	reports, err := w.buildAll(ctx, projects, tests, args.Parallel)
	if err != nil {
		logger.Error("Run aborted", "error", err)
		return m.Report{}, err
	}

	report.Variants = reports

	if err := w.DisplayReport(ctx, report); err != nil {
		logger.Error("Failed to display report", "error", err)
		return report, err
	}

	logger.Info("run finished", "variants", len(reports))

	return report, nil
}

// createProjects opens one project per variant. A backup kept by an earlier
// command is reused so it stays the pristine state. On error the projects
// opened so far are returned with it.
func (w *workflow) createProjects(ctx context.Context, manifest *m.Manifest, variants []m.Variant, tools Toolchain) ([]*Project, error) {
	projects := make([]*Project, 0, len(variants))

	for _, v := range variants {
		project, err := w.openProject(ctx, manifest, v, tools, true)
		if err != nil {
			slog.Error("Failed to open project", "variant", v, "error", err)
			return projects, err
		}

		projects = append(projects, project)
	}

	return projects, nil
}

func (w *workflow) configureAll(ctx context.Context, projects []*Project, parallel int) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if parallel > 0 {
		group.SetLimit(parallel)
	}

	for _, project := range projects {
		group.Go(func() error {
			w.DisplayStage(groupCtx, project.Variant(), m.StageConfigure)
			return project.Configure(groupCtx)
		})
	}

	return group.Wait()
}

// shareCompilationDB exports validation's database and imports it into
// every other project. It does nothing when validation is not selected.
func (w *workflow) shareCompilationDB(ctx context.Context, projects []*Project) error {
	validation := findProject(projects, m.VariantValidation)
	if validation == nil {
		slog.Debug("validation not selected, skipping compilation database")
		return nil
	}

	w.DisplayStage(ctx, validation.Variant(), m.StageCompilationDB)

	db, err := validation.ExportCompilationDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to export compilation database: %w", err)
	}

	for _, project := range projects {
		if project == validation {
			continue
		}

		w.DisplayStage(ctx, project.Variant(), m.StageCompilationDB)

		if err := project.ImportCompilationDB(ctx, db); err != nil {
			return fmt.Errorf("failed to import compilation database into %s: %w", project.Variant(), err)
		}
	}

	return nil
}

func (w *workflow) buildAll(ctx context.Context, projects []*Project, tests []string, parallel int) ([]m.VariantReport, error) {
	reports := make([]m.VariantReport, len(projects))

	group, groupCtx := errgroup.WithContext(ctx)
	if parallel > 0 {
		group.SetLimit(parallel)
	}

	for i, project := range projects {
		group.Go(func() error {
			report, err := w.buildVariant(groupCtx, project, tests, false)
			if err != nil {
				return err
			}

			reports[i] = report

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return reports, nil
}

// buildVariant builds one project and then its test cases in order. A
// CompilationError fails only its test case.
func (w *workflow) buildVariant(ctx context.Context, project *Project, tests []string, skipBuild bool) (m.VariantReport, error) {
	started := time.Now()
	report := m.VariantReport{Variant: project.Variant(), Dir: project.Dir()}

	if !skipBuild {
		w.DisplayStage(ctx, project.Variant(), m.StageBuild)

		result, err := project.Build(ctx)
		if err != nil {
			return m.VariantReport{}, err
		}

		report.Build = result
	}

	if len(tests) > 0 {
		w.DisplayStage(ctx, project.Variant(), m.StageTests)
	}

	for _, id := range tests {
		tc := m.TestCaseReport{Variant: project.Variant(), TestCase: id, Status: m.Built}

		artifact, err := project.BuildTest(ctx, id)

		var compErr *CompilationError

		switch {
		case errors.As(err, &compErr):
			tc.Status = m.Failed
			tc.Artifact = compErr.Artifact
			tc.Err = compErr
		case err != nil:
			return m.VariantReport{}, err
		default:
			tc.Artifact = artifact
		}

		report.Tests = append(report.Tests, tc)
		w.DisplayTestCase(ctx, tc)
	}

	report.Duration = time.Since(started)
	w.DisplayVariantReport(ctx, report)

	return report, nil
}

func (w *workflow) removeBackups(ctx context.Context, projects []*Project) {
	for _, project := range projects {
		_ = project.RemoveBackup(ctx)
	}
}

// Build builds a single variant, reusing the backup of an earlier run or
// taking one when the variant has none yet.
func (w *workflow) Build(ctx context.Context, args BuildArgs) (m.VariantReport, error) {
	manifest, err := w.LoadManifest(ctx, args.Manifest)
	if err != nil {
		return m.VariantReport{}, err
	}

	tests, err := selectTests(&manifest, args.Tests)
	if err != nil {
		return m.VariantReport{}, err
	}

	if args.SkipBuild && len(args.Tests) == 0 {
		return m.VariantReport{}, fmt.Errorf("%w: no test case given", ErrUnknownTestCase)
	}

	if !args.SkipBuild && len(args.Tests) == 0 {
		tests = nil
	}

	project, err := w.openProject(ctx, &manifest, args.Variant, args.Toolchain, true)
	if err != nil {
		return m.VariantReport{}, err
	}

	return w.buildVariant(ctx, project, tests, args.SkipBuild)
}

// ExportCompilationDB exports validation's database, writing it to
// args.Output when set.
func (w *workflow) ExportCompilationDB(ctx context.Context, args ExportArgs) (m.CompilationDB, error) {
	manifest, err := w.LoadManifest(ctx, args.Manifest)
	if err != nil {
		return nil, err
	}

	project, err := w.openProject(ctx, &manifest, m.VariantValidation, args.Toolchain, true)
	if err != nil {
		return nil, err
	}

	db, err := project.ExportCompilationDB(ctx)
	if err != nil {
		return nil, err
	}

	if args.Output != "" {
		if err := w.deps.CompDB.SaveCompilationDB(ctx, args.Output, db); err != nil {
			slog.Error("Failed to write compilation database", "path", args.Output, "error", err)
			return nil, fmt.Errorf("failed to write compilation database: %w", err)
		}
	}

	return db, nil
}

// ImportCompilationDB imports a database exported earlier into a variant.
func (w *workflow) ImportCompilationDB(ctx context.Context, args ImportArgs) error {
	manifest, err := w.LoadManifest(ctx, args.Manifest)
	if err != nil {
		return err
	}

	db, err := w.deps.CompDB.LoadCompilationDB(ctx, args.Input)
	if err != nil {
		slog.Error("Failed to read compilation database", "path", args.Input, "error", err)
		return fmt.Errorf("failed to read compilation database: %w", err)
	}

	project, err := w.openProject(ctx, &manifest, args.Variant, args.Toolchain, true)
	if err != nil {
		return err
	}

	return project.ImportCompilationDB(ctx, db)
}

// Diff shows how a variant's buggy file differs from its backup.
func (w *workflow) Diff(ctx context.Context, args DiffArgs) (m.VariantDiff, error) {
	manifest, err := w.LoadManifest(ctx, args.Manifest)
	if err != nil {
		return m.VariantDiff{}, err
	}

	project, err := w.openProject(ctx, &manifest, args.Variant, args.Toolchain, false)
	if err != nil {
		return m.VariantDiff{}, err
	}

	unified, err := project.DiffBuggy(ctx)
	if err != nil {
		return m.VariantDiff{}, err
	}

	summary, err := SummarizeDiff(unified)
	if err != nil {
		return m.VariantDiff{}, err
	}

	diff := m.VariantDiff{
		Variant: args.Variant,
		Buggy:   manifest.Buggy,
		Unified: unified,
		Summary: summary,
	}

	if err := w.DisplayDiff(ctx, diff, args.StatOnly); err != nil {
		return diff, err
	}

	return diff, nil
}

// Restore copies a variant's backup over its buggy file.
func (w *workflow) Restore(ctx context.Context, args RestoreArgs) error {
	manifest, err := w.LoadManifest(ctx, args.Manifest)
	if err != nil {
		return err
	}

	project, err := w.openProject(ctx, &manifest, args.Variant, args.Toolchain, false)
	if err != nil {
		return err
	}

	if err := project.RestoreBuggy(ctx); err != nil {
		return err
	}

	slog.Info("restored buggy file", "variant", args.Variant, "buggy", manifest.Buggy)

	return nil
}

// Clean removes the backups of the selected variants. Variants without a
// backup are skipped.
func (w *workflow) Clean(ctx context.Context, args CleanArgs) error {
	manifest, err := w.LoadManifest(ctx, args.Manifest)
	if err != nil {
		return err
	}

	variants, err := selectVariants(&manifest, args.Variants)
	if err != nil {
		return err
	}

	var errs []error

	for _, v := range variants {
		project, err := w.openProject(ctx, &manifest, v, args.Toolchain, false)
		if errors.Is(err, ErrBackupMissing) {
			slog.Debug("no backup to remove", "variant", v)
			continue
		}

		if err == nil {
			err = project.RemoveBackup(ctx)
		}

		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// openProject reopens a declared variant. With create set a variant that
// has no backup yet is created instead.
func (w *workflow) openProject(ctx context.Context, manifest *m.Manifest, v m.Variant, tools Toolchain, create bool) (*Project, error) {
	cfg, err := manifest.ProjectConfig(v)
	if err != nil {
		return nil, err
	}

	project, err := ReopenProject(ctx, v, cfg, tools, w.deps)
	if errors.Is(err, ErrBackupMissing) && create {
		return NewProject(ctx, v, cfg, tools, w.deps)
	}

	return project, err
}

func selectVariants(manifest *m.Manifest, requested []m.Variant) ([]m.Variant, error) {
	if len(requested) == 0 {
		return manifest.DeclaredVariants(), nil
	}

	seen := make(map[m.Variant]bool, len(requested))
	out := make([]m.Variant, 0, len(requested))

	for _, v := range requested {
		if _, ok := manifest.Variants[v]; !ok {
			return nil, fmt.Errorf("%w: %q", m.ErrVariantNotDeclared, v)
		}

		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	m.SortVariants(out)

	return out, nil
}

func selectTests(manifest *m.Manifest, requested []string) ([]string, error) {
	spec := m.TestSpec(manifest.Tests)
	if len(requested) == 0 {
		return spec.IDs(), nil
	}

	for _, id := range requested {
		if _, ok := spec[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTestCase, id)
		}
	}

	return requested, nil
}

func findProject(projects []*Project, v m.Variant) *Project {
	for _, project := range projects {
		if project.Variant() == v {
			return project
		}
	}

	return nil
}
