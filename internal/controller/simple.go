package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

// SimpleUI implements UI using cobra Command's output, one line per event.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start prints the run header when a run is given.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)
	if cfg.runID != "" {
		s.printf("Run %s: %s\n", cfg.runID, joinVariants(cfg.variants))
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// DisplayStage prints the stage a variant entered.
func (s *SimpleUI) DisplayStage(ctx context.Context, variant m.Variant, stage m.Stage) {
	if ctx.Err() != nil {
		return
	}

	s.printf("[%s] %s\n", variant, stage)
}

// DisplayTestCase prints the outcome of one test case dependency.
func (s *SimpleUI) DisplayTestCase(ctx context.Context, report m.TestCaseReport) {
	if ctx.Err() != nil {
		return
	}

	if report.Status == m.Failed {
		s.printf("[%s] test %s -> %s (%v)\n", report.Variant, report.TestCase, report.Status, report.Err)
		return
	}

	s.printf("[%s] test %s -> %s %s\n", report.Variant, report.TestCase, report.Status, report.Artifact)
}

// DisplayVariantReport prints the summary line of one variant.
func (s *SimpleUI) DisplayVariantReport(ctx context.Context, report m.VariantReport) {
	if ctx.Err() != nil {
		return
	}

	s.printf("[%s] %s in %s\n", report.Variant, formatBuild(report.Build), formatDuration(report.Duration))

	for _, file := range report.Build.FailedFiles {
		s.printf("[%s]   failed to build %s\n", report.Variant, file)
	}
}

// DisplayReport prints the summary table of a run.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderReportTable(report))

	return nil
}

// DisplayDiff prints the unified diff or its stats.
func (s *SimpleUI) DisplayDiff(ctx context.Context, diff m.VariantDiff, statOnly bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if diff.Empty() {
		s.printf("%s: %s unchanged\n", diff.Variant, diff.Buggy)
		return nil
	}

	if statOnly {
		s.printf("%s: %s %s\n", diff.Variant, diff.Buggy, diff.Summary)
		return nil
	}

	s.printf("%s", diff.Unified)

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderReportTable(report m.Report) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Variant", "Build", "Tests", "Failed", "Duration"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_RIGHT,
	})

	totalTests, totalFailed := 0, 0

	for _, vr := range report.Variants {
		failed := len(vr.Failed())
		totalTests += len(vr.Tests)
		totalFailed += failed

		table.Append([]string{
			vr.Variant.String(),
			formatBuild(vr.Build),
			fmt.Sprintf("%d", len(vr.Tests)),
			fmt.Sprintf("%d", failed),
			formatDuration(vr.Duration),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Run %s", shortRunID(report.RunID)),
		"",
		fmt.Sprintf("%d", totalTests),
		fmt.Sprintf("%d", totalFailed),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func formatBuild(result m.BuildResult) string {
	if result.OK() {
		return result.Outcome.String()
	}

	return fmt.Sprintf("%s (exit %d)", result.Outcome, result.ExitCode)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func joinVariants(variants []m.Variant) string {
	names := make([]string, 0, len(variants))
	for _, v := range variants {
		names = append(names, v.String())
	}

	return strings.Join(names, ", ")
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
