package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	variantStyle = lipgloss.NewStyle().Width(12)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI with a live Bubble Tea view: one spinner row per
// variant while the run is in progress, then the summary table.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the live view in the background.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.program != nil {
		return nil
	}

	program := tea.NewProgram(newProgressModel(cfg.runID, cfg.variants),
		tea.WithOutput(p.output),
		tea.WithInput(nil),
		tea.WithContext(ctx),
	)
	done := make(chan struct{})

	go func() {
		defer close(done)

		_, _ = program.Run()
	}()

	p.program = program
	p.done = done

	return nil
}

// Close stops the live view and waits for it to restore the terminal.
func (p *TUI) Close(_ context.Context) {
	p.stop()
}

// DisplayStage moves a variant row to stage.
func (p *TUI) DisplayStage(_ context.Context, variant m.Variant, stage m.Stage) {
	p.send(stageMsg{variant: variant, stage: stage})
}

// DisplayTestCase counts one test case dependency on its variant row.
func (p *TUI) DisplayTestCase(_ context.Context, report m.TestCaseReport) {
	p.send(testCaseMsg(report))
}

// DisplayVariantReport marks a variant row finished.
func (p *TUI) DisplayVariantReport(_ context.Context, report m.VariantReport) {
	p.send(variantDoneMsg(report))
}

// DisplayReport stops the live view and prints the summary table.
func (p *TUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.stop()

	_, err := fmt.Fprintf(p.output, "\n%s", renderReportTable(report))

	return err
}

// DisplayDiff prints the diff with added and removed lines coloured.
func (p *TUI) DisplayDiff(ctx context.Context, diff m.VariantDiff, statOnly bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := fmt.Fprint(p.output, renderDiff(diff, statOnly))

	return err
}

func (p *TUI) send(msg tea.Msg) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.program != nil {
		p.program.Send(msg)
	}
}

func (p *TUI) stop() {
	p.mu.Lock()
	program, done := p.program, p.done
	p.program, p.done = nil, nil
	p.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done
}

func renderDiff(diff m.VariantDiff, statOnly bool) string {
	if diff.Empty() {
		return faintStyle.Render(fmt.Sprintf("%s: %s unchanged", diff.Variant, diff.Buggy)) + "\n"
	}

	if statOnly {
		return fmt.Sprintf("%s: %s %s %s\n", diff.Variant, diff.Buggy,
			okStyle.Render(fmt.Sprintf("+%d", len(diff.Summary.Added))),
			failStyle.Render(fmt.Sprintf("-%d", len(diff.Summary.Removed))))
	}

	var b strings.Builder

	for _, line := range strings.SplitAfter(diff.Unified, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(titleStyle.Render(strings.TrimSuffix(line, "\n")) + "\n")
		case strings.HasPrefix(line, "+"):
			b.WriteString(okStyle.Render(strings.TrimSuffix(line, "\n")) + "\n")
		case strings.HasPrefix(line, "-"):
			b.WriteString(failStyle.Render(strings.TrimSuffix(line, "\n")) + "\n")
		default:
			b.WriteString(line)
		}
	}

	return b.String()
}

type (
	stageMsg struct {
		variant m.Variant
		stage   m.Stage
	}
	testCaseMsg    m.TestCaseReport
	variantDoneMsg m.VariantReport
)

type variantRow struct {
	variant m.Variant
	stage   m.Stage
	built   int
	failed  int
	result  *m.BuildResult
}

// progressModel is the Bubble Tea model of a running build.
type progressModel struct {
	runID   string
	rows    []*variantRow
	index   map[m.Variant]*variantRow
	spinner spinner.Model
}

func newProgressModel(runID string, variants []m.Variant) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	model := progressModel{
		runID:   runID,
		index:   make(map[m.Variant]*variantRow, len(variants)),
		spinner: s,
	}

	for _, v := range variants {
		model.row(v)
	}

	return model
}

func (pm *progressModel) row(v m.Variant) *variantRow {
	if row, ok := pm.index[v]; ok {
		return row
	}

	row := &variantRow{variant: v}
	pm.rows = append(pm.rows, row)
	pm.index[v] = row

	return row
}

func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return pm, tea.Quit
		}

	case stageMsg:
		pm.row(msg.variant).stage = msg.stage

	case testCaseMsg:
		row := pm.row(msg.Variant)
		if msg.Status == m.Failed {
			row.failed++
		} else {
			row.built++
		}

	case variantDoneMsg:
		row := pm.row(msg.Variant)
		row.stage = m.StageDone
		result := msg.Build
		row.result = &result

	case spinner.TickMsg:
		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd
	}

	return pm, nil
}

func (pm progressModel) View() string {
	var b strings.Builder

	title := "vbuild"
	if pm.runID != "" {
		title += " " + shortRunID(pm.runID)
	}

	b.WriteString(titleStyle.Render(title) + "\n\n")

	for _, row := range pm.rows {
		b.WriteString("  ")
		b.WriteString(pm.renderMarker(row))
		b.WriteString(" ")
		b.WriteString(variantStyle.Render(row.variant.String()))
		b.WriteString(renderRowStatus(row))
		b.WriteString("\n")
	}

	return b.String()
}

func (pm progressModel) renderMarker(row *variantRow) string {
	switch {
	case row.stage != m.StageDone:
		return pm.spinner.View()
	case row.failed > 0 || (row.result != nil && !row.result.OK()):
		return failStyle.Render("✗")
	default:
		return okStyle.Render("✓")
	}
}

func renderRowStatus(row *variantRow) string {
	status := row.stage.String()
	if row.stage == m.StageDone && row.result != nil {
		status = formatBuild(*row.result)
	}

	tests := faintStyle.Render(fmt.Sprintf("  tests %d built", row.built))
	if row.failed > 0 {
		tests += failStyle.Render(fmt.Sprintf(", %d failed", row.failed))
	}

	return status + tests
}
