// Package controller provides output adapters for displaying build progress and reports.
package controller

import (
	"context"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	runID    string
	variants []m.Variant
}

// WithRun tells the UI which run it displays and which variants take part.
func WithRun(runID string, variants []m.Variant) StartOption {
	return func(c *StartConfig) {
		c.runID = runID
		c.variants = append([]m.Variant(nil), variants...)
	}
}

func newStartConfig(options []StartOption) StartConfig {
	var cfg StartConfig
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines the interface for displaying build progress.
// Implementations can use different output methods (simple text, TUI, etc).
// Display methods may be called from several goroutines at once.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	DisplayStage(ctx context.Context, variant m.Variant, stage m.Stage)
	DisplayTestCase(ctx context.Context, report m.TestCaseReport)
	DisplayVariantReport(ctx context.Context, report m.VariantReport)
	DisplayReport(ctx context.Context, report m.Report) error
	DisplayDiff(ctx context.Context, diff m.VariantDiff, statOnly bool) error
}
