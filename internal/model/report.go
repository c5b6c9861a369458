package model

import "time"

// RunOutcome tells whether an external tool exited cleanly.
type RunOutcome int

const (
	// Succeeded indicates the tool exited with status 0.
	Succeeded RunOutcome = iota
	// ToolReportedFailure indicates the tool ran and exited non-zero.
	ToolReportedFailure
)

// String implements fmt.Stringer.
func (o RunOutcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case ToolReportedFailure:
		return "tool reported failure"
	default:
		return "unknown"
	}
}

// RunResult is the outcome of one external process.
type RunResult struct {
	Outcome  RunOutcome
	ExitCode int
}

// OK reports whether the process exited with status 0.
func (r RunResult) OK() bool {
	return r.Outcome == Succeeded
}

// BuildResult is the outcome of one build invocation, including the files
// the compiler wrapper reported through the message channel.
type BuildResult struct {
	RunResult
	FailedFiles []string
}

// TestStatus represents whether a test case dependency was produced.
type TestStatus int

const (
	// Built indicates the required artifact exists.
	Built TestStatus = iota
	// Failed indicates the required artifact is absent.
	Failed
)

// String implements fmt.Stringer.
func (s TestStatus) String() string {
	switch s {
	case Built:
		return "built"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// TestCaseReport records the result of building one test case dependency.
type TestCaseReport struct {
	Variant  Variant
	TestCase string
	Status   TestStatus
	Artifact Path
	Err      error
}

// VariantReport holds the results for one variant.
type VariantReport struct {
	Variant  Variant
	Dir      Path
	Build    BuildResult
	Tests    []TestCaseReport
	Duration time.Duration
}

// Failed returns the test cases whose dependency could not be built.
func (r VariantReport) Failed() []TestCaseReport {
	var failed []TestCaseReport

	for _, tc := range r.Tests {
		if tc.Status == Failed {
			failed = append(failed, tc)
		}
	}

	return failed
}

// Report is the result of a whole run.
type Report struct {
	RunID    string
	Variants []VariantReport
}

// Stage is a step of a run that the UI reports progress for.
type Stage int

const (
	// StageConfigure runs the configure command.
	StageConfigure Stage = iota
	// StageCompilationDB exports or imports the compilation database.
	StageCompilationDB
	// StageBuild runs the whole-project build.
	StageBuild
	// StageTests builds test case dependencies.
	StageTests
	// StageDone marks a finished variant.
	StageDone
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageConfigure:
		return "configure"
	case StageCompilationDB:
		return "compdb"
	case StageBuild:
		return "build"
	case StageTests:
		return "tests"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}
