package domain

import (
	"errors"
	"fmt"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

var (
	// ErrCompilation marks a test case whose required artifact is absent
	// after every applicable build step.
	ErrCompilation = errors.New("compilation failed")

	// ErrUnknownTestCase is returned for an identifier missing from the test spec.
	ErrUnknownTestCase = errors.New("unknown test case")

	// ErrUnsupportedVariant is returned when an operation does not apply to a variant.
	ErrUnsupportedVariant = errors.New("unsupported variant")

	// ErrMissingIncludePath is returned when the include path variable is unset.
	ErrMissingIncludePath = errors.New("include path variable is not set")

	// ErrBackupMissing is returned when reopening a project without a backup.
	ErrBackupMissing = errors.New("buggy file backup is missing")
)

// CompilationError reports the artifact a test case needed but did not get.
type CompilationError struct {
	Variant  m.Variant
	TestCase string
	Artifact m.Path
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("%s: failed to build test %s dependency %s", e.Variant, e.TestCase, e.Artifact)
}

// Unwrap makes errors.Is(err, ErrCompilation) hold.
func (e *CompilationError) Unwrap() error {
	return ErrCompilation
}
