package model

import "fmt"

// DiffSummary lists the lines a unified diff adds and removes, without
// their +/- markers or trailing newlines.
type DiffSummary struct {
	Added   []string
	Removed []string
}

// String renders the summary as "+N -M".
func (s DiffSummary) String() string {
	return fmt.Sprintf("+%d -%d", len(s.Added), len(s.Removed))
}

// VariantDiff is the change of one variant's buggy file against its backup.
type VariantDiff struct {
	Variant Variant
	Buggy   string
	Unified string
	Summary DiffSummary
}

// Empty reports whether the buggy file is unchanged.
func (d VariantDiff) Empty() bool {
	return d.Unified == ""
}
