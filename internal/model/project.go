// Package model defines the data structures shared by the variant builders.
package model

// Path represents a file system path.
type Path string

// BuildStep is an optional per-test build command run inside Directory,
// which is relative to the project root.
type BuildStep struct {
	Directory string `yaml:"directory" json:"directory" validate:"required"`
	Command   string `yaml:"command"   json:"command"   validate:"required"`
}

// TestCase describes how to obtain the artifact a test runner needs.
// Executable is relative to the project root.
type TestCase struct {
	Build      *BuildStep `yaml:"build,omitempty" json:"build,omitempty" validate:"omitempty"`
	Executable string     `yaml:"executable"      json:"executable"      validate:"required"`
}

// TestSpec maps a test case identifier to its description.
type TestSpec map[string]TestCase

// IDs returns the test case identifiers in a stable order.
func (s TestSpec) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}

	sortStrings(ids)

	return ids
}

// ProjectConfig is the build metadata every variant shares. Dir differs per
// variant; every other field is identical across variants of one run.
type ProjectConfig struct {
	Dir          Path
	Buggy        string
	BuildCmd     string
	ConfigureCmd string
	Tests        TestSpec
}

// HasConfigure reports whether a configure step is declared.
func (c ProjectConfig) HasConfigure() bool {
	return c.ConfigureCmd != ""
}
