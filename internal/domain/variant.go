package domain

import (
	"fmt"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

// CompilerMode selects how CC is set for a variant's builds.
type CompilerMode int

const (
	// CompilerAmbient leaves CC as the environment has it.
	CompilerAmbient CompilerMode = iota
	// CompilerTest runs the compiler wrapper with --test.
	CompilerTest
	// CompilerKlee runs the compiler wrapper with --klee.
	CompilerKlee
)

// Flag returns the wrapper flag for the mode, or "" for CompilerAmbient.
func (c CompilerMode) Flag() string {
	switch c {
	case CompilerTest:
		return "--test"
	case CompilerKlee:
		return "--klee"
	default:
		return ""
	}
}

// PostBuildStep is the extra work done after a test case's executable step.
type PostBuildStep int

const (
	// PostBuildNone requires the executable itself.
	PostBuildNone PostBuildStep = iota
	// PostBuildPatchBitcode requires <executable>.bc, runs the bitcode
	// patcher on it and then requires <executable>.patched.bc.
	PostBuildPatchBitcode
)

// VariantProfile is the closed description of how a variant builds.
type VariantProfile struct {
	Variant              m.Variant
	Compiler             CompilerMode
	PostBuild            PostBuildStep
	ExportsCompilationDB bool
}

var variantProfiles = map[m.Variant]VariantProfile{
	m.VariantValidation: {
		Variant:              m.VariantValidation,
		Compiler:             CompilerAmbient,
		PostBuild:            PostBuildNone,
		ExportsCompilationDB: true,
	},
	m.VariantFrontend: {
		Variant:   m.VariantFrontend,
		Compiler:  CompilerTest,
		PostBuild: PostBuildNone,
	},
	m.VariantBackend: {
		Variant:   m.VariantBackend,
		Compiler:  CompilerKlee,
		PostBuild: PostBuildPatchBitcode,
	},
	m.VariantGolden: {
		Variant:   m.VariantGolden,
		Compiler:  CompilerTest,
		PostBuild: PostBuildNone,
	},
}

// ProfileFor returns the build profile of v.
func ProfileFor(v m.Variant) (VariantProfile, error) {
	profile, ok := variantProfiles[v]
	if !ok {
		return VariantProfile{}, fmt.Errorf("%w: %q", ErrUnsupportedVariant, v)
	}

	return profile, nil
}

// CC returns the compiler override for the profile, and false when the
// ambient compiler is used.
func (p VariantProfile) CC(wrapper string) (string, bool) {
	flag := p.Compiler.Flag()
	if flag == "" {
		return "", false
	}

	return wrapper + " " + flag, true
}
