package model

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidManifest is returned when a manifest fails validation.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrVariantNotDeclared is returned for a variant the manifest has no
	// working directory for.
	ErrVariantNotDeclared = errors.New("variant is not declared in the manifest")
)

var manifestValidate = validator.New()

// Manifest describes one run: the shared build metadata plus the working
// copy of the source tree for each variant.
type Manifest struct {
	Buggy     string              `yaml:"buggy"               validate:"required"`
	Build     string              `yaml:"build"               validate:"required"`
	Configure string              `yaml:"configure,omitempty"`
	Tests     map[string]TestCase `yaml:"tests"               validate:"dive"`
	Variants  map[Variant]Path    `yaml:"variants"            validate:"required,min=1,dive,required"`
}

// Validate checks required fields and variant names.
func (mf *Manifest) Validate() error {
	if err := manifestValidate.Struct(mf); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	if filepath.IsAbs(mf.Buggy) {
		return fmt.Errorf("%w: buggy file %q must be relative to the variant directory", ErrInvalidManifest, mf.Buggy)
	}

	for v := range mf.Variants {
		if v.Order() < 0 {
			return fmt.Errorf("%w: unknown variant %q", ErrInvalidManifest, v)
		}
	}

	return nil
}

// DeclaredVariants returns the manifest variants in pipeline order.
func (mf *Manifest) DeclaredVariants() []Variant {
	out := make([]Variant, 0, len(mf.Variants))
	for v := range mf.Variants {
		out = append(out, v)
	}

	SortVariants(out)

	return out
}

// ProjectConfig returns the shared build metadata bound to variant v.
func (mf *Manifest) ProjectConfig(v Variant) (ProjectConfig, error) {
	dir, ok := mf.Variants[v]
	if !ok {
		return ProjectConfig{}, fmt.Errorf("%w: %q", ErrVariantNotDeclared, v)
	}

	return ProjectConfig{
		Dir:          dir,
		Buggy:        mf.Buggy,
		BuildCmd:     mf.Build,
		ConfigureCmd: mf.Configure,
		Tests:        TestSpec(mf.Tests),
	}, nil
}
