package model

import (
	"fmt"
	"sort"
	"strings"
)

// Variant identifies one build configuration of the same source tree.
type Variant string

const (
	// VariantValidation builds plain executables with the ambient toolchain.
	VariantValidation Variant = "validation"
	// VariantFrontend builds with the compiler wrapper in test mode.
	VariantFrontend Variant = "frontend"
	// VariantBackend builds bitcode with the compiler wrapper in klee mode.
	VariantBackend Variant = "backend"
	// VariantGolden builds the reference tree in test mode.
	VariantGolden Variant = "golden"
)

// Variants returns every known variant in pipeline order.
func Variants() []Variant {
	return []Variant{VariantValidation, VariantFrontend, VariantBackend, VariantGolden}
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return string(v)
}

// Order returns the position of v in pipeline order, or -1 if unknown.
func (v Variant) Order() int {
	for i, known := range Variants() {
		if known == v {
			return i
		}
	}

	return -1
}

// ParseVariant converts a case-insensitive name into a Variant.
func ParseVariant(name string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(name)))
	if v.Order() < 0 {
		return "", fmt.Errorf("unknown variant %q", name)
	}

	return v, nil
}

// SortVariants orders vs in pipeline order, in place.
func SortVariants(vs []Variant) {
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].Order() < vs[j].Order()
	})
}

func sortStrings(s []string) {
	sort.Strings(s)
}
