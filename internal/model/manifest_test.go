package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifest() Manifest {
	return Manifest{
		Buggy: "src/lib.c",
		Build: "make",
		Tests: map[string]TestCase{
			"t1": {Executable: "bin/t1"},
			"t2": {Executable: "bin/t2", Build: &BuildStep{Directory: "tests", Command: "make t2"}},
		},
		Variants: map[Variant]Path{
			VariantGolden:     "/work/golden",
			VariantValidation: "/work/validation",
		},
	}
}

func TestManifest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Manifest)
		wantErr bool
	}{
		{"valid", func(*Manifest) {}, false},
		{"missing buggy", func(mf *Manifest) { mf.Buggy = "" }, true},
		{"absolute buggy", func(mf *Manifest) { mf.Buggy = "/abs/lib.c" }, true},
		{"missing build", func(mf *Manifest) { mf.Build = "" }, true},
		{"no variants", func(mf *Manifest) { mf.Variants = nil }, true},
		{"empty variant dir", func(mf *Manifest) { mf.Variants[VariantBackend] = "" }, true},
		{"unknown variant", func(mf *Manifest) { mf.Variants["release"] = "/work/release" }, true},
		{"test without executable", func(mf *Manifest) { mf.Tests["t3"] = TestCase{} }, true},
		{
			"test build without command",
			func(mf *Manifest) { mf.Tests["t3"] = TestCase{Executable: "x", Build: &BuildStep{Directory: "d"}} },
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mf := validManifest()
			tt.mutate(&mf)

			err := mf.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidManifest)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestManifest_DeclaredVariants(t *testing.T) {
	mf := validManifest()

	assert.Equal(t, []Variant{VariantValidation, VariantGolden}, mf.DeclaredVariants())
}

func TestManifest_ProjectConfig(t *testing.T) {
	mf := validManifest()
	mf.Configure = "./configure"

	cfg, err := mf.ProjectConfig(VariantGolden)
	require.NoError(t, err)

	assert.Equal(t, Path("/work/golden"), cfg.Dir)
	assert.Equal(t, "src/lib.c", cfg.Buggy)
	assert.Equal(t, "make", cfg.BuildCmd)
	assert.True(t, cfg.HasConfigure())
	assert.Equal(t, []string{"t1", "t2"}, cfg.Tests.IDs())

	_, err = mf.ProjectConfig(VariantBackend)
	assert.ErrorIs(t, err, ErrVariantNotDeclared)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant(" Backend ")
	require.NoError(t, err)
	assert.Equal(t, VariantBackend, v)

	_, err = ParseVariant("release")
	assert.Error(t, err)
}

func TestCompilationDB_Clone(t *testing.T) {
	db := CompilationDB{{Directory: "d", File: "f.c", Arguments: []string{"cc", "-c", "f.c"}}}

	clone := db.Clone()
	clone[0].Arguments[0] = "clang"
	clone[0].File = "g.c"

	assert.Equal(t, "cc", db[0].Arguments[0])
	assert.Equal(t, "f.c", db[0].File)
}
