package domain

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

// fakeInterceptor runs the wrapped build and records a fixed database for
// root, the way bear writes compile_commands.json into the working dir.
func fakeInterceptor(t *testing.T, root string) string {
	t.Helper()

	body := fmt.Sprintf(`"$@" || exit $?
cat > compile_commands.json <<'EOF'
[
  {"directory": "%[1]s/src", "file": "lib.c", "command": "cc -c lib.c"},
  {"directory": "%[1]s", "file": "%[1]s/main.c", "arguments": ["cc", "-c", "main.c"]}
]
EOF`, root)

	return writeScript(t, t.TempDir(), "intercept", body)
}

func TestProject_ExportCompilationDB(t *testing.T) {
	ctx := context.Background()

	project, root := newTestProject(t, m.VariantValidation, "touch built", nil, Toolchain{})
	project.tools.Interceptor = fakeInterceptor(t, root)

	db, err := project.ExportCompilationDB(ctx)
	require.NoError(t, err)

	assert.True(t, fileExists(filepath.Join(root, "built")), "the build runs under the interceptor")

	require.Len(t, db, 2)
	assert.Equal(t, m.CompileCommand{Directory: "src", File: "src/lib.c", Command: "cc -c lib.c"}, db[0])
	assert.Equal(t, m.CompileCommand{Directory: ".", File: "main.c", Arguments: []string{"cc", "-c", "main.c"}}, db[1])
}

func TestProject_ExportCompilationDB_Unsupported(t *testing.T) {
	for _, v := range []m.Variant{m.VariantFrontend, m.VariantBackend, m.VariantGolden} {
		t.Run(v.String(), func(t *testing.T) {
			project, _ := newTestProject(t, v, "true", nil, Toolchain{})

			_, err := project.ExportCompilationDB(context.Background())
			assert.ErrorIs(t, err, ErrUnsupportedVariant)
		})
	}
}

func TestProject_ExportCompilationDB_NoDatabase(t *testing.T) {
	project, _ := newTestProject(t, m.VariantValidation, "true", nil, Toolchain{})
	project.tools.Interceptor = writeScript(t, t.TempDir(), "intercept", `"$@"`)

	_, err := project.ExportCompilationDB(context.Background())
	assert.Error(t, err)
}

func TestCompilationDB_RoundTrip(t *testing.T) {
	source := "/work/validation"
	target := "/work/frontend"

	db := m.CompilationDB{
		{Directory: source + "/src", File: "lib.c", Command: "cc -c lib.c"},
		{Directory: source, File: source + "/main.c", Arguments: []string{"cc", "-c", "main.c"}},
	}

	rel, err := relativizeCompilationDB(db, source)
	require.NoError(t, err)

	abs := absolutizeCompilationDB(rel, target, "-I/inc")

	assert.Equal(t, m.CompilationDB{
		{Directory: target + "/src", File: target + "/src/lib.c", Command: "cc -c lib.c -I/inc"},
		{Directory: target, File: target + "/main.c", Arguments: []string{"cc", "-c", "main.c", "-I/inc"}},
	}, abs)

	assert.Equal(t, "lib.c", db[0].File, "relativize must not mutate its input")
	assert.Equal(t, "cc -c lib.c", rel[0].Command, "absolutize must not mutate its input")
}

func TestAbsolutizeCompilationDB_FlagOncePerForm(t *testing.T) {
	db := m.CompilationDB{
		{Directory: ".", File: "a.c", Command: "cc -c a.c", Arguments: []string{"cc", "-c", "a.c"}},
		{Directory: ".", File: "b.c"},
	}

	out := absolutizeCompilationDB(db, "/root", "-I/inc")

	assert.Equal(t, "cc -c a.c -I/inc", out[0].Command)
	assert.Equal(t, []string{"cc", "-c", "a.c", "-I/inc"}, out[0].Arguments)
	assert.Empty(t, out[1].Command)
	assert.Empty(t, out[1].Arguments)
	assert.Equal(t, "/root/b.c", out[1].File)
}
