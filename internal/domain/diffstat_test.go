package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeDiff(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		summary, err := SummarizeDiff("")
		require.NoError(t, err)

		assert.Empty(t, summary.Added)
		assert.Empty(t, summary.Removed)
		assert.Equal(t, "+0 -0", summary.String())
	})

	t.Run("mixed hunk", func(t *testing.T) {
		unified := "--- a/src/lib.c\n" +
			"+++ b/src/lib.c\n" +
			"@@ -1,3 +1,4 @@\n" +
			" int f(int x) {\n" +
			"-  return x + 1;\n" +
			"+  if (x < 0) return 0;\n" +
			"+  return x - 1;\n" +
			" }\n"

		summary, err := SummarizeDiff(unified)
		require.NoError(t, err)

		assert.Equal(t, []string{"  if (x < 0) return 0;", "  return x - 1;"}, summary.Added)
		assert.Equal(t, []string{"  return x + 1;"}, summary.Removed)
		assert.Equal(t, "+2 -1", summary.String())
	})
}
