package domain

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

// SummarizeDiff parses a single-file unified diff as produced by DiffBuggy.
func SummarizeDiff(unified string) (m.DiffSummary, error) {
	if strings.TrimSpace(unified) == "" {
		return m.DiffSummary{}, nil
	}

	fileDiff, err := diff.ParseFileDiff([]byte(unified))
	if err != nil {
		return m.DiffSummary{}, fmt.Errorf("failed to parse diff: %w", err)
	}

	var summary m.DiffSummary

	for _, hunk := range fileDiff.Hunks {
		scanner := bufio.NewScanner(bytes.NewReader(hunk.Body))
		for scanner.Scan() {
			line := scanner.Text()

			switch {
			case strings.HasPrefix(line, "+"):
				summary.Added = append(summary.Added, line[1:])
			case strings.HasPrefix(line, "-"):
				summary.Removed = append(summary.Removed, line[1:])
			}
		}

		if err := scanner.Err(); err != nil {
			return m.DiffSummary{}, fmt.Errorf("failed to scan hunk: %w", err)
		}
	}

	return summary, nil
}
