package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vbuild.dev/pkg/vbuild/internal/domain"
	m "vbuild.dev/pkg/vbuild/internal/model"
)

var buildTestsOnlyFlag bool

var errTestDependencies = errors.New("test dependencies failed to build")

// buildCmd represents the build command.
var buildCmd = newBuildCmd()

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <variant> [test...]",
		Short: "Build one variant, then the given test cases",
		Long: `Build a single variant with its compiler wrapper and then the dependency
of each given test case. The buggy file backup of an earlier command is
reused; one is taken when the variant has none yet.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], args[1:], buildTestsOnlyFlag)
		},
	}

	cmd.Flags().BoolVar(&buildTestsOnlyFlag, testsOnlyFlagName, false, "skip the whole-project build")

	return cmd
}

// buildTestCmd represents the build-test command.
var buildTestCmd = newBuildTestCmd()

func newBuildTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-test <variant> <test...>",
		Short: "Build the dependencies of test cases in one variant",
		Args:  cobra.MinimumNArgs(2), //nolint:mnd // variant plus at least one test
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], args[1:], true)
		},
	}
}

func runBuild(cmd *cobra.Command, variantArg string, tests []string, testsOnly bool) error {
	variant, err := m.ParseVariant(variantArg)
	if err != nil {
		return err
	}

	report, err := workflow.Build(cmd.Context(), domain.BuildArgs{
		ProjectArgs: projectArgs(),
		Variant:     variant,
		Tests:       tests,
		SkipBuild:   testsOnly,
	})
	if err != nil {
		return err
	}

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d", errTestDependencies, len(failed), len(report.Tests))
	}

	return nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(buildTestCmd)
}
