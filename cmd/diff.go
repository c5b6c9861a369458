package cmd

import (
	"github.com/spf13/cobra"

	"vbuild.dev/pkg/vbuild/internal/domain"
	m "vbuild.dev/pkg/vbuild/internal/model"
)

var diffStatFlag bool

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <variant>",
		Short: "Show how a variant's buggy file differs from its backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, err := m.ParseVariant(args[0])
			if err != nil {
				return err
			}

			_, err = workflow.Diff(cmd.Context(), domain.DiffArgs{
				ProjectArgs: projectArgs(),
				Variant:     variant,
				StatOnly:    diffStatFlag,
			})

			return err
		},
	}

	cmd.Flags().BoolVar(&diffStatFlag, statFlagName, false, "print only the number of added and removed lines")

	return cmd
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
