package cmd

import (
	"github.com/spf13/cobra"

	"vbuild.dev/pkg/vbuild/internal/domain"
	m "vbuild.dev/pkg/vbuild/internal/model"
)

// restoreCmd represents the restore command.
var restoreCmd = newRestoreCmd()

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <variant>",
		Short: "Copy the backup over a variant's buggy file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, err := m.ParseVariant(args[0])
			if err != nil {
				return err
			}

			return workflow.Restore(cmd.Context(), domain.RestoreArgs{
				ProjectArgs: projectArgs(),
				Variant:     variant,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
