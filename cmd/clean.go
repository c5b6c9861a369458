package cmd

import (
	"github.com/spf13/cobra"

	"vbuild.dev/pkg/vbuild/internal/domain"
)

// cleanCmd represents the clean command.
var cleanCmd = newCleanCmd()

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [variant...]",
		Short: "Remove buggy file backups",
		Long: `Remove the buggy file backups of the given variants, or of every declared
variant when none is given. Variants without a backup are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			variants, err := parseVariants(args)
			if err != nil {
				return err
			}

			return workflow.Clean(cmd.Context(), domain.CleanArgs{
				ProjectArgs: projectArgs(),
				Variants:    variants,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
