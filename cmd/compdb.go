package cmd

import (
	"github.com/spf13/cobra"

	"vbuild.dev/pkg/vbuild/internal/domain"
	m "vbuild.dev/pkg/vbuild/internal/model"
)

var compdbOutputFlag string

// compdbCmd groups the compilation database commands.
var compdbCmd = newCompDBCmd()

func newCompDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compdb",
		Short: "Export or import the compilation database",
	}

	cmd.AddCommand(newCompDBExportCmd(), newCompDBImportCmd())

	return cmd
}

func newCompDBExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Record the validation build and print its compilation database",
		Long: `Re-run the validation build under the interceptor and print the recorded
compilation database with paths relative to the validation root. With
--output the database is written to a file instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := workflow.ExportCompilationDB(cmd.Context(), domain.ExportArgs{
				ProjectArgs: projectArgs(),
				Output:      m.Path(compdbOutputFlag),
			})
			if err != nil {
				return err
			}

			if compdbOutputFlag != "" {
				return nil
			}

			return compDBStore.EncodeCompilationDB(cmd.OutOrStdout(), db)
		},
	}

	cmd.Flags().StringVarP(&compdbOutputFlag, outputFlagName, "o", "", "write the database to this file")

	return cmd
}

func newCompDBImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <variant> <file>",
		Short: "Install an exported compilation database into a variant",
		Args:  cobra.ExactArgs(2), //nolint:mnd // variant and file
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, err := m.ParseVariant(args[0])
			if err != nil {
				return err
			}

			return workflow.ImportCompilationDB(cmd.Context(), domain.ImportArgs{
				ProjectArgs: projectArgs(),
				Variant:     variant,
				Input:       m.Path(args[1]),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(compdbCmd)
}
