package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vbuild.dev/pkg/vbuild/internal/domain"
)

var runParallelFlag int
var runVariantFlags []string
var runTestFlags []string
var runNoCompDBFlag bool
var runKeepBackupsFlag bool

const runLongDescription = `Run the whole pipeline for the manifest: back up the buggy file of every
variant, configure them, export the validation compilation database into the
other variants, build every variant and then the dependency of every test
case. A test case whose dependency is missing is reported and the run goes on.`

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build every variant and its test dependencies",
		Long:  runLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			variants, err := parseVariants(runVariantFlags)
			if err != nil {
				return err
			}

			_, err = workflow.Run(cmd.Context(), domain.RunArgs{
				ProjectArgs:         projectArgs(),
				Variants:            variants,
				Tests:               runTestFlags,
				Parallel:            viper.GetInt(runParallelConfigKey),
				ExportCompilationDB: viper.GetBool(runExportCompDBKey) && !runNoCompDBFlag,
				KeepBackups:         viper.GetBool(runKeepBackupsKey),
			})

			return err
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of variants built at the same time")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().BoolVar(&runKeepBackupsFlag, keepBackupsFlagName, viper.GetBool(runKeepBackupsKey), "keep buggy file backups after the run")
	bindFlagToConfig(cmd.Flags().Lookup(keepBackupsFlagName), runKeepBackupsKey)

	cmd.Flags().StringSliceVar(&runVariantFlags, variantFlagName, nil, "build only this variant (can be repeated)")
	cmd.Flags().StringSliceVarP(&runTestFlags, testFlagName, "t", nil, "build only this test case (can be repeated)")
	cmd.Flags().BoolVar(&runNoCompDBFlag, noCompDBFlagName, false, "do not share the validation compilation database")
}
