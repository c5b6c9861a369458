package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var initForceFlag bool

const initLongDescription = `Write vbuild.yaml to the current directory with every setting at its current
value: the manifest path, the run defaults (parallel, export_compdb,
keep_backups), the toolchain commands (compiler wrapper, bitcode patcher,
interceptor) with the include path and message channel variables, and the
log rotation settings. Environment variables and flags given with init are
written out too. An existing file is kept unless --force is set.`

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to vbuild.yaml",
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			write := viper.SafeWriteConfigAs
			if initForceFlag {
				write = viper.WriteConfigAs
			}

			if err := write(targetPath); err != nil {
				return fmt.Errorf("failed to write %s: %w", targetPath, err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", targetPath)

			return err
		},
	}

	cmd.Flags().BoolVar(&initForceFlag, forceFlagName, false, "overwrite an existing "+configFileName)

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}
