// Package cmd provides the root command and CLI setup for vbuild.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vbuild.dev/pkg/vbuild/internal/adapter"
	"vbuild.dev/pkg/vbuild/internal/controller"
	"vbuild.dev/pkg/vbuild/internal/domain"
	m "vbuild.dev/pkg/vbuild/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var shellAdapter adapter.ShellRunnerAdapter
var compDBStore adapter.CompilationDBStore
var manifestLoader adapter.ManifestLoader
var workflow domain.Workflow
var ui controller.UI

var manifestFlag string
var verboseFlag bool
var debugFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	shellAdapter = adapter.NewLocalShellRunnerAdapter()
	compDBStore = adapter.NewCompilationDBStore()
	manifestLoader = adapter.NewManifestLoader()
	workflow = domain.NewWorkflow(
		manifestLoader,
		domain.ProjectDeps{
			FS:     fsAdapter,
			Shell:  shellAdapter,
			CompDB: compDBStore,
		},
		ui,
	)
}

const rootLongDescription = `vbuild builds the variants of a C program that an automated repair run
needs: validation, frontend, backend and golden. Each variant is a separate
working copy declared in the run manifest and is built with its own compiler
wrapper, while the compilation database recorded for validation is shared
with the others.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "vbuild",
		Short:        "Variant build orchestration for program repair",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd returns a fresh root command with the persistent flags wired.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&manifestFlag, manifestFlagName, "m",
			viper.GetString(manifestConfigKey),
			"run manifest declaring the variants and their build commands",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(manifestFlagName), manifestConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(buildVerboseKey), "show the stderr of build tools")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), buildVerboseKey)

	cmd.PersistentFlags().BoolVar(&debugFlag, debugFlagName, viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(debugFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// An interrupt cancels the running build and its child processes.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// projectArgs collects the settings every workflow command shares.
func projectArgs() domain.ProjectArgs {
	return domain.ProjectArgs{
		Manifest:  m.Path(viper.GetString(manifestConfigKey)),
		Toolchain: toolchainFromConfig(),
	}
}

func parseVariants(args []string) ([]m.Variant, error) {
	variants := make([]m.Variant, 0, len(args))

	for _, arg := range args {
		v, err := m.ParseVariant(arg)
		if err != nil {
			return nil, err
		}

		variants = append(variants, v)
	}

	return variants, nil
}
