package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildInfo is swapped in tests.
var buildInfo = debug.ReadBuildInfo

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the vbuild version",
		Long: `Print the vbuild module version, the VCS revision it was built from (marked
dirty when the tree had local changes) and the Go version.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := buildInfo()
			if !ok {
				cmd.Println("vbuild version: unknown")
				return
			}

			version := info.Main.Version
			if version == "" {
				version = "(devel)"
			}

			cmd.Printf("vbuild %s\n", version)

			if revision := vcsRevision(info); revision != "" {
				cmd.Printf("revision %s\n", revision)
			}

			cmd.Printf("go %s\n", info.GoVersion)
		},
	}
}

// vcsRevision returns the short commit hash stamped by the go tool, suffixed
// with "-dirty" for a modified tree.
func vcsRevision(info *debug.BuildInfo) string {
	var revision, modified string

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		}
	}

	if revision == "" {
		return ""
	}

	if len(revision) > 12 {
		revision = revision[:12]
	}

	if modified == "true" {
		revision += "-dirty"
	}

	return revision
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
