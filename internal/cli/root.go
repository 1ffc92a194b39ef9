package cli

import (
	"github.com/spf13/cobra"

	"github.com/conveyor-ci/conveyor/internal/logging"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

// exitCode is set by commands whose outcome maps to a process exit
// code beyond cobra's error handling (run status, trigger mismatch).
var exitCode int

// ExitCode returns the exit code the process should finish with after
// a successful Execute.
func ExitCode() int {
	return exitCode
}

var (
	configPath string
	logFormat  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "conveyor",
	Short: "conveyor — a small self-hosted CI pipeline runner",
	Long: `conveyor executes declarative YAML pipelines: on a matching push or
pull-request event it runs the declared steps strictly in order, each in an
isolated workspace with a secret-scoped environment, stopping at the first
failure.

Run artifacts live in ~/.conveyor/runs and run history in a local SQLite
database at ~/.conveyor/conveyor.db.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logFormat, logLevel)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "pipeline definition file (default: conveyor.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.Tint, "log format: json, text or tint")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dbCmd)
}
