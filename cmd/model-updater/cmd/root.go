package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/model-updater/internal/service/updater"
	"github.com/oshokin/model-updater/internal/version"
)

var (
	// configPath to the settings YAML file; model-updater.yaml in the project root when empty.
	configPath string
	// logLevel overrides the log level from the settings file.
	logLevel string

	// rootCmd refreshes the model catalog and rebuilds the release binary.
	rootCmd = &cobra.Command{
		Use:   "model-updater [project-root]",
		Short: "Refresh the model catalog and rebuild the release binary.",
		Long: `Runs the catalog scraper, validates the JSON it writes and rebuilds the release binary.

The current catalog is copied to <catalog>.backup.<YYYYMMDD_HHMMSS> before the scraper runs.
If the scraper writes malformed JSON the backup is restored and the command fails.
A failing scraper aborts the update without restoring anything.
The release build is skipped with a warning when the build tool is not installed.

The project root defaults to the current directory.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &updater.Options{
				ProjectRoot: projectRoot(args),
				ConfigPath:  configPath,
				LogLevel:    logLevel,
				Stdout:      cmd.OutOrStdout(),
			}

			return updater.Run(ctx, options)
		},
	}
)

// Execute runs the model-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// projectRoot returns the optional positional argument or the current directory.
func projectRoot(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return "."
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "path to settings file (default <project-root>/model-updater.yaml)")
	rootCmd.PersistentFlags().
		StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(verifyCmd)
}
