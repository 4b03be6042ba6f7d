package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/model-updater/internal/service/verifier"
)

// verifyCmd checks that every catalog entry still exists on the Hugging Face Hub.
var verifyCmd = &cobra.Command{
	Use:   "verify [project-root]",
	Short: "Check that every model in the catalog exists on the Hugging Face Hub.",
	Long: `Requests every model name of the catalog from the Hugging Face model API, one at a time.

Models answering anything but HTTP 200 are listed as missing and the command fails,
which makes it suitable for CI.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return verifier.Run(ctx, &verifier.Options{
			ProjectRoot: projectRoot(args),
			ConfigPath:  configPath,
			LogLevel:    logLevel,
			Stdout:      cmd.OutOrStdout(),
		})
	},
}
