// Package main is recallctl, the operator CLI: one-shot daily adaptation for
// external cron, schema migrations and local access tokens.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "recallctl: %v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "recallctl",
		Short:         "Operate the recall scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override server.log_level")

	root.AddCommand(
		newAdaptCommand(),
		newMigrateCommand(),
		newTokenCommand(),
	)
	return root
}
