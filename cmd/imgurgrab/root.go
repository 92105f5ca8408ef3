// Package main provides the entry point for the imgurgrab CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for imgurgrab.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imgurgrab",
		Short: "Bulk downloader for publicly tagged Imgur images",
		Long: `imgurgrab downloads every image publicly posted under an Imgur gallery
tag into a run-scoped directory tree.

It lists the gallery with a single API call, then downloads the images
either one at a time or with a fixed pool of workers. Individual download
failures are recorded and reported without aborting the run.

The Imgur API client ID is read from the IMGUR_CLIENT_ID environment
variable.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
