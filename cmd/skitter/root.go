package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for skitter.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skitter",
		Short: "Same-origin web crawler",
		Long: `Skitter crawls a website starting from a root URL. It follows links that stay
on the same scheme, host and port, fetches each URL at most once and stops when
no work is left or the share of server errors reaches a configured threshold.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewCrawlCmd())
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
