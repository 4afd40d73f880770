// Package main is the entry point of the ThinkForge API server. It serves
// the flashcard, learning path and dashboard endpoints and runs database
// migrations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "thinkforge-api",
		Short:         "Learning companion API",
		Long:          "ThinkForge API serves AI-generated flashcards and learning paths and tracks study progress.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config-dir", ".", "Directory searched for config.yaml")
	root.PersistentFlags().String("env-file", ".env", "Env file loaded before reading configuration")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	return root
}
