package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/liflo-ai/liflo/cmd/liflo/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "liflo",
		Short:        "Admin tools for the Liflo backend",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.ReviewCmd())
	rootCmd.AddCommand(cmd.TipsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
