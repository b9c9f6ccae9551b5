package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/liflo-ai/liflo/internal/app"
	"github.com/liflo-ai/liflo/internal/config"
	"github.com/liflo-ai/liflo/internal/service"
)

func ReviewCmd() *cobra.Command {
	var userID string
	var q service.ReviewQuery

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Print a review summary for one user as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}

			ctx := cmd.Context()

			cfg := config.Load()
			cfg.LogSink = "none"

			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := a.Close(closeCtx); err != nil {
					slog.Error("failed to close app", "error", err)
				}
			}()

			summary, err := a.ReviewService.Summary(ctx, userID, q)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&q.From, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&q.To, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&q.GoalID, "goal", "", "only records of this goal")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
