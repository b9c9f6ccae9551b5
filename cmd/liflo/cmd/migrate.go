package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/liflo-ai/liflo/internal/config"
	"github.com/liflo-ai/liflo/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending migrations (sqlite and postgres providers)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, database *sqlx.DB, driver string) error {
				if err := db.RunMigrations(ctx, database.DB, driver); err != nil {
					return err
				}
				return printVersion(ctx, cmd, database, driver)
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, database *sqlx.DB, driver string) error {
				if err := db.MigrateDown(ctx, database.DB, driver); err != nil {
					return err
				}
				return printVersion(ctx, cmd, database, driver)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, database *sqlx.DB, driver string) error {
				return printVersion(ctx, cmd, database, driver)
			})
		},
	})

	return cmd
}

func withDB(ctx context.Context, fn func(ctx context.Context, database *sqlx.DB, driver string) error) error {
	cfg := config.Load()
	driver, err := db.Driver(cfg.DBProvider)
	if err != nil {
		return err
	}

	database, err := db.Init(ctx, driver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer db.Close(database)

	return fn(ctx, database, driver)
}

func printVersion(ctx context.Context, cmd *cobra.Command, database *sqlx.DB, driver string) error {
	version, err := db.Version(ctx, database.DB, driver)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
	return nil
}
