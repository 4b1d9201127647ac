package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/smallbiznis/tractionlens/internal/config"
	"github.com/smallbiznis/tractionlens/internal/migration"
	"github.com/smallbiznis/tractionlens/internal/observability"
	"github.com/smallbiznis/tractionlens/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations, seed reference data and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			config.Module,
			observability.Module,
			db.Module,
			migration.Module,
		)

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		if err := app.Start(ctx); err != nil {
			return eris.Wrap(err, "run migrations")
		}
		return app.Stop(ctx)
	},
}
