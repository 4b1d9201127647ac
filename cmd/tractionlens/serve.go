package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tractionlens/internal/clock"
	"github.com/smallbiznis/tractionlens/internal/config"
	"github.com/smallbiznis/tractionlens/internal/migration"
	"github.com/smallbiznis/tractionlens/internal/observability"
	"github.com/smallbiznis/tractionlens/internal/redisclient"
	"github.com/smallbiznis/tractionlens/internal/server"
	"github.com/smallbiznis/tractionlens/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			config.Module,
			observability.Module,
			fx.Provide(RegisterSnowflake),
			db.Module,
			clock.Module,
			redisclient.Module,
			migration.Module,
			server.Module,
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

// RegisterSnowflake builds the id node used for report identifiers.
func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
