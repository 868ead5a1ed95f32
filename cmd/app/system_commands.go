package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/courier-sync/cmd/app/commands"
	"github.com/allisson/courier-sync/internal/app"
	"github.com/allisson/courier-sync/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the sync agent (HTTP API, connectivity monitor, drain coordinator)",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
	}
}
