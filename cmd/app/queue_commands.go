package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/courier-sync/cmd/app/commands"
	"github.com/allisson/courier-sync/internal/app"
	"github.com/allisson/courier-sync/internal/config"
)

func getQueueCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "drain",
			Usage: "Replay pending queue records against the backend",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				queueUseCase, err := container.QueueUseCase()
				if err != nil {
					return err
				}

				return commands.RunDrain(
					ctx,
					queueUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "pending-count",
			Usage: "Show the number of records waiting for replay",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				queueUseCase, err := container.QueueUseCase()
				if err != nil {
					return err
				}

				return commands.RunPendingCount(
					ctx,
					queueUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-failed",
			Usage: "List failed queue records",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "offset",
					Aliases: []string{"o"},
					Value:   0,
					Usage:   "Number of records to skip",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   50,
					Usage:   "Maximum number of records to return",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				queueUseCase, err := container.QueueUseCase()
				if err != nil {
					return err
				}

				return commands.RunListFailed(
					ctx,
					queueUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("offset")),
					int(cmd.Int("limit")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "retry-failed",
			Usage: "Return failed queue records to the pending set",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Value:   0,
					Usage:   "Record ID to retry (omit to retry all failed records)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				queueUseCase, err := container.QueueUseCase()
				if err != nil {
					return err
				}

				return commands.RunRetryFailed(
					ctx,
					queueUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int64(cmd.Int("id")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "clean-expired",
			Usage: "Remove expired records from the sync queue",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many records would be removed without removing",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				queueUseCase, err := container.QueueUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanExpired(
					ctx,
					queueUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
