// Package main provides the mcpadm command-line interface.
package main

import (
	"context"
	"strconv"

	cli "github.com/urfave/cli/v3"

	"github.com/mcpadm/mcpadm/pkg/cmd"
	"github.com/mcpadm/mcpadm/pkg/log"
	"github.com/mcpadm/mcpadm/pkg/otelhelper"
	"github.com/mcpadm/mcpadm/pkg/services"
	"github.com/mcpadm/mcpadm/pkg/web"
)

const defaultPort = 9190

func APICommand() *cli.Command {
	return &cli.Command{
		Name:    "api",
		Aliases: []string{"a"},
		Usage:   "Start the admin API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence",
				Value:   "memory://",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing mcpadm API")

			st, err := cmd.NewStore(ctx, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := st.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close store", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			opts := []services.Option{services.WithEventBus(eventBus)}

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "mcpadm-api")
				if err != nil {
					return err
				}

				opts = append(opts, services.WithTracer(tracer))
			}

			service := services.NewConfigService(ctx, logger, st, opts...)
			app := web.NewApp(service)

			return app.Listen(":" + strconv.Itoa(command.Int("port")))
		},
	}
}
