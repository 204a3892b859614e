package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/mcpadm/mcpadm/pkg/cmd"
	"github.com/mcpadm/mcpadm/pkg/log"
	"github.com/mcpadm/mcpadm/pkg/services"
)

func TemplatesCommand() *cli.Command {
	databaseFlag := &cli.StringFlag{
		Name:    "database-url",
		Usage:   "Database connection URL for persistence",
		Value:   "memory://",
		Sources: cli.EnvVars("DATABASE_URL"),
	}

	return &cli.Command{
		Name:    "templates",
		Aliases: []string{"t"},
		Usage:   "Manage server templates",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List registered templates",
				Flags:   []cli.Flag{databaseFlag},
				Action: func(ctx context.Context, command *cli.Command) error {
					service, closeFn, err := newService(ctx, command.String("database-url"))
					if err != nil {
						return err
					}
					defer closeFn()

					for _, tpl := range service.Templates() {
						fmt.Printf("%-24s %-10s %s\n", tpl.ID, tpl.Version, tpl.Name)
					}

					return nil
				},
			},
			{
				Name:  "reset",
				Usage: "Restore built-in templates to their defaults",
				Flags: []cli.Flag{
					databaseFlag,
					&cli.StringFlag{
						Name:  "id",
						Usage: "Reset a single template instead of all built-ins",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					service, closeFn, err := newService(ctx, command.String("database-url"))
					if err != nil {
						return err
					}
					defer closeFn()

					if id := command.String("id"); id != "" {
						return service.ResetTemplate(ctx, id)
					}

					return service.ResetAllTemplates(ctx)
				},
			},
		},
	}
}

func newService(ctx context.Context, databaseURL string) (*services.ConfigService, func(), error) {
	log.Setup("error")
	logger := log.WithModule("templates")

	st, err := cmd.NewStore(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := st.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close store", "error", err)
		}
	}

	return services.NewConfigService(ctx, logger, st), closeFn, nil
}
