package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/mcpadm/mcpadm/pkg/cmd"
	"github.com/mcpadm/mcpadm/pkg/log"
	"github.com/mcpadm/mcpadm/pkg/models"
	"github.com/mcpadm/mcpadm/pkg/services"
)

func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate configuration documents against their templates",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence",
				Value:   "memory://",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "configs",
				Aliases: []string{"c"},
				Usage:   "Path to a JSON file containing an array of configuration documents",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("validate")

			st, err := cmd.NewStore(ctx, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := st.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close store", "error", err)
				}
			}()

			service := services.NewConfigService(ctx, logger, st)

			docs, err := loadConfigs(command.String("configs"), service)
			if err != nil {
				return err
			}

			report := service.ValidateAll(docs)

			failed := 0

			for _, doc := range docs {
				key := doc.ID()
				if key == "" {
					continue
				}

				rep := report.Reports[key]
				if rep == nil {
					continue
				}

				if rep.Valid {
					fmt.Printf("✅ %s\n", key)
				} else {
					failed++

					fmt.Printf("❌ %s\n", key)

					for _, msg := range rep.Errors {
						fmt.Printf("   error: %s\n", msg)
					}
				}

				for _, msg := range rep.Warnings {
					fmt.Printf("   warning: %s\n", msg)
				}
			}

			fmt.Printf("\n%d configuration(s) checked, %d invalid\n", len(docs), failed)

			if failed > 0 {
				return fmt.Errorf("%d configuration(s) failed validation", failed)
			}

			return nil
		},
	}
}

// loadConfigs reads documents from a JSON file. Without a file it checks
// every template's defaults plus the head version of every stored config.
func loadConfigs(path string, service *services.ConfigService) ([]models.ConfigDocument, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configs file: %w", err)
		}

		var docs []models.ConfigDocument
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("failed to parse configs file: %w", err)
		}

		return docs, nil
	}

	docs := make([]models.ConfigDocument, 0)

	for _, tpl := range service.Templates() {
		doc, err := service.GenerateConfig(tpl.ID, models.ConfigDocument{
			models.ReservedID: tpl.ID + "-defaults",
		})
		if err != nil {
			return nil, err
		}

		docs = append(docs, doc)
	}

	for _, configID := range service.ConfigIDs() {
		latest := service.LatestVersion(configID)
		if latest == nil {
			continue
		}

		doc := latest.Config
		if doc.ID() == "" {
			doc[models.ReservedID] = configID
		}

		docs = append(docs, doc)
	}

	return docs, nil
}
