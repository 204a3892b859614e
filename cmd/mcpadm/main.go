package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "mcpadm",
		Usage:                 "Manage MCP server configurations",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			APICommand(),
			ValidateCommand(),
			TemplatesCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
