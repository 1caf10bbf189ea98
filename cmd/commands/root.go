package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/vesperhq/vesper/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "vesper",
		Usage: "Your personal voice and text assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewGatewayCommand(),
			NewSayCommand(),
			NewSkillsCommand(),
			NewStatusCommand(),
			NewSecretsCommand(),
			NewMCPServeCommand(),
		},
	}
}
