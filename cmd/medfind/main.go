package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v3"

	"github.com/kk-code-lab/medfind/internal/log"
)

func main() {
	// Hangul needs UTF-8 even when the locale does not advertise it.
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "medfind: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:           "medfind",
		Usage:          "Search Korean drug information as you type",
		DefaultCommand: "tui",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path (default: $XDG_CONFIG_HOME/medfind/config.toml)",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("MEDFIND_DEBUG"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Drug API root, overrides the config file",
				Sources: cli.EnvVars("MEDFIND_BASE_URL"),
			},
			&cli.BoolFlag{
				Name:  "no-session",
				Usage: "Keep recent searches in memory only",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			log.SetDebug(c.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			tuiCommand(),
			suggestCommand(),
			searchCommand(),
			detailCommand(),
			recentCommand(),
			configCommand(),
		},
	}
}
