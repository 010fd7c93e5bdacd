package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/config"
	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/recent"
)

// environment is what every subcommand builds from the global flags.
type environment struct {
	configPath string
	cfg        *config.Config
	client     *backend.Client
	recent     *recent.Store
	// recentPath is empty for in-memory sessions.
	recentPath string
}

func configPath(c *cli.Command) (string, error) {
	if path := strings.TrimSpace(c.String("config")); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func loadEnvironment(c *cli.Command) (*environment, error) {
	path, err := configPath(c)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if baseURL := strings.TrimSpace(c.String("base-url")); baseURL != "" {
		cfg.BaseURL = baseURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	env := &environment{
		configPath: path,
		cfg:        cfg,
		client:     backend.NewClient(cfg.BaseURL, backend.WithTimeout(cfg.RequestTimeout.Duration)),
	}
	if c.Bool("no-session") {
		env.recent = recent.NewStore(nil)
		return env, nil
	}
	blobs, err := recent.NewFileBlobStore(cfg.SessionDir)
	if err != nil {
		return nil, err
	}
	env.recent = recent.NewStore(blobs)
	env.recentPath = blobs.Path(recent.StorageKey)
	return env, nil
}

// searchFlags parses --mode and --category.
func searchFlags(c *cli.Command) (query.Mode, query.Category, error) {
	mode, err := query.ParseMode(c.String("mode"))
	if err != nil {
		return "", "", err
	}
	category, err := query.ParseCategory(c.String("category"))
	if err != nil {
		return "", "", err
	}
	return mode, category, nil
}

func joinArgs(c *cli.Command) string {
	return strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
}

func stdout(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func modeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "mode",
		Aliases: []string{"m"},
		Usage:   "Search mode: keyword or freeform",
		Value:   string(query.ModeKeyword),
	}
}

func categoryFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "category",
		Aliases: []string{"c"},
		Usage:   "Keyword category: symptom, ingredient, name or manufacturer",
		Value:   string(query.CategorySymptom),
	}
}
