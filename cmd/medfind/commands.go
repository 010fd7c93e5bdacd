package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	apppkg "github.com/kk-code-lab/medfind/internal/app"
	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/config"
	"github.com/kk-code-lab/medfind/internal/log"
	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/recent"
)

const (
	logFileName = "medfind.log"
	// maxParallelPages bounds concurrent page fetches of `search --pages`.
	maxParallelPages = 4
)

var logger = log.ForComponent("cli")

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Start the interactive search screen",
		Flags: []cli.Flag{
			modeFlag(),
			categoryFlag(),
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Pre-fill the search bar",
			},
			&cli.StringFlag{
				Name:  "target",
				Usage: "Open a page directly, e.g. /search/symptom?q=두통&mode=keyword&type=symptom",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			env, err := loadEnvironment(c)
			if err != nil {
				return err
			}
			mode, category, err := searchFlags(c)
			if err != nil {
				return err
			}
			var start query.NavigationTarget
			if raw := strings.TrimSpace(c.String("target")); raw != "" {
				if start, err = query.ParseNavigationTarget(raw); err != nil {
					return err
				}
			}

			logFile, err := openLogFile(env.cfg.SessionDir)
			if err != nil {
				return err
			}
			log.SetOutput(logFile)
			logger.Infof("starting against %s, session in %s", env.cfg.BaseURL, env.cfg.SessionDir)
			defer func() {
				log.SetOutput(os.Stderr)
				_ = logFile.Close()
			}()

			app, err := apppkg.NewApplication(apppkg.Options{
				Config:     env.cfg,
				Recent:     env.recent,
				RecentPath: env.recentPath,
				Mode:       mode,
				Category:   category,
				Start:      start,
				Query:      c.String("query"),
			})
			if err != nil {
				return fmt.Errorf("initializing application: %w", err)
			}
			app.Run()
			return app.Close()
		},
	}
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Print autocomplete suggestions for a keyword",
		ArgsUsage: "<text>",
		Flags:     []cli.Flag{categoryFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			text := joinArgs(c)
			if text == "" {
				return cli.Exit("suggest needs some text", 2)
			}
			category, err := query.ParseCategory(c.String("category"))
			if err != nil {
				return err
			}
			env, err := loadEnvironment(c)
			if err != nil {
				return err
			}
			req, err := query.BuildSuggestionRequest(category, text)
			if err != nil {
				return err
			}
			items, err := env.client.Suggest(ctx, req)
			if err != nil {
				return err
			}
			newPrinter(stdout(c)).suggestions(items, text)
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run a search and print the results",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			modeFlag(),
			categoryFlag(),
			&cli.IntFlag{
				Name:  "page",
				Usage: "First page to print, starting at 1",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Number of consecutive pages to fetch",
				Value: 1,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			text := joinArgs(c)
			if text == "" {
				return cli.Exit("search needs some text", 2)
			}
			mode, category, err := searchFlags(c)
			if err != nil {
				return err
			}
			q, err := query.New(mode, category, text)
			if err != nil {
				return err
			}
			first, count := int(c.Int("page")), int(c.Int("pages"))
			if first < 1 || count < 1 {
				return cli.Exit("--page and --pages must be at least 1", 2)
			}
			env, err := loadEnvironment(c)
			if err != nil {
				return err
			}

			pages, err := fetchPages(ctx, env, q, first, count)
			if err != nil {
				return err
			}
			if _, err := env.recent.Record(recent.EntryFor(mode, category, q.Trimmed())); err != nil {
				logger.Warnf("recording %q: %v", q.Trimmed(), err)
			}

			out := newPrinter(stdout(c))
			shown := 0
			for i, page := range pages {
				offset := (first+i-1)*env.cfg.PageSize
				out.results(page.Results, q.Trimmed(), offset)
				shown += len(page.Results)
			}
			if shown == 0 {
				out.line("%s", out.muted.Render("no results"))
				return nil
			}
			out.summary(pages[0].Total, pages[0].HasTotal, shown, first, first+count-1)
			return nil
		},
	}
}

// fetchPages loads count consecutive pages starting at display page first.
// Pages come back in order even though they are fetched in parallel.
func fetchPages(ctx context.Context, env *environment, q query.Query, first, count int) ([]backend.ResultPage, error) {
	pages := make([]backend.ResultPage, count)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelPages)
	for i := range count {
		req, err := query.BuildResultsRequest(q.Mode(), q.Category(), q.Trimmed(), query.PageIndex(first+i), env.cfg.PageSize)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			page, err := env.client.Results(ctx, req)
			if err != nil {
				return fmt.Errorf("page %d: %w", first+i, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func detailCommand() *cli.Command {
	return &cli.Command{
		Name:      "detail",
		Usage:     "Print the full record of one drug",
		ArgsUsage: "<drug-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := strings.TrimSpace(c.Args().First())
			if id == "" {
				return cli.Exit("detail needs a drug id", 2)
			}
			env, err := loadEnvironment(c)
			if err != nil {
				return err
			}
			d, err := env.client.Detail(ctx, id)
			if err != nil {
				return err
			}
			newPrinter(stdout(c)).detail(d)
			return nil
		},
	}
}

func recentCommand() *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "List or edit recent searches",
		Action: func(ctx context.Context, c *cli.Command) error {
			env, err := loadEnvironment(c)
			if err != nil {
				return err
			}
			newPrinter(stdout(c)).recent(env.recent.Load())
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "remove",
				Usage:     "Forget one recent search",
				ArgsUsage: "<query>",
				Action: func(ctx context.Context, c *cli.Command) error {
					text := joinArgs(c)
					if text == "" {
						return cli.Exit("remove needs the query to forget", 2)
					}
					env, err := loadEnvironment(c)
					if err != nil {
						return err
					}
					entries, err := env.recent.Remove(text)
					if err != nil {
						return err
					}
					newPrinter(stdout(c)).recent(entries)
					return nil
				},
			},
			{
				Name:  "clear",
				Usage: "Forget all recent searches",
				Action: func(ctx context.Context, c *cli.Command) error {
					env, err := loadEnvironment(c)
					if err != nil {
						return err
					}
					return env.recent.Clear()
				},
			},
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect or create the configuration file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a commented sample configuration",
				Action: func(ctx context.Context, c *cli.Command) error {
					path, err := configPath(c)
					if err != nil {
						return err
					}
					if err := config.WriteTemplate(path); err != nil {
						if errors.Is(err, os.ErrExist) {
							return cli.Exit(fmt.Sprintf("%s already exists", path), 1)
						}
						return err
					}
					newPrinter(stdout(c)).line("wrote %s", path)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Action: func(ctx context.Context, c *cli.Command) error {
					env, err := loadEnvironment(c)
					if err != nil {
						return err
					}
					data, err := env.cfg.Marshal()
					if err != nil {
						return err
					}
					_, err = stdout(c).Write(data)
					return err
				},
			},
			{
				Name:  "path",
				Usage: "Print where the configuration file is read from",
				Action: func(ctx context.Context, c *cli.Command) error {
					path, err := configPath(c)
					if err != nil {
						return err
					}
					newPrinter(stdout(c)).line("%s", path)
					return nil
				},
			},
		},
	}
}
