package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/config"
	"github.com/kk-code-lab/medfind/internal/log"
	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/recent"
	statepkg "github.com/kk-code-lab/medfind/internal/state"
	inputui "github.com/kk-code-lab/medfind/internal/ui/input"
	renderui "github.com/kk-code-lab/medfind/internal/ui/render"
)

var logger = log.ForComponent("app")

const (
	actionBuffer = 64
	// inputBuffer holds the actions of a single key or mouse event.
	inputBuffer = 8
)

// Options configure a new Application. Zero values fall back to the
// defaults of the config package.
type Options struct {
	Config *config.Config
	// Backend overrides the HTTP client built from Config.BaseURL.
	Backend statepkg.Backend
	// Recent is the store submissions are recorded into. RecentPath, when
	// set, is watched so edits by other processes show up live.
	Recent     *recent.Store
	RecentPath string

	Mode     query.Mode
	Category query.Category
	// Start is the first page; Query pre-fills the search bar on the home page.
	Start query.NavigationTarget
	Query string

	// Screen and Clock are injectable for tests.
	Screen tcell.Screen
	Clock  clock.Clock
}

// Application represents the running app.
type Application struct {
	screen   tcell.Screen
	state    *statepkg.AppState
	reducer  *statepkg.StateReducer
	renderer *renderui.Renderer
	input    *inputui.InputHandler
	router   *Router
	actionCh chan statepkg.Action
	// inputCh is written only by the loop goroutine while handling an event
	// and drained right after it, so background posts can never fill it.
	inputCh chan statepkg.Action

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	shouldQuit     bool
	clipboardCmd   []string
	clipboardAvail bool
	openerCmd      []string

	lastClickKey  string
	lastClickTime time.Time
}

// NewApplication initialises the screen and wires the reducer to its
// collaborators. The caller must Close the application.
func NewApplication(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	screen := opts.Screen
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, fmt.Errorf("creating screen: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initialising screen: %w", err)
	}
	// Parse mouse sequences so clicks don't leak as key events.
	screen.EnableMouse()

	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)

	actionCh := make(chan statepkg.Action, actionBuffer)
	dispatch := func(action statepkg.Action) {
		select {
		case actionCh <- action:
		default:
			go func() {
				select {
				case actionCh <- action:
				case <-groupCtx.Done():
				}
			}()
		}
	}

	state := statepkg.NewAppState(opts.Mode, opts.Category, cfg.PageSize)
	state.SetDispatch(dispatch)
	w, h := screen.Size()
	state.ScreenWidth = w
	state.ScreenHeight = h

	be := opts.Backend
	if be == nil {
		be = backend.NewClient(cfg.BaseURL, backend.WithTimeout(cfg.RequestTimeout.Duration))
	}
	router := NewRouter(query.HomeTarget(), dispatch)
	reducer := statepkg.NewStateReducer(statepkg.Services{
		Backend:   be,
		Recent:    opts.Recent,
		Navigator: router,
		Clock:     opts.Clock,
		Debounce:  cfg.Debounce.Duration,
		Context:   groupCtx,
	})

	clipboardCmd, clipboardAvail := detectClipboard()
	openerCmd, _ := detectOpener()

	inputCh := make(chan statepkg.Action, inputBuffer)
	inputHandler := inputui.NewInputHandler(inputCh)
	inputHandler.SetState(state)

	app := &Application{
		screen:         screen,
		state:          state,
		reducer:        reducer,
		renderer:       renderui.NewRenderer(screen),
		input:          inputHandler,
		router:         router,
		actionCh:       actionCh,
		inputCh:        inputCh,
		ctx:            groupCtx,
		cancel:         cancel,
		group:          group,
		clipboardCmd:   clipboardCmd,
		clipboardAvail: clipboardAvail,
		openerCmd:      openerCmd,
	}

	if err := app.start(opts); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// start opens the first page and launches background watchers.
func (app *Application) start(opts Options) error {
	app.reduce(statepkg.RecentReloadAction{})

	if !opts.Start.IsZero() && opts.Start.Path != query.HomeTarget().Path {
		if err := app.router.Navigate(opts.Start); err != nil {
			return err
		}
	} else if opts.Query != "" {
		app.reduce(statepkg.InputFocusAction{})
		for _, ch := range opts.Query {
			app.reduce(statepkg.InputCharAction{Char: ch})
		}
	}

	if opts.RecentPath != "" {
		path := opts.RecentPath
		app.group.Go(func() error {
			err := recent.Watch(app.ctx, path, func() {
				app.post(statepkg.RecentReloadAction{})
			})
			if err != nil {
				// the list still works, it just won't follow other processes
				logger.Warnf("recent watcher stopped: %v", err)
			}
			return nil
		})
	}
	return nil
}

// post queues an action for the loop from any goroutine.
func (app *Application) post(action statepkg.Action) {
	select {
	case app.actionCh <- action:
	case <-app.ctx.Done():
	}
}

// Close stops background work and restores the terminal.
func (app *Application) Close() error {
	app.cancel()
	if fetcher := app.state.Fetcher(); fetcher != nil {
		fetcher.Close()
	}
	err := app.group.Wait()
	if flushErr := flushConsoleInput(); flushErr != nil {
		logger.Debugf("flushing console input: %v", flushErr)
	}
	app.screen.Fini()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// State exposes the current state for callers that print a summary on exit.
func (app *Application) State() *statepkg.AppState {
	return app.state
}
