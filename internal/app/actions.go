package app

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	statepkg "github.com/kk-code-lab/medfind/internal/state"
)

var (
	errNoClipboard = errors.New("no clipboard command available")
	errNoOpener    = errors.New("no command available to open URLs")
	errNoImage     = errors.New("this drug has no image")
)

var commandBuilder = exec.Command

// copyTarget picks the text y copies on the current page.
func copyTarget(state *statepkg.AppState) (string, bool) {
	switch state.View {
	case statepkg.ViewDetail:
		if state.Detail != nil && state.Detail.DrugName != "" {
			return state.Detail.DrugName, true
		}
	case statepkg.ViewResults:
		if result, ok := state.SelectedResult(); ok && result.DrugName != "" {
			return result.DrugName, true
		}
	default:
		if entry, ok := state.SelectedRecent(); ok {
			return entry.Query, true
		}
	}
	if text := strings.TrimSpace(state.Query); text != "" {
		return text, true
	}
	return "", false
}

func (app *Application) handleCopy() bool {
	text, ok := copyTarget(app.state)
	if !ok {
		return false
	}
	if !app.clipboardAvail || len(app.clipboardCmd) == 0 {
		app.notify("", errNoClipboard)
		return true
	}

	cmd := commandBuilder(app.clipboardCmd[0], app.clipboardCmd[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		app.notify("", fmt.Errorf("copying with %s: %w", app.clipboardCmd[0], err))
		return true
	}
	app.notify("copied "+text, nil)
	return true
}

func (app *Application) handleOpenImage() bool {
	if app.state.View != statepkg.ViewDetail || app.state.Detail == nil {
		return false
	}
	raw := strings.TrimSpace(app.state.Detail.ImageURL)
	if raw == "" {
		app.notify("", errNoImage)
		return true
	}
	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		app.notify("", fmt.Errorf("refusing to open image URL %q", raw))
		return true
	}
	if len(app.openerCmd) == 0 {
		app.notify("", errNoOpener)
		return true
	}

	args := append(append([]string{}, app.openerCmd[1:]...), target.String())
	cmd := commandBuilder(app.openerCmd[0], args...)
	if err := cmd.Start(); err != nil {
		app.notify("", fmt.Errorf("opening image with %s: %w", app.openerCmd[0], err))
		return true
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Warnf("%s exited: %v", app.openerCmd[0], err)
		}
	}()
	app.notify("opened image in browser", nil)
	return true
}

// notify routes app-level feedback through the reducer so the status line
// shows it like any other notice.
func (app *Application) notify(text string, err error) {
	if err != nil {
		logger.Warnf("%v", err)
	}
	_, _ = app.reducer.Reduce(app.state, statepkg.NoticeAction{Text: text, Err: err})
}
