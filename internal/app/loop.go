package app

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/medfind/internal/state"
	renderui "github.com/kk-code-lab/medfind/internal/ui/render"
)

const doubleClickThreshold = 300 * time.Millisecond

// Run draws the UI and processes events until the user quits.
func (app *Application) Run() {
	app.renderer.Render(app.state)
	renderPending := false

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				// screen finalised
				return
			}
			select {
			case eventChan <- ev:
			case <-app.ctx.Done():
				return
			}
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}

	for !app.shouldQuit {
		if renderPending {
			app.renderer.Render(app.state)
			renderPending = false
		}

		select {
		case ev := <-eventChan:
			if app.handleEvent(ev) {
				renderPending = true
			}
		case action := <-app.actionCh:
			if app.handleAction(action) {
				renderPending = true
			}
		case <-sigContCh:
			if app.resumeAfterStop() {
				renderPending = true
			}
		case <-app.ctx.Done():
			app.shouldQuit = true
		}

		if app.processActions() {
			renderPending = true
		}
	}
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if !app.input.ProcessEvent(ev) {
			app.shouldQuit = true
		}
	case *tcell.EventResize:
		app.screen.Sync()
		if !app.input.ProcessEvent(ev) {
			app.shouldQuit = true
		}
	case *tcell.EventMouse:
		app.handleMouse(ev)
	case *tcell.EventInterrupt:
		return true
	default:
		return false
	}
	return true
}

// handleMouse maps clicks and the wheel onto the same actions as the keyboard.
func (app *Application) handleMouse(ev *tcell.EventMouse) {
	if app.state == nil || app.state.HelpVisible {
		return
	}

	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		app.wheel(-1)
		return
	case buttons&tcell.WheelDown != 0:
		app.wheel(1)
		return
	case buttons&tcell.Button1 == 0:
		return
	}

	_, y := ev.Position()

	if renderui.InputAt(y) {
		app.inputCh <- statepkg.InputFocusAction{}
		return
	}

	if index, ok := renderui.SuggestionAt(app.state, y); ok {
		app.inputCh <- statepkg.SuggestAcceptAction{Index: index}
		return
	}

	if app.state.InputFocused {
		// clicking anywhere else closes the dropdown
		app.inputCh <- statepkg.InputBlurAction{}
	}

	if index, ok := renderui.RecentAt(app.state, y); ok {
		app.inputCh <- statepkg.RecentSelectAction{Index: index}
		return
	}

	if index, ok := renderui.ResultAt(app.state, y); ok {
		clickKey := fmt.Sprintf("result-%d", index)
		doubleClick := app.lastClickKey == clickKey && time.Since(app.lastClickTime) <= doubleClickThreshold
		app.lastClickKey = clickKey
		app.lastClickTime = time.Now()

		if doubleClick {
			app.inputCh <- statepkg.ResultsOpenAction{Index: index}
			return
		}
		if delta := index - app.state.ResultIndex; delta != 0 {
			app.inputCh <- statepkg.MoveSelectionAction{Delta: delta}
		}
	}
}

func (app *Application) wheel(direction int) {
	if app.state.SuggestionsVisible() {
		dir := "down"
		if direction < 0 {
			dir = "up"
		}
		app.inputCh <- statepkg.SuggestNavigateAction{Direction: dir}
		return
	}
	app.inputCh <- statepkg.MoveSelectionAction{Delta: direction}
}

// processActions applies everything the last event emitted, then whatever
// background work has queued.
func (app *Application) processActions() bool {
	changed := false
	for {
		select {
		case action := <-app.inputCh:
			if app.handleAction(action) {
				changed = true
			}
			continue
		default:
		}
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
		default:
			return changed
		}
	}
}

func (app *Application) handleAction(action statepkg.Action) bool {
	if action == nil {
		return false
	}

	switch action.(type) {
	case statepkg.QuitAction:
		app.shouldQuit = true
		return false
	case statepkg.SuspendAction:
		app.suspendToShell()
		app.resumeAfterStop()
		return true
	}

	return app.handleAppAction(action)
}

func (app *Application) handleAppAction(action statepkg.Action) bool {
	switch action.(type) {
	case statepkg.CopyAction:
		return app.handleCopy()
	case statepkg.OpenImageAction:
		return app.handleOpenImage()
	}

	app.reduce(action)
	return true
}

// reduce applies action; failures already sit in state.LastError.
func (app *Application) reduce(action statepkg.Action) {
	if _, err := app.reducer.Reduce(app.state, action); err != nil {
		logger.Debugf("%T: %v", action, err)
	}
}
