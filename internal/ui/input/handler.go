package input

import (
	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/medfind/internal/state"
)

// InputHandler converts tcell events to Actions
type InputHandler struct {
	actionChan chan statepkg.Action
	state      *statepkg.AppState // Reference to current state for mode checking
}

// NewInputHandler creates a new input handler
func NewInputHandler(actionChan chan statepkg.Action) *InputHandler {
	return &InputHandler{
		actionChan: actionChan,
	}
}

// SetState sets the state reference for mode checking
func (ih *InputHandler) SetState(state *statepkg.AppState) {
	ih.state = state
}

// ProcessEvent converts a tcell event into an Action. It returns false once
// the user asked to quit.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ih.processKeyEvent(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		ih.actionChan <- statepkg.ResizeAction{Width: w, Height: h}
		return true
	default:
		return true
	}
}

func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) bool {
	helpVisible := ih.state != nil && ih.state.HelpVisible
	focused := ih.state != nil && ih.state.InputFocused

	key := ev.Key()
	if key == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl != 0 {
		key = ctrlKey(ev.Rune())
	}

	switch key {
	case tcell.KeyCtrlC:
		ih.actionChan <- statepkg.QuitAction{}
		return false
	case tcell.KeyCtrlZ:
		ih.actionChan <- statepkg.SuspendAction{}
		return true
	}

	if helpVisible {
		switch ev.Key() {
		case tcell.KeyEscape:
			ih.actionChan <- statepkg.EscapeAction{}
		case tcell.KeyRune:
			r := ev.Rune()
			if r == '?' || r == 'q' || r == 'Q' {
				ih.actionChan <- statepkg.HelpToggleAction{}
			}
		}
		return true
	}

	// Keys with the same meaning whether or not the search bar has focus.
	switch key {
	case tcell.KeyCtrlT:
		ih.actionChan <- statepkg.ToggleModeAction{}
		return true
	case tcell.KeyCtrlG:
		ih.actionChan <- statepkg.CycleCategoryAction{}
		return true
	case tcell.KeyEnter:
		ih.actionChan <- statepkg.EnterAction{}
		return true
	case tcell.KeyEscape:
		ih.actionChan <- statepkg.EscapeAction{}
		return true
	}

	if focused {
		return ih.processSearchBarKey(ev)
	}
	return ih.processBrowseKey(ev)
}

func (ih *InputHandler) processSearchBarKey(ev *tcell.EventKey) bool {
	ctrl := ev.Modifiers()&tcell.ModCtrl != 0

	switch ev.Key() {
	case tcell.KeyUp:
		ih.actionChan <- statepkg.SuggestNavigateAction{Direction: "up"}
	case tcell.KeyDown:
		ih.actionChan <- statepkg.SuggestNavigateAction{Direction: "down"}
	case tcell.KeyLeft:
		if ctrl {
			ih.actionChan <- statepkg.InputMoveCursorAction{Direction: "word-left"}
		} else {
			ih.actionChan <- statepkg.InputMoveCursorAction{Direction: "left"}
		}
	case tcell.KeyRight:
		if ctrl {
			ih.actionChan <- statepkg.InputMoveCursorAction{Direction: "word-right"}
		} else {
			ih.actionChan <- statepkg.InputMoveCursorAction{Direction: "right"}
		}
	case tcell.KeyHome, tcell.KeyCtrlA:
		ih.actionChan <- statepkg.InputMoveCursorAction{Direction: "home"}
	case tcell.KeyEnd, tcell.KeyCtrlE:
		ih.actionChan <- statepkg.InputMoveCursorAction{Direction: "end"}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ih.actionChan <- statepkg.InputBackspaceAction{}
	case tcell.KeyDelete:
		ih.actionChan <- statepkg.InputDeleteAction{}
	case tcell.KeyCtrlW:
		ih.actionChan <- statepkg.InputDeleteWordAction{}
	case tcell.KeyCtrlU:
		ih.actionChan <- statepkg.InputClearAction{}
	case tcell.KeyTab, tcell.KeyBacktab:
		ih.actionChan <- statepkg.InputBlurAction{}

	case tcell.KeyRune:
		r := ev.Rune()
		if ctrl {
			switch r {
			case 'a', 'A':
				ih.actionChan <- statepkg.InputMoveCursorAction{Direction: "home"}
			case 'e', 'E':
				ih.actionChan <- statepkg.InputMoveCursorAction{Direction: "end"}
			case 'w', 'W':
				ih.actionChan <- statepkg.InputDeleteWordAction{}
			case 'u', 'U':
				ih.actionChan <- statepkg.InputClearAction{}
			}
			return true
		}
		// Every printable rune is search text, including 'q'.
		ih.actionChan <- statepkg.InputCharAction{Char: r}
	}
	return true
}

func (ih *InputHandler) processBrowseKey(ev *tcell.EventKey) bool {
	view := statepkg.ViewHome
	pageRows := 1
	if ih.state != nil {
		view = ih.state.View
		pageRows = ih.state.BodyHeight()
	}

	switch ev.Key() {
	case tcell.KeyUp:
		ih.actionChan <- statepkg.MoveSelectionAction{Delta: -1}
		return true
	case tcell.KeyDown:
		ih.actionChan <- statepkg.MoveSelectionAction{Delta: 1}
		return true
	case tcell.KeyPgUp:
		ih.pageBy(view, -1, pageRows)
		return true
	case tcell.KeyPgDn:
		ih.pageBy(view, 1, pageRows)
		return true
	case tcell.KeyHome:
		ih.actionChan <- statepkg.MoveSelectionAction{Delta: -1 << 20}
		return true
	case tcell.KeyEnd:
		ih.actionChan <- statepkg.MoveSelectionAction{Delta: 1 << 20}
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ih.actionChan <- statepkg.NavigateBackAction{}
		return true
	case tcell.KeyTab:
		ih.actionChan <- statepkg.InputFocusAction{}
		return true
	}
	if ev.Key() != tcell.KeyRune {
		return true
	}

	switch ev.Rune() {
	case 'q':
		ih.actionChan <- statepkg.QuitAction{}
		return false
	case '?':
		ih.actionChan <- statepkg.HelpToggleAction{}
	case '/', 'i':
		ih.actionChan <- statepkg.InputFocusAction{}
	case 'k':
		ih.actionChan <- statepkg.MoveSelectionAction{Delta: -1}
	case 'j':
		ih.actionChan <- statepkg.MoveSelectionAction{Delta: 1}
	case 'n':
		ih.pageBy(view, 1, pageRows)
	case 'p':
		ih.pageBy(view, -1, pageRows)
	case 'b':
		ih.actionChan <- statepkg.NavigateBackAction{}
	case 'r':
		ih.actionChan <- statepkg.ReloadPageAction{}
	case 'y':
		ih.actionChan <- statepkg.CopyAction{}
	case 'o':
		if view == statepkg.ViewDetail {
			ih.actionChan <- statepkg.OpenImageAction{}
		}
	case 'd':
		if view == statepkg.ViewHome {
			ih.actionChan <- statepkg.RecentRemoveAction{}
		}
	case 'D':
		if view == statepkg.ViewHome {
			ih.actionChan <- statepkg.RecentClearAction{}
		}
	}
	return true
}

// pageBy changes the results page, or scrolls the detail page by a screen.
func (ih *InputHandler) pageBy(view statepkg.View, direction, rows int) {
	switch view {
	case statepkg.ViewResults:
		ih.actionChan <- statepkg.ResultsPageAction{Delta: direction}
	case statepkg.ViewDetail:
		ih.actionChan <- statepkg.MoveSelectionAction{Delta: direction * rows}
	}
}

// ctrlKey maps a Ctrl-modified rune to the legacy control key tcell reports
// on most terminals.
func ctrlKey(r rune) tcell.Key {
	switch r {
	case 'c', 'C':
		return tcell.KeyCtrlC
	case 'z', 'Z':
		return tcell.KeyCtrlZ
	case 't', 'T':
		return tcell.KeyCtrlT
	case 'g', 'G':
		return tcell.KeyCtrlG
	}
	return tcell.KeyRune
}
