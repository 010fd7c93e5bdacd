//go:build windows

package app

// Windows has no SIGTSTP/SIGCONT, so Ctrl-Z does nothing.
func (app *Application) suspendToShell() {
}

func (app *Application) resumeAfterStop() bool {
	return false
}
