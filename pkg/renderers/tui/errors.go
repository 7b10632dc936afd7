package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoDriver is returned when a fill is attempted without a prompt
	// driver and no terminal driver could be created.
	ErrNoDriver = errors.New("tui: no prompt driver")
)
