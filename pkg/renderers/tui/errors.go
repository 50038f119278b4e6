package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrInvalidScreen is returned for a screen size that is not WIDTHxHEIGHT.
	ErrInvalidScreen = errors.New("tui: screen size must look like 1920x1080")
)
