package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoGroup is returned when Render is called without a group.
	ErrNoGroup = errors.New("tui: group is nil")
)
