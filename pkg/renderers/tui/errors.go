package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrCancelled is returned when the user declines to fix a blocked or
	// rejected submission.
	ErrCancelled = errors.New("tui: submission cancelled")
	// ErrUnfillable is returned when every field blocking a submission is a
	// choice with an empty menu.
	ErrUnfillable = errors.New("tui: blocked fields have no options")
)
