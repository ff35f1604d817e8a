package tui

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("tui: ask service is required")

// ErrMissingThreadStore is returned when the thread store is not provided.
var ErrMissingThreadStore = errors.New("tui: thread store is required")
