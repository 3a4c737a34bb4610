package events

import "errors"

// Sentinel errors.
var (
	ErrUnexpectedStatus = errors.New("events endpoint returned unexpected status")
	ErrNotAList         = errors.New("events endpoint did not return a list")
	ErrNoEndpoint       = errors.New("events endpoint is not configured")
	ErrInvalidEvent     = errors.New("event title and date are required")
)
