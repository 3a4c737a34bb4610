package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrQueueFull         = errors.New("refresh queue is full")
	ErrAlreadyPending    = errors.New("refresh already pending")
	ErrProposalsDisabled = errors.New("event proposals are not configured")
)
