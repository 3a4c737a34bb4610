package github

import "errors"

// Sentinel errors returned alongside any pull requests gathered so far.
var (
	ErrRateLimited      = errors.New("github rate limit exceeded")
	ErrUnexpectedStatus = errors.New("github returned unexpected status")
	ErrMissingRepo      = errors.New("github owner and repository are required")
)
