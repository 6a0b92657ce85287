package pollbot_errors

import (
	"errors"
)

// Common errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Poll errors
var (
	ErrAuthenticationFailed = errors.New("message sender cannot be authenticated")
	ErrNoActivePoll         = errors.New("no active poll")
	ErrActivePollNotFound   = errors.New("active poll not found")
	ErrOptionNotFound       = errors.New("option not found")
)

// Storage errors
var (
	ErrStorageReadFailed  = errors.New("storage read failed")
	ErrStorageWriteFailed = errors.New("storage write failed")
)
