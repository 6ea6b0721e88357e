package core

import "errors"

// Failure kinds shared by the review pipeline. Errors returned by the pipeline
// wrap exactly one of these, so callers can branch with errors.Is.
var (
	// ErrPreconditionFailed is returned when a required credential is missing.
	// It is raised before any network call and never retried.
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrTimedOut           = errors.New("timed out")
	ErrReviewFailed       = errors.New("review failed")
	// ErrParseDegraded marks a record built from output that could not be decoded.
	ErrParseDegraded    = errors.New("model response could not be parsed")
	ErrCacheUnavailable = errors.New("cache unavailable")
	ErrDiffUnavailable  = errors.New("diff unavailable")
)
