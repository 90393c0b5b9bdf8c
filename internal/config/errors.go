package config

import "errors"

var (
	// ErrEmptyBaseURL is returned when no base URL is provided
	ErrEmptyBaseURL = errors.New("base_url is required")
	// ErrInvalidBaseURL is returned when the base URL has no scheme or host
	ErrInvalidBaseURL = errors.New("base_url must be an absolute http(s) URL")
	// ErrNegativeDepth is returned when max_depth is below zero
	ErrNegativeDepth = errors.New("max_depth cannot be negative")
	// ErrNegativeDelay is returned when delay is below zero
	ErrNegativeDelay = errors.New("delay cannot be negative")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("request_timeout must be greater than 0")
	// ErrInvalidPacing is returned for an unknown pacing mode
	ErrInvalidPacing = errors.New("pacing must be 'sleep' or 'interval'")
	// ErrInvalidPattern is returned when an include/exclude pattern does not compile
	ErrInvalidPattern = errors.New("invalid URL pattern")
)
