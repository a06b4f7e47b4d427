package pipeline

import "errors"

var (
	// ErrRankerRequired is returned when a ranker is not provided.
	ErrRankerRequired = errors.New("ranker required")

	// ErrSelectorRequired is returned when a selector is not provided.
	ErrSelectorRequired = errors.New("selector required")

	// ErrSessionIDRequired is returned when a decision log is configured
	// without a session ID.
	ErrSessionIDRequired = errors.New("session id required")

	// ErrInvalidShortlistSize is returned for a shortlist size below one.
	ErrInvalidShortlistSize = errors.New("shortlist size must be positive")
)
