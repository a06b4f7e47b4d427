package anki

import "errors"

var (
	// ErrRequestFailed is returned when AnkiConnect cannot be reached or
	// answers with a non-2xx status.
	ErrRequestFailed = errors.New("ankiconnect request failed")

	// ErrActionFailed is returned when AnkiConnect reports an error for an action.
	ErrActionFailed = errors.New("ankiconnect action failed")

	// ErrInvalidResponse is returned when the response body is not the
	// expected JSON envelope.
	ErrInvalidResponse = errors.New("invalid ankiconnect response")

	// ErrNoDecks is returned when a pool query names no decks.
	ErrNoDecks = errors.New("at least one deck required")
)
