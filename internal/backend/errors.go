package backend

import "errors"

var (
	// ErrEmptyPayload is returned for a state message with no body.
	ErrEmptyPayload = errors.New("backend: empty payload")

	// ErrInvalidPayload is returned for a JSON object without a "val" key.
	ErrInvalidPayload = errors.New("backend: payload has no val")

	// ErrUnknownTopic is returned for a message outside the state topics.
	ErrUnknownTopic = errors.New("backend: not a state topic")

	// ErrIDRequired is returned by SetState for an empty id.
	ErrIDRequired = errors.New("backend: id is required")
)
