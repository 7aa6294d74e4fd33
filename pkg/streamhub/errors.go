package streamhub

import "errors"

var (
	// ErrStreamNotFound is returned when a stream identifier is unknown.
	ErrStreamNotFound = errors.New("streamhub: stream not found")

	// ErrSubscriptionNotFound is returned when a subscription identifier is
	// unknown within an existing stream.
	ErrSubscriptionNotFound = errors.New("streamhub: subscription not found")
)
