package event

import "errors"

// Errors returned by bus operations.
var (
	// ErrNilHandler indicates a nil handler was passed to Subscribe.
	ErrNilHandler = errors.New("nil handler")

	// ErrInvalidTopic indicates an empty or malformed topic pattern.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrInvalidEvent indicates an event without a resolvable topic.
	ErrInvalidEvent = errors.New("invalid event: no topic")

	// ErrInvalidSubscription indicates a nil subscription.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrSubscriptionNotFound indicates the subscription was already removed.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
