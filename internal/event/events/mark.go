package events

import "github.com/dshills/coremark/internal/event/topic"

// Mark event topics.
const (
	// TopicMarkMoving is published before a watched mark changes position.
	TopicMarkMoving topic.Topic = "mark.moving"

	// TopicMarkArrived is published after a watched mark was relocated.
	TopicMarkArrived topic.Topic = "mark.arrived"

	// TopicMarkConsistencyViolated is published when a debug check finds
	// list ordering broken.
	TopicMarkConsistencyViolated topic.Topic = "mark.consistency.violated"

	// TopicMarkPayloadLeaked is published when a mark is freed while a
	// collaborator payload is still attached.
	TopicMarkPayloadLeaked topic.Topic = "mark.payload.leaked"

	// TopicMarkViewAdded is published when a view slot is claimed.
	TopicMarkViewAdded topic.Topic = "mark.view.added"

	// TopicMarkViewRemoved is published when a view slot is released.
	TopicMarkViewRemoved topic.Topic = "mark.view.removed"
)

// MarkMoving is published before a watched mark moves.
type MarkMoving struct {
	// DocumentID identifies the owning document.
	DocumentID string

	// MarkID is the handle id of the mark about to move.
	MarkID uint64

	// View is the mark's view number (negative for ungrouped or point).
	View int

	// Seq is the mark's sequence key before the move.
	Seq int64
}

// MarkArrived is published after a relocation, once per watched party.
type MarkArrived struct {
	// DocumentID identifies the owning document.
	DocumentID string

	// MarkID is the watched mark.
	MarkID uint64

	// MovedID is the mark that moved. Equal to MarkID when the watched
	// mark itself moved, otherwise MarkID was the target.
	MovedID uint64

	// Seq is the moved mark's new sequence key.
	Seq int64
}

// ConsistencyViolated reports a broken ordering invariant.
type ConsistencyViolated struct {
	DocumentID string

	// Kind classifies the violation (e.g. "order", "link", "membership").
	Kind string

	// View is the view list the violation was found in, or -1 for the
	// global list.
	View int

	// MarkID is the offending mark, zero if unknown.
	MarkID uint64

	// Detail is a human-readable description.
	Detail string
}

// PayloadLeaked is published when a mark still carrying a payload is freed.
type PayloadLeaked struct {
	DocumentID string
	MarkID     uint64
	View       int
}

// ViewAdded is published when a view is claimed by an owner.
type ViewAdded struct {
	DocumentID string
	View       int
	Owner      string
}

// ViewRemoved is published when an owner releases a view.
type ViewRemoved struct {
	DocumentID string
	View       int
	Owner      string

	// Discarded is the number of marks freed with the view.
	Discarded int
}
