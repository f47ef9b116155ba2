package mark

import "errors"

// Errors returned by mark operations.
var (
	// ErrNoContent indicates a document was created without a content collaborator.
	ErrNoContent = errors.New("no content collaborator")

	// ErrStaleMark indicates the handle refers to a freed mark.
	ErrStaleMark = errors.New("stale mark")

	// ErrForeignMark indicates the handle belongs to another document.
	ErrForeignMark = errors.New("mark belongs to another document")

	// ErrViewOutOfRange indicates a view number outside the document's views.
	ErrViewOutOfRange = errors.New("view out of range")

	// ErrViewNotOwned indicates the view is free or owned by someone else.
	ErrViewNotOwned = errors.New("view not owned by caller")

	// ErrNotViewOwner indicates a view release by a non-owner.
	ErrNotViewOwner = errors.New("not the view owner")

	// ErrInvalidOwner indicates an empty owner identity.
	ErrInvalidOwner = errors.New("invalid owner")

	// ErrInvalidView indicates a view number that cannot hold ordinary marks.
	ErrInvalidView = errors.New("invalid view")

	// ErrNotPoint indicates a point operation on an ordinary mark.
	ErrNotPoint = errors.New("mark is not a point")

	// ErrSeqExhausted indicates no sequence key could be found. It is
	// raised as a panic: the key space holds billions of marks.
	ErrSeqExhausted = errors.New("sequence space exhausted")

	// ErrInconsistent indicates a failed consistency check in strict mode.
	ErrInconsistent = errors.New("mark lists inconsistent")
)
