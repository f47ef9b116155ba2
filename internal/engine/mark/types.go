package mark

import (
	"fmt"
	"math"
)

// Seq is the sparse ordering key of a mark. Keys are strictly increasing
// along the global list and lie in [0, limit].
type Seq int64

// DefaultSeqLimit is the largest key a document assigns by default.
const DefaultSeqLimit Seq = math.MaxInt32

// ViewID identifies a view slot. Non-negative values index the document's
// views; the negative constants describe marks outside any single view.
type ViewID int

const (
	// Ungrouped marks live only on the global list.
	Ungrouped ViewID = -1

	// PointView marks points, which are members of every view.
	PointView ViewID = -2
)

// String returns a short description of the view number.
func (v ViewID) String() string {
	switch v {
	case Ungrouped:
		return "ungrouped"
	case PointView:
		return "point"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// Direction selects which way a mark is stepped.
type Direction int

const (
	// Forward steps toward the end of the content.
	Forward Direction = iota

	// Backward steps toward the start of the content.
	Backward
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Ref is an opaque content location. Its meaning is defined entirely by
// the Content implementation that produced it.
type Ref any

// Content is the collaborator owning the text that marks point into.
type Content interface {
	// Start returns the ref of the first position.
	Start() Ref

	// End returns the ref of the position after the last unit.
	End() Ref

	// Step moves ref one unit in dir and returns the new ref together
	// with the unit crossed. It returns io.EOF at either boundary.
	Step(ref Ref, dir Direction) (Ref, string, error)

	// SameRef reports whether two refs denote the same position.
	SameRef(a, b Ref) bool
}

// Orderer is an optional Content extension used by debug checks to
// confirm that two refs are in document order.
type Orderer interface {
	RefsInOrder(a, b Ref) bool
}

// RefCountFunc is called whenever a mark starts (+1) or stops (-1)
// referencing a content location.
type RefCountFunc func(ref Ref, delta int)

// Mark is a handle to a mark or point in a Document. The zero value is
// never valid.
type Mark struct {
	doc uint32
	idx int32
	gen uint32
}

// IsZero reports whether m is the zero handle.
func (m Mark) IsZero() bool {
	return m.gen == 0
}

// ID packs the handle into a single integer, unique within a document
// across the lifetime of every slot generation.
func (m Mark) ID() uint64 {
	return uint64(uint32(m.idx))<<32 | uint64(m.gen)
}

// String returns a debug representation of the handle.
func (m Mark) String() string {
	if m.IsZero() {
		return "Mark(nil)"
	}
	return fmt.Sprintf("Mark(%d#%d)", m.idx, m.gen)
}
