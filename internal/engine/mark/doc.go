// Package mark maintains ordered positional references ("marks") into a
// document whose content is owned by an external collaborator.
//
// A Document keeps every mark on one global list ordered by a sparse
// integer key (Seq), so any two marks compare in O(1) without renumbering
// the whole set when a mark is inserted. Marks can additionally belong to
// a view: an independently owned, ordered subset used by one consumer
// (a renderer's line starts, a highlighter's spans, a fold table). Points
// are marks that belong to every view at once; they are the only marks
// through which content is edited.
//
// # Core Components
//
//   - [Document]: owns the global list, view slots, the point chain and a
//     ring of recently visited point positions
//   - [Mark]: a generational handle; stale handles fail every operation
//     with [ErrStaleMark] once the mark is freed
//   - [Content]: the collaborator that steps a [Ref] one unit at a time
//
// # Usage
//
//	doc, _ := mark.New(text.New("hello world"))
//	v, _ := doc.AddView("highlighter")
//
//	pt, _ := doc.NewPoint()
//	m, _ := doc.NewMark(v, "highlighter", mark.AtEnd())
//
//	doc.Advance(pt, mark.Forward)  // step one unit
//	doc.MoveTo(pt, m)              // relocate onto another mark
//	prev, ok := doc.AtOrBefore(v, pt)
//
// # Sequence keys
//
// New marks take the midpoint of their neighbors' keys. Appends step away
// from the boundary by 256. When no gap is left a window around the new
// mark is grown outward and its keys spread evenly, so cost is
// proportional to local density rather than document size.
//
// # Lifecycle
//
// Free unlinks a mark, bumps its slot generation and queues the slot on a
// deferred list. Idle moves deferred slots to the reusable free list.
// Freeing a stale handle is a no-op.
//
// # Thread Safety
//
// A Document is not safe for concurrent use. All operations on one
// document must come from a single goroutine; the surrounding editor
// serializes commands per document. Event handlers run synchronously
// inside the mutating call and must not mutate the document.
package mark
