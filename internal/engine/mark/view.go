package mark

import (
	"github.com/dshills/coremark/internal/event/events"
	"github.com/dshills/coremark/internal/logging"
)

// AddView claims a view slot for owner and returns its number. A free
// slot is reused when one exists; otherwise every point grows a tie for
// the new view. All points are linked into the new view immediately.
func (d *Document) AddView(owner string) (ViewID, error) {
	if owner == "" {
		return Ungrouped, ErrInvalidOwner
	}

	v := ViewID(-1)
	for k := range d.views {
		if d.views[k].owner == "" {
			v = ViewID(k)
			break
		}
	}
	if v < 0 {
		d.views = append(d.views, view{})
		v = ViewID(len(d.views) - 1)
		for p := d.points.head; p >= 0; p = d.slots[p].pts.next {
			d.slots[p].ties = append(d.slots[p].ties, vlink{})
		}
	}

	d.views[v] = view{owner: owner}
	for p := d.points.head; p >= 0; p = d.slots[p].pts.next {
		d.vInsertBefore(v, tieNode(p), noNode)
	}

	d.logger.Debug("view added", logging.FieldView, int(v), logging.FieldOwner, owner)
	publish(d, events.TopicMarkViewAdded, events.ViewAdded{
		DocumentID: d.id,
		View:       int(v),
		Owner:      owner,
	})
	d.afterOp()
	return v, nil
}

// RemoveView releases a view. Every ordinary mark of the view is freed;
// points only lose their tie for it.
func (d *Document) RemoveView(v ViewID, owner string) error {
	if v < 0 || int(v) >= len(d.views) {
		return ErrViewOutOfRange
	}
	if d.views[v].owner == "" || d.views[v].owner != owner {
		return ErrNotViewOwner
	}

	discarded := 0
	for n := d.views[v].head; n != noNode; {
		next := d.vNext(v, n)
		if n.kind == nodeMark {
			d.release(n.idx)
			discarded++
		}
		n = next
	}
	for p := d.points.head; p >= 0; p = d.slots[p].pts.next {
		d.slots[p].ties[v] = vlink{}
	}
	d.views[v] = view{}

	d.logger.Debug("view removed",
		logging.FieldView, int(v),
		logging.FieldOwner, owner,
		logging.FieldCount, discarded,
	)
	publish(d, events.TopicMarkViewRemoved, events.ViewRemoved{
		DocumentID: d.id,
		View:       int(v),
		Owner:      owner,
		Discarded:  discarded,
	})
	d.afterOp()
	return nil
}

// Views returns the number of view slots, free ones included.
func (d *Document) Views() int {
	return len(d.views)
}

// ViewOwner returns the owner of v, or "" for a free or unknown slot.
func (d *Document) ViewOwner(v ViewID) string {
	if v < 0 || int(v) >= len(d.views) {
		return ""
	}
	return d.views[v].owner
}

// checkView validates that owner may place marks in v.
func (d *Document) checkView(v ViewID, owner string) error {
	switch {
	case v == Ungrouped:
		return nil
	case v == PointView:
		return ErrInvalidView
	case v < 0 || int(v) >= len(d.views):
		return ErrViewOutOfRange
	case d.views[v].owner == "" || d.views[v].owner != owner:
		return ErrViewNotOwned
	}
	return nil
}

func (d *Document) liveView(v ViewID) bool {
	return v >= 0 && int(v) < len(d.views) && d.views[v].owner != ""
}
