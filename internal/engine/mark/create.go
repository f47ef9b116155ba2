package mark

import (
	"errors"

	"github.com/dshills/coremark/internal/event/events"
	"github.com/dshills/coremark/internal/logging"
)

type placeKind uint8

const (
	placeStart placeKind = iota
	placeEnd
	placeAfter
	placeBefore
)

// Placement chooses where a new mark is linked.
type Placement struct {
	kind   placeKind
	anchor Mark
}

// AtStart places the new mark before every other mark, at the content
// start. It is the default.
func AtStart() Placement { return Placement{kind: placeStart} }

// AtEnd places the new mark after every other mark, at the content end.
func AtEnd() Placement { return Placement{kind: placeEnd} }

// After places the new mark immediately after anchor, at its position.
func After(anchor Mark) Placement { return Placement{kind: placeAfter, anchor: anchor} }

// Before places the new mark immediately before anchor, at its position.
func Before(anchor Mark) Placement { return Placement{kind: placeBefore, anchor: anchor} }

func firstPlacement(where []Placement) Placement {
	if len(where) > 0 {
		return where[0]
	}
	return AtStart()
}

// NewMark creates an ordinary mark. v is Ungrouped or a view owned by
// owner.
func (d *Document) NewMark(v ViewID, owner string, where ...Placement) (Mark, error) {
	if err := d.checkView(v, owner); err != nil {
		return Mark{}, err
	}
	i, err := d.create(v, firstPlacement(where))
	if err != nil {
		return Mark{}, err
	}
	d.afterOp()
	return d.handle(i), nil
}

// NewPoint creates a point, a member of every view.
func (d *Document) NewPoint(where ...Placement) (Mark, error) {
	i, err := d.create(PointView, firstPlacement(where))
	if err != nil {
		return Mark{}, err
	}
	d.afterOp()
	return d.handle(i), nil
}

// create allocates a slot, links it into the global list per p, assigns
// its key and ref and links it into its view lists.
func (d *Document) create(v ViewID, p Placement) (int32, error) {
	anchor := int32(-1)
	if p.kind == placeAfter || p.kind == placeBefore {
		a, err := d.lookup(p.anchor)
		if err != nil {
			return -1, err
		}
		anchor = a
	}

	i := d.alloc(v)
	var ref Ref
	switch p.kind {
	case placeStart:
		d.linkAfter(&d.marks, allLinks, i, -1)
		ref = d.content.Start()
	case placeEnd:
		d.linkBefore(&d.marks, allLinks, i, -1)
		ref = d.content.End()
	case placeAfter:
		d.linkAfter(&d.marks, allLinks, i, anchor)
		ref = d.slots[anchor].ref
	case placeBefore:
		d.linkBefore(&d.marks, allLinks, i, anchor)
		ref = d.slots[anchor].ref
	}
	d.assignSeq(i)
	d.setRef(i, ref)
	d.linkMembership(i, p.kind)
	return i, nil
}

// linkMembership links a globally placed slot into the point chain and
// view lists. Start and end placements link at the list extremities;
// otherwise the nearest preceding member is found by walking back.
func (d *Document) linkMembership(i int32, kind placeKind) {
	v := d.slots[i].view
	switch {
	case v == PointView:
		prev := int32(-1)
		switch kind {
		case placeEnd:
			prev = d.points.tail
		case placeAfter, placeBefore:
			for j := d.slots[i].all.prev; j >= 0; j = d.slots[j].all.prev {
				if d.slots[j].view == PointView {
					prev = j
					break
				}
			}
		}
		d.linkAfter(&d.points, pointLinks, i, prev)
		d.slots[i].ties = make([]vlink, len(d.views))
		d.liveViews(func(w ViewID) {
			d.vInsertAfter(w, tieNode(i), d.predecessorIn(i, w, kind))
		})
	case v >= 0:
		d.vInsertAfter(v, markNode(i), d.predecessorIn(i, v, kind))
	}
}

func (d *Document) predecessorIn(i int32, v ViewID, kind placeKind) node {
	switch kind {
	case placeStart:
		return noNode
	case placeEnd:
		return d.views[v].tail
	}
	return d.memberBefore(i, v)
}

// Dup creates a mark at m's position, immediately after it. A copy of an
// ordinary mark joins the same view; a copy of a point is ungrouped.
func (d *Document) Dup(m Mark) (Mark, error) {
	i, err := d.lookup(m)
	if err != nil {
		return Mark{}, err
	}
	v := d.slots[i].view
	if v == PointView {
		v = Ungrouped
	}

	j := d.dupAfter(i, v)
	if v >= 0 {
		d.vInsertAfter(v, markNode(j), markNode(i))
	}
	d.afterOp()
	return d.handle(j), nil
}

// DupView creates a mark in view v, owned by owner, at m's position.
func (d *Document) DupView(m Mark, v ViewID, owner string) (Mark, error) {
	i, err := d.lookup(m)
	if err != nil {
		return Mark{}, err
	}
	if err := d.checkView(v, owner); err != nil {
		return Mark{}, err
	}

	j := d.dupAfter(i, v)
	if v >= 0 {
		after, ok := d.nodeIn(i, v)
		if !ok {
			after = d.memberBefore(j, v)
		}
		d.vInsertAfter(v, markNode(j), after)
	}
	d.afterOp()
	return d.handle(j), nil
}

// DupPoint creates a new point immediately after point p, in every list.
func (d *Document) DupPoint(p Mark) (Mark, error) {
	i, err := d.lookup(p)
	if err != nil {
		return Mark{}, err
	}
	if d.slots[i].view != PointView {
		return Mark{}, ErrNotPoint
	}

	j := d.dupAfter(i, PointView)
	d.linkAfter(&d.points, pointLinks, j, i)
	d.slots[j].ties = make([]vlink, len(d.views))
	d.liveViews(func(v ViewID) {
		d.vInsertAfter(v, tieNode(j), tieNode(i))
	})
	d.afterOp()
	return d.handle(j), nil
}

// dupAfter allocates a slot right after i on the global list sharing its
// ref. The caller links view membership.
func (d *Document) dupAfter(i int32, v ViewID) int32 {
	j := d.alloc(v)
	d.linkAfter(&d.marks, allLinks, j, i)
	d.assignSeq(j)
	d.setRef(j, d.slots[i].ref)
	return j
}

// Free releases a mark. Freeing an already freed mark is a no-op.
func (d *Document) Free(m Mark) error {
	i, err := d.lookup(m)
	switch {
	case errors.Is(err, ErrStaleMark):
		return nil
	case err != nil:
		return err
	}
	d.release(i)
	d.afterOp()
	return nil
}

// release unlinks slot i from every list and retires it. A payload still
// attached is reported and dropped.
func (d *Document) release(i int32) {
	s := &d.slots[i]
	if s.payload != nil {
		id := d.handle(i).ID()
		d.logger.Warn("mark freed with payload attached",
			logging.FieldMark, id,
			logging.FieldView, int(s.view),
		)
		publish(d, events.TopicMarkPayloadLeaked, events.PayloadLeaked{
			DocumentID: d.id,
			MarkID:     id,
			View:       int(s.view),
		})
	}

	d.unlink(&d.marks, allLinks, i)
	switch v := d.slots[i].view; {
	case v == PointView:
		d.unlink(&d.points, pointLinks, i)
		d.liveViews(func(w ViewID) {
			d.vUnlink(w, tieNode(i))
		})
	case v >= 0:
		d.vUnlink(v, markNode(i))
	}

	if d.refCount != nil && d.slots[i].ref != nil {
		d.refCount(d.slots[i].ref, -1)
	}
	d.retire(i)
}
