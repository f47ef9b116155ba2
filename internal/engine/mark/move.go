package mark

import (
	"fmt"

	"github.com/dshills/coremark/internal/event/events"
	"github.com/dshills/coremark/internal/logging"
)

// Advance steps m one content unit in dir and returns the unit crossed.
// The mark first slides past marks sharing its position in the travel
// direction, then past marks found at the new position, so it ends on
// the far side of any group it joins. At a content boundary Advance
// returns io.EOF from the collaborator and the position is unchanged.
func (d *Document) Advance(m Mark, dir Direction) (string, error) {
	i, err := d.lookup(m)
	if err != nil {
		return "", err
	}

	d.slide(i, dir)
	ref, unit, err := d.content.Step(d.slots[i].ref, dir)
	if err != nil {
		d.afterOp()
		return "", err
	}

	d.notifyMoving(i)
	d.setRef(i, ref)
	d.slide(i, dir)
	d.notifyArrived(i, -1)
	d.afterOp()
	return unit, nil
}

// slide moves i past every adjacent mark that shares its ref.
func (d *Document) slide(i int32, dir Direction) {
	if dir == Backward {
		for j := d.slots[i].all.prev; j >= 0 && d.content.SameRef(d.slots[i].ref, d.slots[j].ref); j = d.slots[i].all.prev {
			d.backwardOver(i, j)
		}
		return
	}
	for j := d.slots[i].all.next; j >= 0 && d.content.SameRef(d.slots[i].ref, d.slots[j].ref); j = d.slots[i].all.next {
		d.forwardOver(i, j)
	}
}

// forwardOver swaps i with its global successor j in every list the two
// share, and swaps their keys. Nothing lies between them on any list.
func (d *Document) forwardOver(i, j int32) {
	d.unlink(&d.marks, allLinks, i)
	d.linkAfter(&d.marks, allLinks, i, j)

	vi, vj := d.slots[i].view, d.slots[j].view
	switch {
	case vi == PointView && vj == PointView:
		d.unlink(&d.points, pointLinks, i)
		d.linkAfter(&d.points, pointLinks, i, j)
		d.liveViews(func(v ViewID) {
			d.vUnlink(v, tieNode(i))
			d.vInsertAfter(v, tieNode(i), tieNode(j))
		})
	case vi == PointView && vj >= 0:
		d.vUnlink(vj, tieNode(i))
		d.vInsertAfter(vj, tieNode(i), markNode(j))
	case vj == PointView && vi >= 0:
		d.vUnlink(vi, markNode(i))
		d.vInsertAfter(vi, markNode(i), tieNode(j))
	case vi >= 0 && vi == vj:
		d.vUnlink(vi, markNode(i))
		d.vInsertAfter(vi, markNode(i), markNode(j))
	}
	d.slots[i].seq, d.slots[j].seq = d.slots[j].seq, d.slots[i].seq
}

// backwardOver is forwardOver toward the start: j is i's predecessor.
func (d *Document) backwardOver(i, j int32) {
	d.unlink(&d.marks, allLinks, i)
	d.linkBefore(&d.marks, allLinks, i, j)

	vi, vj := d.slots[i].view, d.slots[j].view
	switch {
	case vi == PointView && vj == PointView:
		d.unlink(&d.points, pointLinks, i)
		d.linkBefore(&d.points, pointLinks, i, j)
		d.liveViews(func(v ViewID) {
			d.vUnlink(v, tieNode(i))
			d.vInsertBefore(v, tieNode(i), tieNode(j))
		})
	case vi == PointView && vj >= 0:
		d.vUnlink(vj, tieNode(i))
		d.vInsertBefore(vj, tieNode(i), markNode(j))
	case vj == PointView && vi >= 0:
		d.vUnlink(vi, markNode(i))
		d.vInsertBefore(vi, markNode(i), tieNode(j))
	case vi >= 0 && vi == vj:
		d.vUnlink(vi, markNode(i))
		d.vInsertBefore(vi, markNode(i), markNode(j))
	}
	d.slots[i].seq, d.slots[j].seq = d.slots[j].seq, d.slots[i].seq
}

// MoveTo relocates m to target's position, next to target on every list
// the two share. The cost is proportional to the marks crossed.
func (d *Document) MoveTo(m, target Mark) error {
	return d.moveTo(m, target, d.checkMoves)
}

// MoveToChecked is MoveTo followed by asking the content's Orderer to
// confirm both new neighbor pairs. Failures are reported, not returned.
func (d *Document) MoveToChecked(m, target Mark) error {
	return d.moveTo(m, target, true)
}

func (d *Document) moveTo(m, target Mark, verify bool) error {
	i, err := d.lookup(m)
	if err != nil {
		return err
	}
	t, err := d.lookup(target)
	if err != nil {
		return fmt.Errorf("move target: %w", err)
	}
	if i == t {
		return nil
	}

	if !d.content.SameRef(d.slots[i].ref, d.slots[t].ref) {
		d.notifyMoving(i)
	}
	d.relocate(i, t)
	d.setRef(i, d.slots[t].ref)
	if verify {
		d.verifyNeighbors(i)
	}
	d.notifyArrived(i, t)
	d.afterOp()
	return nil
}

// relocate relinks i beside t and assigns it a fresh key.
func (d *Document) relocate(i, t int32) {
	vi, vt := d.slots[i].view, d.slots[t].view
	forward := d.slots[i].seq < d.slots[t].seq

	switch {
	case vi == PointView:
		d.pointTo(i, t, forward)
	case vi == Ungrouped:
	case vi == vt:
		d.vBeside(vi, markNode(i), markNode(t), forward)
	case vt == PointView:
		d.vBeside(vi, markNode(i), tieNode(t), forward)
	default:
		d.vWalkTo(vi, markNode(i), d.slots[t].seq, forward)
	}

	d.unlink(&d.marks, allLinks, i)
	if forward {
		d.linkAfter(&d.marks, allLinks, i, t)
	} else {
		d.linkBefore(&d.marks, allLinks, i, t)
	}
	d.assignSeq(i)
}

// vBeside moves n directly after (forward) or before tn in view v.
func (d *Document) vBeside(v ViewID, n, tn node, forward bool) {
	d.vUnlink(v, n)
	if forward {
		d.vInsertAfter(v, n, tn)
	} else {
		d.vInsertBefore(v, n, tn)
	}
}

// vWalkTo moves n within view v past every member not beyond key ts.
// Members are compared by key because the target is not on this list.
func (d *Document) vWalkTo(v ViewID, n node, ts Seq, forward bool) {
	near := n
	if forward {
		for x := d.vNext(v, n); x != noNode && d.nodeSeq(x) <= ts; x = d.vNext(v, x) {
			near = x
		}
		if near != n {
			d.vUnlink(v, n)
			d.vInsertAfter(v, n, near)
		}
		return
	}
	for x := d.vPrev(v, n); x != noNode && d.nodeSeq(x) >= ts; x = d.vPrev(v, x) {
		near = x
	}
	if near != n {
		d.vUnlink(v, n)
		d.vInsertBefore(v, n, near)
	}
}

// pointTo relinks point i toward t on the point chain and independently
// in every view.
func (d *Document) pointTo(i, t int32, forward bool) {
	ts := d.slots[t].seq

	near := i
	if forward {
		for p := d.slots[i].pts.next; p >= 0 && d.slots[p].seq <= ts; p = d.slots[p].pts.next {
			near = p
		}
		if near != i {
			d.unlink(&d.points, pointLinks, i)
			d.linkAfter(&d.points, pointLinks, i, near)
		}
	} else {
		for p := d.slots[i].pts.prev; p >= 0 && d.slots[p].seq >= ts; p = d.slots[p].pts.prev {
			near = p
		}
		if near != i {
			d.unlink(&d.points, pointLinks, i)
			d.linkBefore(&d.points, pointLinks, i, near)
		}
	}

	d.liveViews(func(v ViewID) {
		d.vWalkTo(v, tieNode(i), ts, forward)
	})
}

// verifyNeighbors asks the content to confirm i's two new neighbor pairs.
func (d *Document) verifyNeighbors(i int32) {
	ord, ok := d.content.(Orderer)
	if !ok {
		return
	}
	s := &d.slots[i]
	if p := s.all.prev; p >= 0 && !ord.RefsInOrder(d.slots[p].ref, s.ref) {
		d.report(Violation{
			Kind:   KindMoveOrder,
			View:   Ungrouped,
			Mark:   d.handle(i),
			Detail: fmt.Sprintf("predecessor %s positioned after moved mark", d.handle(p)),
		})
	}
	if n := s.all.next; n >= 0 && !ord.RefsInOrder(s.ref, d.slots[n].ref) {
		d.report(Violation{
			Kind:   KindMoveOrder,
			View:   Ungrouped,
			Mark:   d.handle(i),
			Detail: fmt.Sprintf("successor %s positioned before moved mark", d.handle(n)),
		})
	}
}

func (d *Document) notifyMoving(i int32) {
	s := &d.slots[i]
	if !s.watched {
		return
	}
	publish(d, events.TopicMarkMoving, events.MarkMoving{
		DocumentID: d.id,
		MarkID:     d.handle(i).ID(),
		View:       int(s.view),
		Seq:        int64(s.seq),
	})
}

// notifyArrived announces a completed move to each watched party. t is
// the relocation target, or -1 for a step.
func (d *Document) notifyArrived(i, t int32) {
	moved := d.handle(i).ID()
	for _, k := range [2]int32{i, t} {
		if k < 0 || !d.slots[k].watched {
			continue
		}
		d.logger.Debug("mark arrived", logging.FieldMark, d.handle(k).ID(), logging.FieldSeq, d.slots[i].seq)
		publish(d, events.TopicMarkArrived, events.MarkArrived{
			DocumentID: d.id,
			MarkID:     d.handle(k).ID(),
			MovedID:    moved,
			Seq:        int64(d.slots[i].seq),
		})
	}
}
