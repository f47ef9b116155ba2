package mark

// First returns the first member of view v, point or mark.
func (d *Document) First(v ViewID) (Mark, bool) {
	if !d.liveView(v) {
		return Mark{}, false
	}
	return d.nodeMark(d.views[v].head)
}

// Last returns the last member of view v.
func (d *Document) Last(v ViewID) (Mark, bool) {
	if !d.liveView(v) {
		return Mark{}, false
	}
	return d.nodeMark(d.views[v].tail)
}

// Next returns the member of view v following m. m must be a member of
// v: a mark of that view or a point.
func (d *Document) Next(v ViewID, m Mark) (Mark, bool) {
	n, ok := d.memberNode(v, m)
	if !ok {
		return Mark{}, false
	}
	return d.nodeMark(d.vNext(v, n))
}

// Prev returns the member of view v preceding m.
func (d *Document) Prev(v ViewID, m Mark) (Mark, bool) {
	n, ok := d.memberNode(v, m)
	if !ok {
		return Mark{}, false
	}
	return d.nodeMark(d.vPrev(v, n))
}

// AtOrBefore returns the last member of view v not positioned after ref.
// Members sharing ref's position count, even when they follow it on the
// list. ref itself is returned when it is a member at the latest such
// spot.
func (d *Document) AtOrBefore(v ViewID, ref Mark) (Mark, bool) {
	if !d.liveView(v) {
		return Mark{}, false
	}
	i, err := d.lookup(ref)
	if err != nil {
		return Mark{}, false
	}

	best := int32(-1)
	if _, ok := d.nodeIn(i, v); ok {
		best = i
	}
	for j := d.slots[i].all.next; j >= 0 && d.content.SameRef(d.slots[i].ref, d.slots[j].ref); j = d.slots[j].all.next {
		if _, ok := d.nodeIn(j, v); ok {
			best = j
		}
	}
	if best >= 0 {
		return d.handle(best), true
	}

	for j := d.slots[i].all.prev; j >= 0; j = d.slots[j].all.prev {
		if _, ok := d.nodeIn(j, v); ok {
			return d.handle(j), true
		}
	}
	return Mark{}, false
}

// FirstMark returns the first mark on the global list.
func (d *Document) FirstMark() (Mark, bool) {
	return d.slotMark(d.marks.head)
}

// LastMark returns the last mark on the global list.
func (d *Document) LastMark() (Mark, bool) {
	return d.slotMark(d.marks.tail)
}

// NextMark returns the global successor of m.
func (d *Document) NextMark(m Mark) (Mark, bool) {
	i, err := d.lookup(m)
	if err != nil {
		return Mark{}, false
	}
	return d.slotMark(d.slots[i].all.next)
}

// PrevMark returns the global predecessor of m.
func (d *Document) PrevMark(m Mark) (Mark, bool) {
	i, err := d.lookup(m)
	if err != nil {
		return Mark{}, false
	}
	return d.slotMark(d.slots[i].all.prev)
}

// FirstPoint returns the first point of the document.
func (d *Document) FirstPoint() (Mark, bool) {
	return d.slotMark(d.points.head)
}

// NextPoint returns the point following p.
func (d *Document) NextPoint(p Mark) (Mark, bool) {
	i, err := d.lookup(p)
	if err != nil || d.slots[i].view != PointView {
		return Mark{}, false
	}
	return d.slotMark(d.slots[i].pts.next)
}

// Marks returns the whole global list in order.
func (d *Document) Marks() []Mark {
	out := make([]Mark, 0, d.live)
	for i := d.marks.head; i >= 0; i = d.slots[i].all.next {
		out = append(out, d.handle(i))
	}
	return out
}

// Members returns every member of view v in order.
func (d *Document) Members(v ViewID) []Mark {
	var out []Mark
	for m, ok := d.First(v); ok; m, ok = d.Next(v, m) {
		out = append(out, m)
	}
	return out
}

func (d *Document) memberNode(v ViewID, m Mark) (node, bool) {
	if !d.liveView(v) {
		return noNode, false
	}
	i, err := d.lookup(m)
	if err != nil {
		return noNode, false
	}
	return d.nodeIn(i, v)
}

func (d *Document) nodeMark(n node) (Mark, bool) {
	if n == noNode {
		return Mark{}, false
	}
	return d.handle(n.idx), true
}

func (d *Document) slotMark(i int32) (Mark, bool) {
	if i < 0 {
		return Mark{}, false
	}
	return d.handle(i), true
}
