package mark

// link chains slots by index; -1 terminates.
type link struct {
	prev, next int32
}

var noLink = link{prev: -1, next: -1}

// chain is the head and tail of an index-linked list.
type chain struct {
	head, tail int32
}

var emptyChain = chain{head: -1, tail: -1}

// linkSel selects which link of a slot a chain uses.
type linkSel func(s *slot) *link

func allLinks(s *slot) *link   { return &s.all }
func pointLinks(s *slot) *link { return &s.pts }

// linkAfter inserts i after `after`, or at the head when after is -1.
func (d *Document) linkAfter(c *chain, sel linkSel, i, after int32) {
	l := sel(&d.slots[i])
	if after < 0 {
		*l = link{prev: -1, next: c.head}
		if c.head >= 0 {
			sel(&d.slots[c.head]).prev = i
		} else {
			c.tail = i
		}
		c.head = i
		return
	}
	a := sel(&d.slots[after])
	*l = link{prev: after, next: a.next}
	if a.next >= 0 {
		sel(&d.slots[a.next]).prev = i
	} else {
		c.tail = i
	}
	a.next = i
}

// linkBefore inserts i before `before`, or at the tail when before is -1.
func (d *Document) linkBefore(c *chain, sel linkSel, i, before int32) {
	if before < 0 {
		d.linkAfter(c, sel, i, c.tail)
		return
	}
	d.linkAfter(c, sel, i, sel(&d.slots[before]).prev)
}

func (d *Document) unlink(c *chain, sel linkSel, i int32) {
	l := sel(&d.slots[i])
	if l.prev >= 0 {
		sel(&d.slots[l.prev]).next = l.next
	} else {
		c.head = l.next
	}
	if l.next >= 0 {
		sel(&d.slots[l.next]).prev = l.prev
	} else {
		c.tail = l.prev
	}
	*l = noLink
}

// View lists hold two node shapes: an ordinary mark's own link, and a
// point's tie for that view. nodeNone is the nil node.
type nodeKind uint8

const (
	nodeNone nodeKind = iota
	nodeMark
	nodeTie
)

type node struct {
	kind nodeKind
	idx  int32
}

var noNode node

func markNode(i int32) node { return node{kind: nodeMark, idx: i} }
func tieNode(i int32) node  { return node{kind: nodeTie, idx: i} }

type vlink struct {
	prev, next node
}

// vl returns the view-list link of n within view v.
func (d *Document) vl(v ViewID, n node) *vlink {
	if n.kind == nodeTie {
		return &d.slots[n.idx].ties[v]
	}
	return &d.slots[n.idx].vl
}

func (d *Document) vNext(v ViewID, n node) node { return d.vl(v, n).next }
func (d *Document) vPrev(v ViewID, n node) node { return d.vl(v, n).prev }

// nodeSeq is the key of the mark or point behind n.
func (d *Document) nodeSeq(n node) Seq {
	return d.slots[n.idx].seq
}

// vInsertAfter links n after `after` in view v, or at the head when
// after is noNode.
func (d *Document) vInsertAfter(v ViewID, n, after node) {
	vw := &d.views[v]
	l := d.vl(v, n)
	if after == noNode {
		*l = vlink{next: vw.head}
		if vw.head != noNode {
			d.vl(v, vw.head).prev = n
		} else {
			vw.tail = n
		}
		vw.head = n
		return
	}
	a := d.vl(v, after)
	*l = vlink{prev: after, next: a.next}
	if a.next != noNode {
		d.vl(v, a.next).prev = n
	} else {
		vw.tail = n
	}
	a.next = n
}

// vInsertBefore links n before `before`, or at the tail when before is
// noNode.
func (d *Document) vInsertBefore(v ViewID, n, before node) {
	if before == noNode {
		d.vInsertAfter(v, n, d.views[v].tail)
		return
	}
	d.vInsertAfter(v, n, d.vl(v, before).prev)
}

func (d *Document) vUnlink(v ViewID, n node) {
	vw := &d.views[v]
	l := d.vl(v, n)
	if l.prev != noNode {
		d.vl(v, l.prev).next = l.next
	} else {
		vw.head = l.next
	}
	if l.next != noNode {
		d.vl(v, l.next).prev = l.prev
	} else {
		vw.tail = l.prev
	}
	*l = vlink{}
}

// nodeIn returns the node representing slot i in view v: the point's tie
// for points, the mark's own link for members of v.
func (d *Document) nodeIn(i int32, v ViewID) (node, bool) {
	switch d.slots[i].view {
	case PointView:
		return tieNode(i), true
	case v:
		return markNode(i), true
	}
	return noNode, false
}

// memberBefore walks the global list backward from i and returns the
// node of the nearest member of view v, or noNode.
func (d *Document) memberBefore(i int32, v ViewID) node {
	for j := d.slots[i].all.prev; j >= 0; j = d.slots[j].all.prev {
		if n, ok := d.nodeIn(j, v); ok {
			return n
		}
	}
	return noNode
}

// liveViews calls fn for every owned view slot.
func (d *Document) liveViews(fn func(v ViewID)) {
	for k := range d.views {
		if d.views[k].owner != "" {
			fn(ViewID(k))
		}
	}
}
