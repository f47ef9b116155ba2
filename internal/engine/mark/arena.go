package mark

// slot is the storage behind a Mark handle.
type slot struct {
	gen  uint32
	live bool

	seq     Seq
	ref     Ref
	view    ViewID
	watched bool
	payload any
	attrs   map[string]string

	all  link    // global list
	pts  link    // point chain, points only
	vl   vlink   // view list, grouped marks only
	ties []vlink // one per view, points only
}

// lookup resolves a handle to a live slot index.
func (d *Document) lookup(m Mark) (int32, error) {
	if m.IsZero() {
		return -1, ErrStaleMark
	}
	if m.doc != d.serial {
		return -1, ErrForeignMark
	}
	if m.idx < 0 || int(m.idx) >= len(d.slots) {
		return -1, ErrStaleMark
	}
	if s := &d.slots[m.idx]; !s.live || s.gen != m.gen {
		return -1, ErrStaleMark
	}
	return m.idx, nil
}

// handle returns the current handle of a live slot.
func (d *Document) handle(i int32) Mark {
	return Mark{doc: d.serial, idx: i, gen: d.slots[i].gen}
}

// alloc takes a slot from the free list, or grows the arena.
// Slots freed since the last Idle call are never reused.
func (d *Document) alloc(v ViewID) int32 {
	var i int32
	if n := len(d.freeList); n > 0 {
		i = d.freeList[n-1]
		d.freeList = d.freeList[:n-1]
	} else {
		d.slots = append(d.slots, slot{gen: 1})
		i = int32(len(d.slots) - 1)
	}
	d.slots[i] = slot{
		gen:  d.slots[i].gen,
		live: true,
		view: v,
		all:  noLink,
		pts:  noLink,
	}
	d.live++
	return i
}

// retire scrubs an unlinked slot and queues it for deferred reuse.
func (d *Document) retire(i int32) {
	gen := d.slots[i].gen + 1
	if gen == 0 {
		gen = 1
	}
	d.slots[i] = slot{gen: gen}
	d.deferred = append(d.deferred, i)
	d.live--
}

// Idle makes slots freed since the previous call available for reuse and
// returns how many were released. Editors call it from their idle loop.
func (d *Document) Idle() int {
	n := len(d.deferred)
	d.freeList = append(d.freeList, d.deferred...)
	d.deferred = d.deferred[:0]
	return n
}
