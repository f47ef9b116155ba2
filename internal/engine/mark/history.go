package mark

// pointRing is a fixed-size ring of ungrouped snapshot marks recording
// recently visited point positions. The newest entry is popped first.
type pointRing struct {
	buf   []Mark
	start int
	n     int
}

func newPointRing(size int) *pointRing {
	return &pointRing{buf: make([]Mark, size)}
}

// push stores m and returns the evicted oldest entry, if any.
func (r *pointRing) push(m Mark) (Mark, bool) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = m
		r.n++
		return Mark{}, false
	}
	old := r.buf[r.start]
	r.buf[r.start] = m
	r.start = (r.start + 1) % len(r.buf)
	return old, true
}

func (r *pointRing) pop() (Mark, bool) {
	if r.n == 0 {
		return Mark{}, false
	}
	r.n--
	k := (r.start + r.n) % len(r.buf)
	m := r.buf[k]
	r.buf[k] = Mark{}
	return m, true
}

// PushPoint records p's current position on the point history ring. When
// the ring is full the oldest snapshot is freed.
func (d *Document) PushPoint(p Mark) error {
	i, err := d.lookup(p)
	if err != nil {
		return err
	}
	if d.slots[i].view != PointView {
		return ErrNotPoint
	}

	snap := d.dupAfter(i, Ungrouped)
	if old, evicted := d.history.push(d.handle(snap)); evicted {
		_ = d.Free(old)
	}
	d.afterOp()
	return nil
}

// PopPoint moves p back to the most recent recorded position and drops
// that snapshot. It reports false when the history is empty.
func (d *Document) PopPoint(p Mark) (bool, error) {
	i, err := d.lookup(p)
	if err != nil {
		return false, err
	}
	if d.slots[i].view != PointView {
		return false, ErrNotPoint
	}

	for {
		snap, ok := d.history.pop()
		if !ok {
			return false, nil
		}
		if !d.Valid(snap) {
			continue
		}
		if err := d.MoveTo(p, snap); err != nil {
			return false, err
		}
		return true, d.Free(snap)
	}
}

// PointHistoryLen returns the number of recorded point positions.
func (d *Document) PointHistoryLen() int {
	return d.history.n
}
