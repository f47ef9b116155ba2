package mark

import (
	"fmt"

	"github.com/dshills/coremark/internal/logging"
)

const (
	// endGap is the first step taken away from a list boundary.
	endGap = 256

	// rebalanceGap is the spacing a rebalance first aims for; it halves
	// each round down to minRebalanceGap.
	rebalanceGap    = 256
	minRebalanceGap = 4

	// maxRebalanceRounds bounds the window growth. The window doubles
	// every round, so this covers any realistic document.
	maxRebalanceRounds = 64
)

// assignSeq gives slot i, already linked into the global list, a key
// strictly between its neighbors' keys.
func (d *Document) assignSeq(i int32) {
	s := &d.slots[i]
	p, n := s.all.prev, s.all.next

	switch {
	case p < 0 && n < 0:
		s.seq = d.seqLimit / 2
		return
	case p >= 0 && n >= 0:
		lo, hi := d.slots[p].seq, d.slots[n].seq
		if hi-lo >= 2 {
			s.seq = lo + (hi-lo)/2
			return
		}
	case n < 0:
		lo := d.slots[p].seq
		for gap := Seq(endGap); gap >= 1; gap /= 2 {
			if d.seqLimit-lo >= gap {
				s.seq = lo + gap
				return
			}
		}
	default:
		hi := d.slots[n].seq
		for gap := Seq(endGap); gap >= 1; gap /= 2 {
			if hi-gap >= 0 {
				s.seq = hi - gap
				return
			}
		}
	}
	d.rebalance(i)
}

// rebalance respaces a window of marks around i. The window grows
// outward in both directions, doubling each round, until the keys just
// outside it leave room for every member at the current target gap. The
// target gap shrinks each round; once the window spans the whole list any
// gap of at least one is accepted. Relative order never changes.
func (d *Document) rebalance(i int32) {
	left, right := i, i
	count := 1
	gap := Seq(rebalanceGap)

	for round := 0; round < maxRebalanceRounds; round++ {
		grow := count
		for k := 0; k < grow; k++ {
			p := d.slots[left].all.prev
			if p < 0 {
				break
			}
			left = p
			count++
		}
		for k := 0; k < grow; k++ {
			n := d.slots[right].all.next
			if n < 0 {
				break
			}
			right = n
			count++
		}

		lo := Seq(-1)
		if p := d.slots[left].all.prev; p >= 0 {
			lo = d.slots[p].seq
		}
		hi := d.seqLimit + 1
		if n := d.slots[right].all.next; n >= 0 {
			hi = d.slots[n].seq
		}
		span := hi - lo
		whole := lo < 0 && hi > d.seqLimit

		if span >= Seq(count+1)*gap || (whole && span >= Seq(count+1)) {
			d.spread(left, count, lo, span)
			d.logger.Debug("sequence rebalance",
				logging.FieldWindow, count,
				logging.FieldSeq, d.slots[i].seq,
			)
			return
		}
		if whole {
			panic(fmt.Errorf("%w: %d marks in [0, %d]", ErrSeqExhausted, count, d.seqLimit))
		}
		if gap > minRebalanceGap {
			gap /= 2
		}
	}
	panic(fmt.Errorf("%w: rebalance window did not converge", ErrSeqExhausted))
}

// spread assigns evenly spaced keys in (lo, lo+span) to count marks
// starting at left.
func (d *Document) spread(left int32, count int, lo, span Seq) {
	step := span / Seq(count+1)
	j := left
	for k := 1; k <= count; k++ {
		d.slots[j].seq = lo + Seq(k)*step
		j = d.slots[j].all.next
	}
}
