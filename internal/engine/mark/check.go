package mark

import (
	"fmt"

	"github.com/dshills/coremark/internal/event/events"
	"github.com/dshills/coremark/internal/logging"
)

// Violation kinds.
const (
	KindOrder      = "order"
	KindRange      = "range"
	KindLink       = "link"
	KindMembership = "membership"
	KindDead       = "dead"
	KindTies       = "ties"
	KindMoveOrder  = "move-order"
)

// Violation describes one broken invariant. View is Ungrouped for the
// global list and PointView for the point chain.
type Violation struct {
	Kind   string
	View   ViewID
	Mark   Mark
	Detail string
}

// String formats the violation for logs.
func (v Violation) String() string {
	return fmt.Sprintf("%s in %s at %s: %s", v.Kind, v.View, v.Mark, v.Detail)
}

// Check scans the global list, the point chain and every view list,
// visiting at most the configured number of entries per list. Each
// violation is logged and published; in strict mode the first one
// panics with ErrInconsistent.
func (d *Document) Check() []Violation {
	var out []Violation
	add := func(v Violation) {
		out = append(out, v)
	}

	d.scanChain(&d.marks, allLinks, Ungrouped, add)
	d.scanChain(&d.points, pointLinks, PointView, add)
	for k := range d.views {
		if d.views[k].owner != "" {
			d.scanView(ViewID(k), add)
		}
	}

	for _, v := range out {
		d.report(v)
	}
	if len(out) > 0 && d.strict {
		panic(fmt.Errorf("%w: %s", ErrInconsistent, out[0]))
	}
	return out
}

func (d *Document) scanChain(c *chain, sel linkSel, which ViewID, add func(Violation)) {
	prev := int32(-1)
	prevSeq := Seq(-1)
	seen := 0
	for i := c.head; i >= 0 && seen < d.checkLimit; i = sel(&d.slots[i]).next {
		seen++
		if int(i) >= len(d.slots) || !d.slots[i].live {
			add(Violation{Kind: KindDead, View: which, Detail: fmt.Sprintf("slot %d not live", i)})
			return
		}
		s := &d.slots[i]
		h := d.handle(i)
		if sel(s).prev != prev {
			add(Violation{Kind: KindLink, View: which, Mark: h, Detail: "back link mismatch"})
		}
		if s.seq <= prevSeq {
			add(Violation{Kind: KindOrder, View: which, Mark: h,
				Detail: fmt.Sprintf("seq %d not above predecessor %d", s.seq, prevSeq)})
		}
		if s.seq < 0 || s.seq > d.seqLimit {
			add(Violation{Kind: KindRange, View: which, Mark: h,
				Detail: fmt.Sprintf("seq %d outside [0, %d]", s.seq, d.seqLimit)})
		}
		switch {
		case which == PointView && s.view != PointView:
			add(Violation{Kind: KindMembership, View: which, Mark: h, Detail: "non-point on point chain"})
		case which == PointView && len(s.ties) != len(d.views):
			add(Violation{Kind: KindTies, View: which, Mark: h,
				Detail: fmt.Sprintf("%d ties for %d views", len(s.ties), len(d.views))})
		case which == Ungrouped && s.view >= 0 && !d.liveView(s.view):
			add(Violation{Kind: KindMembership, View: which, Mark: h,
				Detail: fmt.Sprintf("member of released %s", s.view)})
		}
		prev = i
		prevSeq = s.seq
	}
}

// scanView scans one view list, treating point ties as members.
func (d *Document) scanView(v ViewID, add func(Violation)) {
	prev := noNode
	prevSeq := Seq(-1)
	seen := 0
	for n := d.views[v].head; n != noNode && seen < d.checkLimit; n = d.vNext(v, n) {
		seen++
		s := &d.slots[n.idx]
		if !s.live {
			add(Violation{Kind: KindDead, View: v, Detail: fmt.Sprintf("slot %d not live", n.idx)})
			return
		}
		h := d.handle(n.idx)
		switch {
		case n.kind == nodeTie && s.view != PointView:
			add(Violation{Kind: KindMembership, View: v, Mark: h, Detail: "tie node on non-point"})
			return
		case n.kind == nodeMark && s.view != v:
			add(Violation{Kind: KindMembership, View: v, Mark: h,
				Detail: fmt.Sprintf("mark of %s on this list", s.view)})
			return
		}
		if d.vPrev(v, n) != prev {
			add(Violation{Kind: KindLink, View: v, Mark: h, Detail: "back link mismatch"})
		}
		if s.seq <= prevSeq {
			add(Violation{Kind: KindOrder, View: v, Mark: h,
				Detail: fmt.Sprintf("seq %d not above predecessor %d", s.seq, prevSeq)})
		}
		prev = n
		prevSeq = s.seq
	}
}

// report logs a violation and broadcasts it. It never aborts.
func (d *Document) report(v Violation) {
	var id uint64
	if !v.Mark.IsZero() {
		id = v.Mark.ID()
	}
	d.logger.Warn("mark consistency violation",
		logging.FieldKind, v.Kind,
		logging.FieldView, v.View.String(),
		logging.FieldMark, id,
		logging.FieldDetail, v.Detail,
	)
	publish(d, events.TopicMarkConsistencyViolated, events.ConsistencyViolated{
		DocumentID: d.id,
		Kind:       v.Kind,
		View:       int(v.View),
		MarkID:     id,
		Detail:     v.Detail,
	})
}
