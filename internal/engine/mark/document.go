package mark

import (
	"context"
	"maps"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dshills/coremark/internal/event"
	"github.com/dshills/coremark/internal/event/topic"
	"github.com/dshills/coremark/internal/logging"
)

const eventSource = "mark"

var docSerial atomic.Uint32

// view is one view slot. An empty owner marks a free slot.
type view struct {
	owner string
	head  node
	tail  node
}

// Document owns every mark, point and view positioned in one content
// stream.
type Document struct {
	id      string
	serial  uint32
	content Content

	slots    []slot
	freeList []int32
	deferred []int32
	live     int

	marks  chain
	points chain
	views  []view

	history *pointRing

	seqLimit       Seq
	checkLimit     int
	validateEachOp bool
	strict         bool
	checkMoves     bool
	refCount       RefCountFunc
	bus            event.Publisher
	logger         *log.Logger
}

// New creates an empty document over content.
func New(content Content, opts ...Option) (*Document, error) {
	if content == nil {
		return nil, ErrNoContent
	}

	d := &Document{
		id:         uuid.NewString(),
		serial:     docSerial.Add(1),
		content:    content,
		marks:      emptyChain,
		points:     emptyChain,
		seqLimit:   DefaultSeqLimit,
		checkLimit: DefaultCheckLimit,
		history:    newPointRing(DefaultPointHistory),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.Component(eventSource)
	}
	d.logger = d.logger.With(logging.FieldDoc, d.id)
	return d, nil
}

// ID returns the document identity.
func (d *Document) ID() string {
	return d.id
}

// Content returns the content collaborator.
func (d *Document) Content() Content {
	return d.content
}

// Len returns the number of live marks, points included.
func (d *Document) Len() int {
	return d.live
}

// SeqLimit returns the largest key the document assigns.
func (d *Document) SeqLimit() Seq {
	return d.seqLimit
}

// Valid reports whether m refers to a live mark of this document.
func (d *Document) Valid(m Mark) bool {
	_, err := d.lookup(m)
	return err == nil
}

// Seq returns the mark's sequence key, or -1 for an invalid handle.
func (d *Document) Seq(m Mark) Seq {
	i, err := d.lookup(m)
	if err != nil {
		return -1
	}
	return d.slots[i].seq
}

// Ref returns the mark's content ref, or nil for an invalid handle.
func (d *Document) Ref(m Mark) Ref {
	i, err := d.lookup(m)
	if err != nil {
		return nil
	}
	return d.slots[i].ref
}

// ViewOf returns the view number fixed at the mark's creation.
func (d *Document) ViewOf(m Mark) (ViewID, error) {
	i, err := d.lookup(m)
	if err != nil {
		return Ungrouped, err
	}
	return d.slots[i].view, nil
}

// IsPoint reports whether m is a live point.
func (d *Document) IsPoint(m Mark) bool {
	i, err := d.lookup(m)
	return err == nil && d.slots[i].view == PointView
}

// Compare orders two marks by sequence key: -1, 0 or +1.
func (d *Document) Compare(a, b Mark) (int, error) {
	i, err := d.lookup(a)
	if err != nil {
		return 0, err
	}
	j, err := d.lookup(b)
	if err != nil {
		return 0, err
	}
	switch si, sj := d.slots[i].seq, d.slots[j].seq; {
	case si < sj:
		return -1, nil
	case si > sj:
		return 1, nil
	}
	return 0, nil
}

// SamePosition reports whether two live marks reference the same content
// position, regardless of their order in the lists.
func (d *Document) SamePosition(a, b Mark) bool {
	i, err := d.lookup(a)
	if err != nil {
		return false
	}
	j, err := d.lookup(b)
	if err != nil {
		return false
	}
	return d.content.SameRef(d.slots[i].ref, d.slots[j].ref)
}

// SetAttr sets a string attribute on the mark. An empty value deletes it.
func (d *Document) SetAttr(m Mark, key, value string) error {
	i, err := d.lookup(m)
	if err != nil {
		return err
	}
	s := &d.slots[i]
	if value == "" {
		delete(s.attrs, key)
		return nil
	}
	if s.attrs == nil {
		s.attrs = make(map[string]string)
	}
	s.attrs[key] = value
	return nil
}

// Attr returns a single attribute.
func (d *Document) Attr(m Mark, key string) (string, bool) {
	i, err := d.lookup(m)
	if err != nil {
		return "", false
	}
	v, ok := d.slots[i].attrs[key]
	return v, ok
}

// Attrs returns a copy of the mark's attributes.
func (d *Document) Attrs(m Mark) map[string]string {
	i, err := d.lookup(m)
	if err != nil {
		return nil
	}
	return maps.Clone(d.slots[i].attrs)
}

// SetWatched controls whether moves of m are announced.
func (d *Document) SetWatched(m Mark, watched bool) error {
	i, err := d.lookup(m)
	if err != nil {
		return err
	}
	d.slots[i].watched = watched
	return nil
}

// Watched reports whether moves of m are announced.
func (d *Document) Watched(m Mark) bool {
	i, err := d.lookup(m)
	return err == nil && d.slots[i].watched
}

// SetPayload attaches collaborator data to m. The document never frees
// it; a payload still attached when the mark is freed is reported.
func (d *Document) SetPayload(m Mark, payload any) error {
	i, err := d.lookup(m)
	if err != nil {
		return err
	}
	d.slots[i].payload = payload
	return nil
}

// Payload returns the attached payload.
func (d *Document) Payload(m Mark) any {
	i, err := d.lookup(m)
	if err != nil {
		return nil
	}
	return d.slots[i].payload
}

// ReleasePayload detaches and returns the payload.
func (d *Document) ReleasePayload(m Mark) any {
	i, err := d.lookup(m)
	if err != nil {
		return nil
	}
	p := d.slots[i].payload
	d.slots[i].payload = nil
	return p
}

// setRef replaces a slot's ref, keeping the ref-count callback balanced.
func (d *Document) setRef(i int32, ref Ref) {
	s := &d.slots[i]
	old := s.ref
	s.ref = ref
	if d.refCount == nil {
		return
	}
	if ref != nil {
		d.refCount(ref, 1)
	}
	if old != nil {
		d.refCount(old, -1)
	}
}

// afterOp runs the per-operation consistency check when enabled.
func (d *Document) afterOp() {
	if d.validateEachOp {
		d.Check()
	}
}

func publish[T any](d *Document, tp topic.Topic, payload T) {
	if d.bus == nil {
		return
	}
	if err := d.bus.Publish(context.Background(), event.NewEvent(tp, payload, eventSource)); err != nil {
		d.logger.Debug("event delivery failed", logging.FieldKind, tp, logging.FieldError, err)
	}
}
