package mark

import (
	"context"
	"io"
	"testing"

	"github.com/dshills/coremark/internal/event"
	"github.com/dshills/coremark/internal/event/topic"
	"github.com/dshills/coremark/internal/logging"
)

// testContent is a byte-addressed string. Refs are int offsets.
type testContent struct {
	text string
	lie  bool // RefsInOrder always answers false
}

func (c *testContent) Start() Ref { return 0 }
func (c *testContent) End() Ref   { return len(c.text) }

func (c *testContent) Step(ref Ref, dir Direction) (Ref, string, error) {
	off := ref.(int)
	if dir == Forward {
		if off >= len(c.text) {
			return ref, "", io.EOF
		}
		return off + 1, c.text[off : off+1], nil
	}
	if off <= 0 {
		return ref, "", io.EOF
	}
	return off - 1, c.text[off-1 : off], nil
}

func (c *testContent) SameRef(a, b Ref) bool {
	x, ok1 := a.(int)
	y, ok2 := b.(int)
	return ok1 && ok2 && x == y
}

func (c *testContent) RefsInOrder(a, b Ref) bool {
	if c.lie {
		return false
	}
	return a.(int) <= b.(int)
}

func newTestDoc(t *testing.T, text string, opts ...Option) *Document {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	d, err := New(&testContent{text: text}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

// at creates a mark in v and steps it forward to off.
func at(t *testing.T, d *Document, v ViewID, owner string, off int) Mark {
	t.Helper()
	m, err := d.NewMark(v, owner)
	if err != nil {
		t.Fatalf("NewMark: %v", err)
	}
	for k := 0; k < off; k++ {
		if _, err := d.Advance(m, Forward); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	return m
}

// pointAt creates a point and steps it forward to off.
func pointAt(t *testing.T, d *Document, off int) Mark {
	t.Helper()
	p, err := d.NewPoint()
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}
	for k := 0; k < off; k++ {
		if _, err := d.Advance(p, Forward); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	return p
}

func offset(t *testing.T, d *Document, m Mark) int {
	t.Helper()
	ref, ok := d.Ref(m).(int)
	if !ok {
		t.Fatalf("%s has no ref", m)
	}
	return ref
}

func assertOrder(t *testing.T, got []Mark, want ...Mark) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d marks, got %d: %v", len(want), len(got), got)
	}
	for k := range want {
		if got[k] != want[k] {
			t.Fatalf("position %d: expected %s, got %s (full order %v)", k, want[k], got[k], got)
		}
	}
}

func assertConsistent(t *testing.T, d *Document) {
	t.Helper()
	if vs := d.Check(); len(vs) > 0 {
		t.Fatalf("unexpected violations: %v", vs)
	}
}

// recorder collects every event published on its bus.
type recorder struct {
	bus    *event.Bus
	events []any
}

func newRecorder(t *testing.T) *recorder {
	t.Helper()
	r := &recorder{bus: event.NewBus()}
	_, err := r.bus.SubscribeFunc(topic.Topic("mark.**"), func(_ context.Context, ev any) error {
		r.events = append(r.events, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("SubscribeFunc: %v", err)
	}
	return r
}

func payloads[T any](r *recorder) []T {
	var out []T
	for _, ev := range r.events {
		if p, ok := event.PayloadOf[T](ev); ok {
			out = append(out, p)
		}
	}
	return out
}
