package mark

import (
	"errors"
	"io"
	"testing"

	"github.com/dshills/coremark/internal/event/events"
	"github.com/dshills/coremark/internal/logging"
)

func TestAdvance(t *testing.T) {
	t.Run("returns the crossed unit", func(t *testing.T) {
		d := newTestDoc(t, "abc")
		m, _ := d.NewMark(Ungrouped, "")

		unit, err := d.Advance(m, Forward)
		if err != nil || unit != "a" {
			t.Fatalf("expected a, got %q %v", unit, err)
		}
		unit, _ = d.Advance(m, Forward)
		if unit != "b" {
			t.Errorf("expected b, got %q", unit)
		}
		unit, _ = d.Advance(m, Backward)
		if unit != "b" || offset(t, d, m) != 1 {
			t.Errorf("expected b at 1, got %q at %d", unit, offset(t, d, m))
		}
	})

	t.Run("boundaries return EOF", func(t *testing.T) {
		d := newTestDoc(t, "ab")
		m, _ := d.NewMark(Ungrouped, "")
		if _, err := d.Advance(m, Backward); !errors.Is(err, io.EOF) {
			t.Errorf("expected EOF at start, got %v", err)
		}
		e, _ := d.NewMark(Ungrouped, "", AtEnd())
		if _, err := d.Advance(e, Forward); !errors.Is(err, io.EOF) {
			t.Errorf("expected EOF at end, got %v", err)
		}
		if offset(t, d, m) != 0 || offset(t, d, e) != 2 {
			t.Error("position changed at a boundary")
		}
	})

	t.Run("ends past the group it joins", func(t *testing.T) {
		d := newTestDoc(t, "abc")
		a, _ := d.NewMark(Ungrouped, "")
		b, _ := d.NewMark(Ungrouped, "", After(a))

		_, _ = d.Advance(a, Forward)
		assertOrder(t, d.Marks(), b, a)

		_, _ = d.Advance(b, Forward)
		assertOrder(t, d.Marks(), a, b)
		if !d.SamePosition(a, b) {
			t.Error("expected a and b together at 1")
		}

		_, _ = d.Advance(a, Backward)
		_, _ = d.Advance(b, Backward)
		assertOrder(t, d.Marks(), b, a)
		assertConsistent(t, d)
	})

	t.Run("keeps view lists ordered", func(t *testing.T) {
		d := newTestDoc(t, "abcdef")
		v, _ := d.AddView("render")
		x := at(t, d, v, "render", 2)
		y := at(t, d, v, "render", 2)
		p := pointAt(t, d, 2)
		u := at(t, d, Ungrouped, "", 2)

		assertOrder(t, d.Members(v), x, y, p)
		_, _ = d.Advance(x, Forward)
		assertOrder(t, d.Members(v), y, p, x)
		if offset(t, d, u) != 2 || offset(t, d, x) != 3 {
			t.Error("unexpected positions after advance")
		}
		assertConsistent(t, d)
	})
}

func TestMoveTo(t *testing.T) {
	t.Run("forward and backward", func(t *testing.T) {
		d := newTestDoc(t, "abcdef")
		m := at(t, d, Ungrouped, "", 0)
		a := at(t, d, Ungrouped, "", 2)
		b := at(t, d, Ungrouped, "", 4)

		if err := d.MoveTo(m, b); err != nil {
			t.Fatalf("MoveTo: %v", err)
		}
		assertOrder(t, d.Marks(), a, b, m)
		if !d.SamePosition(m, b) {
			t.Error("expected m at b")
		}

		_ = d.MoveTo(m, a)
		assertOrder(t, d.Marks(), m, a, b)
		if offset(t, d, m) != 2 {
			t.Errorf("expected offset 2, got %d", offset(t, d, m))
		}
		assertConsistent(t, d)
	})

	t.Run("dup then move lands at the same position", func(t *testing.T) {
		d := newTestDoc(t, "abcdef")
		a := at(t, d, Ungrouped, "", 1)
		b, _ := d.Dup(a)
		c := at(t, d, Ungrouped, "", 5)

		_ = d.MoveTo(b, c)
		if !d.SamePosition(b, c) || d.SamePosition(a, b) {
			t.Error("duplicate did not follow the target")
		}
		_ = d.MoveTo(b, a)
		if !d.SamePosition(a, b) {
			t.Error("duplicate did not return")
		}
		assertConsistent(t, d)
	})

	t.Run("same view", func(t *testing.T) {
		d := newTestDoc(t, "abcdef")
		v, _ := d.AddView("render")
		x := at(t, d, v, "render", 0)
		y := at(t, d, v, "render", 3)
		z := at(t, d, v, "render", 5)

		_ = d.MoveTo(y, x)
		assertOrder(t, d.Members(v), y, x, z)
		_ = d.MoveTo(y, z)
		assertOrder(t, d.Members(v), x, z, y)
		assertConsistent(t, d)
	})

	t.Run("view mark to ungrouped target", func(t *testing.T) {
		d := newTestDoc(t, "abcdef")
		v, _ := d.AddView("render")
		x := at(t, d, v, "render", 0)
		y := at(t, d, v, "render", 2)
		z := at(t, d, v, "render", 4)
		u := at(t, d, Ungrouped, "", 3)

		_ = d.MoveTo(x, u)
		assertOrder(t, d.Members(v), y, x, z)
		assertOrder(t, d.Marks(), y, u, x, z)
		if offset(t, d, x) != 3 {
			t.Errorf("expected offset 3, got %d", offset(t, d, x))
		}
		assertConsistent(t, d)
	})

	t.Run("view mark to point target", func(t *testing.T) {
		d := newTestDoc(t, "abcdef")
		v, _ := d.AddView("render")
		x := at(t, d, v, "render", 5)
		y := at(t, d, v, "render", 1)
		p := pointAt(t, d, 3)

		_ = d.MoveTo(x, p)
		assertOrder(t, d.Members(v), y, x, p)
		assertConsistent(t, d)
	})

	t.Run("point across two views", func(t *testing.T) {
		d := newTestDoc(t, "abcdef")
		v1, _ := d.AddView("one")
		v2, _ := d.AddView("two")
		p := pointAt(t, d, 0)
		a1 := at(t, d, v1, "one", 1)
		b1 := at(t, d, v2, "two", 2)
		a2 := at(t, d, v1, "one", 3)
		b2 := at(t, d, v2, "two", 4)

		_ = d.MoveTo(p, b1)
		assertOrder(t, d.Marks(), a1, b1, p, a2, b2)
		assertOrder(t, d.Members(v1), a1, p, a2)
		assertOrder(t, d.Members(v2), b1, p, b2)

		_ = d.MoveTo(p, a1)
		assertOrder(t, d.Marks(), p, a1, b1, a2, b2)
		assertOrder(t, d.Members(v1), p, a1, a2)
		assertOrder(t, d.Members(v2), p, b1, b2)
		assertConsistent(t, d)
	})

	t.Run("point chain stays ordered", func(t *testing.T) {
		d := newTestDoc(t, "abcdef")
		_, _ = d.AddView("one")
		p := pointAt(t, d, 0)
		q := pointAt(t, d, 2)
		r := pointAt(t, d, 4)

		_ = d.MoveTo(p, r)
		var chain []Mark
		for m, ok := d.FirstPoint(); ok; m, ok = d.NextPoint(m) {
			chain = append(chain, m)
		}
		assertOrder(t, chain, q, r, p)
		assertConsistent(t, d)
	})

	t.Run("invalid handles", func(t *testing.T) {
		d := newTestDoc(t, "abc")
		a, _ := d.NewMark(Ungrouped, "")
		b, _ := d.NewMark(Ungrouped, "")
		_ = d.Free(b)

		if err := d.MoveTo(a, b); !errors.Is(err, ErrStaleMark) {
			t.Errorf("expected ErrStaleMark, got %v", err)
		}
		if err := d.MoveTo(a, a); err != nil {
			t.Errorf("moving to itself should succeed, got %v", err)
		}
	})
}

func TestMoveNotifications(t *testing.T) {
	r := newRecorder(t)
	d := newTestDoc(t, "abcdef", WithBus(r.bus))
	m := at(t, d, Ungrouped, "", 0)
	target := at(t, d, Ungrouped, "", 4)
	_ = d.SetWatched(m, true)
	_ = d.SetWatched(target, true)

	_ = d.MoveTo(m, target)

	moving := payloads[events.MarkMoving](r)
	if len(moving) != 1 || moving[0].MarkID != m.ID() {
		t.Fatalf("expected one moving event for m, got %+v", moving)
	}
	arrived := payloads[events.MarkArrived](r)
	if len(arrived) != 2 {
		t.Fatalf("expected arrivals for mover and target, got %d", len(arrived))
	}
	if arrived[0].MarkID != m.ID() || arrived[1].MarkID != target.ID() {
		t.Errorf("unexpected arrival order %+v", arrived)
	}
	for _, a := range arrived {
		if a.MovedID != m.ID() || a.Seq != int64(d.Seq(m)) {
			t.Errorf("unexpected arrival %+v", a)
		}
	}

	r.events = nil
	_ = d.SetWatched(target, false)
	_, _ = d.Advance(m, Forward)
	if len(payloads[events.MarkMoving](r)) != 1 || len(payloads[events.MarkArrived](r)) != 1 {
		t.Errorf("expected one moving and one arrival for a step, got %d events", len(r.events))
	}
}

func TestMoveToChecked(t *testing.T) {
	r := newRecorder(t)
	c := &testContent{text: "abcdef"}
	d, err := New(c, WithBus(r.bus), WithLogger(logging.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	a := at(t, d, Ungrouped, "", 1)
	m := at(t, d, Ungrouped, "", 3)
	b := at(t, d, Ungrouped, "", 5)

	if err := d.MoveToChecked(m, a); err != nil {
		t.Fatalf("MoveToChecked: %v", err)
	}
	if n := len(payloads[events.ConsistencyViolated](r)); n != 0 {
		t.Fatalf("expected no violations, got %d", n)
	}

	c.lie = true
	if err := d.MoveToChecked(m, b); err != nil {
		t.Fatalf("MoveToChecked must report, not fail: %v", err)
	}
	vs := payloads[events.ConsistencyViolated](r)
	if len(vs) != 1 {
		t.Fatalf("expected one violation for the single neighbor, got %d", len(vs))
	}
	if vs[0].Kind != KindMoveOrder || vs[0].MarkID != m.ID() {
		t.Errorf("unexpected violation %+v", vs[0])
	}
}
