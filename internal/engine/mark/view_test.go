package mark

import (
	"errors"
	"testing"

	"github.com/dshills/coremark/internal/event/events"
)

func TestViewErrors(t *testing.T) {
	d := newTestDoc(t, "abc")
	v, err := d.AddView("render")
	if err != nil {
		t.Fatalf("AddView: %v", err)
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"empty owner", func() error { _, err := d.AddView(""); return err }(), ErrInvalidOwner},
		{"out of range", func() error { _, err := d.NewMark(7, "render"); return err }(), ErrViewOutOfRange},
		{"wrong owner", func() error { _, err := d.NewMark(v, "search"); return err }(), ErrViewNotOwned},
		{"point view", func() error { _, err := d.NewMark(PointView, ""); return err }(), ErrInvalidView},
		{"remove out of range", d.RemoveView(3, "render"), ErrViewOutOfRange},
		{"remove wrong owner", d.RemoveView(v, "search"), ErrNotViewOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, tt.err)
			}
		})
	}
	if d.ViewOwner(v) != "render" {
		t.Errorf("view should still be owned, got %q", d.ViewOwner(v))
	}
}

func TestAddViewLinksPoints(t *testing.T) {
	r := newRecorder(t)
	d := newTestDoc(t, "abcdef", WithBus(r.bus))
	p := pointAt(t, d, 1)
	q := pointAt(t, d, 4)

	v, _ := d.AddView("render")
	assertOrder(t, d.Members(v), p, q)

	x := at(t, d, v, "render", 2)
	assertOrder(t, d.Members(v), p, x, q)

	added := payloads[events.ViewAdded](r)
	if len(added) != 1 || added[0].Owner != "render" || added[0].View != int(v) {
		t.Errorf("unexpected view events %+v", added)
	}
	assertConsistent(t, d)
}

func TestRemoveView(t *testing.T) {
	r := newRecorder(t)
	d := newTestDoc(t, "abcdef", WithBus(r.bus))
	v, _ := d.AddView("render")
	keep, _ := d.AddView("search")
	x := at(t, d, v, "render", 1)
	p := pointAt(t, d, 2)
	y := at(t, d, v, "render", 3)
	s := at(t, d, keep, "search", 4)

	if err := d.RemoveView(v, "render"); err != nil {
		t.Fatalf("RemoveView: %v", err)
	}
	if d.Valid(x) || d.Valid(y) {
		t.Error("view marks should be freed with the view")
	}
	if !d.Valid(p) || !d.Valid(s) {
		t.Error("points and other views must survive")
	}
	assertOrder(t, d.Marks(), p, s)
	assertOrder(t, d.Members(keep), p, s)
	if d.ViewOwner(v) != "" {
		t.Errorf("expected released slot, got owner %q", d.ViewOwner(v))
	}

	removed := payloads[events.ViewRemoved](r)
	if len(removed) != 1 || removed[0].Discarded != 2 {
		t.Fatalf("unexpected removal events %+v", removed)
	}
	assertConsistent(t, d)

	t.Run("slot is reused", func(t *testing.T) {
		w, _ := d.AddView("diff")
		if w != v {
			t.Fatalf("expected slot %d reused, got %d", v, w)
		}
		assertOrder(t, d.Members(w), p)
		if d.Views() != 2 {
			t.Errorf("expected 2 view slots, got %d", d.Views())
		}
		assertConsistent(t, d)
	})
}

func TestDupView(t *testing.T) {
	d := newTestDoc(t, "abcdef")
	v, _ := d.AddView("render")
	x := at(t, d, v, "render", 1)
	m := at(t, d, Ungrouped, "", 2)
	y := at(t, d, v, "render", 3)

	c, err := d.DupView(m, v, "render")
	if err != nil {
		t.Fatalf("DupView: %v", err)
	}
	assertOrder(t, d.Members(v), x, c, y)
	if !d.SamePosition(c, m) {
		t.Error("copy should share the position")
	}
	if _, err := d.DupView(m, v, "search"); !errors.Is(err, ErrViewNotOwned) {
		t.Errorf("expected ErrViewNotOwned, got %v", err)
	}
	assertConsistent(t, d)
}

func TestDupPoint(t *testing.T) {
	d := newTestDoc(t, "abcdef")
	v, _ := d.AddView("render")
	p := pointAt(t, d, 2)
	x := at(t, d, v, "render", 2)

	q, err := d.DupPoint(p)
	if err != nil {
		t.Fatalf("DupPoint: %v", err)
	}
	if !d.IsPoint(q) {
		t.Fatal("copy should be a point")
	}
	assertOrder(t, d.Members(v), p, q, x)
	if _, err := d.DupPoint(x); !errors.Is(err, ErrNotPoint) {
		t.Errorf("expected ErrNotPoint, got %v", err)
	}
	assertConsistent(t, d)
}
