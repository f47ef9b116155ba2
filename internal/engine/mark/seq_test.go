package mark

import (
	"errors"
	"fmt"
	"testing"
)

func TestSeqAssignment(t *testing.T) {
	t.Run("first mark takes the midpoint", func(t *testing.T) {
		d := newTestDoc(t, "abc")
		m, _ := d.NewMark(Ungrouped, "")
		if got := d.Seq(m); got != DefaultSeqLimit/2 {
			t.Errorf("expected %d, got %d", DefaultSeqLimit/2, got)
		}
	})

	t.Run("ends step away by the end gap", func(t *testing.T) {
		d := newTestDoc(t, "abc")
		a, _ := d.NewMark(Ungrouped, "")
		b, _ := d.NewMark(Ungrouped, "", AtEnd())
		c, _ := d.NewMark(Ungrouped, "", AtStart())

		if d.Seq(b) != d.Seq(a)+endGap {
			t.Errorf("expected end key %d, got %d", d.Seq(a)+endGap, d.Seq(b))
		}
		if d.Seq(c) != d.Seq(a)-endGap {
			t.Errorf("expected start key %d, got %d", d.Seq(a)-endGap, d.Seq(c))
		}
	})

	t.Run("between neighbors takes the midpoint", func(t *testing.T) {
		d := newTestDoc(t, "abc")
		a, _ := d.NewMark(Ungrouped, "")
		b, _ := d.NewMark(Ungrouped, "", AtEnd())
		c, _ := d.NewMark(Ungrouped, "", After(a))

		want := d.Seq(a) + (d.Seq(b)-d.Seq(a))/2
		if d.Seq(c) != want {
			t.Errorf("expected %d, got %d", want, d.Seq(c))
		}
	})

	t.Run("end gap halves near the limit", func(t *testing.T) {
		d := newTestDoc(t, "abc", WithSeqLimit(100))
		a, _ := d.NewMark(Ungrouped, "")
		b, _ := d.NewMark(Ungrouped, "", AtEnd())
		if d.Seq(a) != 50 {
			t.Fatalf("expected 50, got %d", d.Seq(a))
		}
		if d.Seq(b) != 82 {
			t.Errorf("expected 82, got %d", d.Seq(b))
		}
	})
}

func TestSeqRebalanceDenseInsert(t *testing.T) {
	for _, limit := range []Seq{DefaultSeqLimit, 1024} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			d := newTestDoc(t, "abc", WithSeqLimit(limit))
			a, _ := d.NewMark(Ungrouped, "")
			b, _ := d.NewMark(Ungrouped, "", AtEnd())

			want := []Mark{a}
			for k := 0; k < 200; k++ {
				m, err := d.NewMark(Ungrouped, "", Before(b))
				if err != nil {
					t.Fatalf("insert %d: %v", k, err)
				}
				want = append(want, m)
			}
			want = append(want, b)

			assertOrder(t, d.Marks(), want...)
			assertConsistent(t, d)

			prev := Seq(-1)
			for _, m := range d.Marks() {
				s := d.Seq(m)
				if s <= prev || s > limit {
					t.Fatalf("key %d out of order after %d", s, prev)
				}
				prev = s
			}
		})
	}
}

func TestSeqExhaustionPanics(t *testing.T) {
	d := newTestDoc(t, "abc", WithSeqLimit(16))

	created := 0
	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected a panic")
			}
			err, ok := r.(error)
			if !ok || !errors.Is(err, ErrSeqExhausted) {
				t.Fatalf("expected ErrSeqExhausted, got %v", r)
			}
		}()
		for k := 0; k < 40; k++ {
			if _, err := d.NewMark(Ungrouped, "", AtEnd()); err != nil {
				t.Fatalf("NewMark: %v", err)
			}
			created++
		}
	}()

	if created != 17 {
		t.Errorf("expected 17 marks to fit in [0, 16], got %d", created)
	}
}

func TestWithSeqLimitIgnoresTinyLimits(t *testing.T) {
	d := newTestDoc(t, "", WithSeqLimit(8))
	if d.SeqLimit() != DefaultSeqLimit {
		t.Errorf("expected default limit, got %d", d.SeqLimit())
	}
}
