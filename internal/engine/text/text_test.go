package text

import (
	"errors"
	"io"
	"testing"

	"github.com/dshills/coremark/internal/engine/mark"
)

func walk(t *testing.T, c *Text, dir mark.Direction) []string {
	t.Helper()
	ref := c.Start()
	if dir == mark.Backward {
		ref = c.End()
	}
	var units []string
	for {
		next, unit, err := c.Step(ref, dir)
		if errors.Is(err, io.EOF) {
			return units
		}
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		units = append(units, unit)
		ref = next
	}
}

func TestStepClusters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"ascii", "abc", []string{"a", "b", "c"}},
		{"empty", "", nil},
		{"combining accent", "e\u0301x", []string{"e\u0301", "x"}},
		{"crlf", "a\r\nb", []string{"a", "\r\n", "b"}},
		{"lone newlines", "\n\n", []string{"\n", "\n"}},
		{"flag", "\U0001F1EB\U0001F1F7!", []string{"\U0001F1EB\U0001F1F7", "!"}},
		{"multibyte", "日本", []string{"日", "本"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.input)
			fwd := walk(t, c, mark.Forward)
			if len(fwd) != len(tt.want) {
				t.Fatalf("forward: expected %q, got %q", tt.want, fwd)
			}
			for k := range fwd {
				if fwd[k] != tt.want[k] {
					t.Errorf("forward %d: expected %q, got %q", k, tt.want[k], fwd[k])
				}
			}

			back := walk(t, c, mark.Backward)
			if len(back) != len(tt.want) {
				t.Fatalf("backward: expected %d units, got %q", len(tt.want), back)
			}
			for k := range back {
				if back[k] != tt.want[len(tt.want)-1-k] {
					t.Errorf("backward %d: expected %q, got %q", k, tt.want[len(tt.want)-1-k], back[k])
				}
			}
		})
	}
}

func TestStepBadRef(t *testing.T) {
	c := New("abc")
	if _, _, err := c.Step("x", mark.Forward); !errors.Is(err, ErrBadRef) {
		t.Errorf("expected ErrBadRef, got %v", err)
	}
	if _, _, err := c.Step(9, mark.Backward); !errors.Is(err, ErrBadRef) {
		t.Errorf("expected ErrBadRef, got %v", err)
	}
}

func TestRefs(t *testing.T) {
	c := New("abc")
	if !c.SameRef(1, 1) || c.SameRef(1, 2) || c.SameRef(nil, nil) {
		t.Error("SameRef compares offsets")
	}
	if !c.RefsInOrder(1, 2) || !c.RefsInOrder(2, 2) || c.RefsInOrder(2, 1) {
		t.Error("RefsInOrder compares offsets")
	}
	if off, ok := Offset(c.End()); !ok || off != 3 {
		t.Errorf("expected end offset 3, got %d", off)
	}
}

func TestMarksOverText(t *testing.T) {
	c := New("é\r\nz")
	d, err := mark.New(c)
	if err != nil {
		t.Fatal(err)
	}
	m, _ := d.NewMark(mark.Ungrouped, "")

	var units []string
	for {
		u, err := d.Advance(m, mark.Forward)
		if errors.Is(err, io.EOF) {
			break
		}
		units = append(units, u)
	}
	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %q", units)
	}
	if off, _ := Offset(d.Ref(m)); off != c.Len() {
		t.Errorf("expected mark at end, got %d", off)
	}
}
