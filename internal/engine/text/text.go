package text

import (
	"io"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/coremark/internal/engine/mark"
)

// Text is a read-only string addressed by byte offset.
type Text struct {
	s string
}

// New returns content over s.
func New(s string) *Text {
	return &Text{s: s}
}

// String returns the underlying text.
func (t *Text) String() string {
	return t.s
}

// Len returns the length in bytes.
func (t *Text) Len() int {
	return len(t.s)
}

// Start returns offset 0.
func (t *Text) Start() mark.Ref {
	return 0
}

// End returns the offset past the last byte.
func (t *Text) End() mark.Ref {
	return len(t.s)
}

// Step crosses one grapheme cluster in dir.
func (t *Text) Step(ref mark.Ref, dir mark.Direction) (mark.Ref, string, error) {
	off, ok := Offset(ref)
	if !ok || off < 0 || off > len(t.s) {
		return ref, "", ErrBadRef
	}

	if dir == mark.Forward {
		if off == len(t.s) {
			return ref, "", io.EOF
		}
		cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(t.s[off:], -1)
		return off + len(cluster), cluster, nil
	}

	if off == 0 {
		return ref, "", io.EOF
	}
	start := t.clusterBefore(off)
	return start, t.s[start:off], nil
}

// clusterBefore returns the start of the cluster ending at off. Clusters
// never span a line feed, so the scan starts at the line holding off-1.
func (t *Text) clusterBefore(off int) int {
	pos := strings.LastIndexByte(t.s[:off-1], '\n') + 1
	state := -1
	for pos < off {
		cluster, _, _, next := uniseg.FirstGraphemeClusterInString(t.s[pos:off], state)
		if pos+len(cluster) >= off {
			break
		}
		pos += len(cluster)
		state = next
	}
	return pos
}

// SameRef reports whether two refs are the same offset.
func (t *Text) SameRef(a, b mark.Ref) bool {
	x, ok1 := Offset(a)
	y, ok2 := Offset(b)
	return ok1 && ok2 && x == y
}

// RefsInOrder reports whether a does not come after b.
func (t *Text) RefsInOrder(a, b mark.Ref) bool {
	x, ok1 := Offset(a)
	y, ok2 := Offset(b)
	return ok1 && ok2 && x <= y
}

// Offset extracts the byte offset from a ref produced by a Text.
func Offset(ref mark.Ref) (int, bool) {
	off, ok := ref.(int)
	return off, ok
}
