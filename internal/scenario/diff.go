package scenario

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// orderDiff renders a line diff between two mark orders, one name per line.
func orderDiff(want, got []string) string {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(joinLines(want), joinLines(got))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	sb.WriteString("--- expected\n+++ actual\n")
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix = "+"
		case diffpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
		}
	}
	return sb.String()
}

func joinLines(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, "\n") + "\n"
}
