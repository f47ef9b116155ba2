package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dshills/coremark/internal/engine/mark"
	"github.com/dshills/coremark/internal/scenario"
)

// printer writes colored human-readable reports.
type printer struct {
	w io.Writer

	pass func(a ...any) string
	fail func(a ...any) string
	warn func(a ...any) string
	dim  func(a ...any) string
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:    w,
		pass: color.New(color.FgGreen, color.Bold).SprintFunc(),
		fail: color.New(color.FgRed, color.Bold).SprintFunc(),
		warn: color.New(color.FgYellow).SprintFunc(),
		dim:  color.New(color.Faint).SprintFunc(),
	}
}

// scenario reports one scenario result, with failures and diffs.
func (p *printer) scenario(sc *scenario.Scenario, res *scenario.Result) {
	if res.Passed() {
		fmt.Fprintf(p.w, "%s %s %s\n", p.pass("PASS"), sc.Name, p.dim(fmt.Sprintf("(%d steps)", res.Steps)))
		return
	}
	fmt.Fprintf(p.w, "%s %s %s\n", p.fail("FAIL"), sc.Name, p.dim(sc.Source))
	for _, f := range res.Failures {
		fmt.Fprintf(p.w, "    %s\n", f)
		if f.Diff != "" {
			p.diff(f.Diff)
		}
	}
	if res.Violations > 0 {
		fmt.Fprintf(p.w, "    %s\n", p.warn(fmt.Sprintf("%d consistency violations reported", res.Violations)))
	}
}

func (p *printer) diff(d string) {
	for _, line := range strings.Split(strings.TrimSuffix(d, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			line = p.dim(line)
		case strings.HasPrefix(line, "-"):
			line = p.fail(line)
		case strings.HasPrefix(line, "+"):
			line = p.pass(line)
		}
		fmt.Fprintf(p.w, "      %s\n", line)
	}
}

func (p *printer) summary(passed, failed int) {
	status := p.pass("ok")
	if failed > 0 {
		status = p.fail("failed")
	}
	fmt.Fprintf(p.w, "%s: %d passed, %d failed\n", status, passed, failed)
}

func (p *printer) violations(vs []mark.Violation) {
	for _, v := range vs {
		fmt.Fprintf(p.w, "  %s %s\n", p.fail("violation"), v)
	}
}
