package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dshills/coremark/internal/engine/mark"
	"github.com/dshills/coremark/internal/engine/text"
	"github.com/dshills/coremark/internal/event"
	"github.com/dshills/coremark/internal/event/events"
	"github.com/dshills/coremark/internal/logging"
)

// Failure is one failed step.
type Failure struct {
	Step    int
	Op      string
	Message string

	// Diff is set for order mismatches.
	Diff string
}

func (f Failure) String() string {
	return fmt.Sprintf("step %d (%s): %s", f.Step, f.Op, f.Message)
}

// Result summarizes one scenario run.
type Result struct {
	Scenario string
	Steps    int
	Failures []Failure

	// Violations counts consistency reports published during the run.
	Violations int
}

// Passed reports whether every step succeeded.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Runner executes scenarios.
type Runner struct {
	docOpts []mark.Option
	logger  *log.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithDocumentOptions applies opts to every document before the
// scenario's own options.
func WithDocumentOptions(opts ...mark.Option) RunnerOption {
	return func(r *Runner) {
		r.docOpts = append(r.docOpts, opts...)
	}
}

// WithLogger sets the runner logger.
func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{logger: logging.Component("scenario")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// run holds the state of one scenario execution.
type run struct {
	doc    *mark.Document
	marks  map[string]mark.Mark
	views  map[string]mark.ViewID
	owners map[string]string
	names  map[mark.Mark]string
	result *Result

	// pending holds expectation failures of the current step.
	pending []Failure
}

// Run executes sc. The error is non-nil only when the document cannot be
// created or the context ends; step problems are recorded in the result.
// A strict-mode consistency panic is reported as a failure of the step
// that triggered it.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	res := &Result{Scenario: sc.Name}

	bus := event.NewBus()
	_, err := bus.SubscribeFunc(events.TopicMarkConsistencyViolated, func(context.Context, any) error {
		res.Violations++
		return nil
	})
	if err != nil {
		return nil, err
	}

	opts := append([]mark.Option{mark.WithBus(bus), mark.WithLogger(r.logger)}, r.docOpts...)
	opts = append(opts, sc.Options.documentOptions()...)
	doc, err := mark.New(text.New(sc.Text), opts...)
	if err != nil {
		return nil, err
	}

	st := &run{
		doc:    doc,
		marks:  make(map[string]mark.Mark),
		views:  make(map[string]mark.ViewID),
		owners: make(map[string]string),
		names:  make(map[mark.Mark]string),
		result: res,
	}

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Steps++
		r.logger.Debug("scenario step",
			logging.FieldScenario, sc.Name,
			logging.FieldStep, i+1,
			logging.FieldKind, step.Op,
		)

		err := st.safeExec(step)
		switch {
		case err != nil && step.ExpectError:
		case err != nil:
			st.fail(i+1, step.Op, err.Error(), "")
			return res, nil
		case step.ExpectError:
			st.fail(i+1, step.Op, "expected an error", "")
		}
		for _, f := range st.pending {
			st.fail(i+1, step.Op, f.Message, f.Diff)
		}
		st.pending = st.pending[:0]
	}
	return res, nil
}

func (st *run) fail(step int, op, msg, diff string) {
	st.result.Failures = append(st.result.Failures, Failure{Step: step, Op: op, Message: msg, Diff: diff})
}

// safeExec turns a consistency panic into an error.
func (st *run) safeExec(step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && (errors.Is(e, mark.ErrInconsistent) || errors.Is(e, mark.ErrSeqExhausted)) {
				err = e
				return
			}
			panic(r)
		}
	}()
	return st.exec(step)
}

func (st *run) mark(name string) (mark.Mark, error) {
	m, ok := st.marks[name]
	if !ok {
		return mark.Mark{}, fmt.Errorf("%w: mark %q", ErrUnknownName, name)
	}
	return m, nil
}

func (st *run) view(name string) (mark.ViewID, string, error) {
	if name == "" {
		return mark.Ungrouped, "", nil
	}
	v, ok := st.views[name]
	if !ok {
		return 0, "", fmt.Errorf("%w: view %q", ErrUnknownName, name)
	}
	return v, st.owners[name], nil
}

func (st *run) bind(name string, m mark.Mark) {
	if name == "" {
		return
	}
	st.marks[name] = m
	st.names[m] = name
}

func (st *run) placement(s Step) (mark.Placement, error) {
	switch s.At {
	case "", "start":
		return mark.AtStart(), nil
	case "end":
		return mark.AtEnd(), nil
	case "after", "before":
		a, err := st.mark(s.Anchor)
		if err != nil {
			return mark.Placement{}, err
		}
		if s.At == "after" {
			return mark.After(a), nil
		}
		return mark.Before(a), nil
	}
	return mark.Placement{}, fmt.Errorf("unknown placement %q", s.At)
}

func (st *run) stepForward(m mark.Mark, n *int) error {
	if n == nil {
		return nil
	}
	for k := 0; k < *n; k++ {
		if _, err := st.doc.Advance(m, mark.Forward); err != nil {
			return fmt.Errorf("stepping to offset %d: %w", *n, err)
		}
	}
	return nil
}

func (st *run) exec(s Step) error {
	switch s.Op {
	case "view":
		owner := s.Owner
		if owner == "" {
			owner = s.Name
		}
		v, err := st.doc.AddView(owner)
		if err != nil {
			return err
		}
		st.views[s.Name] = v
		st.owners[s.Name] = owner
		return nil

	case "mark", "point":
		where, err := st.placement(s)
		if err != nil {
			return err
		}
		var m mark.Mark
		if s.Op == "point" {
			m, err = st.doc.NewPoint(where)
		} else {
			v, owner, verr := st.view(s.View)
			if verr != nil {
				return verr
			}
			m, err = st.doc.NewMark(v, owner, where)
		}
		if err != nil {
			return err
		}
		st.bind(s.Name, m)
		return st.stepForward(m, s.Offset)

	case "dup", "dup_point":
		src, err := st.mark(s.Of)
		if err != nil {
			return err
		}
		var m mark.Mark
		switch {
		case s.Op == "dup_point":
			m, err = st.doc.DupPoint(src)
		case s.View != "":
			v, owner, verr := st.view(s.View)
			if verr != nil {
				return verr
			}
			m, err = st.doc.DupView(src, v, owner)
		default:
			m, err = st.doc.Dup(src)
		}
		if err != nil {
			return err
		}
		st.bind(s.Name, m)
		return nil

	case "move":
		m, err := st.mark(s.Mark)
		if err != nil {
			return err
		}
		t, err := st.mark(s.To)
		if err != nil {
			return err
		}
		return st.doc.MoveTo(m, t)

	case "advance":
		return st.advance(s)

	case "free":
		m, err := st.mark(s.Mark)
		if err != nil {
			return err
		}
		return st.doc.Free(m)

	case "remove_view":
		v, owner, err := st.view(s.View)
		if err != nil {
			return err
		}
		if s.Owner != "" {
			owner = s.Owner
		}
		return st.doc.RemoveView(v, owner)

	case "push_point":
		p, err := st.mark(s.Mark)
		if err != nil {
			return err
		}
		return st.doc.PushPoint(p)

	case "pop_point":
		p, err := st.mark(s.Mark)
		if err != nil {
			return err
		}
		ok, err := st.doc.PopPoint(p)
		if err != nil {
			return err
		}
		if s.Restored != nil && ok != *s.Restored {
			st.expectFailed(fmt.Sprintf("expected restored=%v, got %v", *s.Restored, ok), "")
		}
		return nil

	case "expect_order":
		return st.expectOrder(s)

	case "expect_pos":
		m, err := st.mark(s.Mark)
		if err != nil {
			return err
		}
		if s.Offset == nil {
			return errors.New("expect_pos needs an offset")
		}
		off, ok := text.Offset(st.doc.Ref(m))
		if !ok || off != *s.Offset {
			st.expectFailed(fmt.Sprintf("expected %s at offset %d, got %d", s.Mark, *s.Offset, off), "")
		}
		return nil

	case "check":
		if vs := st.doc.Check(); len(vs) > 0 {
			msgs := make([]string, len(vs))
			for i, v := range vs {
				msgs[i] = v.String()
			}
			st.expectFailed(strings.Join(msgs, "; "), "")
		}
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownOp, s.Op)
}

func (st *run) advance(s Step) error {
	m, err := st.mark(s.Mark)
	if err != nil {
		return err
	}
	dir := mark.Forward
	switch s.Dir {
	case "", "forward":
	case "backward":
		dir = mark.Backward
	default:
		return fmt.Errorf("unknown direction %q", s.Dir)
	}
	count := s.Count
	if count == 0 {
		count = 1
	}

	var crossed strings.Builder
	for k := 0; k < count; k++ {
		unit, err := st.doc.Advance(m, dir)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		crossed.WriteString(unit)
	}
	if s.Expect != nil && crossed.String() != *s.Expect {
		st.expectFailed(fmt.Sprintf("expected to cross %q, crossed %q", *s.Expect, crossed.String()), "")
	}
	return nil
}

func (st *run) expectOrder(s Step) error {
	var list []mark.Mark
	if s.View == "" {
		list = st.doc.Marks()
	} else {
		v, _, err := st.view(s.View)
		if err != nil {
			return err
		}
		list = st.doc.Members(v)
	}

	got := make([]string, 0, len(list))
	for _, m := range list {
		name, ok := st.names[m]
		if !ok {
			name = m.String()
		}
		got = append(got, name)
	}
	if !equalNames(s.Marks, got) {
		st.expectFailed(
			fmt.Sprintf("expected order [%s], got [%s]", strings.Join(s.Marks, " "), strings.Join(got, " ")),
			orderDiff(s.Marks, got),
		)
	}
	return nil
}

func (st *run) expectFailed(msg, diff string) {
	st.pending = append(st.pending, Failure{Message: msg, Diff: diff})
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
