package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dshills/coremark/internal/engine/mark"
	"github.com/dshills/coremark/internal/engine/text"
	"github.com/dshills/coremark/internal/logging"
)

// ErrViolations is returned when a stress run found inconsistencies.
var ErrViolations = errors.New("consistency violations found")

const defaultStressText = "The quick brown fox\njumps over the lazy dog.\n"

// stressConfig parameterizes one randomized run.
type stressConfig struct {
	Seed       uint64
	Ops        int
	Views      int
	MaxPoints  int
	CheckEvery int
	Text       string
}

// stressResult summarizes a randomized run.
type stressResult struct {
	Ops        int
	Live       int
	Counts     map[string]int
	Violations []mark.Violation
}

func newStressCommand(g *globals) *cobra.Command {
	sc := stressConfig{}
	var textFile string

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Apply random operations and check consistency",
		Long: `Apply a seeded random sequence of mark operations to one document,
checking list consistency periodically and at the end.

Examples:
  markctl stress --seed 42 --ops 100000
  markctl stress --views 8 --check-every 50 --text-file main.go`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc.Text = defaultStressText
			if textFile != "" {
				data, err := readText(textFile)
				if err != nil {
					return err
				}
				sc.Text = data
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			logger := logging.Component("stress")
			opts := append(g.cfg.DocumentOptions(), mark.WithLogger(logger))
			doc, err := mark.New(text.New(sc.Text), opts...)
			if err != nil {
				return err
			}

			res, err := stress(ctx, doc, sc, logger)
			reportStress(cmd.OutOrStdout(), sc, res)
			if err != nil {
				return err
			}
			if len(res.Violations) > 0 {
				return fmt.Errorf("%w: %d", ErrViolations, len(res.Violations))
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&sc.Seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&sc.Ops, "ops", 10000, "number of operations")
	cmd.Flags().IntVar(&sc.Views, "views", 3, "number of views")
	cmd.Flags().IntVar(&sc.MaxPoints, "max-points", 4, "maximum live points")
	cmd.Flags().IntVar(&sc.CheckEvery, "check-every", 100, "operations between consistency checks")
	cmd.Flags().StringVar(&textFile, "text-file", "", "file whose contents become the document text")
	return cmd
}

// stresser holds the state of a randomized run.
type stresser struct {
	doc    *mark.Document
	rng    *rand.Rand
	cfg    stressConfig
	views  []mark.ViewID
	owners []string
	live   []mark.Mark
	points []mark.Mark
	counts map[string]int
}

// stress runs cfg.Ops random operations on doc. A strict-mode consistency
// panic ends the run with that error.
func stress(ctx context.Context, doc *mark.Document, cfg stressConfig, logger *log.Logger) (res stressResult, err error) {
	if cfg.CheckEvery <= 0 {
		cfg.CheckEvery = 100
	}
	if cfg.MaxPoints <= 0 {
		cfg.MaxPoints = 1
	}
	s := &stresser{
		doc:    doc,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		cfg:    cfg,
		counts: make(map[string]int),
	}
	res.Counts = s.counts

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok || !(errors.Is(e, mark.ErrInconsistent) || errors.Is(e, mark.ErrSeqExhausted)) {
				panic(r)
			}
			err = e
		}
		res.Live = len(s.live)
	}()

	for k := 0; k < cfg.Views; k++ {
		if err := s.addView(k); err != nil {
			return res, err
		}
	}

	logger.Debug("stress start", logging.FieldSeed, cfg.Seed, logging.FieldOps, cfg.Ops)
	for res.Ops < cfg.Ops {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.step(); err != nil {
			return res, fmt.Errorf("op %d: %w", res.Ops, err)
		}
		res.Ops++
		if res.Ops%cfg.CheckEvery == 0 {
			res.Violations = append(res.Violations, doc.Check()...)
		}
	}
	res.Violations = append(res.Violations, doc.Check()...)
	return res, nil
}

func (s *stresser) addView(k int) error {
	owner := fmt.Sprintf("stress-%d", k)
	v, err := s.doc.AddView(owner)
	if err != nil {
		return err
	}
	s.views = append(s.views, v)
	s.owners = append(s.owners, owner)
	return nil
}

func (s *stresser) pick() (mark.Mark, bool) {
	if len(s.live) == 0 {
		return mark.Mark{}, false
	}
	return s.live[s.rng.IntN(len(s.live))], true
}

func (s *stresser) placement() mark.Placement {
	anchor, ok := s.pick()
	switch n := s.rng.IntN(4); {
	case !ok || n == 0:
		return mark.AtStart()
	case n == 1:
		return mark.AtEnd()
	case n == 2:
		return mark.After(anchor)
	default:
		return mark.Before(anchor)
	}
}

func (s *stresser) add(op string, m mark.Mark) {
	s.counts[op]++
	s.live = append(s.live, m)
	if s.doc.IsPoint(m) {
		s.points = append(s.points, m)
	}
}

// prune drops handles freed by view removal or point history eviction.
func (s *stresser) prune() {
	s.live = slicesKeep(s.live, s.doc.Valid)
	s.points = slicesKeep(s.points, s.doc.Valid)
}

func slicesKeep(ms []mark.Mark, keep func(mark.Mark) bool) []mark.Mark {
	out := ms[:0]
	for _, m := range ms {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// step applies one random operation. End-of-text during Advance is not
// an error.
func (s *stresser) step() error {
	roll := s.rng.IntN(100)
	if len(s.live) < 8 {
		roll = 0
	}

	switch {
	case roll < 20:
		k := s.rng.IntN(len(s.views) + 1)
		v, owner := mark.Ungrouped, ""
		if k < len(s.views) {
			v, owner = s.views[k], s.owners[k]
		}
		m, err := s.doc.NewMark(v, owner, s.placement())
		if err != nil {
			return err
		}
		s.add("new", m)

	case roll < 23 && len(s.points) < s.cfg.MaxPoints:
		p, err := s.doc.NewPoint(s.placement())
		if err != nil {
			return err
		}
		s.add("point", p)

	case roll < 30:
		src, _ := s.pick()
		m, err := s.doc.Dup(src)
		if err != nil {
			return err
		}
		s.add("dup", m)

	case roll < 60:
		m, _ := s.pick()
		dir := mark.Forward
		if s.rng.IntN(2) == 0 {
			dir = mark.Backward
		}
		for n := 1 + s.rng.IntN(8); n > 0; n-- {
			if _, err := s.doc.Advance(m, dir); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return err
			}
		}
		s.counts["advance"]++

	case roll < 80:
		m, _ := s.pick()
		t, _ := s.pick()
		if err := s.doc.MoveTo(m, t); err != nil {
			return err
		}
		s.counts["move"]++

	case roll < 92:
		i := s.rng.IntN(len(s.live))
		if err := s.doc.Free(s.live[i]); err != nil {
			return err
		}
		s.prune()
		s.counts["free"]++

	case roll < 96 && len(s.points) > 0:
		p := s.points[s.rng.IntN(len(s.points))]
		var err error
		if s.rng.IntN(2) == 0 {
			err = s.doc.PushPoint(p)
			s.counts["push"]++
		} else {
			_, err = s.doc.PopPoint(p)
			s.counts["pop"]++
		}
		if err != nil {
			return err
		}
		s.prune()

	case roll >= 99 && len(s.views) > 0:
		k := s.rng.IntN(len(s.views))
		if err := s.doc.RemoveView(s.views[k], s.owners[k]); err != nil {
			return err
		}
		s.views = append(s.views[:k], s.views[k+1:]...)
		s.owners = append(s.owners[:k], s.owners[k+1:]...)
		s.prune()
		if err := s.addView(len(s.views) + s.counts["view"] + 1); err != nil {
			return err
		}
		s.counts["view"]++

	default:
		s.counts["noop"]++
	}
	return nil
}

func reportStress(w io.Writer, cfg stressConfig, res stressResult) {
	p := newPrinter(w)

	ops := make([]string, 0, len(res.Counts))
	for op := range res.Counts {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = fmt.Sprintf("%s=%d", op, res.Counts[op])
	}

	fmt.Fprintf(w, "seed %d: %d ops, %d live marks %s\n", cfg.Seed, res.Ops, res.Live, p.dim(strings.Join(parts, " ")))
	p.violations(res.Violations)
	if len(res.Violations) == 0 {
		fmt.Fprintf(w, "%s\n", p.pass("consistent"))
	}
}
