package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/coremark/internal/engine/mark"
)

// Scenario is one scripted run over a text.
type Scenario struct {
	Name    string  `yaml:"name"`
	Text    string  `yaml:"text"`
	Options Options `yaml:"options"`
	Steps   []Step  `yaml:"steps"`

	// Source is the file the scenario was read from.
	Source string `yaml:"-"`
}

// Options override document settings for one scenario.
type Options struct {
	SeqLimit       int64 `yaml:"seq_limit"`
	CheckLimit     int   `yaml:"check_limit"`
	PointHistory   int   `yaml:"point_history"`
	Strict         bool  `yaml:"strict"`
	ValidateEachOp bool  `yaml:"validate_each_op"`
}

// documentOptions returns the options set in o. Zero fields are skipped.
func (o Options) documentOptions() []mark.Option {
	var opts []mark.Option
	if o.SeqLimit > 0 {
		opts = append(opts, mark.WithSeqLimit(mark.Seq(o.SeqLimit)))
	}
	if o.CheckLimit > 0 {
		opts = append(opts, mark.WithCheckLimit(o.CheckLimit))
	}
	if o.PointHistory > 0 {
		opts = append(opts, mark.WithPointHistory(o.PointHistory))
	}
	if o.Strict {
		opts = append(opts, mark.WithStrictChecks())
	}
	if o.ValidateEachOp {
		opts = append(opts, mark.WithValidateEachOp())
	}
	return opts
}

// Step is one operation or expectation. Which fields apply depends on Op.
type Step struct {
	Op string `yaml:"op"`

	// Name binds the created view, mark or point.
	Name  string `yaml:"name"`
	View  string `yaml:"view"`
	Owner string `yaml:"owner"`

	// At is start, end, after or before; Anchor names the mark for the
	// latter two.
	At     string `yaml:"at"`
	Anchor string `yaml:"anchor"`

	Of   string `yaml:"of"`
	Mark string `yaml:"mark"`
	To   string `yaml:"to"`

	Dir   string `yaml:"dir"`
	Count int    `yaml:"count"`

	Offset   *int     `yaml:"offset"`
	Expect   *string  `yaml:"expect"`
	Restored *bool    `yaml:"restored"`
	Marks    []string `yaml:"marks"`

	ExpectError bool `yaml:"expect_error"`
}

// Load reads every scenario in path.
func Load(path string) ([]*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario file: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse decodes a stream of YAML scenario documents. Unknown keys are
// rejected.
func Parse(r io.Reader, source string) ([]*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out []*Scenario
	for {
		var sc Scenario
		err := dec.Decode(&sc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: scenario %d: %w", source, len(out)+1, err)
		}
		sc.Source = source
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("%s#%d", source, len(out)+1)
		}
		out = append(out, &sc)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrEmpty)
	}
	return out, nil
}
