package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/coremark/internal/config/loader"
	"github.com/dshills/coremark/internal/engine/mark"
	"github.com/dshills/coremark/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MARKCTL_"

// DefaultFile is the configuration file looked up when none is named.
const DefaultFile = "markctl.toml"

// Config holds every markctl setting.
type Config struct {
	Log   LogConfig   `toml:"log"`
	Marks MarksConfig `toml:"marks"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// MarksConfig configures every document markctl creates.
type MarksConfig struct {
	CheckLimit     int   `toml:"check_limit"`
	ValidateEachOp bool  `toml:"validate_each_op"`
	Strict         bool  `toml:"strict"`
	CheckMoves     bool  `toml:"check_moves"`
	PointHistory   int   `toml:"point_history"`
	SeqLimit       int64 `toml:"seq_limit"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Marks: MarksConfig{
			CheckLimit:   mark.DefaultCheckLimit,
			PointHistory: mark.DefaultPointHistory,
			SeqLimit:     int64(mark.DefaultSeqLimit),
		},
	}
}

// Load reads path and the process environment over the defaults.
func Load(path string) (*Config, error) {
	return LoadFrom(loader.NewTOMLLoader(path), loader.NewEnvLoader(EnvPrefix))
}

// LoadFrom merges the given sources in order over the defaults, then
// validates the result.
func LoadFrom(sources ...loader.Loader) (*Config, error) {
	merged := make(map[string]any)
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg := Default()
	if err := decode(merged, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode re-encodes the merged map and decodes it strictly onto cfg so
// that keys absent from every source keep their defaults.
func decode(merged map[string]any, cfg *Config) error {
	if len(merged) == 0 {
		return nil
	}
	data, err := toml.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encoding merged config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) && len(missing.Errors) > 0 {
			return &ValidationError{
				Path:    joinKey(missing.Errors[0].Key()),
				Message: "unknown setting",
				Value:   "",
			}
		}
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

func joinKey(key []string) string {
	var b bytes.Buffer
	for i, k := range key {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(k)
	}
	return b.String()
}

// Validate checks every setting and returns the first problem found.
func (c *Config) Validate() error {
	switch {
	case !logging.ValidLevel(c.Log.Level):
		return &ValidationError{Path: "log.level", Message: "unknown level", Value: c.Log.Level}
	case c.Marks.CheckLimit <= 0:
		return &ValidationError{Path: "marks.check_limit", Message: "must be positive", Value: c.Marks.CheckLimit}
	case c.Marks.PointHistory <= 0:
		return &ValidationError{Path: "marks.point_history", Message: "must be positive", Value: c.Marks.PointHistory}
	case c.Marks.SeqLimit < 16 || c.Marks.SeqLimit > int64(mark.DefaultSeqLimit):
		return &ValidationError{
			Path:    "marks.seq_limit",
			Message: fmt.Sprintf("must be within [16, %d]", int64(mark.DefaultSeqLimit)),
			Value:   c.Marks.SeqLimit,
		}
	}
	return nil
}

// DocumentOptions converts the marks section to document options.
func (c *Config) DocumentOptions() []mark.Option {
	opts := []mark.Option{
		mark.WithCheckLimit(c.Marks.CheckLimit),
		mark.WithPointHistory(c.Marks.PointHistory),
		mark.WithSeqLimit(mark.Seq(c.Marks.SeqLimit)),
	}
	if c.Marks.ValidateEachOp {
		opts = append(opts, mark.WithValidateEachOp())
	}
	if c.Marks.Strict {
		opts = append(opts, mark.WithStrictChecks())
	}
	if c.Marks.CheckMoves {
		opts = append(opts, mark.WithMoveChecks())
	}
	return opts
}
