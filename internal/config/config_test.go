package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/coremark/internal/config/loader"
	"github.com/dshills/coremark/internal/engine/mark"
	"github.com/dshills/coremark/internal/engine/text"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(loader.NewTOMLLoader(filepath.Join(t.TempDir(), "absent.toml")))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[marks]
check_limit = 25
strict = true
`)
	env := loader.NewEnvLoaderFrom(EnvPrefix, []string{
		"MARKCTL_MARKS_CHECK_LIMIT=40",
		"MARKCTL_MARKS_POINT_HISTORY=3",
	})

	cfg, err := LoadFrom(loader.NewTOMLLoader(path), env)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug, got %q", cfg.Log.Level)
	}
	if cfg.Marks.CheckLimit != 40 {
		t.Errorf("environment should override the file, got %d", cfg.Marks.CheckLimit)
	}
	if !cfg.Marks.Strict || cfg.Marks.PointHistory != 3 {
		t.Errorf("unexpected marks section %+v", cfg.Marks)
	}
	if cfg.Marks.SeqLimit != int64(mark.DefaultSeqLimit) {
		t.Errorf("unset keys keep defaults, got %d", cfg.Marks.SeqLimit)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("MARKCTL_LOG_LEVEL", "warn")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected warn, got %q", cfg.Log.Level)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
	}{
		{"unknown key", "[marks]\nturbo = true\n", "marks.turbo"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"zero check limit", "[marks]\ncheck_limit = 0\n", "marks.check_limit"},
		{"tiny seq limit", "[marks]\nseq_limit = 4\n", "marks.seq_limit"},
		{"zero history", "[marks]\npoint_history = 0\n", "marks.point_history"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(loader.NewTOMLLoader(writeConfig(t, tt.body)))
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Path != tt.path {
				t.Errorf("expected path %s, got %s", tt.path, ve.Path)
			}
			if !errors.Is(err, ErrValidationFailed) {
				t.Error("ValidationError should match ErrValidationFailed")
			}
		})
	}
}

func TestLoadParseError(t *testing.T) {
	_, err := LoadFrom(loader.NewTOMLLoader(writeConfig(t, "[marks\n")))
	var pe *loader.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestDocumentOptions(t *testing.T) {
	cfg := Default()
	cfg.Marks.SeqLimit = 1024
	cfg.Marks.PointHistory = 1

	d, err := mark.New(text.New("abc"), cfg.DocumentOptions()...)
	if err != nil {
		t.Fatal(err)
	}
	if d.SeqLimit() != 1024 {
		t.Errorf("expected limit 1024, got %d", d.SeqLimit())
	}

	p, _ := d.NewPoint()
	_ = d.PushPoint(p)
	_ = d.PushPoint(p)
	if d.PointHistoryLen() != 1 {
		t.Errorf("expected history of 1, got %d", d.PointHistoryLen())
	}
}
