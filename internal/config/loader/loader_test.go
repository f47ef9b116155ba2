package loader

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestTOMLLoader_Load(t *testing.T) {
	memfs := MapFS{FS: fstest.MapFS{
		"markctl.toml": {Data: []byte(`
[log]
level = "debug"

[marks]
check_limit = 50
strict = true
`)},
	}}

	config, err := NewTOMLLoaderWithFS(memfs, "markctl.toml").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	marks, ok := config["marks"].(map[string]any)
	if !ok {
		t.Fatalf("expected marks table, got %T", config["marks"])
	}
	if marks["check_limit"] != int64(50) {
		t.Errorf("expected check_limit 50, got %v", marks["check_limit"])
	}
	if marks["strict"] != true {
		t.Errorf("expected strict true, got %v", marks["strict"])
	}
}

func TestTOMLLoader_Missing(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(MapFS{FS: fstest.MapFS{}}, "absent.toml").Load()
	if err != nil || config != nil {
		t.Errorf("missing file should yield nil, nil; got %v, %v", config, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	_, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[marks\ncheck_limit = 1"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Line < 1 {
		t.Errorf("expected a line number, got %d", pe.Line)
	}
	if !strings.Contains(pe.Error(), "<reader>") {
		t.Errorf("error should name the source: %v", pe)
	}
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoaderFrom("MARKCTL_", []string{
		"MARKCTL_LOG_LEVEL=warn",
		"MARKCTL_MARKS_CHECK_LIMIT=12",
		"MARKCTL_MARKS_VALIDATE_EACH_OP=yes",
		"MARKCTL_CONFIG=/tmp/x.toml",
		"HOME=/root",
	})
	config, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		section, key string
		want         any
	}{
		{"log", "level", "warn"},
		{"marks", "check_limit", int64(12)},
		{"marks", "validate_each_op", true},
	}
	for _, tt := range tests {
		sub, _ := config[tt.section].(map[string]any)
		if got := sub[tt.key]; got != tt.want {
			t.Errorf("%s.%s: expected %v, got %v", tt.section, tt.key, tt.want, got)
		}
	}
	if len(config) != 2 {
		t.Errorf("expected only log and marks sections, got %v", config)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"log":   map[string]any{"level": "info"},
		"marks": map[string]any{"check_limit": int64(10), "strict": false},
	}
	src := map[string]any{
		"marks": map[string]any{"strict": true},
	}

	got := DeepMerge(dst, src)
	marks := got["marks"].(map[string]any)
	if marks["strict"] != true || marks["check_limit"] != int64(10) {
		t.Errorf("unexpected merge result %v", marks)
	}
	if got["log"].(map[string]any)["level"] != "info" {
		t.Error("untouched sections must survive")
	}
	if DeepMerge(nil, src)["marks"] == nil {
		t.Error("nil dst should be allocated")
	}
}
