package lua

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func newTestState(t *testing.T, opts ...StateOption) (*State, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	state, err := NewState(append([]StateOption{WithOutput(&out)}, opts...)...)
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	t.Cleanup(func() { _ = state.Close() })
	return state, &out
}

func TestStateDoString(t *testing.T) {
	state, _ := newTestState(t)

	if err := state.DoString(context.Background(), `x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNumber(2) {
		t.Errorf("expected x = 2, got %v", v)
	}

	state.SetGlobal("y", glua.LString("set"))
	if err := state.DoString(context.Background(), `assert(y == "set")`); err != nil {
		t.Errorf("SetGlobal not visible: %v", err)
	}
}

func TestStatePrint(t *testing.T) {
	state, out := newTestState(t)

	if err := state.DoString(context.Background(), `print("a", 1, true)`); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "a\t1\ttrue\n" {
		t.Errorf("unexpected print output %q", got)
	}
}

func TestSandbox(t *testing.T) {
	state, _ := newTestState(t)
	state.Preload("ks.test", func(L *glua.LState) int {
		mod := L.NewTable()
		L.SetField(mod, "answer", glua.LNumber(42))
		L.Push(mod)
		return 1
	})

	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"dofile removed", `dofile("x.lua")`, true},
		{"loadstring removed", `loadstring("return 1")()`, true},
		{"io closed", `io.write("x")`, true},
		{"os closed", `os.exit(1)`, true},
		{"require io", `require("io")`, true},
		{"require unknown", `require("socket")`, true},
		{"require string", `local s = require("string"); assert(s.upper("a") == "A")`, false},
		{"require preloaded", `assert(require("ks.test").answer == 42)`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := state.DoString(context.Background(), tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("DoString(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestStateTimeout(t *testing.T) {
	state, _ := newTestState(t, WithExecutionTimeout(50*time.Millisecond))

	err := state.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("expected ErrExecutionTimeout, got %v", err)
	}
}

func TestStateClosed(t *testing.T) {
	state, _ := newTestState(t)
	_ = state.Close()

	if err := state.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("expected ErrStateClosed, got %v", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNil {
		t.Errorf("closed state should return nil, got %v", v)
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close should succeed, got %v", err)
	}
}

func TestStateScriptError(t *testing.T) {
	state, _ := newTestState(t)
	err := state.DoString(context.Background(), `error("boom")`)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected script error, got %v", err)
	}
}
