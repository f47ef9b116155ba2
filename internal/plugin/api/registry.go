package api

import (
	"fmt"
	"slices"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// APIVersion is reported to scripts as ks.api_version.
const APIVersion = 1

// Module is a Lua API module.
type Module interface {
	// Name returns the module name, e.g. "mark".
	Name() string

	// Register installs the module under the _ks_<name> global.
	Register(L *lua.LState) error
}

// Registry holds modules until they are injected into a state.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds a module.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("module %q already registered", mod.Name())
	}
	r.modules[mod.Name()] = mod
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// List returns the registered module names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// InjectAll registers every module into L and installs the ks loaders.
func (r *Registry) InjectAll(L *lua.LState) error {
	names := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()

	ks := L.NewTable()
	for _, name := range names {
		if err := r.modules[name].Register(L); err != nil {
			return fmt.Errorf("registering module %q: %w", name, err)
		}
		global := "_ks_" + name
		mod := L.GetGlobal(global)
		L.SetField(ks, name, mod)
		L.SetGlobal(global, lua.LNil)
		L.PreloadModule("ks."+name, func(L *lua.LState) int {
			L.Push(mod)
			return 1
		})
	}
	L.SetField(ks, "api_version", lua.LNumber(APIVersion))
	L.PreloadModule("ks", func(L *lua.LState) int {
		L.Push(ks)
		return 1
	})
	return nil
}
