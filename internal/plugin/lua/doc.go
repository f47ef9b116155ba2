// Package lua hosts sandboxed gopher-lua states for markctl scripts.
//
// A State opens only the base, package, table, string and math
// libraries. The sandbox removes file loading, restricts require to the
// safe built-ins and preloaded ks.* modules, and routes print to a
// configurable writer:
//
//	state, err := lua.NewState(lua.WithOutput(os.Stdout))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	state.Preload("ks.mark", module.Loader)
//	err = state.DoFile(ctx, "script.lua")
//
// Execution is bounded by a timeout enforced through the state context.
package lua
