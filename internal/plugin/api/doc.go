// Package api provides the Lua modules exposed to markctl scripts.
//
// Every module registers itself as a _ks_<name> global. InjectAll then
// gathers them into the ks table, reachable as require("ks") or as
// require("ks.<name>"):
//
//	local mark = require("ks.mark")
//	local v = mark.add_view("script")
//	local m = mark.new(v, "script", "end")
//	mark.advance(m, "backward")
//	print(mark.offset(m))
package api
