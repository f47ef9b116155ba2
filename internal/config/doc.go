// Package config loads markctl settings.
//
// Settings come from three layers, higher overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← MARKCTL_SECTION_KEY
//	├─────────────────────────────┤
//	│  2. Config File             │  ← markctl.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// A configuration file looks like:
//
//	[log]
//	level = "info"
//
//	[marks]
//	check_limit = 1000
//	validate_each_op = false
//	strict = false
//	check_moves = false
//	point_history = 8
//	seq_limit = 2147483647
//
// A missing file is not an error. Unknown keys, malformed TOML and out of
// range values are.
package config
