// Package config holds the playground settings.
//
// Settings are resolved in layers, later layers overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  4. Command line flags      │  ← applied by the caller
//	├─────────────────────────────┤
//	│  3. Environment variables   │  ← PLAYGROUND_*
//	├─────────────────────────────┤
//	│  2. TOML file               │  ← --config
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │
//	└─────────────────────────────┘
//
// A file only needs the keys it changes:
//
//	[grid]
//	width = 20
//
//	[sandbox]
//	timeout = "2s"
//
//	[watch]
//	poll_interval = "500ms"
//	notify = true
package config
