// Package registry exposes the tool catalog filtered by host availability.
//
// # Overview
//
// Every tool the toolbelt ships is declared in a static catalog with a
// name, a category, a constructor, and an optional availability probe.
// New runs the probes once and builds a registry that only surfaces the
// tools whose host requirements are met: bash needs a bash binary,
// browser tools need Chrome or Chromium, macOS tools need darwin and
// osascript, VNC tools need vncdotool. Tools with no external
// requirement (files, search, crawler, planning, chat) are always
// available and report failures at call time instead.
//
// # Availability
//
// A failed probe is not an error. The tool is recorded unavailable,
// disappears from ListTools and from every collection, and Get/Create
// return ErrNotFound for it. The default is silence; pass
// WithDiagnostics to observe probe failures, or WithProbe to override
// a probe (tests use this to simulate hosts).
//
// # Collections
//
// Four collections are fixed: basic, web, development, and ai. User
// collections come from a TOML file via LoadCollections and
// WithCollections; they may not shadow the fixed four. Resolving a
// collection intersects its declared members with the available set,
// preserving declared order.
//
// # Usage
//
// Build a registry and construct tools:
//
//	reg, err := registry.New(registry.Deps{Plans: st})
//	names := reg.ListTools()
//	t, err := reg.Create("bash")
//	suite := reg.Suite(reg.BasicToolset())
package registry
