// Package api
// Author: momentics
//
// Live debug support: pools publish named probes that operators can dump.

package api

// Debug exposes runtime introspection.
type Debug interface {
	// DumpState evaluates every registered probe.
	DumpState() map[string]any

	// RegisterProbe registers a named probe, replacing any previous one.
	RegisterProbe(name string, fn func() any)

	// UnregisterProbe removes a probe; unknown names are ignored.
	UnregisterProbe(name string)
}
