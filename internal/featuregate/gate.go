// Package featuregate decides whether a named feature is on. Engines take
// a Gate at construction; they never read flags from the environment
// themselves.
package featuregate

import "context"

// Gate reports whether a named flag is enabled.
type Gate interface {
	Enabled(ctx context.Context, flag string) bool
}

// StaticGate is a fixed flag set, used when no flag service is configured.
type StaticGate map[string]bool

func (g StaticGate) Enabled(_ context.Context, flag string) bool {
	return g[flag]
}

// Static builds a StaticGate with the given flags on.
func Static(flags ...string) StaticGate {
	g := make(StaticGate, len(flags))
	for _, f := range flags {
		g[f] = true
	}
	return g
}
