// Package logging wraps a single *zap.Logger shared by the optimize
// package's fusion heuristics. Unlike the teacher's global-logger-plus-
// init-shutdown-hook pattern (appropriate for a main binary that owns its
// own process lifetime), this is a library: it defaults to a no-op logger
// so importing this module never produces unsolicited output, and a host
// application opts in via Set/optimize.SetLogger instead of a package
// init() hook.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

// Set installs l as the shared logger. Passing nil restores the no-op
// default.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// Get returns the currently installed logger, safe for concurrent use.
func Get() *zap.Logger {
	return current.Load()
}
