package topo

import (
	"errors"
	"fmt"
	"strings"

	"taskopt/internal/graph"
)

// ErrCycleDetected is the sentinel wrapped by cycle errors raised by Sort.
var ErrCycleDetected = errors.New("cycle detected")

// CycleError carries the offending cycle path alongside the sentinel.
type CycleError struct {
	Cycle []graph.Key
}

func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return ErrCycleDetected.Error()
	}
	parts := make([]string, len(e.Cycle))
	for i, k := range e.Cycle {
		parts[i] = k.String()
	}
	return fmt.Sprintf("%s: %s", ErrCycleDetected.Error(), strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

func cycleError(cycle []graph.Key) error {
	return &CycleError{Cycle: cycle}
}
