// Package engine is the top-level MapEngine orchestrating raw storage,
// propagation, and fusion behind the locking discipline the rest of the
// module assumes. Errors follow the teacher's style: small sentinel
// values, wrapped with fmt.Errorf where extra context helps.
package engine

import (
	"errors"

	"github.com/kestrel-robotics/terrainmap/internal/propagator"
)

var (
	// ErrSizeMismatch is returned when a propagation delta's shape doesn't
	// match the engine's grid. It is the propagator's sentinel, so
	// errors.Is matches the error Propagate passes through.
	ErrSizeMismatch = propagator.ErrSizeMismatch
	// ErrNotInitialized is returned by any operation attempted before
	// SetGeometry.
	ErrNotInitialized = errors.New("engine: map geometry not set")
)
