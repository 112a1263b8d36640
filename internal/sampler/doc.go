// Package sampler holds the editing core of the sampler: the live signal
// chain, the region effect lifecycle and the session that owns the
// committed buffer and its regions.
//
// The committed buffer is never modified while it is referenced. Every edit
// produces a new buffer that replaces the current one in a single step.
package sampler

import "errors"

var (
	// ErrNoBuffer is returned when an operation needs a loaded sample.
	ErrNoBuffer = errors.New("sampler: no buffer loaded")
	// ErrNoRegion is returned for unknown region IDs.
	ErrNoRegion = errors.New("sampler: no such region")
	// ErrBusy is returned when a freeze or cancel arrives while a render is
	// in flight.
	ErrBusy = errors.New("sampler: render in progress")
	// ErrNoPreview is returned when no effect preview is active.
	ErrNoPreview = errors.New("sampler: no active preview")
	// ErrRender wraps offline rendering failures.
	ErrRender = errors.New("sampler: render failed")
)
