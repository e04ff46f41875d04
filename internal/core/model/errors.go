package model

import "errors"

// Error kinds classified at the persistence boundaries. Callers above the
// store and graph layers see boolean/empty-result outcomes instead; these
// sentinels exist so the boundary code can decide which outcome applies.
var (
	// ErrStorage marks an I/O or serialization failure in the memory store.
	ErrStorage = errors.New("storage failure")

	// ErrGraphUnavailable marks an unreachable or timed-out graph backend.
	// It flips the relationship capability into sticky degraded mode.
	ErrGraphUnavailable = errors.New("graph unavailable")

	// ErrValidation marks malformed input. Weights out of range are clamped
	// rather than rejected; only a missing id or owner is a hard reject.
	ErrValidation = errors.New("validation failure")
)
