package domain

import "errors"

var (
	// ErrTargetLost means the tracked target can no longer be resolved.
	// Terminal: the session's capture loop ends and the session is removed.
	ErrTargetLost = errors.New("target lost")

	// ErrSessionNotFound is returned for operations on unknown session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidConfiguration rejects a start request with unusable
	// parameters (zero fps, zero grid size, out-of-range threshold).
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
