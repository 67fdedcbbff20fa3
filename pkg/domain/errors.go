package domain

import "errors"

// ErrInvalidColor is returned when a token does not match any supported color format.
var ErrInvalidColor = errors.New("invalid color token")

// ErrTooFewColors is returned when a color list would hold fewer than MinColors entries.
var ErrTooFewColors = errors.New("gradient needs at least two colors")

// ErrIndexOutOfRange is returned when a color slot index does not exist.
var ErrIndexOutOfRange = errors.New("color index out of range")

// ErrEmptyDirection is returned when a direction is set to the empty string.
var ErrEmptyDirection = errors.New("direction cannot be empty")

// ErrDisposed is returned when a disposed synchronizer is mutated.
var ErrDisposed = errors.New("synchronizer disposed")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrPresetNotFound is returned when a preset name is not in the catalog.
var ErrPresetNotFound = errors.New("preset not found")

// ErrUnknownMutation is returned for a mutation kind the engine does not handle.
var ErrUnknownMutation = errors.New("unknown mutation kind")
