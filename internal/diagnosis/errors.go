package diagnosis

import "errors"

var (
	// ErrValidation rejects a request before any side effect.
	ErrValidation = errors.New("diagnosis: validation failed")
	// ErrPayloadTooLarge marks an image above the byte ceiling.
	ErrPayloadTooLarge = errors.New("diagnosis: image exceeds size limit")
	// ErrImageNotFound marks a stored image that could not be read back.
	ErrImageNotFound = errors.New("diagnosis: image not found")
	// ErrPersistence wraps repository write failures.
	ErrPersistence = errors.New("diagnosis: persistence failed")
	// ErrNotFound indicates no diagnosis exists with the requested id.
	ErrNotFound = errors.New("diagnosis: not found")
)
