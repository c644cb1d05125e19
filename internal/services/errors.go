package services

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes; anything else is a 500.
var (
	// ErrValidation marks a request that is syntactically well-formed but
	// semantically invalid (bad type, unknown slot, self-booking).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing entity.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an operation the caller is not a party to.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks a state conflict: full slot, overlapping rental,
	// or a status transition the lifecycle graph does not allow.
	ErrConflict = errors.New("conflict")
)
