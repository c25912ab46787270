package models

import "errors"

// Sentinel errors shared across layers. Stores and services wrap them with context;
// the HTTP layer maps them to status codes with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrMembershipLimit = errors.New("membership predicate exceeds value limit")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotReady        = errors.New("session not established")
	ErrSuperseded      = errors.New("superseded by a newer request")
	ErrImmutableType   = errors.New("document type cannot change")
)
