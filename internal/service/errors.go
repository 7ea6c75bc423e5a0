package service

import "errors"

// Domain error taxonomy. Handlers map these to HTTP status classes;
// everything else is treated as an internal failure.
var (
	// ErrInvalidInput: malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated: missing, invalid or expired credentials. Deliberately
	// generic for sign-in so callers cannot probe which check failed.
	ErrUnauthenticated = errors.New("invalid credentials")
	// ErrForbidden: valid identity, insufficient ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict: duplicate unique field (username).
	ErrConflict = errors.New("username already taken")
	// ErrNotFound: referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)
