package identity

import "errors"

// Sentinel error kinds (stable for errors.Is and for mapping to API status codes).
var (
	ErrInvalidInput = errors.New("invalid_input")
	ErrNotFound     = errors.New("not_found")
	ErrConflict     = errors.New("conflict")

	// ErrBadCredentials covers unknown username, wrong password, and inactive
	// account alike, so callers cannot tell the cases apart.
	ErrBadCredentials = errors.New("bad_credentials")
)
