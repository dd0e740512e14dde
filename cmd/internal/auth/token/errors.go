package token

import "errors"

// Sentinel verification errors (stable for errors.Is and API status mapping).
var (
	// ErrMalformed is returned when a token cannot be parsed at all, or its
	// claim set is structurally unusable (missing subject/jti, wrong issuer).
	ErrMalformed = errors.New("malformed token")

	// ErrBadSignature is returned when the signature does not verify against
	// the configured secret. Any mutation of the signed payload ends here.
	ErrBadSignature = errors.New("bad token signature")

	// ErrExpired is returned for a well-formed, correctly signed token whose
	// expiry has passed.
	ErrExpired = errors.New("token expired")

	// ErrWrongKind is returned when a valid token of one kind is presented
	// where the other kind is expected.
	ErrWrongKind = errors.New("wrong token kind")

	// ErrConfig is returned for invalid signer configuration.
	ErrConfig = errors.New("invalid token config")
)
