package session

import "errors"

var (
	// ErrAuthenticationFailed is returned by Login for any credential
	// failure. Unknown user, wrong password, and inactive account are not
	// distinguished.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUnauthorized is returned by VerifyAccess when the presented access
	// token is missing, malformed, tampered, expired, or of the wrong kind.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRefreshRejected is returned by Refresh for every failure mode:
	// bad token, revoked jti, lost rotation race, or unreachable revocation
	// store. One error, one client-visible message.
	ErrRefreshRejected = errors.New("refresh rejected")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid session config")
)
