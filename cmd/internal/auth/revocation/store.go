// Package revocation tracks revoked refresh-token jtis.
//
// An entry lives exactly until the token it shadows would have expired on
// its own, so the store never retains anything past natural expiry. Readers
// must treat store errors as "revoked": an unreachable store fails closed.
package revocation

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps any backend failure. Callers use errors.Is to detect
// it, and on the read path must fail closed.
var ErrUnavailable = errors.New("revocation store unavailable")

// Store records revoked jtis until a deadline.
type Store interface {
	// Revoke marks jti revoked until the given instant. Revoking an
	// already-revoked jti is a no-op success.
	Revoke(ctx context.Context, jti string, until time.Time) error

	// Claim atomically marks jti revoked until the given instant and
	// reports whether this caller was the first to do so. Rotate-on-use
	// relies on this to give exactly one winner to concurrent refreshes.
	Claim(ctx context.Context, jti string, until time.Time) (bool, error)

	// IsRevoked reports whether jti is currently revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
