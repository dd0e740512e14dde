// Package session implements the credential lifecycle of srauth: login,
// refresh, logout, and access verification.
//
// The service composes the token manager, the revocation store, and the
// identity store, and owns the policy between them. Two asymmetries are
// deliberate: refresh tokens are checked against the revocation store and
// access tokens never are (they simply age out), and a revocation store that
// cannot answer fails closed on the refresh path while logout revocation
// stays best-effort.
package session
