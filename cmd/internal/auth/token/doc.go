// Package token issues and verifies the signed session credentials used by
// srauth.
//
// Two kinds of credential exist: short-lived access tokens and long-lived
// refresh tokens. Both are self-contained JWTs signed with HS256 over a
// shared secret; they differ only in lifetime and in the "tkn" kind claim,
// and kind confusion is rejected at verification time.
//
// Every issued token carries a fresh random jti (UUIDv4, 122 bits of
// entropy). The jti is the key under which refresh tokens are revoked; the
// package itself holds no state and is safe for concurrent use.
package token
