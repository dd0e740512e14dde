// Package password hashes and verifies login passwords for srauth.
//
// Hashes are Argon2id in the PHC string format
// ($argon2id$v=19$m=...,t=...,p=...$salt$key). Encoded hashes are treated as
// untrusted input during verification: the format is parsed strictly and
// hashes whose cost parameters exceed sane bounds are rejected before any
// key derivation runs.
package password
