// Package identity is the user-store boundary of srauth.
//
// The auth core reaches identities only through the narrow Store interface:
// credential verification plus lookup by username or id. Two implementations
// ship with the service, PostgresStore for production and MemoryStore for
// tests and development. User records carry the staff/superuser flags the
// profile surface derives its role from; nothing identity-specific ever ends
// up inside a token.
package identity
