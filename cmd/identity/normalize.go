package identity

import "strings"

// NormalizeUsername canonicalizes a username for lookup and uniqueness:
// trim plus lower-case.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail canonicalizes an email address the same way.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
