package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distinguishes the two credential types minted by the Manager.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the claim set carried by every srauth token: the registered
// claims plus the private "tkn" kind discriminator.
type Claims struct {
	Kind Kind `json:"tkn"`
	jwt.RegisteredClaims
}

// Expiry returns the token expiry as a time.Time.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Issued describes one freshly signed token.
type Issued struct {
	// Token is the compact signed serialization.
	Token string

	// ID is the token's jti.
	ID string

	// ExpiresAt is the token expiry instant.
	ExpiresAt time.Time
}

// Manager signs and verifies srauth tokens with a single shared secret.
// It holds no mutable state and is safe for concurrent use.
type Manager struct {
	cfg Config
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.cfg.AccessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

// IssueAccess mints an access token for subject, valid from now.
func (m *Manager) IssueAccess(subject string, now time.Time) (Issued, error) {
	return m.issue(subject, KindAccess, m.cfg.AccessTTL, now)
}

// IssueRefresh mints a refresh token for subject, valid from now.
func (m *Manager) IssueRefresh(subject string, now time.Time) (Issued, error) {
	return m.issue(subject, KindRefresh, m.cfg.RefreshTTL, now)
}

// IssuePair mints a matched access/refresh pair for subject. The two tokens
// always carry distinct jtis.
func (m *Manager) IssuePair(subject string, now time.Time) (access, refresh Issued, err error) {
	access, err = m.IssueAccess(subject, now)
	if err != nil {
		return Issued{}, Issued{}, err
	}
	refresh, err = m.IssueRefresh(subject, now)
	if err != nil {
		return Issued{}, Issued{}, err
	}
	return access, refresh, nil
}

func (m *Manager) issue(subject string, kind Kind, ttl time.Duration, now time.Time) (Issued, error) {
	if subject == "" {
		return Issued{}, fmt.Errorf("issue %s token: empty subject", kind)
	}

	jti := uuid.NewString()
	exp := now.Add(ttl)

	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return Issued{}, fmt.Errorf("issue %s token: %w", kind, err)
	}

	return Issued{Token: signed, ID: jti, ExpiresAt: exp}, nil
}

// Verify parses raw and checks signature, expiry, structure, and kind, in
// that order of severity: a tampered token reports ErrBadSignature even if
// it is also expired, and an expired token reports ErrExpired regardless of
// kind. On success the full claim set is returned.
//
// Verification is evaluated against the supplied now, which makes expiry
// behavior testable without sleeping.
func (m *Manager) Verify(raw string, expect Kind, now time.Time) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(m.cfg.Issuer),
	}
	if m.cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(m.cfg.Leeway))
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return m.cfg.Secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		default:
			// Unparseable input, wrong issuer, missing exp: all structurally
			// unusable from the caller's point of view.
			return Claims{}, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" || claims.ID == "" {
		return Claims{}, ErrMalformed
	}
	if claims.Kind != expect {
		return Claims{}, ErrWrongKind
	}
	return *claims, nil
}
