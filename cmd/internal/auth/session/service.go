package session

import (
	"context"
	"log/slog"
	"time"

	"srauth/cmd/identity"
	"srauth/cmd/internal/auth/revocation"
	"srauth/cmd/internal/auth/token"
)

// Service implements the high-level session operations for srauth.
type Service struct {
	cfg     Config
	tokens  *token.Manager
	revoked revocation.Store
	users   identity.Store
	log     *slog.Logger
	metrics Metrics
	now     func() time.Time
}

// Session is the result of a successful login.
type Session struct {
	User    identity.User
	Access  token.Issued
	Refresh token.Issued
}

// Refreshed is the result of a successful refresh. Refresh is non-nil only
// when rotate-on-use is enabled.
type Refreshed struct {
	Subject string
	Access  token.Issued
	Refresh *token.Issued
}

// NewService constructs a Service. A nil logger falls back to slog.Default,
// a nil Metrics to NopMetrics.
func NewService(cfg Config, tokens *token.Manager, revoked revocation.Store, users identity.Store, log *slog.Logger, m Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	if m == nil {
		m = NopMetrics{}
	}
	return &Service{
		cfg:     cfg,
		tokens:  tokens,
		revoked: revoked,
		users:   users,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// SetClock overrides the service clock. Test hook.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Login authenticates username/password and issues a fresh token pair.
// Every credential failure maps to ErrAuthenticationFailed.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	now := s.now()

	user, err := s.users.VerifyCredentials(ctx, username, password)
	if err != nil {
		s.metrics.LoginAttempt(false)
		s.log.InfoContext(ctx, "auth.login.fail", "username", username)
		return Session{}, ErrAuthenticationFailed
	}

	access, refresh, err := s.tokens.IssuePair(user.ID, now)
	if err != nil {
		s.metrics.LoginAttempt(false)
		return Session{}, err
	}

	s.metrics.LoginAttempt(true)
	s.log.InfoContext(ctx, "auth.login.ok", "user_id", user.ID)
	return Session{User: user, Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token and issues a new access token for the
// same subject. With rotate-on-use enabled it also revokes the used token
// and returns a replacement pair; exactly one of any concurrent refreshes
// on the same token succeeds.
//
// All failures, including an unreachable revocation store, collapse into
// ErrRefreshRejected: an attacker cannot tell a revoked token from an
// outage, and the fail-closed path never mints credentials.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Refreshed, error) {
	now := s.now()

	claims, err := s.tokens.Verify(refreshToken, token.KindRefresh, now)
	if err != nil {
		s.metrics.RefreshAttempt(false)
		s.log.InfoContext(ctx, "auth.refresh.fail", "reason", err.Error())
		return Refreshed{}, ErrRefreshRejected
	}

	if !s.cfg.RotateOnUse {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Refreshed{}, s.failClosed(ctx, err)
		}
		if revoked {
			s.metrics.RefreshAttempt(false)
			s.log.InfoContext(ctx, "auth.refresh.fail", "reason", "revoked")
			return Refreshed{}, ErrRefreshRejected
		}

		access, err := s.tokens.IssueAccess(claims.Subject, now)
		if err != nil {
			s.metrics.RefreshAttempt(false)
			return Refreshed{}, err
		}
		s.metrics.RefreshAttempt(true)
		s.log.InfoContext(ctx, "auth.refresh.ok", "user_id", claims.Subject)
		return Refreshed{Subject: claims.Subject, Access: access}, nil
	}

	// Rotate-on-use: claiming the jti both checks revocation and revokes,
	// atomically. The first caller wins; everyone else is rejected.
	won, err := s.revoked.Claim(ctx, claims.ID, claims.Expiry())
	if err != nil {
		return Refreshed{}, s.failClosed(ctx, err)
	}
	if !won {
		s.metrics.RefreshAttempt(false)
		s.log.InfoContext(ctx, "auth.refresh.fail", "reason", "rotation race or revoked")
		return Refreshed{}, ErrRefreshRejected
	}
	s.metrics.Revocation()

	access, refresh, err := s.tokens.IssuePair(claims.Subject, now)
	if err != nil {
		s.metrics.RefreshAttempt(false)
		return Refreshed{}, err
	}
	s.metrics.RefreshAttempt(true)
	s.log.InfoContext(ctx, "auth.refresh.ok", "user_id", claims.Subject, "rotated", true)
	return Refreshed{Subject: claims.Subject, Access: access, Refresh: &refresh}, nil
}

// Logout revokes the refresh token's jti until the token would have expired
// on its own. It is lenient by design: an absent, malformed, or expired
// token is a no-op, a failed revocation is logged and swallowed, and the
// call never returns an error. Cookie clearing at the transport layer must
// not depend on this succeeding.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	now := s.now()

	claims, err := s.tokens.Verify(refreshToken, token.KindRefresh, now)
	if err != nil {
		s.log.InfoContext(ctx, "auth.logout.ok", "revoked", false)
		return
	}

	if err := s.revoked.Revoke(ctx, claims.ID, claims.Expiry()); err != nil {
		s.log.WarnContext(ctx, "auth.logout.revoke_fail", "error", err.Error())
		return
	}
	s.metrics.Revocation()
	s.log.InfoContext(ctx, "auth.logout.ok", "user_id", claims.Subject, "revoked", true)
}

// VerifyAccess verifies an access token. It is a pure check: no revocation
// lookup and no identity query, so protected requests stay cheap. Invalid
// tokens of every flavor map to ErrUnauthorized.
func (s *Service) VerifyAccess(accessToken string) (token.Claims, error) {
	claims, err := s.tokens.Verify(accessToken, token.KindAccess, s.now())
	if err != nil {
		return token.Claims{}, ErrUnauthorized
	}
	return claims, nil
}

func (s *Service) failClosed(ctx context.Context, err error) error {
	s.metrics.FailClosed()
	s.metrics.RefreshAttempt(false)
	s.log.ErrorContext(ctx, "auth.refresh.fail_closed", "error", err.Error())
	return ErrRefreshRejected
}
