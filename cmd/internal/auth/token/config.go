package token

import (
	"os"
	"time"
)

// Config defines all runtime configuration for token signing and verification.
//
// It controls the signing secret, the issuer claim, the access/refresh
// lifetimes, and the clock-skew leeway applied during validation. The struct
// is explicit and environment-driven so deployments can tune lifetimes
// without code changes.
type Config struct {
	// Issuer is the value set in the "iss" claim of every issued token,
	// and required on every verified token.
	Issuer string

	// Secret is the HMAC-SHA256 signing key. Must be at least MinSecretLen
	// bytes. It is injected here and never read ambiently elsewhere.
	Secret []byte

	// AccessTTL defines the lifetime of access tokens.
	AccessTTL time.Duration

	// RefreshTTL defines the lifetime of refresh tokens. Must exceed
	// AccessTTL.
	RefreshTTL time.Duration

	// Leeway is the clock skew tolerated during expiry validation.
	Leeway time.Duration
}

// MinSecretLen is the minimum accepted signing-secret length in bytes.
// Anything shorter undercuts the HMAC-SHA256 security level.
const MinSecretLen = 32

// DefaultConfig returns the default token configuration. The signing secret
// has no default and must be provided.
func DefaultConfig() Config {
	return Config{
		Issuer:     "srauth",
		AccessTTL:  60 * time.Minute,
		RefreshTTL: 240 * time.Hour,
		Leeway:     0,
	}
}

// LoadConfigFromEnv loads token configuration from environment variables.
//
// Required:
//   - SRAUTH_SIGNING_SECRET (at least 32 bytes)
//
// Optional (durations must be valid Go duration strings):
//   - SRAUTH_TOKEN_ISSUER
//   - SRAUTH_ACCESS_TTL
//   - SRAUTH_REFRESH_TTL
//   - SRAUTH_CLOCK_LEEWAY
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("SRAUTH_TOKEN_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("SRAUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTTL = d
	}

	if v := os.Getenv("SRAUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTTL = d
	}

	if v := os.Getenv("SRAUTH_CLOCK_LEEWAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.Leeway = d
	}

	cfg.Secret = []byte(os.Getenv("SRAUTH_SIGNING_SECRET"))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.Secret) < MinSecretLen {
		return ErrConfig
	}
	if c.Issuer == "" {
		return ErrConfig
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return ErrConfig
	}
	// A refresh token that outlives its access token is the whole point.
	if c.RefreshTTL <= c.AccessTTL {
		return ErrConfig
	}
	if c.Leeway < 0 || c.Leeway > 2*time.Minute {
		return ErrConfig
	}
	return nil
}
