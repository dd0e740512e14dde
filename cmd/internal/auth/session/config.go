package session

import (
	"os"
	"strconv"
)

// Config defines runtime configuration for the session service.
type Config struct {
	// RotateOnUse controls refresh-token rotation. When false (the default)
	// a refresh returns only a new access token and the refresh token stays
	// valid for its whole lifetime. When true each refresh revokes the used
	// token and returns a fresh pair; concurrent refreshes on one token
	// produce exactly one winner.
	RotateOnUse bool
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{RotateOnUse: false}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional:
//   - SRAUTH_ROTATE_REFRESH (bool)
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("SRAUTH_ROTATE_REFRESH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.RotateOnUse = b
	}

	return cfg, nil
}
