package api

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Config controls cookie transport and request limits.
type Config struct {
	AccessCookieName  string
	RefreshCookieName string

	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	MaxBodyBytes int64
}

// LoadConfigFromEnv loads API config from environment variables with safe
// defaults. Unparseable values fall back to the default.
//
// Env surface:
//   - SRAUTH_ACCESS_COOKIE_NAME
//   - SRAUTH_REFRESH_COOKIE_NAME
//   - SRAUTH_COOKIE_PATH
//   - SRAUTH_COOKIE_DOMAIN
//   - SRAUTH_COOKIE_SECURE
//   - SRAUTH_COOKIE_SAMESITE (lax|strict|none)
//   - SRAUTH_MAX_BODY_BYTES
func LoadConfigFromEnv() Config {
	cfg := Config{
		AccessCookieName:  envString("SRAUTH_ACCESS_COOKIE_NAME", "access_token"),
		RefreshCookieName: envString("SRAUTH_REFRESH_COOKIE_NAME", "refresh_token"),
		CookiePath:        envString("SRAUTH_COOKIE_PATH", "/"),
		CookieDomain:      envString("SRAUTH_COOKIE_DOMAIN", ""),
		CookieSecure:      envBool("SRAUTH_COOKIE_SECURE", false),
		CookieSameSite:    envSameSite("SRAUTH_COOKIE_SAMESITE", http.SameSiteLaxMode),
		MaxBodyBytes:      envInt64("SRAUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return cfg
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envSameSite(key string, def http.SameSite) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return def
	}
}
