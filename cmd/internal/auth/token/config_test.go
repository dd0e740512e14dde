package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 bytes

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("SRAUTH_SIGNING_SECRET", testSecret)

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Issuer != "srauth" {
		t.Fatalf("issuer = %q, want srauth", cfg.Issuer)
	}
	if cfg.AccessTTL != 60*time.Minute {
		t.Fatalf("access ttl = %v, want 60m", cfg.AccessTTL)
	}
	if cfg.RefreshTTL != 240*time.Hour {
		t.Fatalf("refresh ttl = %v, want 240h", cfg.RefreshTTL)
	}
	if cfg.Leeway != 0 {
		t.Fatalf("leeway = %v, want 0", cfg.Leeway)
	}
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("SRAUTH_SIGNING_SECRET", testSecret)
	t.Setenv("SRAUTH_TOKEN_ISSUER", "srauth-test")
	t.Setenv("SRAUTH_ACCESS_TTL", "5m")
	t.Setenv("SRAUTH_REFRESH_TTL", "48h")
	t.Setenv("SRAUTH_CLOCK_LEEWAY", "30s")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Issuer != "srauth-test" {
		t.Fatalf("issuer = %q", cfg.Issuer)
	}
	if cfg.AccessTTL != 5*time.Minute || cfg.RefreshTTL != 48*time.Hour {
		t.Fatalf("ttls = %v/%v", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if cfg.Leeway != 30*time.Second {
		t.Fatalf("leeway = %v", cfg.Leeway)
	}
}

func TestLoadConfigFromEnvInvalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing secret",
			env:  map[string]string{},
		},
		{
			name: "short secret",
			env:  map[string]string{"SRAUTH_SIGNING_SECRET": "too-short"},
		},
		{
			name: "bad access ttl",
			env: map[string]string{
				"SRAUTH_SIGNING_SECRET": testSecret,
				"SRAUTH_ACCESS_TTL":     "not-a-duration",
			},
		},
		{
			name: "negative refresh ttl",
			env: map[string]string{
				"SRAUTH_SIGNING_SECRET": testSecret,
				"SRAUTH_REFRESH_TTL":    "-1h",
			},
		},
		{
			name: "refresh not longer than access",
			env: map[string]string{
				"SRAUTH_SIGNING_SECRET": testSecret,
				"SRAUTH_ACCESS_TTL":     "1h",
				"SRAUTH_REFRESH_TTL":    "1h",
			},
		},
		{
			name: "excessive leeway",
			env: map[string]string{
				"SRAUTH_SIGNING_SECRET": testSecret,
				"SRAUTH_CLOCK_LEEWAY":   "10m",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SRAUTH_SIGNING_SECRET", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
				t.Fatalf("err = %v, want ErrConfig", err)
			}
		})
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Secret = []byte(strings.Repeat("x", MinSecretLen-1))
	if _, err := NewManager(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}
