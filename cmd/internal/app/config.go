package app

import "time"

// Config contains the process-level runtime configuration loaded from
// environment variables. Subsystem configs (tokens, cookies, sessions,
// passwords) load themselves from their own env surfaces.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// DatabaseURL empty means the in-memory identity store.
	DatabaseURL string
	DBSchema    string
	DBMaxConns  int32
	DBMinConns  int32

	// RedisAddr empty means the in-memory revocation store.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// If true, /readyz returns 503 unless the configured backends
	// (Postgres and/or Redis) are reachable.
	ReadinessRequireStores bool

	// Dev seed user, provisioned at startup when the in-memory identity
	// store is active and these are set.
	SeedUsername string
	SeedEmail    string
	SeedPassword string
	SeedStaff    bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("SRAUTH_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("SRAUTH_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("SRAUTH_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("SRAUTH_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("SRAUTH_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("SRAUTH_HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    EnvInt("SRAUTH_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("SRAUTH_DATABASE_URL", ""),
		DBSchema:    EnvString("SRAUTH_DB_SCHEMA", "srauth"),
		DBMaxConns:  int32(EnvInt("SRAUTH_DB_MAX_CONNS", 10)),
		DBMinConns:  int32(EnvInt("SRAUTH_DB_MIN_CONNS", 0)),

		RedisAddr:     EnvString("SRAUTH_REDIS_ADDR", ""),
		RedisPassword: EnvString("SRAUTH_REDIS_PASSWORD", ""),
		RedisDB:       EnvInt("SRAUTH_REDIS_DB", 0),

		ReadinessRequireStores: EnvBool("SRAUTH_READINESS_REQUIRE_STORES", false),

		SeedUsername: EnvString("SRAUTH_SEED_USERNAME", ""),
		SeedEmail:    EnvString("SRAUTH_SEED_EMAIL", ""),
		SeedPassword: EnvString("SRAUTH_SEED_PASSWORD", ""),
		SeedStaff:    EnvBool("SRAUTH_SEED_STAFF", false),
	}
}
