// Package app wires the srauth runtime: config, logging, the token and
// session subsystems, their backing stores, and the HTTP server.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"srauth/cmd/identity"
	"srauth/cmd/internal/auth/api"
	"srauth/cmd/internal/auth/revocation"
	"srauth/cmd/internal/auth/session"
	"srauth/cmd/internal/auth/token"
	"srauth/cmd/security/password"
)

// App is the srauth server runtime.
type App struct {
	cfg Config
	log Logger

	dbPool *pgxpool.Pool
	rdb    *redis.Client

	metrics *Metrics
	auth    *api.Handler
}

// New constructs a fully wired App from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, err
	}
	tokenCfg, err := token.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	tokens, err := token.NewManager(tokenCfg)
	if err != nil {
		return nil, err
	}
	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log, metrics: NewMetrics()}

	users, err := a.newIdentityStore(context.Background(), pwCfg)
	if err != nil {
		return nil, err
	}
	revoked, err := a.newRevocationStore(context.Background())
	if err != nil {
		a.closeStores()
		return nil, err
	}

	sessions := session.NewService(sessCfg, tokens, revoked, users, log, a.metrics)
	a.auth = api.NewHandler(api.LoadConfigFromEnv(), sessions, users, log)
	return a, nil
}

// newIdentityStore picks Postgres when a database URL is configured, the
// in-memory store otherwise.
func (a *App) newIdentityStore(ctx context.Context, pwCfg password.Config) (identity.Store, error) {
	if a.cfg.DatabaseURL != "" {
		pool, err := NewDBPool(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.dbPool = pool

		st, err := identity.NewPostgresStore(pool, pwCfg, identity.WithSchema(a.cfg.DBSchema))
		if err != nil {
			pool.Close()
			a.dbPool = nil
			return nil, err
		}
		a.log.Info("identity.store.postgres", "schema", a.cfg.DBSchema)
		return st, nil
	}

	st, err := identity.NewMemoryStore(pwCfg)
	if err != nil {
		return nil, err
	}
	a.log.Warn("identity.store.inmemory")

	if a.cfg.SeedUsername != "" && a.cfg.SeedPassword != "" {
		u, err := st.CreateUser(ctx, identity.CreateUserInput{
			Username: a.cfg.SeedUsername,
			Email:    a.cfg.SeedEmail,
			Password: a.cfg.SeedPassword,
			IsStaff:  a.cfg.SeedStaff,
		})
		if err != nil {
			return nil, err
		}
		a.log.Info("identity.seed.ok", "user_id", u.ID)
	}
	return st, nil
}

// newRevocationStore picks Redis when an address is configured, the
// in-memory store otherwise. The in-memory store does not survive restarts,
// so logouts stop being durable without Redis.
func (a *App) newRevocationStore(ctx context.Context) (revocation.Store, error) {
	if a.cfg.RedisAddr != "" {
		client, err := NewRedisClient(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.rdb = client
		a.log.Info("revocation.store.redis", "addr", a.cfg.RedisAddr)
		return revocation.NewRedisStore(client), nil
	}

	a.log.Warn("revocation.store.inmemory")
	return revocation.NewMemoryStore(), nil
}

// Run starts the HTTP server and blocks until context cancellation or a
// fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.rdb, a.metrics, a.auth)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(a.auth.CookieToBearer(mux), a.log),
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.ReadTimeout,
		WriteTimeout:      a.cfg.WriteTimeout,
		IdleTimeout:       a.cfg.IdleTimeout,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"db_enabled", a.dbPool != nil,
		"redis_enabled", a.rdb != nil,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		a.closeStores()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		a.closeStores()
		return err
	}

	a.closeStores()
	a.log.Info("server.stopped")
	return nil
}

func (a *App) closeStores() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}
}
