package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"srauth/cmd/identity/ids"
	"srauth/cmd/security/password"
)

// PostgresStore implements Store over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must not close it.
// Schema identifiers are quoted through pgx to keep identifier injection
// impossible. VerifyCredentials always runs exactly one Argon2id
// verification, against a throwaway hash when the username is unknown, so
// the unknown-user path costs the same as the wrong-password path.
type PostgresStore struct {
	pool      *pgxpool.Pool
	schema    string
	pw        password.Config
	dummyHash string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "srauth").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" || !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, pw password.Config, opts ...PostgresOption) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}

	st := &PostgresStore{
		pool:   pool,
		schema: "srauth",
		pw:     pw,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}

	dummy, err := pw.Hash("srauth-timing-pad-0000")
	if err != nil {
		return nil, fmt.Errorf("identity: dummy hash: %w", err)
	}
	st.dummyHash = dummy

	return st, nil
}

const userColumns = `id, username, email, is_active, is_staff, is_superuser, created_at`

// VerifyCredentials implements Store.
func (s *PostgresStore) VerifyCredentials(ctx context.Context, username, pass string) (User, error) {
	const op = "identity.VerifyCredentials"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(username) == "" || pass == "" {
		return User{}, OpError{Op: op, Kind: ErrBadCredentials}
	}

	users := pgIdent(s.schema, "users")

	var (
		u      User
		pwHash string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+`, password_hash
		   FROM `+users+`
		  WHERE username_norm = $1`,
		NormalizeUsername(username),
	).Scan(&u.ID, &u.Username, &u.Email, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt, &pwHash)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// Burn the same work as a real verification.
		_, _ = s.pw.Verify(s.dummyHash, pass)
		return User{}, OpError{Op: op, Kind: ErrBadCredentials}
	case err != nil:
		return User{}, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.pw.Verify(pwHash, pass)
	if err != nil || !ok || !u.IsActive {
		return User{}, OpError{Op: op, Kind: ErrBadCredentials}
	}
	return u, nil
}

// FindByUsername implements Store.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (User, error) {
	const op = "identity.FindByUsername"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	users := pgIdent(s.schema, "users")

	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM `+users+` WHERE username_norm = $1`,
		NormalizeUsername(username),
	).Scan(&u.ID, &u.Username, &u.Email, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return User{}, OpError{Op: op, Kind: ErrNotFound}
	case err != nil:
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindByID implements Store.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (User, error) {
	const op = "identity.FindByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	users := pgIdent(s.schema, "users")

	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM `+users+` WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return User{}, OpError{Op: op, Kind: ErrNotFound}
	case err != nil:
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// CreateUser implements Store.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username and email are required"}
	}

	pwHash, err := s.pw.Hash(in.Password)
	if err != nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ids.NewULID(now)
	if err != nil {
		return User{}, fmt.Errorf("%s: %w", op, err)
	}

	users := pgIdent(s.schema, "users")

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+users+` (
		     id, username, username_norm, email, email_norm, password_hash,
		     is_active, is_staff, is_superuser, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8, $9)`,
		id,
		username,
		NormalizeUsername(username),
		email,
		NormalizeEmail(email),
		pwHash,
		in.IsStaff,
		in.IsSuperuser,
		now,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, fmt.Errorf("%s: %w", op, err)
	}

	return User{
		ID:          id,
		Username:    username,
		Email:       email,
		IsActive:    true,
		IsStaff:     in.IsStaff,
		IsSuperuser: in.IsSuperuser,
		CreatedAt:   now,
	}, nil
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch {
	case strings.Contains(c, "username"):
		return "username", true
	case strings.Contains(c, "email"):
		return "email", true
	default:
		return "unique", true
	}
}
