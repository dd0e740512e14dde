package identity

import (
	"context"
	"time"
)

// User is srauth's canonical security principal.
type User struct {
	ID       string
	Username string
	Email    string

	IsActive    bool
	IsStaff     bool
	IsSuperuser bool

	CreatedAt time.Time
}

// RoleName maps the account flags to the role string exposed on the profile
// surface: staff (and superusers) are "admin", everyone else "user".
func (u User) RoleName() string {
	if u.IsStaff || u.IsSuperuser {
		return "admin"
	}
	return "user"
}

// CreateUserInput describes a user to provision. Username, Email, and
// Password are required; uniqueness is enforced on the normalized forms.
type CreateUserInput struct {
	Username string
	Email    string
	Password string

	IsStaff     bool
	IsSuperuser bool

	Now time.Time
}

// Store is the identity boundary the auth core depends on.
type Store interface {
	// VerifyCredentials authenticates username/password and returns the
	// matching active user. Unknown username, wrong password, and inactive
	// account all fail with ErrBadCredentials, indistinguishably, and in
	// comparable time.
	VerifyCredentials(ctx context.Context, username, password string) (User, error)

	// FindByUsername looks a user up by normalized username.
	// Returns ErrNotFound if absent.
	FindByUsername(ctx context.Context, username string) (User, error)

	// FindByID looks a user up by id. Returns ErrNotFound if absent.
	FindByID(ctx context.Context, id string) (User, error)

	// CreateUser provisions a user with a hashed password. Returns a
	// ConflictError when the normalized username or email is taken.
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
}
