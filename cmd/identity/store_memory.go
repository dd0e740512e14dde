package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"srauth/cmd/identity/ids"
	"srauth/cmd/security/password"
)

// MemoryStore implements Store in process memory. It backs tests and
// database-less development and mirrors the PostgresStore contract,
// including the even-cost credential check.
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[string]memUser
	pw        password.Config
	dummyHash string
}

type memUser struct {
	user   User
	pwHash string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(pw password.Config) (*MemoryStore, error) {
	dummy, err := pw.Hash("srauth-timing-pad-0000")
	if err != nil {
		return nil, err
	}
	return &MemoryStore{
		byID:      make(map[string]memUser),
		pw:        pw,
		dummyHash: dummy,
	}, nil
}

// SetActive flips a user's active flag. Test hook.
func (s *MemoryStore) SetActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.byID[id]; ok {
		rec.user.IsActive = active
		s.byID[id] = rec
	}
}

// VerifyCredentials implements Store.
func (s *MemoryStore) VerifyCredentials(ctx context.Context, username, pass string) (User, error) {
	const op = "identity.VerifyCredentials"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	rec, found := s.lookupByUsername(username)
	if !found {
		_, _ = s.pw.Verify(s.dummyHash, pass)
		return User{}, OpError{Op: op, Kind: ErrBadCredentials}
	}

	ok, err := s.pw.Verify(rec.pwHash, pass)
	if err != nil || !ok || !rec.user.IsActive {
		return User{}, OpError{Op: op, Kind: ErrBadCredentials}
	}
	return rec.user, nil
}

// FindByUsername implements Store.
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (User, error) {
	const op = "identity.FindByUsername"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	rec, found := s.lookupByUsername(username)
	if !found {
		return User{}, OpError{Op: op, Kind: ErrNotFound}
	}
	return rec.user, nil
}

// FindByID implements Store.
func (s *MemoryStore) FindByID(ctx context.Context, id string) (User, error) {
	const op = "identity.FindByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return User{}, OpError{Op: op, Kind: ErrNotFound}
	}
	return rec.user, nil
}

// CreateUser implements Store.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
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
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unameNorm := NormalizeUsername(username)
	emailNorm := NormalizeEmail(email)
	for _, rec := range s.byID {
		if NormalizeUsername(rec.user.Username) == unameNorm {
			return User{}, ConflictError{Op: op, Field: "username"}
		}
		if NormalizeEmail(rec.user.Email) == emailNorm {
			return User{}, ConflictError{Op: op, Field: "email"}
		}
	}

	u := User{
		ID:          id,
		Username:    username,
		Email:       email,
		IsActive:    true,
		IsStaff:     in.IsStaff,
		IsSuperuser: in.IsSuperuser,
		CreatedAt:   now,
	}
	s.byID[id] = memUser{user: u, pwHash: pwHash}
	return u, nil
}

func (s *MemoryStore) lookupByUsername(username string) (memUser, bool) {
	norm := NormalizeUsername(username)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.byID {
		if NormalizeUsername(rec.user.Username) == norm {
			return rec, true
		}
	}
	return memUser{}, false
}
