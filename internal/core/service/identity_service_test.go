package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fixapp/fixapp-api/internal/core/domain"
	"github.com/fixapp/fixapp-api/pkg/password"
)

type stubIdentityRepo struct {
	users          map[string]*domain.User
	nextID         int64
	recordLoginErr error
	loginRecorded  []int64
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{users: make(map[string]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubIdentityRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	copy.ID = r.nextID
	r.nextID++
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubIdentityRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := r.users[username]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubIdentityRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubIdentityRepo) RecordLogin(_ context.Context, userID int64, at time.Time) error {
	if r.recordLoginErr != nil {
		return r.recordLoginErr
	}
	r.loginRecorded = append(r.loginRecorded, userID)
	for _, u := range r.users {
		if u.ID == userID {
			t := at
			u.LastLogin = &t
		}
	}
	return nil
}

func TestIdentityService_Register_Success(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := NewIdentityService(repo, zerolog.Nop())

	user, err := svc.Register(context.Background(), "alice", "alice@x.com", "pw1", "Alice A")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID != 1 {
		t.Fatalf("expected id 1, got %d", user.ID)
	}
	if user.PasswordHash == "pw1" {
		t.Fatalf("expected password to be hashed")
	}
	if !password.Verify("pw1", user.PasswordHash) {
		t.Fatalf("stored hash does not verify against password")
	}
	if !user.IsActive {
		t.Fatalf("new accounts must be active")
	}
}

func TestIdentityService_Register_Validation(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := NewIdentityService(repo, zerolog.Nop())

	if _, err := svc.Register(context.Background(), "", "a@x.com", "pw", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty username, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "b@x.com", "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
}

func TestIdentityService_Register_Duplicate(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := NewIdentityService(repo, zerolog.Nop())

	if _, err := svc.Register(context.Background(), "bob", "bob@x.com", "pw", ""); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "other@x.com", "pw2", ""); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for duplicate username, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "robert", "bob@x.com", "pw2", ""); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for duplicate email, got %v", err)
	}
}

func TestIdentityService_Authenticate_Roundtrip(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := NewIdentityService(repo, zerolog.Nop())

	created, err := svc.Register(context.Background(), "alice", "alice@x.com", "pw1", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "alice", "pw1")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("expected id %d, got %d", created.ID, user.ID)
	}
	if user.LastLogin == nil {
		t.Fatalf("expected last_login to be set after authentication")
	}
	if len(repo.loginRecorded) != 1 || repo.loginRecorded[0] != created.ID {
		t.Fatalf("expected last_login recorded for user %d, got %v", created.ID, repo.loginRecorded)
	}
}

func TestIdentityService_Authenticate_UniformFailure(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := NewIdentityService(repo, zerolog.Nop())

	if _, err := svc.Register(context.Background(), "alice", "alice@x.com", "pw1", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Wrong password and unknown user must be indistinguishable.
	_, wrongPw := svc.Authenticate(context.Background(), "alice", "wrong")
	_, unknown := svc.Authenticate(context.Background(), "nobody", "pw1")
	if !errors.Is(wrongPw, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPw)
	}
	if !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", unknown)
	}
	if wrongPw != unknown {
		t.Fatalf("outcomes must be identical, got %v vs %v", wrongPw, unknown)
	}
}

func TestIdentityService_Authenticate_RecordLoginBestEffort(t *testing.T) {
	repo := newStubIdentityRepo()
	svc := NewIdentityService(repo, zerolog.Nop())

	if _, err := svc.Register(context.Background(), "carol", "carol@x.com", "pw", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	repo.recordLoginErr = errors.New("disk full")
	user, err := svc.Authenticate(context.Background(), "carol", "pw")
	if err != nil {
		t.Fatalf("authentication must succeed despite last_login failure, got %v", err)
	}
	if user.LastLogin != nil {
		t.Fatalf("last_login must stay unset when the update failed")
	}
}
