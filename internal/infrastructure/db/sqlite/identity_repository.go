package sqlite

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/fixapp/fixapp-api/internal/core/domain"
)

const userColumns = `id, username, email, password_hash, full_name, created_at, last_login, is_active`

// IdentityRepository persists user accounts through the storage backend.
type IdentityRepository struct {
	backend *Backend
}

func NewIdentityRepository(backend *Backend) *IdentityRepository {
	return &IdentityRepository{backend: backend}
}

// Create inserts a new user row and returns the stored user with its
// assigned id. A duplicate username or email fails atomically with
// domain.ErrUserExists and leaves the existing row untouched.
func (r *IdentityRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	conn, release, err := r.backend.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	err = sqlitex.Execute(conn, `
		INSERT INTO users (username, email, password_hash, full_name, created_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, &sqlitex.ExecOptions{
		Args: []any{
			user.Username,
			user.Email,
			user.PasswordHash,
			nullIfEmpty(user.FullName),
			user.CreatedAt.Unix(),
			boolToInt(user.IsActive),
		},
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = conn.LastInsertRowID()
	return &created, nil
}

// FindByUsername looks up a user by exact, case-sensitive username.
func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// FindByEmail looks up a user by email.
func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// RecordLogin sets the user's last_login timestamp.
func (r *IdentityRepository) RecordLogin(ctx context.Context, userID int64, at time.Time) error {
	conn, release, err := r.backend.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	err = sqlitex.Execute(conn, `UPDATE users SET last_login = ? WHERE id = ?`, &sqlitex.ExecOptions{
		Args: []any{at.Unix(), userID},
	})
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

func (r *IdentityRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	conn, release, err := r.backend.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var user *domain.User
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{arg},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			u := scanUser(stmt, 0)
			user = &u
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// scanUser reads the userColumns starting at column offset base.
func scanUser(stmt *sqlite.Stmt, base int) domain.User {
	u := domain.User{
		ID:           stmt.ColumnInt64(base),
		Username:     stmt.ColumnText(base + 1),
		Email:        stmt.ColumnText(base + 2),
		PasswordHash: stmt.ColumnText(base + 3),
		FullName:     stmt.ColumnText(base + 4),
		CreatedAt:    unixToTime(stmt.ColumnInt64(base + 5)),
		IsActive:     stmt.ColumnInt64(base+7) != 0,
	}
	if !stmt.ColumnIsNull(base + 6) {
		t := unixToTime(stmt.ColumnInt64(base + 6))
		u.LastLogin = &t
	}
	return u
}

func isUniqueViolation(err error) bool {
	code := sqlite.ErrCode(err)
	return code == sqlite.ResultConstraintUnique || code == sqlite.ResultConstraintPrimaryKey
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
