package sqlite

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/fixapp/fixapp-api/internal/core/domain"
)

// SessionRepository persists session tokens through the storage backend.
// Session rows are never mutated after insert: they are filtered out by the
// expiry predicate at read time and removed by Delete or DeleteExpired.
type SessionRepository struct {
	backend *Backend
}

func NewSessionRepository(backend *Backend) *SessionRepository {
	return &SessionRepository{backend: backend}
}

// Create inserts a session row. A session_token collision fails with
// domain.ErrSessionExists so the caller can mint a fresh token and retry.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	conn, release, err := r.backend.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	err = sqlitex.Execute(conn, `
		INSERT INTO sessions (user_id, session_token, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, &sqlitex.ExecOptions{
		Args: []any{
			session.UserID,
			session.Token,
			session.CreatedAt.Unix(),
			session.ExpiresAt.Unix(),
		},
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSessionExists
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}

	created := *session
	created.ID = conn.LastInsertRowID()
	return &created, nil
}

// FindByToken loads a live session joined with its owning user. Tokens that
// are absent and tokens past their expiry both return
// domain.ErrSessionNotFound; the row itself may still exist.
func (r *SessionRepository) FindByToken(ctx context.Context, token string, now time.Time) (*domain.User, *domain.Session, error) {
	conn, release, err := r.backend.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	var user *domain.User
	var session *domain.Session
	err = sqlitex.Execute(conn, `
		SELECT s.id, s.user_id, s.session_token, s.created_at, s.expires_at,
		       u.id, u.username, u.email, u.password_hash, u.full_name,
		       u.created_at, u.last_login, u.is_active
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.session_token = ? AND s.expires_at > ?
	`, &sqlitex.ExecOptions{
		Args: []any{token, now.Unix()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			session = &domain.Session{
				ID:        stmt.ColumnInt64(0),
				UserID:    stmt.ColumnInt64(1),
				Token:     stmt.ColumnText(2),
				CreatedAt: unixToTime(stmt.ColumnInt64(3)),
				ExpiresAt: unixToTime(stmt.ColumnInt64(4)),
			}
			u := scanUser(stmt, 5)
			user = &u
			return nil
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, nil, domain.ErrSessionNotFound
	}
	return user, session, nil
}

// Delete removes the session matching token. Idempotent: deleting an absent
// token is not an error.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	conn, release, err := r.backend.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	err = sqlitex.Execute(conn, `DELETE FROM sessions WHERE session_token = ?`, &sqlitex.ExecOptions{
		Args: []any{token},
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry and reports how many
// rows were purged.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	conn, release, err := r.backend.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	err = sqlitex.Execute(conn, `DELETE FROM sessions WHERE expires_at <= ?`, &sqlitex.ExecOptions{
		Args: []any{now.Unix()},
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return int64(conn.Changes()), nil
}
