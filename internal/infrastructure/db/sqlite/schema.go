package sqlite

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/fixapp/fixapp-api/pkg/password"
)

// Timestamps are stored as Unix seconds.
const schemaScript = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT UNIQUE NOT NULL,
	email         TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	full_name     TEXT,
	created_at    INTEGER NOT NULL,
	last_login    INTEGER,
	is_active     INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS sessions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id       INTEGER NOT NULL REFERENCES users (id),
	session_token TEXT UNIQUE NOT NULL,
	created_at    INTEGER NOT NULL,
	expires_at    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at);
`

// Demo bootstrap account, seeded only when Config.SeedDemo is set.
const (
	demoUsername = "admin"
	demoPassword = "fix123"
	demoEmail    = "admin@fixapp.com"
	demoFullName = "Demo Admin"
)

// ensureSchema creates the users and sessions tables if absent. Idempotent.
// Existing tables are never altered; there is no migration support.
func ensureSchema(conn *sqlite.Conn) error {
	if err := sqlitex.ExecuteScript(conn, schemaScript, nil); err != nil {
		return fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return nil
}

// seedDemoUser inserts the demo account when no user named admin exists.
// Failures are logged and swallowed: seeding must never fail startup.
func seedDemoUser(conn *sqlite.Conn, log zerolog.Logger) {
	var count int64
	err := sqlitex.Execute(conn, `SELECT COUNT(*) FROM users WHERE username = ?`, &sqlitex.ExecOptions{
		Args: []any{demoUsername},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("demo account lookup failed")
		return
	}
	if count > 0 {
		return
	}

	hash, err := password.Hash(demoPassword)
	if err != nil {
		log.Warn().Err(err).Msg("demo account password hash failed")
		return
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO users (username, email, password_hash, full_name, created_at, is_active)
		VALUES (?, ?, ?, ?, ?, 1)
	`, &sqlitex.ExecOptions{
		Args: []any{demoUsername, demoEmail, hash, demoFullName, time.Now().UTC().Unix()},
	})
	if err != nil {
		log.Warn().Err(err).Msg("demo account insert failed")
		return
	}
	log.Info().Str("username", demoUsername).Msg("demo account seeded")
}
