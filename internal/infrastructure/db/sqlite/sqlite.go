// Package sqlite implements the relational storage backend in its two
// deployment modes: durable (file-backed, fresh connection per operation)
// and ephemeral (in-memory, one process-wide connection reused for every
// operation and never closed by callers).
package sqlite

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Mode selects the storage discipline. It is chosen once at process start
// and never changes afterwards.
type Mode int

const (
	// ModeDurable opens a fresh file-backed connection per operation.
	ModeDurable Mode = iota
	// ModeEphemeral reuses a single lazily-created in-memory connection for
	// the lifetime of the process. Required under serverless execution: a
	// fresh in-memory connection per call would be a fresh empty database,
	// destroying everything written by prior calls.
	ModeEphemeral
)

func (m Mode) String() string {
	if m == ModeEphemeral {
		return "ephemeral"
	}
	return "durable"
}

// Config captures the settings for constructing a storage backend.
type Config struct {
	Mode Mode
	// Path is the database file location. Durable mode only.
	Path string
	// SeedDemo inserts the demo account during schema initialization.
	// Local development convenience; never enable in production.
	SeedDemo bool
	Logger   zerolog.Logger
}

// Backend hands out connections according to the configured mode.
//
// In ephemeral mode the singleton connection is a shared mutable resource:
// the backend mutex is held from Acquire until release, so operations from
// concurrent request handlers are serialized and multi-statement sequences
// (insert then read last-insert-rowid) cannot interleave.
type Backend struct {
	mode     Mode
	path     string
	seedDemo bool
	log      zerolog.Logger

	mu   sync.Mutex
	conn *sqlite.Conn // ephemeral singleton, lazily opened
}

// NewBackend constructs a Backend. No connection is opened until the first
// Acquire or Bootstrap call.
func NewBackend(cfg Config) *Backend {
	return &Backend{
		mode:     cfg.Mode,
		path:     cfg.Path,
		seedDemo: cfg.SeedDemo,
		log:      cfg.Logger,
	}
}

// Acquire returns a connection and its release function. Durable mode opens
// a fresh connection that release closes, so connections never outlive one
// logical operation. Ephemeral mode returns the process-wide connection
// under the backend mutex, which release unlocks; the connection itself is
// closed only by Close at process shutdown.
func (b *Backend) Acquire(ctx context.Context) (*sqlite.Conn, func(), error) {
	if b.mode == ModeEphemeral {
		return b.acquireShared(ctx)
	}

	conn, err := b.open(b.path, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenWAL)
	if err != nil {
		return nil, nil, err
	}
	old := conn.SetInterrupt(ctx.Done())
	release := func() {
		conn.SetInterrupt(old)
		if err := conn.Close(); err != nil {
			b.log.Warn().Err(err).Msg("closing sqlite connection")
		}
	}
	return conn, release, nil
}

func (b *Backend) acquireShared(ctx context.Context) (*sqlite.Conn, func(), error) {
	b.mu.Lock()
	if b.conn == nil {
		conn, err := b.open(":memory:", sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenMemory)
		if err != nil {
			b.mu.Unlock()
			return nil, nil, err
		}
		// The in-memory database is born empty on every process start, so
		// the first acquire initializes the schema.
		if err := b.initialize(conn); err != nil {
			_ = conn.Close()
			b.mu.Unlock()
			return nil, nil, err
		}
		b.conn = conn
		b.log.Info().Msg("ephemeral sqlite connection established")
	}

	conn := b.conn
	old := conn.SetInterrupt(ctx.Done())
	release := func() {
		conn.SetInterrupt(old)
		b.mu.Unlock()
	}
	return conn, release, nil
}

// open establishes a connection and applies the standard pragmas.
func (b *Backend) open(path string, flags sqlite.OpenFlags) (*sqlite.Conn, error) {
	conn, err := sqlite.OpenConn(path, flags)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	return conn, nil
}

// Bootstrap prepares the store for use. Durable mode creates the schema on
// the file database; ephemeral mode forces the lazy first connection, which
// initializes the schema as a side effect. Safe to call multiple times.
func (b *Backend) Bootstrap(ctx context.Context) error {
	conn, release, err := b.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if b.mode == ModeDurable {
		if err := b.initialize(conn); err != nil {
			return err
		}
	}
	b.log.Info().Stringer("mode", b.mode).Msg("storage backend ready")
	return nil
}

// initialize creates missing tables and optionally seeds the demo account.
func (b *Backend) initialize(conn *sqlite.Conn) error {
	if err := ensureSchema(conn); err != nil {
		return err
	}
	if b.seedDemo {
		// Best-effort: a failed seed must never abort startup.
		seedDemoUser(conn, b.log)
	}
	return nil
}

// Close releases the ephemeral singleton connection. No-op in durable mode,
// where connections never outlive a single operation.
func (b *Backend) Close() error {
	if b.mode != ModeEphemeral {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	return err
}
