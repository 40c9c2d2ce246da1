package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Postgres driver for database/sql.
	_ "github.com/lib/pq"

	"loadrun_srv/internal/config"
)

// Session is a single-use handle on the target warehouse. The runner opens
// one session per date, executes one statement on it and closes it.
type Session interface {
	// Exec runs one statement and returns its wall-clock duration.
	Exec(ctx context.Context, query string) (time.Duration, error)
	Close() error
}

// SessionFactory hands out warehouse sessions.
type SessionFactory interface {
	Open(ctx context.Context) (Session, error)
	Ping(ctx context.Context) error
}

// Factory opens sessions over a shared database/sql pool. Each Session
// pins one connection out of the pool for its lifetime, which keeps the
// one-session-per-iteration semantics without re-dialing per date.
type Factory struct {
	db *sql.DB
}

// NewFactory connects to the warehouse described by the config.
func NewFactory(cfg config.Warehouse) (*Factory, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}

	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(10)

	return &Factory{db: db}, nil
}

// Open acquires a dedicated connection and wraps it as a Session.
func (f *Factory) Open(ctx context.Context) (Session, error) {
	conn, err := f.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse session: %w", err)
	}
	return &connSession{conn: conn}, nil
}

// Ping checks warehouse connectivity; used by the health endpoint.
func (f *Factory) Ping(ctx context.Context) error {
	return f.db.PingContext(ctx)
}

// Close releases the underlying pool.
func (f *Factory) Close() error {
	return f.db.Close()
}

type connSession struct {
	conn *sql.Conn
}

func (s *connSession) Exec(ctx context.Context, query string) (time.Duration, error) {
	start := time.Now()
	if _, err := s.conn.ExecContext(ctx, query); err != nil {
		return time.Since(start), fmt.Errorf("warehouse exec failed: %w", err)
	}
	return time.Since(start), nil
}

func (s *connSession) Close() error {
	return s.conn.Close()
}
