package pg

import (
	"context"
	"database/sql"

	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/storage/pg"
)

// Storage implements the thread and user document stores on top of postgres.
// Every operation first obtains the shared pool through Conn.Connect, so a
// Storage can be built before the database is reachable.
type Storage struct {
	conn *pg.Conn
}

func New(cfg *config.Config) *Storage {
	return newWithPool(cfg, pg.DefaultConnectionConfig())
}

func newWithPool(cfg *config.Config, connCfg pg.ConnectionConfig) *Storage {
	return &Storage{conn: pg.NewConn(cfg, connCfg)}
}

// Connect eagerly establishes the connection, failing fast on startup.
func (s *Storage) Connect(ctx context.Context) error {
	_, err := s.conn.Connect(ctx)
	return err
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *Storage) Cleanup() error {
	return s.conn.Close()
}

func (s *Storage) db(ctx context.Context) (*sql.DB, error) {
	return s.conn.Connect(ctx)
}

// withTx connects and runs fn inside a single transaction.
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	return pg.WithTx(ctx, db, fn)
}
