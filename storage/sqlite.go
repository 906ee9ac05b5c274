package storage

import (
	"context"
	"database/sql"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/logger"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const createBlocksTable = `CREATE TABLE IF NOT EXISTS blocks (
	key BLOB PRIMARY KEY,
	value BLOB NOT NULL
)`

type sqliteStorage struct {
	db *sql.DB
}

// OpenSQLite returns a storage backed by the SQLite database at path.
//
// The path ":memory:" opens a private in-memory database.
func OpenSQLite(path string, log *zap.SugaredLogger) (Storage, error) {
	log = logger.OrNop(log)
	log.Debugw("opening sqlite storage", "path", path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		createBlocksTable,
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to exec %q", stmt)
		}
	}
	log.Infow("sqlite storage opened", "path", path, "wal_mode", true)
	return &sqliteStorage{db: db}, nil
}

func (s *sqliteStorage) Has(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM blocks WHERE key = ?", []byte(key)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *sqliteStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM blocks WHERE key = ?", []byte(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *sqliteStorage) Put(ctx context.Context, key string, content []byte) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO blocks (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", []byte(key), content)
	return err
}

func (s *sqliteStorage) Close() error {
	return s.db.Close()
}
