package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/grptx/inbucket/internal/logging"
)

const (
	driverCGO  = "sqlite3"
	driverPure = "sqlite"
)

// SQLiteStore keeps the value in a key/value table. Other writers are noticed
// by polling PRAGMA data_version on a dedicated connection.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	key    string
	poll   time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewSQLiteStore opens (or creates) the database at path using driver
// ("sqlite3" or "sqlite").
func NewSQLiteStore(driver, path, key string, poll time.Duration) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	var dsn string
	switch driver {
	case driverCGO:
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	case driverPure:
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if poll <= 0 {
		poll = time.Second
	}
	s := &SQLiteStore{
		db:     db,
		dbPath: path,
		key:    key,
		poll:   poll,
		stopCh: make(chan struct{}),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context) ([]byte, error) {
	return s.load(ctx, s.db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *SQLiteStore) load(ctx context.Context, q queryer) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load value: %w", err)
	}
	return value, nil
}

// Save upserts the value. Identical content is not rewritten.
func (s *SQLiteStore) Save(ctx context.Context, value []byte) error {
	if current, err := s.Load(ctx); err == nil && bytes.Equal(current, value) {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save value: %w", err)
	}
	logging.StoreDebug("SQLiteStore: wrote %d bytes under %s", len(value), s.key)
	return nil
}

func (s *SQLiteStore) Watch(ctx context.Context) (<-chan []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("sqlite store closed")
	}

	// data_version is per connection, so the poller needs one of its own.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve connection: %w", err)
	}
	version, err := dataVersion(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	logging.Store("SQLiteStore: watching %s (poll %s)", s.dbPath, s.poll)

	out := make(chan []byte, 1)
	s.wg.Add(1)
	go s.run(ctx, conn, version, out)
	return out, nil
}

func (s *SQLiteStore) run(ctx context.Context, conn *sql.Conn, version int64, out chan<- []byte) {
	defer s.wg.Done()
	defer close(out)
	defer conn.Close()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
		}

		v, err := dataVersion(ctx, conn)
		if err != nil {
			logging.StoreError("SQLiteStore: poll failed: %v", err)
			continue
		}
		if v == version {
			continue
		}
		version = v

		value, err := s.load(ctx, conn)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logging.StoreError("SQLiteStore: %v", err)
			}
			continue
		}
		select {
		case out <- value:
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		}
	}
}

func dataVersion(ctx context.Context, conn *sql.Conn) (int64, error) {
	var v int64
	if err := conn.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read data_version: %w", err)
	}
	return v, nil
}

// Close stops the pollers and closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return s.db.Close()
}
