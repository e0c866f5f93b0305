package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/grptx/inbucket/internal/config"
)

// ErrNotFound is returned by Load when nothing has been stored under the key.
var ErrNotFound = errors.New("store: value not found")

// KV persists a single opaque value shared by every running client. Writes
// are last-write-wins; changes made by anyone, including this process, are
// reported on the channel returned by Watch.
type KV interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, value []byte) error
	// Watch streams the current value after each change until ctx is done or
	// the store is closed, then closes the channel.
	Watch(ctx context.Context) (<-chan []byte, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile       = "file"
	BackendSQLite     = "sqlite"      // mattn/go-sqlite3 (cgo)
	BackendSQLitePure = "sqlite-pure" // modernc.org/sqlite
	BackendMemory     = "memory"
)

// Open builds the backend selected by cfg.
func Open(cfg config.StoreConfig, poll time.Duration) (KV, error) {
	key := cfg.Key
	if key == "" {
		key = "inbucket.session"
	}

	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(cfg.Dir, key)
	case BackendSQLite:
		return NewSQLiteStore(driverCGO, filepath.Join(cfg.Dir, "session.db"), key, poll)
	case BackendSQLitePure:
		return NewSQLiteStore(driverPure, filepath.Join(cfg.Dir, "session.db"), key, poll)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
