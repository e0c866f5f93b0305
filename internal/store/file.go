package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/grptx/inbucket/internal/logging"
)

// FileStore keeps the value in <dir>/<key>.json and watches the directory for
// writes from other processes.
type FileStore struct {
	mu          sync.Mutex
	dir         string
	path        string
	debounceDur time.Duration
	stopCh      chan struct{}
	closed      bool
	wg          sync.WaitGroup
}

// NewFileStore creates the state directory if needed.
func NewFileStore(dir, key string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store requires a directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{
		dir:         dir,
		path:        filepath.Join(dir, key+".json"),
		debounceDur: 50 * time.Millisecond, // Editors and renames fire bursts
		stopCh:      make(chan struct{}),
	}, nil
}

// Path returns the file holding the value.
func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	return data, nil
}

// Save writes atomically through a temp file. Identical content is left alone
// so that echoing a value back does not wake other watchers.
func (fs *FileStore) Save(ctx context.Context, value []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if current, err := os.ReadFile(fs.path); err == nil && bytes.Equal(current, value) {
		return nil
	}

	tmp, err := os.CreateTemp(fs.dir, filepath.Base(fs.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	logging.StoreDebug("FileStore: wrote %d bytes to %s", len(value), fs.path)
	return nil
}

func (fs *FileStore) Watch(ctx context.Context) (<-chan []byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return nil, fmt.Errorf("file store closed")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(fs.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", fs.dir, err)
	}
	logging.Store("FileStore: watching %s", fs.path)

	out := make(chan []byte, 1)
	fs.wg.Add(1)
	go fs.run(ctx, watcher, out)
	return out, nil
}

// run is the event loop for one watcher.
func (fs *FileStore) run(ctx context.Context, watcher *fsnotify.Watcher, out chan<- []byte) {
	defer fs.wg.Done()
	defer close(out)
	defer watcher.Close()

	debounceTicker := time.NewTicker(fs.debounceDur / 2)
	defer debounceTicker.Stop()

	var pendingSince time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case <-fs.stopCh:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fs.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			pendingSince = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.StoreError("FileStore watcher error: %v", err)

		case <-debounceTicker.C:
			if pendingSince.IsZero() || time.Since(pendingSince) < fs.debounceDur {
				continue
			}
			pendingSince = time.Time{}

			data, err := os.ReadFile(fs.path)
			if err != nil {
				if !os.IsNotExist(err) {
					logging.StoreError("FileStore: failed to read %s: %v", fs.path, err)
				}
				continue
			}
			select {
			case out <- data:
			case <-ctx.Done():
				return
			case <-fs.stopCh:
				return
			}
		}
	}
}

// Close stops every watcher and waits for them to exit.
func (fs *FileStore) Close() error {
	fs.mu.Lock()
	if fs.closed {
		fs.mu.Unlock()
		return nil
	}
	fs.closed = true
	close(fs.stopCh)
	fs.mu.Unlock()

	fs.wg.Wait()
	return nil
}
