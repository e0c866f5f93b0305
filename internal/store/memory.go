package store

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStore keeps the value in process. Used for --ephemeral runs and tests.
type MemoryStore struct {
	mu       sync.Mutex
	value    []byte
	watchers []chan []byte
	closed   bool
	done     chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{done: make(chan struct{})}
}

func (m *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.value...), nil
}

func (m *MemoryStore) Save(ctx context.Context, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bytes.Equal(m.value, value) && m.value != nil {
		return nil
	}
	m.value = append([]byte(nil), value...)
	m.broadcast()
	return nil
}

// Publish sets the value as if another client had written it.
func (m *MemoryStore) Publish(value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = append([]byte(nil), value...)
	m.broadcast()
}

// broadcast delivers the latest value, replacing any undelivered one.
func (m *MemoryStore) broadcast() {
	for _, ch := range m.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- append([]byte(nil), m.value...)
	}
}

func (m *MemoryStore) Watch(ctx context.Context) (<-chan []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan []byte, 1)
	if m.closed {
		close(ch)
		return ch, nil
	}
	m.watchers = append(m.watchers, ch)

	go func() {
		select {
		case <-ctx.Done():
		case <-m.done:
			return
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, w := range m.watchers {
			if w == ch {
				m.watchers = append(m.watchers[:i], m.watchers[i+1:]...)
				close(ch)
				break
			}
		}
	}()
	return ch, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	for _, ch := range m.watchers {
		close(ch)
	}
	m.watchers = nil
	return nil
}
