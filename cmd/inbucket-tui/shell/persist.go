package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/grptx/inbucket/internal/logging"
	"github.com/grptx/inbucket/internal/session"
	"github.com/grptx/inbucket/internal/store"
)

const saveTimeout = 5 * time.Second

// persister writes records from a single goroutine so they reach the store in
// the order they were requested. A record that has not been written yet is
// replaced by a newer one.
type persister struct {
	kv     store.KV
	writer string

	mu      sync.Mutex
	pending *session.Record
	wake    chan struct{}
	done    chan struct{}
	closed  bool
	wg      sync.WaitGroup
}

// storedRecord is the record as written by this process. Writer lets the
// watch tell our own writes apart from other clients'.
type storedRecord struct {
	session.Record
	Writer string `json:"writer,omitempty"`
}

func newPersister(kv store.KV, writer string) *persister {
	p := &persister{
		kv:     kv,
		writer: writer,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Save queues rec and returns immediately.
func (p *persister) Save(rec session.Record) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		logging.StoreError("persister closed, dropping record")
		return
	}
	p.pending = &rec
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.wake:
			p.flush()
		case <-p.done:
			p.flush()
			return
		}
	}
}

func (p *persister) flush() {
	p.mu.Lock()
	rec := p.pending
	p.pending = nil
	p.mu.Unlock()
	if rec == nil {
		return
	}

	raw, err := p.encode(*rec)
	if err != nil {
		logging.StoreError("failed to encode session record: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	err = p.kv.Save(ctx, raw)
	logging.AuditResult(logging.AuditRecordSaved, "session", err)
	if err != nil {
		logging.StoreError("failed to save session record: %v", err)
		return
	}
	logging.StoreDebug("saved session record (%d bytes)", len(raw))
}

func (p *persister) encode(rec session.Record) ([]byte, error) {
	data, err := json.Marshal(storedRecord{Record: rec, Writer: p.writer})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

// ownWrite reports whether raw was written by this persister.
func (p *persister) ownWrite(raw []byte) bool {
	var stored struct {
		Writer string `json:"writer"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return false
	}
	return p.writer != "" && stored.Writer == p.writer
}

// Close writes any pending record and stops the writer.
func (p *persister) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
}
