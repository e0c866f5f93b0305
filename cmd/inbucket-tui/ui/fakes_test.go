package ui

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grptx/inbucket/internal/inbucket"
	"github.com/grptx/inbucket/internal/session"
)

type fakeAPI struct {
	mu       sync.Mutex
	headers  map[string][]inbucket.MessageHeader
	messages map[string]*inbucket.Message
	status   *inbucket.ServerStatus
	greeting string
	listErr  error
	deleted  []string
	purged   []string
}

func newFakeAPI() *fakeAPI {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &fakeAPI{
		headers: map[string][]inbucket.MessageHeader{
			"swaks": {
				{Mailbox: "swaks", ID: "1", From: "old@example.com", Subject: "older", Date: now.Add(-time.Hour), Size: 1024},
				{Mailbox: "swaks", ID: "2", From: "new@example.com", Subject: "newer", Date: now, Size: 2048},
			},
		},
		messages: map[string]*inbucket.Message{
			"2": {
				MessageHeader: inbucket.MessageHeader{Mailbox: "swaks", ID: "2", From: "new@example.com", Subject: "newer", Date: now},
				Body:          inbucket.Body{HTML: `<p>Click <a href="https://example.com/verify">here</a></p>`},
			},
		},
		greeting: "<h1>Hello</h1><p>Test server</p>",
	}
}

func (f *fakeAPI) ListMailbox(ctx context.Context, name string) ([]inbucket.MessageHeader, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.headers[name], nil
}

func (f *fakeAPI) GetMessage(ctx context.Context, name, id string) (*inbucket.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.messages[id]; ok {
		return msg, nil
	}
	return nil, &inbucket.APIError{Method: "GET", Path: "/api/v1/mailbox/" + name + "/" + id, StatusCode: 404}
}

func (f *fakeAPI) DeleteMessage(ctx context.Context, name, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) PurgeMailbox(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged = append(f.purged, name)
	return nil
}

func (f *fakeAPI) Greeting(ctx context.Context) (string, error) {
	return f.greeting, nil
}

func (f *fakeAPI) Status(ctx context.Context) (*inbucket.ServerStatus, error) {
	if f.status == nil {
		return nil, errors.New("connection refused")
	}
	return f.status, nil
}

type fakeFeed struct {
	mu      sync.Mutex
	running bool
	starts  int
	stops   int
	events  chan inbucket.MonitorEvent
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{events: make(chan inbucket.MonitorEvent, 8)}
}

func (f *fakeFeed) Control(run bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if run && !f.running {
		f.starts++
	}
	if !run && f.running {
		f.stops++
	}
	f.running = run
}

func (f *fakeFeed) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeFeed) Events() <-chan inbucket.MonitorEvent { return f.events }

func testEnv() Env {
	return Env{
		API:            newFakeAPI(),
		Feed:           newFakeFeed(),
		Styles:         NewStyles(LightTheme()),
		Width:          120,
		Height:         40,
		Timeout:        time.Second,
		MailboxRefresh: time.Minute,
		StatusRefresh:  time.Minute,
		MaxMonitorRows: 3,
	}
}

func testSession(recent ...string) session.Session {
	raw, _ := session.Encode(session.Record{Version: session.RecordVersion, RecentMailboxes: recent})
	return session.New(nil, "inbucket-tui://local/", raw)
}

// collect runs cmd and any batches it yields, skipping spinner ticks.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if _, ok := msg.(spinner.TickMsg); ok || msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
