package shell

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/grptx/inbucket/cmd/inbucket-tui/ui"
	"github.com/grptx/inbucket/internal/inbucket"
	"github.com/grptx/inbucket/internal/session"
)

type stubAPI struct{}

func (stubAPI) ListMailbox(ctx context.Context, name string) ([]inbucket.MessageHeader, error) {
	return nil, nil
}
func (stubAPI) GetMessage(ctx context.Context, name, id string) (*inbucket.Message, error) {
	return &inbucket.Message{}, nil
}
func (stubAPI) DeleteMessage(ctx context.Context, name, id string) error { return nil }
func (stubAPI) PurgeMailbox(ctx context.Context, name string) error      { return nil }
func (stubAPI) Greeting(ctx context.Context) (string, error)             { return "<p>hi</p>", nil }
func (stubAPI) Status(ctx context.Context) (*inbucket.ServerStatus, error) {
	return &inbucket.ServerStatus{}, nil
}

type stubFeed struct {
	mu      sync.Mutex
	running bool
	starts  int
	stops   int
	events  chan inbucket.MonitorEvent
}

func newStubFeed() *stubFeed {
	return &stubFeed{events: make(chan inbucket.MonitorEvent)}
}

func (f *stubFeed) Control(run bool) {
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

func (f *stubFeed) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *stubFeed) Events() <-chan inbucket.MonitorEvent { return f.events }

func testEnv(feed ui.MonitorFeed) ui.Env {
	return ui.Env{
		API:            stubAPI{},
		Feed:           feed,
		Styles:         ui.NewStyles(ui.LightTheme()),
		Width:          100,
		Height:         30,
		Timeout:        time.Second,
		MailboxRefresh: time.Minute,
		StatusRefresh:  time.Minute,
		Greeting:       "hello",
	}
}

func newSession(raw []byte) session.Session {
	return session.New(nil, Origin+"/", raw)
}

// start builds a model on startURL, dropping the initial effects.
func start(t interface{ Helper() }, startURL string) Model {
	t.Helper()
	m, _ := Init(testEnv(newStubFeed()), newSession(nil), startURL)
	return m
}

func effectsOf[T Effect](effects []Effect) []T {
	var out []T
	for _, e := range effects {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
