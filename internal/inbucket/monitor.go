package inbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/grptx/inbucket/internal/logging"
)

// MonitorEventKind classifies events on the monitor feed.
type MonitorEventKind int

const (
	MonitorConnected MonitorEventKind = iota
	MonitorMessage
	MonitorDisconnected
)

func (k MonitorEventKind) String() string {
	switch k {
	case MonitorConnected:
		return "connected"
	case MonitorMessage:
		return "message"
	case MonitorDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("MonitorEventKind(%d)", int(k))
	}
}

type MonitorEvent struct {
	Kind   MonitorEventKind
	Header MessageHeader // set for MonitorMessage
	Err    error         // set for MonitorDisconnected when the drop was not requested
}

const monitorPath = "/api/v1/monitor/messages"

// Monitor is the process-wide connection to Inbucket's live message feed.
// Control starts and stops it; both directions are idempotent.
type Monitor struct {
	url            string
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
	events         chan MonitorEvent

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	conn    *websocket.Conn
}

// NewMonitor derives the websocket URL from the server base URL.
func NewMonitor(baseURL string, reconnectDelay time.Duration) (*Monitor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("invalid server url %q: unsupported scheme", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/") + monitorPath

	if reconnectDelay <= 0 {
		reconnectDelay = 3 * time.Second
	}
	return &Monitor{
		url:            u.String(),
		dialer:         &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		reconnectDelay: reconnectDelay,
		events:         make(chan MonitorEvent, 64),
	}, nil
}

// URL returns the websocket endpoint.
func (m *Monitor) URL() string {
	return m.url
}

// Events is the single feed shared by every reader.
func (m *Monitor) Events() <-chan MonitorEvent {
	return m.events
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Control ensures the feed is running (true) or stopped (false). Stopping
// blocks until the connection goroutine has exited.
func (m *Monitor) Control(run bool) {
	if run {
		m.start()
	} else {
		m.stop()
	}
}

func (m *Monitor) start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}

	// Events left over from a previous run belong to a page that is gone.
	for drained := false; !drained; {
		select {
		case <-m.events:
		default:
			drained = true
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})
	logging.Monitor("Monitor: starting feed %s", m.url)
	go m.run(ctx, m.done)
}

func (m *Monitor) stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.cancel()
	if m.conn != nil {
		m.conn.Close()
	}
	done := m.done
	m.mu.Unlock()

	<-done
	logging.Monitor("Monitor: feed stopped")
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		conn, _, err := m.dialer.DialContext(ctx, m.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.MonitorWarn("Monitor: dial failed: %v", err)
			m.emit(ctx, MonitorEvent{Kind: MonitorDisconnected, Err: err})
		} else {
			m.mu.Lock()
			if ctx.Err() != nil {
				m.mu.Unlock()
				conn.Close()
				return
			}
			m.conn = conn
			m.mu.Unlock()

			m.emit(ctx, MonitorEvent{Kind: MonitorConnected})
			err = m.readLoop(ctx, conn)

			m.mu.Lock()
			m.conn = nil
			m.mu.Unlock()
			conn.Close()

			if ctx.Err() != nil {
				return
			}
			logging.MonitorWarn("Monitor: connection lost: %v", err)
			m.emit(ctx, MonitorEvent{Kind: MonitorDisconnected, Err: err})
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.reconnectDelay):
		}
	}
}

func (m *Monitor) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return fmt.Errorf("server closed the feed")
			}
			return err
		}

		var header MessageHeader
		if err := json.Unmarshal(data, &header); err != nil {
			logging.MonitorWarn("Monitor: dropping undecodable event: %v", err)
			continue
		}
		m.emit(ctx, MonitorEvent{Kind: MonitorMessage, Header: header})
	}
}

func (m *Monitor) emit(ctx context.Context, ev MonitorEvent) {
	select {
	case m.events <- ev:
	case <-ctx.Done():
	}
}
