package inbucket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// monitorServer pushes one header per connection. When dropAfterSend is set
// it closes the socket right after.
func monitorServer(t *testing.T, dropAfterSend bool, connects *int32) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc(monitorPath, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		n := atomic.AddInt32(connects, 1)

		err = conn.WriteJSON(MessageHeader{Mailbox: "swaks", ID: strings.Repeat("x", int(n)), Subject: "live"})
		if err != nil || dropAfterSend {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	return httptest.NewServer(mux)
}

func nextEvent(t *testing.T, m *Monitor) MonitorEvent {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for monitor event")
		return MonitorEvent{}
	}
}

func TestNewMonitorURL(t *testing.T) {
	m, err := NewMonitor("https://mail.example.com/inbucket/", 0)
	require.NoError(t, err)
	assert.Equal(t, "wss://mail.example.com/inbucket/api/v1/monitor/messages", m.URL())

	_, err = NewMonitor("gopher://x", 0)
	assert.Error(t, err)
}

func TestMonitorStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var connects int32
	ts := monitorServer(t, false, &connects)
	defer ts.Close()

	m, err := NewMonitor(ts.URL, 10*time.Millisecond)
	require.NoError(t, err)

	m.Control(true)
	m.Control(true)
	assert.True(t, m.Running())

	assert.Equal(t, MonitorConnected, nextEvent(t, m).Kind)
	ev := nextEvent(t, m)
	assert.Equal(t, MonitorMessage, ev.Kind)
	assert.Equal(t, "live", ev.Header.Subject)
	assert.Equal(t, int32(1), atomic.LoadInt32(&connects), "second start must be a no-op")

	m.Control(false)
	m.Control(false)
	assert.False(t, m.Running())
}

func TestMonitorReconnects(t *testing.T) {
	defer goleak.VerifyNone(t)

	var connects int32
	ts := monitorServer(t, true, &connects)
	defer ts.Close()

	m, err := NewMonitor(ts.URL, 10*time.Millisecond)
	require.NoError(t, err)
	m.Control(true)
	defer m.Control(false)

	kinds := []MonitorEventKind{}
	for len(kinds) < 4 {
		kinds = append(kinds, nextEvent(t, m).Kind)
	}
	assert.Equal(t, []MonitorEventKind{MonitorConnected, MonitorMessage, MonitorDisconnected, MonitorConnected}, kinds)
}

func TestMonitorStopWhileServerUnreachable(t *testing.T) {
	defer goleak.VerifyNone(t)

	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	m, err := NewMonitor(url, 10*time.Millisecond)
	require.NoError(t, err)
	m.Control(true)

	ev := nextEvent(t, m)
	assert.Equal(t, MonitorDisconnected, ev.Kind)
	assert.Error(t, ev.Err)

	m.Control(false)
	assert.False(t, m.Running())
}
