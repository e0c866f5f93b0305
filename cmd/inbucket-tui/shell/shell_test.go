package shell

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grptx/inbucket/cmd/inbucket-tui/ui"
	"github.com/grptx/inbucket/internal/route"
	"github.com/grptx/inbucket/internal/session"
)

func TestInitEntersStartRoute(t *testing.T) {
	m, effects := Init(testEnv(newStubFeed()), newSession(nil), "/status")
	assert.Equal(t, ui.PageStatus, m.Page().Kind())

	cmds := effectsOf[PageCommand](effects)
	require.Len(t, cmds, 1)
	assert.Equal(t, ui.PageStatus, cmds[0].Kind)
	assert.Empty(t, effectsOf[StoreRecord](effects), "startup with defaults writes nothing")
	assert.Empty(t, m.Session().Flash())
}

func TestInitMalformedRecordFallsBackSilently(t *testing.T) {
	m, effects := Init(testEnv(newStubFeed()), newSession([]byte("{not json")), "/")
	assert.Equal(t, session.DefaultRecord(), m.Session().Persisted())
	assert.Empty(t, m.Session().Flash())
	assert.Empty(t, effectsOf[StoreRecord](effects))
}

func TestInitUnknownRouteLandsOnHome(t *testing.T) {
	m, effects := Init(testEnv(newStubFeed()), newSession(nil), "/bogus")
	assert.Equal(t, ui.PageHome, m.Page().Kind())
	assert.Equal(t, "Unknown route requested: bogus", m.Session().Flash())
	assert.Len(t, effectsOf[StoreRecord](effects), 1)
}

func TestLeavingMonitorStopsSocket(t *testing.T) {
	m := start(t, "/monitor")
	require.Equal(t, ui.PageMonitor, m.Page().Kind())

	m, effects := Update(m, URLChanged{URL: "/status"})
	assert.Equal(t, ui.PageStatus, m.Page().Kind())
	require.NotEmpty(t, effects)
	assert.Equal(t, SocketControl{Run: false}, effects[0], "stop precedes the new page's commands")
	assert.Len(t, effectsOf[SocketControl](effects), 1)
	assert.Len(t, effectsOf[PageCommand](effects), 1)
	assert.Empty(t, m.Session().Flash())
}

func TestReenteringMonitorStopsOnce(t *testing.T) {
	m := start(t, "/monitor")
	old := m.Page().(ui.MonitorPageModel)

	m, effects := Update(m, URLChanged{URL: "/monitor"})
	assert.Equal(t, []SocketControl{{Run: false}}, effectsOf[SocketControl](effects))
	assert.Equal(t, ui.PageMonitor, m.Page().Kind())
	assert.NotEqual(t, old, m.Page(), "page is rebuilt, not reused")
}

func TestOnlyLeavingMonitorStopsSocket(t *testing.T) {
	m := start(t, "/status")
	_, effects := Update(m, URLChanged{URL: "/mailbox/foo"})
	assert.Empty(t, effectsOf[SocketControl](effects))
}

func TestUnknownRouteOnMonitorStillStopsSocket(t *testing.T) {
	m := start(t, "/monitor")
	m, effects := Update(m, URLChanged{URL: "/nope"})
	assert.Equal(t, ui.PageMonitor, m.Page().Kind())
	assert.Len(t, effectsOf[SocketControl](effects), 1)
	assert.Equal(t, "Unknown route requested: nope", m.Session().Flash())
}

func TestURLChangedWhileRoutingDisabled(t *testing.T) {
	m := start(t, "/status")
	m.session = m.session.Reduce(session.DisableRouting())
	before := m.Page()

	m, effects := Update(m, URLChanged{URL: "/mailbox/foo"})
	assert.Equal(t, before, m.Page(), "no transition")
	assert.True(t, m.Session().RoutingEnabled())
	assert.Empty(t, effects, "no navigation and no write")
}

func TestRoutingLatchNeverSticks(t *testing.T) {
	m := start(t, "/")
	m.session = m.session.Reduce(session.DisableRouting())

	m, _ = Update(m, URLChanged{URL: "/mailbox/a/1"})
	assert.Equal(t, ui.PageHome, m.Page().Kind())
	m, _ = Update(m, URLChanged{URL: "/status"})
	assert.Equal(t, ui.PageStatus, m.Page().Kind(), "second change routes normally")
}

func TestUnknownURLKeepsPage(t *testing.T) {
	m := start(t, "/status")
	before := m.Page()

	m, effects := Update(m, URLChanged{URL: "/bogus"})
	assert.Equal(t, before, m.Page())
	assert.Equal(t, "Unknown route requested: bogus", m.Session().Flash())
	assert.Empty(t, effectsOf[PageCommand](effects))
}

func TestRepeatedFlashWritesOnce(t *testing.T) {
	m := start(t, "/")
	require.Empty(t, m.Session().Flash())

	m, effects := Update(m, ui.RouteRequested{Route: route.Unknown("x")})
	assert.Equal(t, "Unknown route requested: x", m.Session().Flash())
	assert.Len(t, effectsOf[StoreRecord](effects), 1)

	m, effects = Update(m, ui.RouteRequested{Route: route.Unknown("x")})
	assert.Equal(t, "Unknown route requested: x", m.Session().Flash())
	assert.Empty(t, effectsOf[StoreRecord](effects), "unchanged record is not rewritten")
	assert.Empty(t, effectsOf[PushURL](effects))
}

func TestRouteRequestedPushesCanonicalPath(t *testing.T) {
	m := start(t, "/")
	m2, effects := Update(m, ui.RouteRequested{Route: route.Message("my box", "42")})
	assert.Equal(t, []Effect{PushURL{URL: "/mailbox/my%20box/42"}}, effects)
	assert.Equal(t, m.Page(), m2.Page(), "page changes only when the URL does")
}

func TestLinkClicked(t *testing.T) {
	m := start(t, "/")
	tests := []struct {
		url  string
		want Effect
	}{
		{"/mailbox/swaks", PushURL{URL: "/mailbox/swaks"}},
		{Origin + "/status", PushURL{URL: Origin + "/status"}},
		{"https://example.com/verify", LoadURL{URL: "https://example.com/verify"}},
		{"mailto:someone@example.com", LoadURL{URL: "mailto:someone@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, effects := Update(m, ui.LinkClicked{URL: tt.url})
			assert.Equal(t, []Effect{tt.want}, effects)
		})
	}
}

func TestMailboxSwitch(t *testing.T) {
	m := start(t, "/")

	m, effects := Update(m, MailboxInputChanged{Value: "swa"})
	assert.Equal(t, "swa", m.MailboxInput())
	assert.Empty(t, effects)

	m, effects = Update(m, MailboxSubmitted{Name: "  swaks "})
	assert.Equal(t, "", m.MailboxInput())
	assert.Equal(t, []Effect{PushURL{URL: "/mailbox/swaks"}}, effects)
	assert.Equal(t, ui.PageHome, m.Page().Kind())

	m, _ = Update(m, MailboxInputChanged{Value: "   "})
	m, effects = Update(m, MailboxSubmitted{Name: "   "})
	assert.Empty(t, effects, "blank submit is ignored")
	assert.Equal(t, "   ", m.MailboxInput())
}

func TestSessionUpdated(t *testing.T) {
	m := start(t, "/")

	m, _ = Update(m, SessionUpdated{Raw: []byte(`{"version":"1","recentMailboxes":["a","b"]}`)})
	assert.Equal(t, []string{"a", "b"}, m.Session().RecentMailboxes())
	assert.Empty(t, m.Session().Flash())

	m, effects := Update(m, SessionUpdated{Raw: []byte(`garbage`)})
	assert.Equal(t, []string{"a", "b"}, m.Session().RecentMailboxes(), "failed decode keeps the record")
	assert.True(t, strings.HasPrefix(m.Session().Flash(), "Failed to decode session update: "))
	assert.Len(t, effectsOf[StoreRecord](effects), 1)
	assert.Equal(t, ui.PageHome, m.Page().Kind())
}

func TestFlashDismissed(t *testing.T) {
	m := start(t, "/bogus")
	require.NotEmpty(t, m.Session().Flash())

	m, effects := Update(m, FlashDismissed{})
	assert.Empty(t, m.Session().Flash())
	assert.Len(t, effectsOf[StoreRecord](effects), 1)

	_, effects = Update(m, FlashDismissed{})
	assert.Empty(t, effects)
}

func TestStalePageMsgIsDiscarded(t *testing.T) {
	m := start(t, "/")

	m2, effects := Update(m, PageMsg{Kind: ui.PageMailbox, Msg: runes("D")})
	assert.Empty(t, effects)
	assert.Equal(t, m.Page(), m2.Page())
	assert.Equal(t, m.Session(), m2.Session())
}

func TestActivePageMsgIsDispatched(t *testing.T) {
	m := start(t, "/")
	m, _ = Update(m, SessionUpdated{Raw: []byte(`{"version":"1","recentMailboxes":["swaks"]}`)})

	_, effects := Update(m, PageMsg{Kind: ui.PageHome, Msg: runes("1")})
	cmds := effectsOf[PageCommand](effects)
	require.Len(t, cmds, 1)
	assert.Equal(t, ui.RouteRequested{Route: route.Mailbox("swaks")}, cmds[0].Cmd())
}

func TestWindowSizeReachesEnvAndPage(t *testing.T) {
	m := start(t, "/")
	m, _ = Update(m, tea.WindowSizeMsg{Width: 150, Height: 50})
	assert.Equal(t, 150, m.Env().Width)
	assert.Equal(t, 50, m.Env().Height)
}

func TestOnePageActiveAcrossTransitions(t *testing.T) {
	m := start(t, "/")
	stops := 0
	for _, url := range []string{"/monitor", "/monitor", "/mailbox/a", "/monitor", "/x", "/status", "/"} {
		wasMonitor := m.Page().Kind() == ui.PageMonitor
		var effects []Effect
		m, effects = Update(m, URLChanged{URL: url})
		n := len(effectsOf[SocketControl](effects))
		if wasMonitor {
			assert.Equal(t, 1, n, "leaving monitor for %s", url)
		} else {
			assert.Equal(t, 0, n, "not on monitor before %s", url)
		}
		stops += n
		require.NotNil(t, m.Page())
	}
	assert.Equal(t, 4, stops)
}
