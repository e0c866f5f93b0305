package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/grptx/inbucket/internal/inbucket"
	"github.com/grptx/inbucket/internal/route"
	"github.com/grptx/inbucket/internal/session"
)

const defaultMonitorRows = 500

type feedState int

const (
	feedConnecting feedState = iota
	feedConnected
	feedDisconnected
)

// MonitorPageModel shows messages as the server receives them. It starts the
// live feed itself; stopping it is left to whoever navigates away.
type MonitorPageModel struct {
	env     Env
	id      int
	state   feedState
	lastErr error
	entries []inbucket.MessageHeader
	cursor  int
}

type monitorStartedMsg struct {
	id int
}

type monitorEventMsg struct {
	id    int
	event inbucket.MonitorEvent
}

// NewMonitorPageModel returns a command that starts the feed.
func NewMonitorPageModel(env Env) (MonitorPageModel, tea.Cmd) {
	m := MonitorPageModel{env: env, id: nextID()}
	return m, m.start(false)
}

func (m MonitorPageModel) start(restart bool) tea.Cmd {
	feed, id := m.env.Feed, m.id
	if feed == nil {
		return nil
	}
	return func() tea.Msg {
		if restart {
			feed.Control(false)
		}
		feed.Control(true)
		return monitorStartedMsg{id: id}
	}
}

func (m MonitorPageModel) Kind() PageKind { return PageMonitor }

// Subscriptions waits for the next feed event.
func (m MonitorPageModel) Subscriptions() tea.Cmd {
	feed, id := m.env.Feed, m.id
	if feed == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-feed.Events()
		if !ok {
			return nil
		}
		return monitorEventMsg{id: id, event: ev}
	}
}

func (m MonitorPageModel) Update(sess session.Session, msg tea.Msg) (MonitorPageModel, tea.Cmd, session.Intent) {
	switch msg := msg.(type) {
	case monitorStartedMsg:
		return m, nil, session.None()

	case monitorEventMsg:
		// The feed is shared, so an event read by a replaced page's
		// subscription still belongs here. Only our own subscription re-arms.
		m.apply(msg.event)
		if msg.id != m.id {
			return m, nil, session.None()
		}
		return m, m.Subscriptions(), session.None()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.entries) {
				h := m.entries[m.cursor]
				return m, routeCmd(route.Message(h.Mailbox, h.ID)), session.None()
			}
		case "c":
			m.entries = nil
			m.cursor = 0
		case "r":
			m.state = feedConnecting
			m.lastErr = nil
			return m, m.start(true), session.None()
		}
	}
	return m, nil, session.None()
}

func (m *MonitorPageModel) apply(ev inbucket.MonitorEvent) {
	switch ev.Kind {
	case inbucket.MonitorConnected:
		m.state = feedConnected
		m.lastErr = nil
	case inbucket.MonitorDisconnected:
		m.state = feedDisconnected
		m.lastErr = ev.Err
	case inbucket.MonitorMessage:
		limit := m.env.MaxMonitorRows
		if limit <= 0 {
			limit = defaultMonitorRows
		}
		m.entries = append([]inbucket.MessageHeader{ev.Header}, m.entries...)
		if len(m.entries) > limit {
			m.entries = m.entries[:limit]
		}
		// At the top the highlight follows the newest message; further down it
		// stays on the message it was on.
		if m.cursor > 0 && m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	}
}

func (m MonitorPageModel) View(sess session.Session) (string, string) {
	s := m.env.Styles
	var sb strings.Builder

	switch m.state {
	case feedConnecting:
		sb.WriteString(s.Muted.Render("Connecting to live feed..."))
	case feedConnected:
		sb.WriteString(s.Success.Render("● Connected") + s.Muted.Render("  waiting for new messages"))
	case feedDisconnected:
		line := s.Error.Render("● Disconnected")
		if m.lastErr != nil {
			line += s.Muted.Render("  " + m.lastErr.Error())
		}
		sb.WriteString(line + s.Muted.Render("  (r to reconnect)"))
	}
	sb.WriteString("\n\n")

	if len(m.entries) == 0 {
		sb.WriteString(s.Muted.Render("No messages received since the monitor opened."))
		return "Monitor", sb.String()
	}

	t := NewSimpleTable(fmt.Sprintf("%d received", len(m.entries)), "Date", "Mailbox", "From", "Subject")
	t.MaxCell = 40

	// Only the rows that fit are rendered, keeping the cursor visible.
	visible := clampMin(m.env.Layout().ContentHeight()-4, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.entries) {
		end = len(m.entries)
	}
	for _, h := range m.entries[start:end] {
		t.AddRow(h.Date.Local().Format("15:04:05"), h.Mailbox, h.From, h.Subject)
	}
	t.Highlight = m.cursor - start
	sb.WriteString(strings.TrimRight(t.View(s), "\n"))
	return "Monitor", sb.String()
}
