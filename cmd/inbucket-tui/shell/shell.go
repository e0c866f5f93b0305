// Package shell is the root of the terminal client. Update is a pure
// function from (Model, message) to (Model, effects); Program runs it inside
// Bubble Tea and carries out the effects.
package shell

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/grptx/inbucket/cmd/inbucket-tui/ui"
	"github.com/grptx/inbucket/internal/logging"
	"github.com/grptx/inbucket/internal/route"
	"github.com/grptx/inbucket/internal/session"
)

// Model is the whole application state. It is a value; Update returns a new
// one.
type Model struct {
	page         ui.Page
	session      session.Session
	mailboxInput string
	env          ui.Env
}

func (m Model) Page() ui.Page            { return m.page }
func (m Model) Session() session.Session { return m.session }
func (m Model) MailboxInput() string     { return m.mailboxInput }
func (m Model) Env() ui.Env              { return m.env }

// Init enters the page for startURL through the same transition as any
// later URL change. An unknown start URL lands on Home with a flash.
func Init(env ui.Env, sess session.Session, startURL string) (Model, []Effect) {
	m := Model{session: sess, env: env}
	before := m.session.Persisted()

	m, effects, intent := transition(m, route.Parse(startURL))
	if m.page == nil {
		page, cmd := initPage(env, route.Home())
		m.page = page
		effects = appendPageCommand(effects, page.Kind(), cmd)
	}
	return settle(m, before, effects, intent)
}

// Update handles one message.
func Update(m Model, msg tea.Msg) (Model, []Effect) {
	before := m.session.Persisted()
	var effects []Effect
	intent := session.None()

	switch msg := msg.(type) {
	case ui.LinkClicked:
		if m.session.IsInternal(msg.URL) {
			effects = append(effects, PushURL{URL: msg.URL})
		} else {
			effects = append(effects, LoadURL{URL: msg.URL})
		}

	case URLChanged:
		if !m.session.RoutingEnabled() {
			logging.RoutingDebug("routing suppressed once for %s", msg.URL)
			intent = session.EnableRouting()
			break
		}
		m, effects, intent = transition(m, route.Parse(msg.URL))

	case ui.RouteRequested:
		if path, ok := msg.Route.Path(); ok {
			effects = append(effects, PushURL{URL: path})
		} else {
			intent = session.SetFlash(unknownRoute(msg.Route))
		}

	case SessionUpdated:
		m.session, intent = m.session.ApplyExternal(msg.Raw)

	case MailboxInputChanged:
		m.mailboxInput = msg.Value

	case MailboxSubmitted:
		name := strings.TrimSpace(msg.Name)
		if name == "" {
			break
		}
		m.mailboxInput = ""
		path, _ := route.Mailbox(name).Path()
		effects = append(effects, PushURL{URL: path})

	case FlashDismissed:
		intent = session.ClearFlash()

	case tea.WindowSizeMsg:
		m.env.Width, m.env.Height = msg.Width, msg.Height
		var cmd tea.Cmd
		m.page, cmd, intent = updatePage(m.page, m.session, msg)
		effects = appendPageCommand(effects, m.page.Kind(), cmd)

	case PageMsg:
		if msg.Kind != m.page.Kind() {
			logging.RoutingDebug("discarding %T for inactive %s page", msg.Msg, msg.Kind)
			return m, nil
		}
		var cmd tea.Cmd
		m.page, cmd, intent = updatePage(m.page, m.session, msg.Msg)
		effects = appendPageCommand(effects, m.page.Kind(), cmd)
	}

	return settle(m, before, effects, intent)
}

// transition makes r the active page. Leaving Monitor always stops the feed,
// even when r is unknown and the page stays.
func transition(m Model, r route.Route) (Model, []Effect, session.Intent) {
	var effects []Effect
	if m.page != nil && m.page.Kind() == ui.PageMonitor {
		effects = append(effects, SocketControl{Run: false})
	}

	if r.Kind == route.KindUnknown {
		logging.Routing("unknown route %q", r.Raw)
		return m, effects, session.SetFlash(unknownRoute(r))
	}

	page, cmd := initPage(m.env, r)
	logging.Routing("entering %s page for %s", page.Kind(), r)
	m.page = page
	return m, appendPageCommand(effects, page.Kind(), cmd), session.None()
}

// settle reduces intent into the session and requests a write when the
// persisted record changed.
func settle(m Model, before session.Record, effects []Effect, intent session.Intent) (Model, []Effect) {
	m.session = m.session.Reduce(intent)
	if after := m.session.Persisted(); !after.Equal(before) {
		logging.SessionDebug("record changed by %s", intent)
		effects = append(effects, StoreRecord{Record: after})
	}
	return m, effects
}

func appendPageCommand(effects []Effect, kind ui.PageKind, cmd tea.Cmd) []Effect {
	if cmd == nil {
		return effects
	}
	return append(effects, PageCommand{Kind: kind, Cmd: cmd})
}

func unknownRoute(r route.Route) string {
	return "Unknown route requested: " + r.Raw
}
