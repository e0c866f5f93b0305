package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grptx/inbucket/internal/inbucket"
	"github.com/grptx/inbucket/internal/route"
	"github.com/grptx/inbucket/internal/session"
)

// HomePageModel shows the server greeting and the recently opened mailboxes.
type HomePageModel struct {
	env     Env
	spinner spinner.Model

	loading  bool
	markdown string // greeting before rendering
	greeting string
	err      error
	cursor   int
}

type greetingMsg struct {
	html string
	err  error
}

// NewHomePageModel fetches the server greeting unless one is configured.
func NewHomePageModel(env Env) (HomePageModel, tea.Cmd) {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = env.Styles.Spinner

	m := HomePageModel{env: env, spinner: sp}
	if env.Greeting != "" {
		m.markdown = env.Greeting
		m.render()
		return m, nil
	}

	m.loading = true
	return m, tea.Batch(m.spinner.Tick, fetchGreeting(env))
}

func fetchGreeting(env Env) tea.Cmd {
	return func() tea.Msg {
		if env.API == nil {
			return greetingMsg{err: fmt.Errorf("no server configured")}
		}
		ctx, cancel := env.context()
		defer cancel()
		html, err := env.API.Greeting(ctx)
		return greetingMsg{html: html, err: err}
	}
}

func (m HomePageModel) Kind() PageKind { return PageHome }

func (m HomePageModel) Update(sess session.Session, msg tea.Msg) (HomePageModel, tea.Cmd, session.Intent) {
	recent := sess.RecentMailboxes()
	// Another client may have shortened the list.
	if m.cursor >= len(recent) && m.cursor > 0 {
		m.cursor = len(recent) - 1
		if m.cursor < 0 {
			m.cursor = 0
		}
	}

	switch msg := msg.(type) {
	case greetingMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil, session.None()
		}
		m.markdown = inbucket.HTMLToText(msg.html)
		m.render()
		return m, nil, session.None()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil, session.None()
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd, session.None()

	case tea.WindowSizeMsg:
		m.env.Width, m.env.Height = msg.Width, msg.Height
		m.render()
		return m, nil, session.None()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(recent)-1 {
				m.cursor++
			}
		case "enter":
			if name, ok := pick(recent, m.cursor); ok {
				return m, routeCmd(route.Mailbox(name)), session.None()
			}
		case "1", "2", "3", "4", "5", "6", "7":
			if name, ok := pick(recent, int(msg.String()[0]-'1')); ok {
				return m, routeCmd(route.Mailbox(name)), session.None()
			}
		}
	}
	return m, nil, session.None()
}

func pick(list []string, i int) (string, bool) {
	if i < 0 || i >= len(list) {
		return "", false
	}
	return list[i], true
}

func (m *HomePageModel) render() {
	if m.markdown == "" {
		m.greeting = ""
		return
	}
	m.greeting = renderMarkdown(m.markdown, m.env.Layout().ContentWidth(), m.env.Styles.Theme.IsDark)
}

func (m HomePageModel) View(sess session.Session) (string, string) {
	s := m.env.Styles
	var sb strings.Builder

	switch {
	case m.loading:
		sb.WriteString(m.spinner.View() + " " + s.Muted.Render("Loading greeting..."))
	case m.err != nil:
		sb.WriteString(s.Warning.Render("Greeting unavailable: ") + s.Muted.Render(m.err.Error()))
	case m.greeting != "":
		sb.WriteString(m.greeting)
	default:
		sb.WriteString(s.Title.Render("Welcome to Inbucket"))
	}
	sb.WriteString("\n\n")

	recent := sess.RecentMailboxes()
	sb.WriteString(s.Bold.Render("Recent mailboxes"))
	sb.WriteString("\n")
	if len(recent) == 0 {
		sb.WriteString(s.Muted.Render("  None yet. Press / to open a mailbox."))
		return "Inbucket", sb.String()
	}

	cursor := m.cursor
	if cursor >= len(recent) {
		cursor = len(recent) - 1
	}
	for i, name := range recent {
		line := fmt.Sprintf("%d. %s", i+1, name)
		if i == cursor {
			sb.WriteString(s.Selected.Render("> " + line))
		} else {
			sb.WriteString("  " + s.Body.Render(line))
		}
		sb.WriteString("\n")
	}
	return "Inbucket", strings.TrimRight(sb.String(), "\n")
}
