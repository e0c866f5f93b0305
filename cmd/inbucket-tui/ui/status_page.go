package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grptx/inbucket/internal/inbucket"
	"github.com/grptx/inbucket/internal/session"
)

// metricRows are the expvar values shown on the status page.
var metricRows = []struct {
	label string
	path  []string
}{
	{"SMTP connections (current)", []string{"smtp", "ConnectsCurrent"}},
	{"SMTP connections (total)", []string{"smtp", "ConnectsTotal"}},
	{"Messages received", []string{"smtp", "ReceivedTotal"}},
	{"SMTP errors", []string{"smtp", "ErrorsTotal"}},
	{"SMTP warnings", []string{"smtp", "WarnsTotal"}},
	{"Retained messages", []string{"retention", "RetainedCurrent"}},
	{"Retained bytes", []string{"retention", "RetainedSize"}},
	{"Retention deletes", []string{"retention", "DeletesTotal"}},
	{"Goroutines", []string{"goroutines"}},
}

// StatusPageModel shows server configuration and live metrics.
type StatusPageModel struct {
	env     Env
	id      int
	spinner spinner.Model
	loading bool
	status  *inbucket.ServerStatus
}

type statusLoadedMsg struct {
	id     int
	status *inbucket.ServerStatus
	err    error
}

type statusTickMsg struct {
	id int
}

func NewStatusPageModel(env Env) (StatusPageModel, tea.Cmd) {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = env.Styles.Spinner

	m := StatusPageModel{env: env, id: nextID(), spinner: sp, loading: true}
	return m, tea.Batch(m.spinner.Tick, m.fetch())
}

func (m StatusPageModel) Kind() PageKind { return PageStatus }

func (m StatusPageModel) Subscriptions() tea.Cmd {
	id := m.id
	return tickCmd(m.env.StatusRefresh, func() tea.Msg { return statusTickMsg{id: id} })
}

func (m StatusPageModel) fetch() tea.Cmd {
	env, id := m.env, m.id
	return func() tea.Msg {
		ctx, cancel := env.context()
		defer cancel()
		status, err := env.API.Status(ctx)
		return statusLoadedMsg{id: id, status: status, err: err}
	}
}

func (m StatusPageModel) Update(sess session.Session, msg tea.Msg) (StatusPageModel, tea.Cmd, session.Intent) {
	switch msg := msg.(type) {
	case statusLoadedMsg:
		if msg.id != m.id {
			return m, nil, session.None()
		}
		m.loading = false
		if msg.err != nil {
			return m, nil, session.SetFlash(fmt.Sprintf("Failed to load server status: %v", msg.err))
		}
		m.status = msg.status
		return m, nil, session.None()

	case statusTickMsg:
		if msg.id != m.id {
			return m, nil, session.None()
		}
		return m, tea.Batch(m.fetch(), m.Subscriptions()), session.None()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil, session.None()
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd, session.None()

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetch()), session.None()
		}
	}
	return m, nil, session.None()
}

func (m StatusPageModel) View(sess session.Session) (string, string) {
	s := m.env.Styles
	if m.status == nil {
		if m.loading {
			return "Status", m.spinner.View() + " " + s.Muted.Render("Loading server status...")
		}
		return "Status", s.Muted.Render("Server status unavailable. Press r to retry.")
	}

	cfg := m.status.Config
	server := NewSimpleTable("Server")
	server.AddRow("Version", orDash(cfg.Version))
	server.AddRow("Build date", orDash(cfg.BuildDate))
	server.AddRow("SMTP listener", orDash(cfg.SMTPConfig.Addr))
	server.AddRow("POP3 listener", orDash(cfg.POP3Listener))
	server.AddRow("HTTP listener", orDash(cfg.WebListener))

	smtp := NewSimpleTable("SMTP policy")
	smtp.AddRow("Accept by default", yesNo(cfg.SMTPConfig.DefaultAccept))
	smtp.AddRow("Accept domains", joinOrDash(cfg.SMTPConfig.AcceptDomains))
	smtp.AddRow("Reject domains", joinOrDash(cfg.SMTPConfig.RejectDomains))
	smtp.AddRow("Store by default", yesNo(cfg.SMTPConfig.DefaultStore))
	smtp.AddRow("Store domains", joinOrDash(cfg.SMTPConfig.StoreDomains))
	smtp.AddRow("Discard domains", joinOrDash(cfg.SMTPConfig.DiscardDomains))

	storage := NewSimpleTable("Storage")
	storage.AddRow("Type", orDash(cfg.StorageConfig.Type))
	storage.AddRow("Mailbox cap", fmt.Sprintf("%d", cfg.StorageConfig.MailboxMsgCap))
	storage.AddRow("Retention period", orDash(cfg.StorageConfig.RetentionPeriod))
	storage.AddRow("Retention scan", orDash(cfg.StorageConfig.RetentionScanPeriod))

	metrics := NewSimpleTable("Metrics")
	for _, row := range metricRows {
		v, ok := m.status.Metrics.Lookup(row.path...)
		if !ok {
			v = "-"
		}
		metrics.AddRow(row.label, v)
	}

	var sb strings.Builder
	for _, t := range []*SimpleTable{server, smtp, storage, metrics} {
		sb.WriteString(t.View(s))
		sb.WriteString("\n")
	}
	return "Status", strings.TrimRight(sb.String(), "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
