package ui

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/grptx/inbucket/internal/inbucket"
	"github.com/grptx/inbucket/internal/route"
	"github.com/grptx/inbucket/internal/session"
)

const messageHeaderLines = 5

type mailboxFocus int

const (
	focusList mailboxFocus = iota
	focusMessage
)

// MailboxPageModel lists one mailbox and shows the selected message below it.
type MailboxPageModel struct {
	env  Env
	id   int
	name string

	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model
	focus    mailboxFocus

	headers      []inbucket.MessageHeader
	listed       bool
	loading      bool
	selectedID   string
	message      *inbucket.Message
	links        []string
	confirmPurge bool
	notice       string
}

type mailboxListedMsg struct {
	id      int
	headers []inbucket.MessageHeader
	err     error
}

type messageLoadedMsg struct {
	id        int
	messageID string
	message   *inbucket.Message
	err       error
}

type messageDeletedMsg struct {
	id        int
	messageID string
	err       error
}

type mailboxPurgedMsg struct {
	id  int
	err error
}

type mailboxTickMsg struct {
	id int
}

// NewMailboxPageModel lists mailbox name and, when messageID is set, opens
// that message as well.
func NewMailboxPageModel(env Env, name, messageID string) (MailboxPageModel, tea.Cmd) {
	t := table.New(
		table.WithColumns(mailboxColumns(env.Layout().ContentWidth())),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = env.Styles.Spinner

	m := MailboxPageModel{
		env:        env,
		id:         nextID(),
		name:       name,
		table:      t,
		viewport:   viewport.New(80, 10),
		spinner:    sp,
		loading:    true,
		selectedID: messageID,
	}
	m.resize()

	cmds := []tea.Cmd{m.spinner.Tick, m.list()}
	if messageID != "" {
		m.focus = focusMessage
		cmds = append(cmds, m.load(messageID))
	}
	return m, tea.Batch(cmds...)
}

func mailboxColumns(width int) []table.Column {
	from, date, size := 26, 16, 9
	subject := width - from - date - size - 8
	if subject < 12 {
		subject = 12
	}
	return []table.Column{
		{Title: "From", Width: from},
		{Title: "Subject", Width: subject},
		{Title: "Date", Width: date},
		{Title: "Size", Width: size},
	}
}

func (m MailboxPageModel) Kind() PageKind { return PageMailbox }

// Name returns the mailbox shown by the page.
func (m MailboxPageModel) Name() string { return m.name }

// Subscriptions refreshes the listing periodically.
func (m MailboxPageModel) Subscriptions() tea.Cmd {
	id := m.id
	return tickCmd(m.env.MailboxRefresh, func() tea.Msg { return mailboxTickMsg{id: id} })
}

func (m MailboxPageModel) list() tea.Cmd {
	env, id, name := m.env, m.id, m.name
	return func() tea.Msg {
		ctx, cancel := env.context()
		defer cancel()
		headers, err := env.API.ListMailbox(ctx, name)
		return mailboxListedMsg{id: id, headers: headers, err: err}
	}
}

func (m MailboxPageModel) load(messageID string) tea.Cmd {
	env, id, name := m.env, m.id, m.name
	return func() tea.Msg {
		ctx, cancel := env.context()
		defer cancel()
		msg, err := env.API.GetMessage(ctx, name, messageID)
		return messageLoadedMsg{id: id, messageID: messageID, message: msg, err: err}
	}
}

func (m MailboxPageModel) remove(messageID string) tea.Cmd {
	env, id, name := m.env, m.id, m.name
	return func() tea.Msg {
		ctx, cancel := env.context()
		defer cancel()
		return messageDeletedMsg{id: id, messageID: messageID, err: env.API.DeleteMessage(ctx, name, messageID)}
	}
}

func (m MailboxPageModel) purge() tea.Cmd {
	env, id, name := m.env, m.id, m.name
	return func() tea.Msg {
		ctx, cancel := env.context()
		defer cancel()
		return mailboxPurgedMsg{id: id, err: env.API.PurgeMailbox(ctx, name)}
	}
}

// follow moves the URL to r without rebuilding the page.
func (m MailboxPageModel) follow(r route.Route) (tea.Cmd, session.Intent) {
	path, _ := r.Path()
	return linkCmd(path), session.DisableRouting()
}

func (m MailboxPageModel) Update(sess session.Session, msg tea.Msg) (MailboxPageModel, tea.Cmd, session.Intent) {
	switch msg := msg.(type) {
	case mailboxListedMsg:
		if msg.id != m.id {
			return m, nil, session.None()
		}
		m.loading = false
		if msg.err != nil {
			return m, nil, session.SetFlash(fmt.Sprintf("Failed to load mailbox %s: %v", m.name, msg.err))
		}
		m.setHeaders(msg.headers)
		if !m.listed {
			m.listed = true
			return m, nil, session.AddRecent(m.name)
		}
		return m, nil, session.None()

	case messageLoadedMsg:
		if msg.id != m.id || msg.messageID != m.selectedID {
			return m, nil, session.None()
		}
		if msg.err != nil {
			m.message = nil
			return m, nil, session.SetFlash(fmt.Sprintf("Failed to load message %s: %v", msg.messageID, msg.err))
		}
		m.message = msg.message
		m.links = inbucket.Links(msg.message.Body.HTML)
		m.viewport.SetContent(inbucket.BodyText(msg.message))
		m.viewport.GotoTop()
		m.resize()
		return m, nil, session.None()

	case messageDeletedMsg:
		if msg.id != m.id {
			return m, nil, session.None()
		}
		if msg.err != nil {
			return m, nil, session.SetFlash(fmt.Sprintf("Failed to delete message %s: %v", msg.messageID, msg.err))
		}
		kept := m.headers[:0:0]
		for _, h := range m.headers {
			if h.ID != msg.messageID {
				kept = append(kept, h)
			}
		}
		m.setHeaders(kept)
		m.notice = "Deleted message " + msg.messageID
		if m.selectedID == msg.messageID {
			m.closeMessage()
			cmd, intent := m.follow(route.Mailbox(m.name))
			return m, cmd, intent
		}
		return m, nil, session.None()

	case mailboxPurgedMsg:
		if msg.id != m.id {
			return m, nil, session.None()
		}
		if msg.err != nil {
			return m, nil, session.SetFlash(fmt.Sprintf("Failed to purge mailbox %s: %v", m.name, msg.err))
		}
		m.setHeaders(nil)
		m.notice = "Mailbox purged"
		if m.selectedID != "" {
			m.closeMessage()
			cmd, intent := m.follow(route.Mailbox(m.name))
			return m, cmd, intent
		}
		return m, nil, session.None()

	case mailboxTickMsg:
		if msg.id != m.id {
			return m, nil, session.None()
		}
		return m, tea.Batch(m.list(), m.Subscriptions()), session.None()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil, session.None()
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd, session.None()

	case tea.WindowSizeMsg:
		m.env.Width, m.env.Height = msg.Width, msg.Height
		m.table.SetColumns(mailboxColumns(m.env.Layout().ContentWidth()))
		m.resize()
		return m, nil, session.None()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil, session.None()
}

func (m MailboxPageModel) handleKey(msg tea.KeyMsg) (MailboxPageModel, tea.Cmd, session.Intent) {
	key := msg.String()
	if key != "P" {
		m.confirmPurge = false
	}

	switch key {
	case "r":
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.list()), session.None()

	case "P":
		if !m.confirmPurge {
			m.confirmPurge = true
			return m, nil, session.None()
		}
		m.confirmPurge = false
		return m, m.purge(), session.None()

	case "D":
		if id := m.targetID(); id != "" {
			return m, m.remove(id), session.None()
		}
		return m, nil, session.None()

	case "o":
		if id := m.targetID(); id != "" && m.env.BaseURL != "" {
			return m, linkCmd(m.env.BaseURL + "/m/" + url.PathEscape(m.name) + "/" + url.PathEscape(id)), session.None()
		}
		return m, nil, session.None()

	case "tab":
		if m.message != nil {
			if m.focus == focusList {
				m.focus = focusMessage
			} else {
				m.focus = focusList
			}
		}
		return m, nil, session.None()
	}

	if m.focus == focusMessage {
		switch key {
		case "esc", "backspace":
			m.closeMessage()
			cmd, intent := m.follow(route.Mailbox(m.name))
			return m, cmd, intent
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			if link, ok := pick(m.links, int(key[0]-'1')); ok {
				return m, linkCmd(link), session.None()
			}
			return m, nil, session.None()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, session.None()
	}

	if key == "enter" {
		if h, ok := m.cursorHeader(); ok {
			m.selectedID = h.ID
			m.message = nil
			m.links = nil
			m.focus = focusMessage
			m.resize()
			follow, intent := m.follow(route.Message(m.name, h.ID))
			return m, tea.Batch(follow, m.load(h.ID)), intent
		}
		return m, nil, session.None()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd, session.None()
}

// targetID is the open message, or the highlighted row when none is open.
func (m MailboxPageModel) targetID() string {
	if m.selectedID != "" {
		return m.selectedID
	}
	if h, ok := m.cursorHeader(); ok {
		return h.ID
	}
	return ""
}

func (m MailboxPageModel) cursorHeader() (inbucket.MessageHeader, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.headers) {
		return inbucket.MessageHeader{}, false
	}
	return m.headers[i], true
}

func (m *MailboxPageModel) closeMessage() {
	m.selectedID = ""
	m.message = nil
	m.links = nil
	m.focus = focusList
	m.resize()
}

// setHeaders replaces the listing newest first, keeping the cursor on the
// same message when it is still present.
func (m *MailboxPageModel) setHeaders(headers []inbucket.MessageHeader) {
	var current string
	if h, ok := m.cursorHeader(); ok {
		current = h.ID
	}

	sorted := append([]inbucket.MessageHeader(nil), headers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	m.headers = sorted

	rows := make([]table.Row, 0, len(sorted))
	cursor := 0
	for i, h := range sorted {
		if h.ID == current || (current == "" && h.ID == m.selectedID) {
			cursor = i
		}
		rows = append(rows, table.Row{
			h.From,
			h.Subject,
			h.Date.Local().Format("2006-01-02 15:04"),
			humanize.Bytes(uint64(h.Size)),
		})
	}
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
}

func (m *MailboxPageModel) resize() {
	layout := m.env.Layout()
	height := layout.ContentHeight() - 2 // title and notice rows
	if m.selectedID == "" {
		m.table.SetHeight(clampMin(height, 3))
		return
	}

	top, bottom := SplitHeights(height, 0.35)
	m.table.SetHeight(clampMin(top, 3))
	m.viewport.Width = layout.ContentWidth()
	m.viewport.Height = clampMin(bottom-messageHeaderLines-min(len(m.links), 9), 3)
}

func (m MailboxPageModel) View(sess session.Session) (string, string) {
	s := m.env.Styles
	title := "Mailbox: " + m.name
	var sb strings.Builder

	status := fmt.Sprintf("%d messages", len(m.headers))
	if m.loading {
		status = m.spinner.View() + " loading"
	}
	if m.confirmPurge {
		status = s.Warning.Render("Press P again to purge " + m.name)
	} else if m.notice != "" {
		status += "  " + s.Muted.Render(m.notice)
	}
	sb.WriteString(status + "\n")

	if len(m.headers) == 0 && !m.loading {
		sb.WriteString(s.Muted.Render("This mailbox is empty."))
	} else {
		sb.WriteString(m.table.View())
	}

	if m.selectedID == "" {
		return title, sb.String()
	}

	width := m.env.Layout().ContentWidth()
	sb.WriteString("\n" + s.RenderDivider(width) + "\n")
	if m.message == nil {
		sb.WriteString(s.Muted.Render("Loading message " + m.selectedID + "..."))
		return title, sb.String()
	}

	msg := m.message
	field := func(label, value string) {
		sb.WriteString(s.Bold.Render(fmt.Sprintf("%-8s", label)) + " " + value + "\n")
	}
	field("From:", msg.From)
	field("To:", strings.Join(msg.To, ", "))
	field("Date:", msg.Date.Local().Format("Mon, 02 Jan 2006 15:04:05 MST"))
	field("Subject:", msg.Subject)
	if len(msg.Attachments) > 0 {
		names := make([]string, 0, len(msg.Attachments))
		for _, a := range msg.Attachments {
			names = append(names, a.Filename)
		}
		field("Files:", strings.Join(names, ", "))
	} else {
		sb.WriteString("\n")
	}
	sb.WriteString(m.viewport.View())

	for i, link := range m.links {
		if i == 9 {
			break
		}
		sb.WriteString("\n" + s.Muted.Render(fmt.Sprintf("[%d] ", i+1)) + s.Info.Render(link))
	}
	return title, sb.String()
}
