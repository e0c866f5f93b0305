package shell

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/grptx/inbucket/cmd/inbucket-tui/ui"
)

var navEntries = []struct {
	kind  ui.PageKind
	label string
}{
	{ui.PageHome, "Home"},
	{ui.PageMailbox, "Mailbox"},
	{ui.PageMonitor, "Monitor"},
	{ui.PageStatus, "Status"},
}

func (p *Program) View() string {
	env := p.core.Env()
	s := env.Styles
	sess := p.core.Session()
	active := p.core.Page().Kind()

	header := s.Header.Render("Inbucket")
	if p.serverURL != "" {
		header += " " + s.Muted.Render(p.serverURL)
	}

	var nav []string
	for _, e := range navEntries {
		label := e.label
		if e.kind == ui.PageMailbox {
			mb, ok := p.core.Page().(ui.MailboxPageModel)
			if !ok {
				continue
			}
			label = "Mailbox: " + mb.Name()
		}
		if e.kind == active {
			nav = append(nav, s.NavActive.Render(label))
		} else {
			nav = append(nav, s.NavItem.Render(label))
		}
	}

	input := s.Prompt.Render("Open mailbox ") + p.input.View()

	flash := ""
	if text := sess.Flash(); text != "" {
		flash = s.Flash.Render(text) + s.Muted.Render("  x to dismiss")
	}

	title, content := viewPage(p.core.Page(), sess)
	body := s.Content.Render(s.Title.Render(title) + "\n" + content)

	footer := s.Footer.Render(p.help.View(p.keys))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		strings.Join(nav, s.Muted.Render("|")),
		input,
		flash,
		body,
		footer,
	)
}
