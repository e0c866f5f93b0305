package shell

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grptx/inbucket/cmd/inbucket-tui/ui"
	"github.com/grptx/inbucket/internal/route"
	"github.com/grptx/inbucket/internal/session"
)

// initPage builds the page for r. The returned command includes the page's
// subscriptions. r must not be Unknown.
func initPage(env ui.Env, r route.Route) (ui.Page, tea.Cmd) {
	switch r.Kind {
	case route.KindMailbox:
		p, cmd := ui.NewMailboxPageModel(env, r.Mailbox, "")
		return p, tea.Batch(cmd, p.Subscriptions())
	case route.KindMessage:
		p, cmd := ui.NewMailboxPageModel(env, r.Mailbox, r.ID)
		return p, tea.Batch(cmd, p.Subscriptions())
	case route.KindMonitor:
		p, cmd := ui.NewMonitorPageModel(env)
		return p, tea.Batch(cmd, p.Subscriptions())
	case route.KindStatus:
		p, cmd := ui.NewStatusPageModel(env)
		return p, tea.Batch(cmd, p.Subscriptions())
	default:
		return ui.NewHomePageModel(env)
	}
}

func updatePage(page ui.Page, sess session.Session, msg tea.Msg) (ui.Page, tea.Cmd, session.Intent) {
	switch p := page.(type) {
	case ui.HomePageModel:
		return p.Update(sess, msg)
	case ui.MailboxPageModel:
		return p.Update(sess, msg)
	case ui.MonitorPageModel:
		return p.Update(sess, msg)
	case ui.StatusPageModel:
		return p.Update(sess, msg)
	}
	return page, nil, session.None()
}

func viewPage(page ui.Page, sess session.Session) (string, string) {
	switch p := page.(type) {
	case ui.HomePageModel:
		return p.View(sess)
	case ui.MailboxPageModel:
		return p.View(sess)
	case ui.MonitorPageModel:
		return p.View(sess)
	case ui.StatusPageModel:
		return p.View(sess)
	}
	return "", ""
}
