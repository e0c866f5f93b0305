package shell

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grptx/inbucket/cmd/inbucket-tui/ui"
	"github.com/grptx/inbucket/internal/session"
)

// URLChanged reports that the current location changed, either because the
// shell pushed it or because the user moved through history.
type URLChanged struct {
	URL string
}

// SessionUpdated carries a raw record read back from the store.
type SessionUpdated struct {
	Raw []byte
}

type MailboxInputChanged struct {
	Value string
}

type MailboxSubmitted struct {
	Name string
}

type FlashDismissed struct{}

// PageMsg is a message produced by a page's command, tagged with the kind of
// page that issued it.
type PageMsg struct {
	Kind ui.PageKind
	Msg  tea.Msg
}

// Effect is a side effect requested by Update. The runtime executes them in
// order.
type Effect interface {
	effect()
}

// PushURL moves to url inside the application.
type PushURL struct {
	URL string
}

// LoadURL leaves the application for url.
type LoadURL struct {
	URL string
}

// StoreRecord writes the record to the shared store, fire-and-forget.
type StoreRecord struct {
	Record session.Record
}

// SocketControl starts (true) or stops (false) the live feed.
type SocketControl struct {
	Run bool
}

// PageCommand runs a page's command; its results come back as PageMsg.
type PageCommand struct {
	Kind ui.PageKind
	Cmd  tea.Cmd
}

func (PushURL) effect()       {}
func (LoadURL) effect()       {}
func (StoreRecord) effect()   {}
func (SocketControl) effect() {}
func (PageCommand) effect()   {}
