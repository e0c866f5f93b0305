package shell

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grptx/inbucket/cmd/inbucket-tui/ui"
	"github.com/grptx/inbucket/internal/logging"
	"github.com/grptx/inbucket/internal/navigate"
	"github.com/grptx/inbucket/internal/route"
	"github.com/grptx/inbucket/internal/session"
	"github.com/grptx/inbucket/internal/store"
)

// Origin is the origin of the application's own URLs. Links on any other
// origin are opened outside the terminal.
const Origin = "inbucket-tui://local"

// Options configures a Program.
type Options struct {
	Env      ui.Env
	Store    store.KV
	History  *navigate.History
	StartURL string
	// ServerURL is shown in the header.
	ServerURL string
	// Writer tags this process's store writes so their echoes can be
	// ignored. Defaults to the logging instance id.
	Writer string
}

type storeChangedMsg struct {
	raw []byte
}

type storeClosedMsg struct{}

// Program runs the shell inside Bubble Tea and executes its effects.
type Program struct {
	core      Model
	initial   []Effect
	nav       *navigate.History
	feed      ui.MonitorFeed
	persist   *persister
	watch     <-chan []byte
	serverURL string

	input    textinput.Model
	keys     keyMap
	help     help.Model
	showHelp bool

	closeOnce sync.Once
}

// NewProgram loads the stored record, builds the initial page and arms the
// store watch. The watch runs until ctx is cancelled or the store is closed.
func NewProgram(ctx context.Context, opts Options) *Program {
	raw, err := opts.Store.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.StoreError("failed to load session record: %v", err)
		}
		raw = nil
	}

	history := opts.History
	if history == nil {
		history = navigate.NewHistory(opts.StartURL, nil)
	}
	sess := session.New(history, Origin+opts.StartURL, raw)
	logging.Session("session started with %d recent mailboxes", len(sess.RecentMailboxes()))

	core, effects := Init(opts.Env, sess, opts.StartURL)

	watch, err := opts.Store.Watch(ctx)
	if err != nil {
		logging.StoreError("failed to watch store: %v", err)
	}

	writer := opts.Writer
	if writer == "" {
		writer = logging.InstanceID()
	}

	styles := opts.Env.Styles
	ti := textinput.New()
	ti.Placeholder = "mailbox name"
	ti.Prompt = ""
	ti.CharLimit = 128
	ti.Width = 40
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.Body

	h := help.New()
	h.Width = opts.Env.Width

	return &Program{
		core:      core,
		initial:   effects,
		nav:       history,
		feed:      opts.Env.Feed,
		persist:   newPersister(opts.Store, writer),
		watch:     watch,
		serverURL: opts.ServerURL,
		input:     ti,
		keys:      defaultKeyMap(),
		help:      h,
	}
}

// Model returns the current shell state.
func (p *Program) Model() Model {
	return p.core
}

func (p *Program) Init() tea.Cmd {
	effects := p.initial
	p.initial = nil
	return tea.Batch(p.execute(effects), p.waitForStore())
}

func (p *Program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return p, p.handleKey(msg)

	case tea.WindowSizeMsg:
		p.help.Width = msg.Width
		return p, p.dispatch(msg)

	case storeChangedMsg:
		// Our own write coming back may be older than the current record.
		if p.persist.ownWrite(msg.raw) {
			logging.StoreDebug("ignoring echo of own write")
			return p, p.waitForStore()
		}
		logging.AuditResult(logging.AuditRecordExternal, "session", nil)
		return p, tea.Batch(p.dispatch(SessionUpdated{Raw: msg.raw}), p.waitForStore())

	case storeClosedMsg:
		logging.Store("store watch ended")
		return p, nil

	case PageMsg:
		cmd := p.dispatch(msg)
		p.reconcileFeed(msg)
		return p, cmd
	}

	// Cursor blinks and anything else the input widget owns.
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, tea.Batch(cmd, p.dispatch(msg))
}

func (p *Program) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return p.quit()
	}

	if p.input.Focused() {
		switch {
		case key.Matches(msg, p.keys.Submit):
			name := p.input.Value()
			p.input.Blur()
			return p.dispatch(MailboxSubmitted{Name: name})
		case key.Matches(msg, p.keys.Blur):
			p.input.Blur()
			return nil
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return tea.Batch(cmd, p.dispatch(MailboxInputChanged{Value: p.input.Value()}))
	}

	switch {
	case key.Matches(msg, p.keys.Quit):
		return p.quit()
	case key.Matches(msg, p.keys.Focus):
		return p.input.Focus()
	case key.Matches(msg, p.keys.Home):
		return p.dispatch(ui.RouteRequested{Route: route.Home()})
	case key.Matches(msg, p.keys.Monitor):
		return p.dispatch(ui.RouteRequested{Route: route.Monitor()})
	case key.Matches(msg, p.keys.Status):
		return p.dispatch(ui.RouteRequested{Route: route.Status()})
	case key.Matches(msg, p.keys.Back):
		if url, ok := p.nav.Back(); ok {
			return urlChanged(url)
		}
		return nil
	case key.Matches(msg, p.keys.Forward):
		if url, ok := p.nav.Forward(); ok {
			return urlChanged(url)
		}
		return nil
	case key.Matches(msg, p.keys.Dismiss):
		return p.dispatch(FlashDismissed{})
	case key.Matches(msg, p.keys.Help):
		p.showHelp = !p.showHelp
		p.help.ShowAll = p.showHelp
		return nil
	}

	return p.dispatch(PageMsg{Kind: p.core.Page().Kind(), Msg: msg})
}

// dispatch runs the pure update and executes what it asks for.
func (p *Program) dispatch(msg tea.Msg) tea.Cmd {
	var effects []Effect
	p.core, effects = Update(p.core, msg)
	if p.input.Value() != p.core.MailboxInput() {
		p.input.SetValue(p.core.MailboxInput())
	}
	return p.execute(effects)
}

// execute performs effects in order. Socket control and store writes happen
// before any command of the same batch can run.
func (p *Program) execute(effects []Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range effects {
		switch e := e.(type) {
		case PushURL:
			p.nav.Push(e.URL)
			logging.AuditResult(logging.AuditNavigate, e.URL, nil)
			cmds = append(cmds, urlChanged(e.URL))
		case LoadURL:
			cmds = append(cmds, p.load(e.URL))
		case StoreRecord:
			p.persist.Save(e.Record)
		case SocketControl:
			if p.feed != nil {
				logging.Monitor("socket control: run=%t", e.Run)
				p.feed.Control(e.Run)
				logging.Audit(logging.AuditEvent{
					EventType: logging.AuditSocketControl,
					Target:    "monitor",
					Success:   true,
					Fields:    map[string]interface{}{"run": e.Run},
				})
			}
		case PageCommand:
			cmds = append(cmds, wrap(e.Kind, e.Cmd))
		}
	}
	return tea.Batch(cmds...)
}

func (p *Program) load(url string) tea.Cmd {
	nav := p.nav
	return func() tea.Msg {
		err := nav.Load(url)
		if err != nil {
			logging.UI("failed to open %s: %v", url, err)
		}
		logging.AuditResult(logging.AuditOpenExternal, url, err)
		return nil
	}
}

// reconcileFeed stops a feed started by a Monitor page that was left before
// its start command finished.
func (p *Program) reconcileFeed(msg PageMsg) {
	if msg.Kind != ui.PageMonitor || p.feed == nil {
		return
	}
	if p.core.Page().Kind() != ui.PageMonitor && p.feed.Running() {
		logging.MonitorWarn("stopping feed started by an inactive monitor page")
		p.feed.Control(false)
	}
}

func (p *Program) waitForStore() tea.Cmd {
	ch := p.watch
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		raw, ok := <-ch
		if !ok {
			return storeClosedMsg{}
		}
		return storeChangedMsg{raw: raw}
	}
}

func (p *Program) quit() tea.Cmd {
	p.Close()
	return tea.Quit
}

// Close stops the feed and flushes pending writes. Safe to call more than
// once.
func (p *Program) Close() {
	p.closeOnce.Do(func() {
		if p.feed != nil {
			p.feed.Control(false)
		}
		p.persist.Close()
	})
}

func urlChanged(url string) tea.Cmd {
	return func() tea.Msg { return URLChanged{URL: url} }
}

// wrap tags everything cmd produces with the page kind, except navigation
// requests which the shell handles for every page.
func wrap(kind ui.PageKind, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		switch msg := cmd().(type) {
		case nil:
			return nil
		case tea.BatchMsg:
			wrapped := make(tea.BatchMsg, 0, len(msg))
			for _, c := range msg {
				if w := wrap(kind, c); w != nil {
					wrapped = append(wrapped, w)
				}
			}
			return wrapped
		case ui.LinkClicked, ui.RouteRequested:
			return msg
		default:
			return PageMsg{Kind: kind, Msg: msg}
		}
	}
}
