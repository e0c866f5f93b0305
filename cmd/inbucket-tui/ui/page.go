package ui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/grptx/inbucket/internal/inbucket"
	"github.com/grptx/inbucket/internal/route"
)

// PageKind identifies which controller owns a message.
type PageKind int

const (
	PageHome PageKind = iota
	PageMailbox
	PageMonitor
	PageStatus
)

func (k PageKind) String() string {
	switch k {
	case PageHome:
		return "home"
	case PageMailbox:
		return "mailbox"
	case PageMonitor:
		return "monitor"
	case PageStatus:
		return "status"
	default:
		return fmt.Sprintf("PageKind(%d)", int(k))
	}
}

// Page is the closed set of page models. Only this package implements it.
type Page interface {
	Kind() PageKind
	sealed()
}

func (HomePageModel) sealed()    {}
func (MailboxPageModel) sealed() {}
func (MonitorPageModel) sealed() {}
func (StatusPageModel) sealed()  {}

// LinkClicked asks the shell to follow a link. Internal targets are pushed
// onto the history; anything else is opened outside the application.
type LinkClicked struct {
	URL string
}

// RouteRequested asks the shell to navigate to a route.
type RouteRequested struct {
	Route route.Route
}

// MailAPI is the slice of the Inbucket REST API the pages use.
type MailAPI interface {
	ListMailbox(ctx context.Context, name string) ([]inbucket.MessageHeader, error)
	GetMessage(ctx context.Context, name, id string) (*inbucket.Message, error)
	DeleteMessage(ctx context.Context, name, id string) error
	PurgeMailbox(ctx context.Context, name string) error
	Greeting(ctx context.Context) (string, error)
	Status(ctx context.Context) (*inbucket.ServerStatus, error)
}

// MonitorFeed is the process-wide live message feed.
type MonitorFeed interface {
	Control(run bool)
	Running() bool
	Events() <-chan inbucket.MonitorEvent
}

// Env carries what every page needs from the process. It is passed by value.
type Env struct {
	API    MailAPI
	Feed   MonitorFeed
	Styles Styles

	Width  int
	Height int

	Timeout        time.Duration
	MailboxRefresh time.Duration
	StatusRefresh  time.Duration
	MaxMonitorRows int

	// Greeting overrides the server's greeting when set.
	Greeting string
	// BaseURL is the web address of the server, used for "open in browser".
	BaseURL string
}

// Layout returns the page content area for the current terminal size.
func (e Env) Layout() LayoutConfig {
	return NewLayoutConfig(e.Width, e.Height)
}

func (e Env) context() (context.Context, context.CancelFunc) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

var lastID int64

// nextID hands out model ids so ticks from a replaced model are ignored.
func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

func linkCmd(url string) tea.Cmd {
	return func() tea.Msg { return LinkClicked{URL: url} }
}

func routeCmd(r route.Route) tea.Cmd {
	return func() tea.Msg { return RouteRequested{Route: r} }
}

func tickCmd(d time.Duration, msg func() tea.Msg) tea.Cmd {
	if d <= 0 {
		return nil
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return msg() })
}
