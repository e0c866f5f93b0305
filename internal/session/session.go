// Package session holds the cross-page state of the shell: the navigation
// capability, the single-shot routing latch, and the persisted preferences.
//
// A Session is a value. It changes only through Reduce and ApplyExternal,
// both of which return a new Session and leave the receiver untouched.
package session

import (
	"fmt"
	"net/url"
	"strings"
)

// Navigator is the capability to move the application to another location.
type Navigator interface {
	// Push records url as the new current location without reloading.
	Push(url string)
	// Load leaves the application for url.
	Load(url string) error
}

// Session is owned by the shell for the lifetime of the application.
type Session struct {
	nav            Navigator
	origin         string
	routingEnabled bool
	persisted      Record
}

// New builds the startup session. raw is the externally stored record; when it
// is absent or malformed the default record is used and nothing is reported.
func New(nav Navigator, initialURL string, raw []byte) Session {
	rec, err := Decode(raw)
	if err != nil {
		rec = DefaultRecord()
	}
	return Session{
		nav:            nav,
		origin:         originOf(initialURL),
		routingEnabled: true,
		persisted:      rec,
	}
}

func (s Session) Nav() Navigator       { return s.nav }
func (s Session) RoutingEnabled() bool { return s.routingEnabled }
func (s Session) Persisted() Record    { return s.persisted }
func (s Session) Flash() string        { return s.persisted.Flash }
func (s Session) RecentMailboxes() []string {
	return s.persisted.RecentMailboxes
}

// Reduce applies intent and returns the resulting session.
func (s Session) Reduce(intent Intent) Session {
	switch intent.Kind {
	case IntentSetFlash:
		s.persisted.Flash = intent.Text
	case IntentClearFlash:
		s.persisted.Flash = ""
	case IntentEnableRouting:
		s.routingEnabled = true
	case IntentDisableRouting:
		s.routingEnabled = false
	case IntentAddRecent:
		s.persisted = s.persisted.withRecent(intent.Text)
	}
	return s
}

// ApplyExternal merges a value read back from the store. A valid value replaces
// the persisted record wholesale; an invalid one leaves it alone and yields a
// flash describing the failure.
func (s Session) ApplyExternal(raw []byte) (Session, Intent) {
	rec, err := Decode(raw)
	if err != nil {
		return s, SetFlash(fmt.Sprintf("Failed to decode session update: %v", err))
	}
	s.persisted = rec
	return s, None()
}

// IsInternal reports whether target stays inside the application: relative
// URLs and URLs on the startup origin do, everything else does not.
func (s Session) IsInternal(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" {
		return true
	}
	return s.origin != "" && strings.EqualFold(u.Scheme+"://"+u.Host, s.origin)
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
