// Package route maps in-app URLs to navigation targets and back.
package route

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind identifies which navigation target a Route points at.
type Kind int

const (
	KindHome Kind = iota
	KindMailbox
	KindMessage
	KindMonitor
	KindStatus
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindMailbox:
		return "mailbox"
	case KindMessage:
		return "message"
	case KindMonitor:
		return "monitor"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Route is a parsed navigation target. Only the fields relevant to Kind are set,
// so two routes are equal exactly when == says so.
type Route struct {
	Kind    Kind
	Mailbox string // KindMailbox, KindMessage
	ID      string // KindMessage
	Raw     string // KindUnknown
}

func Home() Route    { return Route{Kind: KindHome} }
func Monitor() Route { return Route{Kind: KindMonitor} }
func Status() Route  { return Route{Kind: KindStatus} }

func Mailbox(name string) Route {
	return Route{Kind: KindMailbox, Mailbox: name}
}

func Message(mailbox, id string) Route {
	return Route{Kind: KindMessage, Mailbox: mailbox, ID: id}
}

func Unknown(raw string) Route {
	return Route{Kind: KindUnknown, Raw: raw}
}

// Parse decodes a URL or bare path into a Route. It never fails: anything it
// does not recognize comes back as Unknown carrying the path without its
// leading slash. Query strings and fragments are ignored.
func Parse(rawURL string) Route {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.EscapedPath()
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	raw := strings.TrimPrefix(path, "/")
	segs := segments(path)

	switch {
	case len(segs) == 0:
		return Home()
	case len(segs) == 1 && segs[0] == "monitor":
		return Monitor()
	case len(segs) == 1 && segs[0] == "status":
		return Status()
	case len(segs) == 2 && segs[0] == "mailbox":
		return Mailbox(segs[1])
	case len(segs) == 3 && segs[0] == "mailbox":
		return Message(segs[1], segs[2])
	}

	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	return Unknown(raw)
}

// segments splits an escaped path, dropping empty segments and decoding each
// one. A segment that fails to decode is kept verbatim.
func segments(path string) []string {
	parts := strings.Split(path, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if s, err := url.PathUnescape(p); err == nil {
			p = s
		}
		segs = append(segs, p)
	}
	return segs
}

// Path returns the canonical path for r. Unknown routes have none.
func (r Route) Path() (string, bool) {
	switch r.Kind {
	case KindHome:
		return "/", true
	case KindMailbox:
		return "/mailbox/" + url.PathEscape(r.Mailbox), true
	case KindMessage:
		return "/mailbox/" + url.PathEscape(r.Mailbox) + "/" + url.PathEscape(r.ID), true
	case KindMonitor:
		return "/monitor", true
	case KindStatus:
		return "/status", true
	default:
		return "", false
	}
}

func (r Route) String() string {
	switch r.Kind {
	case KindMailbox:
		return fmt.Sprintf("mailbox(%s)", r.Mailbox)
	case KindMessage:
		return fmt.Sprintf("message(%s, %s)", r.Mailbox, r.ID)
	case KindUnknown:
		return fmt.Sprintf("unknown(%q)", r.Raw)
	default:
		return r.Kind.String()
	}
}
