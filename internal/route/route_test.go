package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Route
	}{
		{"root", "/", Home()},
		{"empty", "", Home()},
		{"absolute root", "http://localhost:9000", Home()},
		{"mailbox", "/mailbox/foo", Mailbox("foo")},
		{"mailbox trailing slash", "/mailbox/foo/", Mailbox("foo")},
		{"mailbox with dots", "/mailbox/swaks.test", Mailbox("swaks.test")},
		{"mailbox escaped", "/mailbox/a%20b", Mailbox("a b")},
		{"message", "/mailbox/foo/20240101T000000-0001", Message("foo", "20240101T000000-0001")},
		{"monitor", "/monitor", Monitor()},
		{"status", "/status", Status()},
		{"query ignored", "/status?refresh=1", Status()},
		{"fragment ignored", "/monitor#top", Monitor()},
		{"absolute mailbox", "http://localhost:9000/mailbox/bar?x=y", Mailbox("bar")},
		{"bogus", "/bogus", Unknown("bogus")},
		{"bare mailbox prefix", "/mailbox", Unknown("mailbox")},
		{"too deep", "/mailbox/a/b/c", Unknown("mailbox/a/b/c")},
		{"status with extra", "/status/now", Unknown("status/now")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.url))
		})
	}
}

func TestPathRoundTrip(t *testing.T) {
	routes := []Route{
		Home(),
		Mailbox("foo"),
		Mailbox("a b"),
		Mailbox("we/ird"),
		Message("foo", "id-1"),
		Message("x y", "z?w"),
		Monitor(),
		Status(),
	}

	for _, r := range routes {
		t.Run(r.String(), func(t *testing.T) {
			path, ok := r.Path()
			if !ok {
				t.Fatalf("expected canonical path for %s", r)
			}
			assert.Equal(t, r, Parse(path))
		})
	}
}

func TestCanonicalPaths(t *testing.T) {
	cases := map[string]Route{
		"/":                Home(),
		"/mailbox/foo":     Mailbox("foo"),
		"/mailbox/foo/123": Message("foo", "123"),
		"/monitor":         Monitor(),
		"/status":          Status(),
	}
	for want, r := range cases {
		got, ok := r.Path()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestUnknownHasNoPath(t *testing.T) {
	path, ok := Unknown("bogus").Path()
	assert.False(t, ok)
	assert.Empty(t, path)
}

func TestKnownURLsCanonicalize(t *testing.T) {
	for _, u := range []string{"/mailbox/foo/?a=b", "/mailbox//foo", "/status#x"} {
		r := Parse(u)
		path, ok := r.Path()
		if assert.True(t, ok, u) {
			assert.Equal(t, r, Parse(path))
		}
	}
}
