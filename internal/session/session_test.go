package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNav struct {
	pushed []string
	loaded []string
}

func (n *stubNav) Push(url string) { n.pushed = append(n.pushed, url) }

func (n *stubNav) Load(url string) error {
	n.loaded = append(n.loaded, url)
	return nil
}

func TestNewFallsBackToDefault(t *testing.T) {
	inputs := map[string][]byte{
		"nil":        nil,
		"empty":      {},
		"garbage":    []byte("not json"),
		"wrong type": []byte(`{"recentMailboxes": 5}`),
		"array":      []byte(`[1,2,3]`),
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			s := New(&stubNav{}, "http://localhost:9000/", raw)
			assert.True(t, s.Persisted().Equal(DefaultRecord()))
			assert.Empty(t, s.Flash())
			assert.True(t, s.RoutingEnabled())
		})
	}
}

func TestNewDecodesStoredRecord(t *testing.T) {
	raw := []byte(`{"version":"1","recentMailboxes":["a","b"],"flash":"hello"}`)
	s := New(&stubNav{}, "/", raw)

	assert.Equal(t, []string{"a", "b"}, s.RecentMailboxes())
	assert.Equal(t, "hello", s.Flash())
}

func TestReduce(t *testing.T) {
	base := New(&stubNav{}, "/", nil)

	t.Run("none is a no-op", func(t *testing.T) {
		next := base.Reduce(None())
		assert.True(t, next.Persisted().Equal(base.Persisted()))
		assert.Equal(t, base.RoutingEnabled(), next.RoutingEnabled())
	})

	t.Run("set flash", func(t *testing.T) {
		next := base.Reduce(SetFlash("x"))
		assert.Equal(t, "x", next.Flash())
		assert.Empty(t, base.Flash(), "receiver must not change")
		assert.Equal(t, base.RecentMailboxes(), next.RecentMailboxes())
	})

	t.Run("set flash twice is idempotent", func(t *testing.T) {
		once := base.Reduce(SetFlash("x"))
		twice := once.Reduce(SetFlash("x"))
		assert.True(t, once.Persisted().Equal(twice.Persisted()))
	})

	t.Run("clear flash", func(t *testing.T) {
		next := base.Reduce(SetFlash("x")).Reduce(ClearFlash())
		assert.Empty(t, next.Flash())
	})

	t.Run("routing latch", func(t *testing.T) {
		off := base.Reduce(DisableRouting())
		assert.False(t, off.RoutingEnabled())
		on := off.Reduce(EnableRouting())
		assert.True(t, on.RoutingEnabled())
		assert.True(t, on.Persisted().Equal(base.Persisted()))
	})
}

func TestAddRecent(t *testing.T) {
	s := New(&stubNav{}, "/", nil)

	for _, m := range []string{"a", "b", "c"} {
		s = s.Reduce(AddRecent(m))
	}
	assert.Equal(t, []string{"c", "b", "a"}, s.RecentMailboxes())

	s = s.Reduce(AddRecent("a"))
	assert.Equal(t, []string{"a", "c", "b"}, s.RecentMailboxes())

	before := s
	s = s.Reduce(AddRecent("a"))
	assert.True(t, s.Persisted().Equal(before.Persisted()), "re-adding the head changes nothing")

	s = s.Reduce(AddRecent(""))
	assert.True(t, s.Persisted().Equal(before.Persisted()))
}

func TestAddRecentCapsAndDoesNotAlias(t *testing.T) {
	s := New(&stubNav{}, "/", nil)
	for _, m := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		s = s.Reduce(AddRecent(m))
	}
	require.Len(t, s.RecentMailboxes(), MaxRecent)

	prior := s.Persisted()
	snapshot := append([]string(nil), prior.RecentMailboxes...)

	next := s.Reduce(AddRecent("8"))
	assert.Len(t, next.RecentMailboxes(), MaxRecent)
	assert.Equal(t, "8", next.RecentMailboxes()[0])
	assert.NotContains(t, next.RecentMailboxes(), "1")
	assert.Equal(t, snapshot, prior.RecentMailboxes, "prior record must be untouched")
	assert.False(t, prior.Equal(next.Persisted()))
}

func TestApplyExternal(t *testing.T) {
	s := New(&stubNav{}, "/", nil).Reduce(AddRecent("mine"))

	t.Run("success replaces wholesale", func(t *testing.T) {
		next, intent := s.ApplyExternal([]byte(`{"recentMailboxes":["theirs"]}`))
		assert.Equal(t, None(), intent)
		assert.Equal(t, []string{"theirs"}, next.RecentMailboxes())
		assert.Empty(t, next.Flash())
	})

	t.Run("failure keeps record and flashes", func(t *testing.T) {
		next, intent := s.ApplyExternal([]byte(`{`))
		assert.Equal(t, IntentSetFlash, intent.Kind)
		assert.Contains(t, intent.Text, "Failed to decode session update")
		assert.True(t, next.Persisted().Equal(s.Persisted()))
	})
}

func TestRecordEqualTreatsNilAsEmpty(t *testing.T) {
	a := Record{Version: RecordVersion}
	b := Record{Version: RecordVersion, RecentMailboxes: []string{}}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(Record{Version: RecordVersion, Flash: "x"}))
}

func TestRecordEqualReturns(t *testing.T) {
	done := make(chan bool, 1)
	go func() {
		a := Record{Version: RecordVersion, RecentMailboxes: []string{"a", "b"}}
		done <- DefaultRecord().Equal(DefaultRecord()) && a.Equal(a) && !a.Equal(DefaultRecord())
	}()

	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("Record.Equal did not return")
	}
}

func TestEncodeDecode(t *testing.T) {
	rec := DefaultRecord()
	rec.RecentMailboxes = []string{"x"}
	rec.Flash = "hi"

	data, err := Encode(rec)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, rec.Equal(got))
}

func TestIsInternal(t *testing.T) {
	s := New(&stubNav{}, "http://localhost:9000/status", nil)

	assert.True(t, s.IsInternal("/mailbox/foo"))
	assert.True(t, s.IsInternal("monitor"))
	assert.True(t, s.IsInternal("http://LOCALHOST:9000/mailbox/foo"))
	assert.False(t, s.IsInternal("https://example.com/"))
	assert.False(t, s.IsInternal("http://localhost:9001/"))
	assert.False(t, s.IsInternal("mailto:someone@example.com"))
}
