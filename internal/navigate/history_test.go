package navigate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryBackForward(t *testing.T) {
	h := NewHistory("/", func(string) error { return nil })

	_, ok := h.Back()
	assert.False(t, ok, "nothing behind the start entry")

	h.Push("/monitor")
	h.Push("/status")
	assert.Equal(t, "/status", h.Current())

	url, ok := h.Back()
	require.True(t, ok)
	assert.Equal(t, "/monitor", url)

	url, ok = h.Forward()
	require.True(t, ok)
	assert.Equal(t, "/status", url)

	_, ok = h.Forward()
	assert.False(t, ok)
}

func TestHistoryPushTruncatesForward(t *testing.T) {
	h := NewHistory("/", func(string) error { return nil })
	h.Push("/a")
	h.Push("/b")
	h.Back()
	h.Back()

	h.Push("/c")
	assert.Equal(t, 2, h.Len())
	_, ok := h.Forward()
	assert.False(t, ok)
}

func TestHistoryLoad(t *testing.T) {
	var opened []string
	h := NewHistory("/", func(u string) error {
		opened = append(opened, u)
		return nil
	})
	require.NoError(t, h.Load("https://example.com"))
	assert.Equal(t, []string{"https://example.com"}, opened)
	assert.Equal(t, "/", h.Current(), "load does not touch history")

	failing := NewHistory("/", func(string) error { return errors.New("no opener") })
	assert.Error(t, failing.Load("https://example.com"))
}
