// Package navigate keeps the in-process location history that stands in for a
// browser's address bar.
package navigate

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"
)

// Opener hands a URL outside the application.
type Opener func(url string) error

// History is a back/forward stack of visited locations.
type History struct {
	mu      sync.Mutex
	entries []string
	cursor  int
	open    Opener
}

// NewHistory starts a history at start. A nil opener uses the platform default.
func NewHistory(start string, open Opener) *History {
	if open == nil {
		open = SystemOpener
	}
	return &History{
		entries: []string{start},
		open:    open,
	}
}

// Push drops any forward entries and makes url current.
func (h *History) Push(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.cursor+1], url)
	h.cursor = len(h.entries) - 1
}

// Back moves one entry back, returning the new current location.
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor == 0 {
		return "", false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Forward moves one entry forward, returning the new current location.
func (h *History) Forward() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor >= len(h.entries)-1 {
		return "", false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Current returns the current location.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

// Len returns the number of entries, including forward ones.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Load leaves the application for url.
func (h *History) Load(url string) error {
	if err := h.open(url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// SystemOpener opens url with the desktop's default handler.
func SystemOpener(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
