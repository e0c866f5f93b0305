package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown renders md at the given width. Rendering failures fall back
// to the raw text.
func renderMarkdown(md string, width int, dark bool) string {
	if width < 20 {
		width = 20
	}
	style := "light"
	if dark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
