package inbucket

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	sanitizer  = bluemonday.UGCPolicy()
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// blockElements end a line when rendered as text.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true, "ul": true, "ol": true,
	"table": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "hr": true,
}

// BodyText returns the plain text rendition of a message, converting the
// HTML part when the sender provided no text part.
func BodyText(msg *Message) string {
	if msg == nil {
		return ""
	}
	if strings.TrimSpace(msg.Body.Text) != "" {
		return strings.ReplaceAll(msg.Body.Text, "\r\n", "\n")
	}
	return HTMLToText(msg.Body.HTML)
}

// HTMLToText sanitizes untrusted HTML and flattens it to text, one line per
// block element.
func HTMLToText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(sanitizer.Sanitize(raw)))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") && !strings.HasSuffix(sb.String(), " ") {
					sb.WriteString(" ")
				}
				sb.WriteString(text)
			}
		case html.ElementNode:
			if n.Data == "li" {
				newline(&sb)
				sb.WriteString("- ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			if n.Data == "br" {
				sb.WriteString("\n")
			} else if blockElements[n.Data] {
				newline(&sb)
			}
		}
	}
	walk(doc)

	text := blankLines.ReplaceAllString(sb.String(), "\n\n")
	return strings.TrimSpace(text)
}

// newline ends the current line unless it is already empty.
func newline(sb *strings.Builder) {
	if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
		sb.WriteString("\n")
	}
}

// Links returns the distinct absolute http(s) and mailto targets of anchors
// in document order.
func Links(raw string) []string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				lower := strings.ToLower(href)
				if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "mailto:") {
					continue
				}
				if !seen[href] {
					seen[href] = true
					links = append(links, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}
