package scraper

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/config"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/errs"
)

// TruncationMarker is appended to content cut at the length limit
const TruncationMarker = "\n\n[Content truncated...]"

// Elements dropped from extracted content
var unwantedElements = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"footer": true,
	"aside":  true,
}

// Extraction is the result of Extract
type Extraction struct {
	Text      string
	Selector  string // Name of the selector that matched
	Truncated bool
	Length    int // Length in characters before truncation
}

// Extract finds the first element matching one of the selectors (tried in
// order), drops navigation and script elements, and returns its text one
// non-empty line per text node. Text longer than maxLength characters is cut.
func Extract(htmlContent string, selectors []config.Selector, maxLength int) (*Extraction, error) {
	doc, err := html.ParseWithOptions(strings.NewReader(htmlContent), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML content: %v", errs.ErrParsing, err)
	}

	var content *html.Node
	var matched string
	for _, sel := range selectors {
		parsed, err := parseSelector(sel.CSS)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse HTML content: %v", errs.ErrParsing, err)
		}
		if content = findFirst(doc, parsed); content != nil {
			matched = sel.Name
			if matched == "" {
				matched = sel.CSS
			}
			break
		}
	}

	if content == nil {
		names := make([]string, len(selectors))
		for i, sel := range selectors {
			names[i] = sel.Name
			if names[i] == "" {
				names[i] = sel.CSS
			}
		}
		return nil, fmt.Errorf("%w: failed to parse HTML content: could not find content using selectors: [%s]",
			errs.ErrParsing, strings.Join(names, " "))
	}

	var parts []string
	collectText(content, &parts)
	text := CleanLines(strings.Join(parts, "\n"))

	result := &Extraction{
		Text:     text,
		Selector: matched,
		Length:   utf8.RuneCountInString(text),
	}

	if maxLength > 0 && result.Length > maxLength {
		runes := []rune(text)
		result.Text = string(runes[:maxLength]) + TruncationMarker
		result.Truncated = true
	}

	return result, nil
}

// CleanLines trims every line and drops blank ones
func CleanLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			*parts = append(*parts, text)
		}
		return
	case html.ElementNode:
		if unwantedElements[n.Data] {
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// selector is a single compound selector: optional tag, optional id, classes
type selector struct {
	tag     string
	id      string
	classes []string
}

// parseSelector supports the subset used by documentation sources:
// "tag", ".class", "#id" and combinations such as "div.content" or
// "div#main.docs".
func parseSelector(css string) (selector, error) {
	css = strings.TrimSpace(css)
	if css == "" {
		return selector{}, fmt.Errorf("empty selector")
	}
	if strings.ContainsAny(css, " >+~[]:,*") {
		return selector{}, fmt.Errorf("unsupported selector %q", css)
	}

	var sel selector
	kind := byte(0)
	start := 0
	flush := func(end int) error {
		token := css[start:end]
		switch kind {
		case 0:
			sel.tag = strings.ToLower(token)
		case '#':
			if token == "" {
				return fmt.Errorf("invalid selector %q", css)
			}
			sel.id = token
		case '.':
			if token == "" {
				return fmt.Errorf("invalid selector %q", css)
			}
			sel.classes = append(sel.classes, token)
		}
		return nil
	}

	for i := 0; i < len(css); i++ {
		if css[i] == '.' || css[i] == '#' {
			if err := flush(i); err != nil {
				return selector{}, err
			}
			kind = css[i]
			start = i + 1
		}
	}
	if err := flush(len(css)); err != nil {
		return selector{}, err
	}

	return sel, nil
}

func (s selector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" {
		if id, _ := attr(n, "id"); id != s.id {
			return false
		}
	}
	if len(s.classes) > 0 {
		class, _ := attr(n, "class")
		have := strings.Fields(class)
		for _, want := range s.classes {
			if !contains(have, want) {
				return false
			}
		}
	}
	return true
}

// findFirst returns the first matching node in document order
func findFirst(n *html.Node, sel selector) *html.Node {
	if sel.matches(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, sel); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
