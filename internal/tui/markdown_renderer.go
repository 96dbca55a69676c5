package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	minMarkdownWidth   = 24
	maxCachedMarkdowns = 64
)

// markdownRenderer styles issue descriptions and comment bodies for the
// detail viewport. Output is cached per source text for the current width.
type markdownRenderer struct {
	style string
	width int
	term  *glamour.TermRenderer
	cache map[string]string
}

func (r *markdownRenderer) render(source string, width int) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	if !r.ready(max(width, minMarkdownWidth)) {
		return source
	}
	if out, ok := r.cache[source]; ok {
		return out
	}

	out, err := r.term.Render(source)
	if err != nil {
		return source
	}
	out = strings.Trim(out, "\n")
	if len(r.cache) >= maxCachedMarkdowns {
		clear(r.cache)
	}
	r.cache[source] = out
	return out
}

// ready rebuilds the glamour renderer when the wrap width changes.
func (r *markdownRenderer) ready(width int) bool {
	if r.term != nil && r.width == width {
		return true
	}
	style := r.style
	if style == "" {
		style = "dark"
	}
	term, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(width))
	if err != nil {
		return false
	}
	r.term, r.width = term, width
	r.cache = make(map[string]string)
	return true
}
