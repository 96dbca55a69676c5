package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

// TestMarkdownRendererCachesPerWidth verifies output is reused until the wrap width changes.
func TestMarkdownRendererCachesPerWidth(t *testing.T) {
	r := &markdownRenderer{style: "notty"}
	if got := r.render("   ", 80); got != "" {
		t.Fatalf("expected blank input to render empty, got %q", got)
	}

	first := r.render("**Deploy** the fix", 80)
	if !strings.Contains(ansi.Strip(first), "Deploy") {
		t.Fatalf("expected rendered text, got %q", first)
	}
	if len(r.cache) != 1 {
		t.Fatalf("expected one cached entry, got %d", len(r.cache))
	}
	if again := r.render("**Deploy** the fix", 80); again != first {
		t.Fatalf("expected cached output, got %q", again)
	}

	r.render("**Deploy** the fix", 10)
	if r.width != minMarkdownWidth {
		t.Fatalf("expected width clamped to %d, got %d", minMarkdownWidth, r.width)
	}
	if len(r.cache) != 1 {
		t.Fatalf("expected cache reset on width change, got %d entries", len(r.cache))
	}
}
