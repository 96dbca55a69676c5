package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/hylla/jdeck/internal/app"
	"github.com/hylla/jdeck/internal/events"
)

// TestHelpKeysFollowMode verifies the status hints track the controller mode.
func TestHelpKeysFollowMode(t *testing.T) {
	keys := app.DefaultKeyMap()
	sprint := helpKeys{keys: keys, mode: app.ModeSprint}
	if len(sprint.ShortHelp()) == 0 {
		t.Fatal("expected sprint mode hints")
	}
	entry := helpKeys{keys: keys, mode: app.ModeAddComment}.ShortHelp()
	if len(entry) != 2 {
		t.Fatalf("expected submit/cancel hints in text entry, got %d", len(entry))
	}
	if got := entry[0].Help().Desc; got != "Submit" {
		t.Fatalf("expected Submit hint, got %q", got)
	}

	hidden := helpKeys{keys: keys, mode: app.ModeIssueDetail}.ShortHelp()
	shown := helpKeys{keys: keys, mode: app.ModeIssueDetail, transitions: true}.ShortHelp()
	if len(hidden) == len(shown) && hidden[len(hidden)-1].Help().Desc == shown[len(shown)-1].Help().Desc {
		t.Fatal("expected transition overlay to change detail hints")
	}

	groups := sprint.FullHelp()
	if len(groups) == 0 {
		t.Fatal("expected full help groups")
	}
	for i, group := range groups {
		if len(group) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// TestRawKindMarksRepeats verifies auto-repeat presses are tagged.
func TestRawKindMarksRepeats(t *testing.T) {
	if got := rawKind(tea.Key{Code: 'j'}); got != events.KindPress {
		t.Fatalf("expected press, got %v", got)
	}
	if got := rawKind(tea.Key{Code: 'j', IsRepeat: true}); got != events.KindRepeat {
		t.Fatalf("expected repeat, got %v", got)
	}
}
