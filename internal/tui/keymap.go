package tui

import (
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/hylla/jdeck/internal/app"
	"github.com/hylla/jdeck/internal/events"
)

// helpKeys adapts the controller bindings for the help bubble.
type helpKeys struct {
	keys        app.KeyMap
	mode        app.Mode
	transitions bool
}

// ShortHelp returns the status bar hints for the active mode.
func (k helpKeys) ShortHelp() []key.Binding {
	return k.keys.StatusBindings(k.mode, k.transitions)
}

// FullHelp returns every binding grouped for the help overlay.
func (k helpKeys) FullHelp() [][]key.Binding {
	return k.keys.FullHelp()
}

// scrollKeys scroll the issue detail viewport without reaching the controller.
var scrollKeys = struct {
	pageUp   key.Binding
	pageDown key.Binding
}{
	pageUp:   key.NewBinding(key.WithKeys("pgup")),
	pageDown: key.NewBinding(key.WithKeys("pgdown")),
}

var namedKeys = map[rune]events.KeyCode{
	tea.KeyEnter:     events.KeyEnter,
	tea.KeyTab:       events.KeyTab,
	tea.KeyEscape:    events.KeyEsc,
	tea.KeyBackspace: events.KeyBackspace,
	tea.KeyLeft:      events.KeyLeft,
	tea.KeyRight:     events.KeyRight,
	tea.KeyUp:        events.KeyUp,
	tea.KeyDown:      events.KeyDown,
}

// translateKey maps a terminal key onto the controller key set. Keys the
// controller has no use for are dropped.
func translateKey(k tea.Key) (events.Key, bool) {
	ctrl := k.Mod&tea.ModCtrl != 0
	if ctrl && k.Code == 'c' {
		return events.Named(events.KeyCtrlC), true
	}
	if ctrl || k.Mod&(tea.ModAlt|tea.ModMeta|tea.ModSuper) != 0 {
		return events.Key{}, false
	}
	if code, ok := namedKeys[k.Code]; ok {
		return events.Named(code), true
	}
	if k.Code == tea.KeySpace {
		return events.Rune(' '), true
	}
	if k.Text != "" {
		r, size := utf8.DecodeRuneInString(k.Text)
		if r != utf8.RuneError && size == len(k.Text) {
			return events.Rune(r), true
		}
	}
	return events.Key{}, false
}

func rawKind(k tea.Key) events.KeyKind {
	if k.IsRepeat {
		return events.KindRepeat
	}
	return events.KindPress
}
