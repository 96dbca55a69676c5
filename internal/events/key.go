package events

// KeyCode identifies a named key. KeyRune means the key carries a character.
type KeyCode int

// Key codes understood by the controller.
const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyTab
	KeyEsc
	KeyBackspace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyCtrlC
)

var keyNames = map[KeyCode]string{
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyEsc:       "esc",
	KeyBackspace: "backspace",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyCtrlC:     "ctrl+c",
}

// Key is one terminal key, independent of the terminal library.
type Key struct {
	Code KeyCode
	Rune rune
}

// Rune builds a character key.
func Rune(r rune) Key {
	return Key{Code: KeyRune, Rune: r}
}

// Named builds a non-character key.
func Named(code KeyCode) Key {
	return Key{Code: code}
}

// String returns the key name used by key bindings: the character itself,
// "space", or a lower-case name such as "enter" or "esc".
func (k Key) String() string {
	if k.Code == KeyRune {
		if k.Rune == ' ' {
			return "space"
		}
		return string(k.Rune)
	}
	return keyNames[k.Code]
}

// Printable reports whether the key inserts text in an input field.
func (k Key) Printable() bool {
	return k.Code == KeyRune && k.Rune >= ' ' && k.Rune != 0x7f
}

// KeyKind separates key presses from repeats and releases.
type KeyKind int

// Key kinds.
const (
	KindPress KeyKind = iota
	KindRepeat
	KindRelease
)

// RawKey is a key as reported by the terminal, before filtering.
type RawKey struct {
	Key  Key
	Kind KeyKind
}

// Type separates key events from tick events.
type Type int

// Event types.
const (
	TypeKey Type = iota
	TypeTick
)

// Event is one item of the ordered stream delivered to the controller.
type Event struct {
	Type Type
	Key  Key
}

// KeyEvent wraps a pressed key.
func KeyEvent(k Key) Event {
	return Event{Type: TypeKey, Key: k}
}

// TickEvent is the periodic timer event.
func TickEvent() Event {
	return Event{Type: TypeTick}
}
