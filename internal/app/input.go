package app

// InputBuffer is a single-line text field with a cursor measured in runes.
// The cursor always stays within [0, Len()].
type InputBuffer struct {
	title  string
	text   []rune
	cursor int
}

// Reset replaces title and text and puts the cursor at the end.
func (b *InputBuffer) Reset(title, text string) {
	b.title = title
	b.text = []rune(text)
	b.cursor = len(b.text)
}

// Clear empties the text and title.
func (b *InputBuffer) Clear() {
	b.title = ""
	b.text = nil
	b.cursor = 0
}

// Insert adds r at the cursor and advances past it.
func (b *InputBuffer) Insert(r rune) {
	b.clamp()
	b.text = append(b.text, 0)
	copy(b.text[b.cursor+1:], b.text[b.cursor:])
	b.text[b.cursor] = r
	b.cursor++
}

// Backspace removes the rune before the cursor. It is a no-op at offset 0.
func (b *InputBuffer) Backspace() {
	b.clamp()
	if b.cursor == 0 {
		return
	}
	b.text = append(b.text[:b.cursor-1], b.text[b.cursor:]...)
	b.cursor--
}

// Left moves the cursor one rune left, stopping at 0.
func (b *InputBuffer) Left() {
	b.clamp()
	if b.cursor > 0 {
		b.cursor--
	}
}

// Right moves the cursor one rune right, stopping at the end.
func (b *InputBuffer) Right() {
	b.clamp()
	if b.cursor < len(b.text) {
		b.cursor++
	}
}

// Value returns the text.
func (b InputBuffer) Value() string {
	return string(b.text)
}

// Title returns the prompt shown above the field.
func (b InputBuffer) Title() string {
	return b.title
}

// Cursor returns the cursor offset in runes.
func (b InputBuffer) Cursor() int {
	return b.cursor
}

// Len returns the text length in runes.
func (b InputBuffer) Len() int {
	return len(b.text)
}

// Split returns the text before and after the cursor.
func (b InputBuffer) Split() (string, string) {
	cursor := min(max(b.cursor, 0), len(b.text))
	return string(b.text[:cursor]), string(b.text[cursor:])
}

func (b *InputBuffer) clamp() {
	b.cursor = min(max(b.cursor, 0), len(b.text))
}
