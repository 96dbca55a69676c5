package app

// Cursor is an ordered list plus an optional selection. The selection is
// absent exactly when the list is empty; otherwise it is a valid index.
// Next and Prev wrap around the ends.
type Cursor[T any] struct {
	items    []T
	selected int
}

// NewCursor returns a cursor over items with the first item selected.
func NewCursor[T any](items []T) Cursor[T] {
	var c Cursor[T]
	c.Set(items)
	return c
}

// Set replaces the list and selects the first item, or nothing when empty.
func (c *Cursor[T]) Set(items []T) {
	c.items = items
	if len(items) == 0 {
		c.selected = -1
		return
	}
	c.selected = 0
}

// Items returns the list.
func (c Cursor[T]) Items() []T {
	return c.items
}

// Len returns the list length.
func (c Cursor[T]) Len() int {
	return len(c.items)
}

// Index returns the selected index and whether anything is selected.
func (c Cursor[T]) Index() (int, bool) {
	if len(c.items) == 0 || c.selected < 0 || c.selected >= len(c.items) {
		return 0, false
	}
	return c.selected, true
}

// Selected returns the selected item.
func (c Cursor[T]) Selected() (T, bool) {
	idx, ok := c.Index()
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[idx], true
}

// Next moves the selection down, wrapping from the last item to the first.
func (c *Cursor[T]) Next() {
	n := len(c.items)
	if n == 0 {
		c.selected = -1
		return
	}
	idx, ok := c.Index()
	if !ok {
		c.selected = 0
		return
	}
	c.selected = (idx + 1) % n
}

// Prev moves the selection up, wrapping from the first item to the last.
func (c *Cursor[T]) Prev() {
	n := len(c.items)
	if n == 0 {
		c.selected = -1
		return
	}
	idx, ok := c.Index()
	if !ok {
		c.selected = 0
		return
	}
	if idx == 0 {
		c.selected = n - 1
		return
	}
	c.selected = idx - 1
}

// SelectFunc selects the first item matching fn and reports whether one did.
func (c *Cursor[T]) SelectFunc(fn func(T) bool) bool {
	for i, item := range c.items {
		if fn(item) {
			c.selected = i
			return true
		}
	}
	return false
}

// ReplaceFunc swaps every item matching fn for item and keeps the selection.
func (c *Cursor[T]) ReplaceFunc(fn func(T) bool, item T) int {
	replaced := 0
	for i := range c.items {
		if fn(c.items[i]) {
			c.items[i] = item
			replaced++
		}
	}
	return replaced
}
