package app

import "charm.land/bubbles/v2/key"

// KeyMap is the operator-facing keybinding surface. The controller dispatches
// on these bindings and the TUI renders their help text.
type KeyMap struct {
	forceQuit       key.Binding
	quit            key.Binding
	help            key.Binding
	sprint          key.Binding
	backlog         key.Binding
	refresh         key.Binding
	sprintSelector  key.Binding
	boardSelector   key.Binding
	projectSelector key.Binding
	up              key.Binding
	down            key.Binding
	navigate        key.Binding
	enter           key.Binding
	back            key.Binding
	editName        key.Binding
	comment         key.Binding
	editSummary     key.Binding
	transitions     key.Binding
	copyKey         key.Binding
	backspace       key.Binding
	left            key.Binding
	right           key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		forceQuit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "Quit")),
		quit:            key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "Quit")),
		help:            key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "Help")),
		sprint:          key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "Sprint")),
		backlog:         key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "Backlog")),
		refresh:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Refresh")),
		sprintSelector:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Sprint Selector")),
		boardSelector:   key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "Board Selector")),
		projectSelector: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "Project Selector")),
		up:              key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "Up")),
		down:            key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "Down")),
		navigate:        key.NewBinding(key.WithKeys("j", "k", "up", "down"), key.WithHelp("j/k", "Navigate")),
		enter:           key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Select")),
		back:            key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Back")),
		editName:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "Edit Sprint")),
		comment:         key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "Comment")),
		editSummary:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "Edit Summary")),
		transitions:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "Transitions")),
		copyKey:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "Copy Key")),
		backspace:       key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "Delete")),
		left:            key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "Cursor Left")),
		right:           key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "Cursor Right")),
	}
}

// StatusBindings returns the hints for the status bar in mode.
func (k KeyMap) StatusBindings(mode Mode, transitionsVisible bool) []key.Binding {
	if mode.TextEntry() {
		return []key.Binding{relabel(k.enter, "Submit"), relabel(k.back, "Cancel")}
	}
	out := []key.Binding{k.quit, k.help}
	switch mode {
	case ModeSprint:
		out = append(out,
			k.navigate, relabel(k.enter, "View Issue"), k.refresh,
			k.sprintSelector, k.boardSelector, k.projectSelector, k.sprint, k.backlog,
		)
	case ModeBacklog:
		out = append(out, k.navigate, relabel(k.enter, "View Issue"), k.refresh, k.sprint, k.backlog)
	case ModeSprintSelector:
		out = append(out, k.navigate, relabel(k.enter, "Select Sprint"), k.editName, k.back)
	case ModeBoardSelector:
		out = append(out, k.navigate, relabel(k.enter, "Select Board"), k.back)
	case ModeProjectSelector:
		out = append(out, k.navigate, relabel(k.enter, "Select Project"), k.back)
	case ModeIssueDetail:
		if transitionsVisible {
			out = append(out, k.navigate, relabel(k.enter, "Apply Transition"), relabel(k.back, "Hide"))
		} else {
			out = append(out, k.comment, k.editSummary, k.transitions, k.copyKey, k.back)
		}
	}
	return out
}

// FullHelp groups every binding for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.quit, k.help, k.sprint, k.backlog, k.refresh, k.up, k.down, relabel(k.enter, "View Issue")},
		{k.sprintSelector, k.boardSelector, k.projectSelector, relabel(k.enter, "Choose"), k.editName, relabel(k.back, "Cancel")},
		{k.comment, k.editSummary, k.transitions, k.copyKey, relabel(k.back, "Back")},
		{relabel(k.enter, "Submit"), relabel(k.back, "Cancel"), k.backspace, k.left, k.right},
	}
}

func relabel(b key.Binding, desc string) key.Binding {
	b.SetHelp(b.Help().Key, desc)
	return b
}
