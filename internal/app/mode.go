package app

// Mode is the screen the controller is driving. The help overlay is tracked
// separately and can sit on top of any mode.
type Mode int

// Controller modes.
const (
	ModeSprint Mode = iota
	ModeBacklog
	ModeIssueDetail
	ModeSprintSelector
	ModeBoardSelector
	ModeProjectSelector
	ModeAddComment
	ModeEditIssue
	ModeEditSprintName
)

var modeNames = [...]string{
	ModeSprint:          "sprint",
	ModeBacklog:         "backlog",
	ModeIssueDetail:     "issue",
	ModeSprintSelector:  "sprint-selector",
	ModeBoardSelector:   "board-selector",
	ModeProjectSelector: "project-selector",
	ModeAddComment:      "add-comment",
	ModeEditIssue:       "edit-issue",
	ModeEditSprintName:  "edit-sprint-name",
}

// String returns a stable lower-case name for logs.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// TextEntry reports whether keys in this mode edit the input buffer.
func (m Mode) TextEntry() bool {
	switch m {
	case ModeAddComment, ModeEditIssue, ModeEditSprintName:
		return true
	default:
		return false
	}
}

// Selector reports whether the mode shows one of the pick lists.
func (m Mode) Selector() bool {
	switch m {
	case ModeSprintSelector, ModeBoardSelector, ModeProjectSelector:
		return true
	default:
		return false
	}
}
