package domain

import (
	"slices"
	"strings"
	"time"
)

// ActivityAction identifies a mutation recorded in the local journal.
type ActivityAction string

// Activity action values.
const (
	ActivityTransition  ActivityAction = "transition"
	ActivityComment     ActivityAction = "comment"
	ActivitySummaryEdit ActivityAction = "summary_edit"
	ActivitySprintName  ActivityAction = "sprint_rename"
	ActivityBoardSelect ActivityAction = "board_select"
)

var validActivityActions = []ActivityAction{
	ActivityTransition,
	ActivityComment,
	ActivitySummaryEdit,
	ActivitySprintName,
	ActivityBoardSelect,
}

// Activity is one journal entry describing a change made from this client.
type Activity struct {
	ID      string
	At      time.Time
	Action  ActivityAction
	Target  string
	Detail  string
	BoardID int
}

// ActivityInput holds the values for NewActivity.
type ActivityInput struct {
	ID      string
	Action  ActivityAction
	Target  string
	Detail  string
	BoardID int
}

// NewActivity validates input and stamps the entry with now in UTC.
func NewActivity(in ActivityInput, now time.Time) (Activity, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return Activity{}, ErrInvalidID
	}
	action := ActivityAction(strings.TrimSpace(strings.ToLower(string(in.Action))))
	if !slices.Contains(validActivityActions, action) {
		return Activity{}, ErrInvalidAction
	}
	in.Target = strings.TrimSpace(in.Target)
	if in.Target == "" {
		return Activity{}, ErrInvalidTarget
	}
	return Activity{
		ID:      in.ID,
		At:      now.UTC(),
		Action:  action,
		Target:  in.Target,
		Detail:  strings.TrimSpace(in.Detail),
		BoardID: in.BoardID,
	}, nil
}
