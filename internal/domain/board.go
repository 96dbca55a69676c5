package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Sprint states reported by the server. State stays an open string.
const (
	SprintStateFuture = "future"
	SprintStateActive = "active"
	SprintStateClosed = "closed"
)

// Sprint is a time-boxed iteration of one board.
type Sprint struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	State         string    `json:"state"`
	StartDate     Timestamp `json:"startDate,omitzero"`
	EndDate       Timestamp `json:"endDate,omitzero"`
	CompleteDate  Timestamp `json:"completeDate,omitzero"`
	CreatedDate   Timestamp `json:"createdDate,omitzero"`
	OriginBoardID int       `json:"originBoardId,omitempty"`
	Goal          string    `json:"goal,omitempty"`
}

// SprintUpdate is a partial sprint update. Nil fields are left alone.
type SprintUpdate struct {
	Name      *string    `json:"name,omitempty"`
	Goal      *string    `json:"goal,omitempty"`
	State     *string    `json:"state,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Empty reports whether the update carries no field.
func (u SprintUpdate) Empty() bool {
	return u.Name == nil && u.Goal == nil && u.State == nil && u.StartDate == nil && u.EndDate == nil
}

// SortSprintsByID sorts sprints by ascending id so the newest sprint is last.
func SortSprintsByID(sprints []Sprint) {
	slices.SortStableFunc(sprints, func(a, b Sprint) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

// Board is an agile board.
type Board struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Location *BoardLocation `json:"location,omitempty"`
}

// BoardLocation names the project a board belongs to.
type BoardLocation struct {
	ProjectID      int    `json:"projectId,omitempty"`
	ProjectKey     string `json:"projectKey,omitempty"`
	ProjectName    string `json:"projectName,omitempty"`
	ProjectTypeKey string `json:"projectTypeKey,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
}

// BelongsTo reports whether a board matches a project key, either by name or
// by its location's project key.
func (b Board) BelongsTo(projectKey string) bool {
	if projectKey == "" {
		return false
	}
	if strings.Contains(b.Name, projectKey) {
		return true
	}
	return b.Location != nil && b.Location.ProjectKey == projectKey
}

// FilterBoardsByProject keeps the boards that belong to projectKey, in order.
func FilterBoardsByProject(boards []Board, projectKey string) []Board {
	out := make([]Board, 0, len(boards))
	for _, b := range boards {
		if b.BelongsTo(projectKey) {
			out = append(out, b)
		}
	}
	return out
}

// Project is a remote project.
type Project struct {
	ID             string `json:"id"`
	Key            string `json:"key"`
	Name           string `json:"name"`
	ProjectTypeKey string `json:"projectTypeKey"`
	Description    string `json:"description,omitempty"`
	Lead           *User  `json:"lead,omitempty"`
}

// Epic is an epic listed on a board.
type Epic struct {
	ID      int        `json:"id"`
	Key     string     `json:"key"`
	Name    string     `json:"name"`
	Summary string     `json:"summary"`
	Done    bool       `json:"done"`
	Color   *EpicColor `json:"color,omitempty"`
}

// EpicColor is the board colour key of an epic.
type EpicColor struct {
	Key string `json:"key"`
}
