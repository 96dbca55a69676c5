package app

import (
	"cmp"
	"slices"

	"github.com/hylla/jdeck/internal/domain"
)

// NoSprintsName is shown as the sprint title when the board has no sprints.
const NoSprintsName = "No Sprints Available"

// SprintView holds the issues of the sprint on screen.
type SprintView struct {
	SprintID int
	Name     string
	Goal     string
	Issues   Cursor[domain.Issue]
}

func (v *SprintView) set(sprint domain.Sprint, issues []domain.Issue) {
	v.SprintID = sprint.ID
	v.Name = sprint.Name
	v.Goal = sprint.Goal
	v.Issues.Set(sortedIssues(issues))
}

func (v *SprintView) setEmpty(name string) {
	v.SprintID = 0
	v.Name = name
	v.Goal = ""
	v.Issues.Set(nil)
}

// BacklogView holds the backlog issues of one board.
type BacklogView struct {
	BoardID int
	Issues  Cursor[domain.Issue]
}

func (v *BacklogView) set(boardID int, issues []domain.Issue) {
	v.BoardID = boardID
	v.Issues.Set(sortedIssues(issues))
}

// IssueDetail holds the issue on the detail screen and its transitions.
type IssueDetail struct {
	Issue           domain.Issue
	Loaded          bool
	Transitions     Cursor[domain.Transition]
	ShowTransitions bool
	ReturnMode      Mode
}

// Selector is a pick list that only navigates while active.
type Selector[T any] struct {
	Cursor[T]
	Active bool
}

// Next moves down when the selector is active.
func (s *Selector[T]) Next() {
	if s.Active {
		s.Cursor.Next()
	}
}

// Prev moves up when the selector is active.
func (s *Selector[T]) Prev() {
	if s.Active {
		s.Cursor.Prev()
	}
}

func (s *Selector[T]) activate(items []T) {
	s.Set(items)
	s.Active = true
}

func sortedIssues(issues []domain.Issue) []domain.Issue {
	out := slices.Clone(issues)
	domain.SortIssuesByKeyDesc(out)
	return out
}

// sprintsNewestFirst orders sprints for the selector.
func sprintsNewestFirst(sprints []domain.Sprint) []domain.Sprint {
	out := slices.Clone(sprints)
	slices.SortStableFunc(out, func(a, b domain.Sprint) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func boardsByName(boards []domain.Board) []domain.Board {
	out := slices.Clone(boards)
	slices.SortStableFunc(out, func(a, b domain.Board) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
