package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/jdeck/internal/domain"
)

// Initialize loads projects and boards, picks a default board when none is
// configured, then loads the current sprint. Project and board failures
// degrade to empty lists. The returned error covers the sprint load only and
// never leaves the controller unusable.
func (c *Controller) Initialize(ctx context.Context) error {
	projects, err := c.tracker.ListProjects(ctx)
	if err != nil {
		c.logger.Warn("load projects failed", "err", err)
		projects = nil
	}
	boards, err := c.tracker.ListBoards(ctx)
	if err != nil {
		c.logger.Warn("load boards failed", "err", err)
		boards = nil
	}
	c.projects = projects
	c.allBoards = boards
	c.availableBoards = boards
	if c.defaultBoardID == 0 && len(boards) > 0 {
		c.defaultBoardID = boards[0].ID
	}
	c.logger.Info("controller initialized", "projects", len(projects), "boards", len(boards), "board_id", c.defaultBoardID)

	// Ticks retry from here even when the first load fails.
	c.lastRefresh = c.clock()
	if err := c.refreshSprint(ctx); err != nil {
		return fmt.Errorf("load current sprint: %w", err)
	}
	return nil
}

// refreshSprint reloads the sprint view. The sprint list is fetched only when
// the cache is empty. Without a remembered sprint the highest id wins.
func (c *Controller) refreshSprint(ctx context.Context) error {
	if c.defaultBoardID == 0 {
		return nil
	}
	boardID := c.defaultBoardID
	sprints := c.availableSprints
	if len(sprints) == 0 {
		fetched, err := c.tracker.ListBoardSprints(ctx, boardID)
		if err != nil {
			return err
		}
		domain.SortSprintsByID(fetched)
		sprints = fetched
	}

	target, ok := pickSprint(sprints, c.currentSprintID)
	if !ok {
		c.availableSprints = sprints
		c.currentSprintID = 0
		c.sprint.setEmpty(NoSprintsName)
		c.lastRefresh = c.clock()
		return nil
	}

	issues, err := c.tracker.ListSprintIssues(ctx, boardID, target.ID)
	if err != nil {
		return err
	}
	c.availableSprints = sprints
	c.currentSprintID = target.ID
	c.sprint.set(target, issues)
	c.lastRefresh = c.clock()
	return nil
}

// pickSprint returns the remembered sprint, or the last one when the id is
// unset or no longer listed.
func pickSprint(sprints []domain.Sprint, currentID int) (domain.Sprint, bool) {
	if len(sprints) == 0 {
		return domain.Sprint{}, false
	}
	if currentID != 0 {
		for _, s := range sprints {
			if s.ID == currentID {
				return s, true
			}
		}
	}
	return sprints[len(sprints)-1], true
}

func (c *Controller) loadBacklog(ctx context.Context) error {
	if c.defaultBoardID == 0 {
		return ErrNoBoard
	}
	boardID := c.defaultBoardID
	issues, err := c.tracker.ListBacklog(ctx, boardID)
	if err != nil {
		return err
	}
	c.backlog.set(boardID, issues)
	c.lastRefresh = c.clock()
	return nil
}

// openIssue fetches a fresh snapshot of issue and its transitions, then shows
// the detail screen.
func (c *Controller) openIssue(ctx context.Context, issue domain.Issue, from Mode) error {
	fresh, err := c.tracker.GetIssue(ctx, issue.Key)
	if err != nil {
		return err
	}
	transitions, err := c.tracker.ListTransitions(ctx, issue.Key)
	if err != nil {
		return err
	}
	c.detail = IssueDetail{Issue: fresh, Loaded: true, ReturnMode: from}
	c.detail.Transitions.Set(transitions)
	c.mode = ModeIssueDetail
	return nil
}

func (c *Controller) applyTransition(ctx context.Context) error {
	if !c.detail.Loaded {
		return ErrNoIssue
	}
	transition, ok := c.detail.Transitions.Selected()
	c.detail.ShowTransitions = false
	if !ok {
		return nil
	}
	issueKey := c.detail.Issue.Key
	from := c.detail.Issue.Fields.Status.Name
	if err := c.tracker.TransitionIssue(ctx, issueKey, transition.ID); err != nil {
		return err
	}
	c.record(ctx, domain.ActivityTransition, issueKey, fmt.Sprintf("%s -> %s", from, transition.To.Name))

	issue, err := c.tracker.GetIssue(ctx, issueKey)
	if err != nil {
		return err
	}
	transitions, err := c.tracker.ListTransitions(ctx, issueKey)
	if err != nil {
		return err
	}
	c.detail.Issue = issue
	c.detail.Transitions.Set(transitions)
	c.replaceIssue(issue)
	c.setInfo(fmt.Sprintf("%s moved to %s", issueKey, issue.Fields.Status.Name))
	return nil
}

func (c *Controller) submitComment(ctx context.Context) error {
	body := strings.TrimSpace(c.input.Value())
	if body == "" {
		c.input.Clear()
		c.mode = ModeIssueDetail
		return nil
	}
	if !c.detail.Loaded {
		return ErrNoIssue
	}
	issueKey := c.detail.Issue.Key
	if _, err := c.tracker.AddComment(ctx, issueKey, body); err != nil {
		return err
	}
	c.record(ctx, domain.ActivityComment, issueKey, truncate(body, 80))

	// The comment exists remotely from here on, so the buffer is dropped even
	// if the re-fetch fails to avoid posting it twice.
	c.input.Clear()
	c.mode = ModeIssueDetail
	issue, err := c.tracker.GetIssue(ctx, issueKey)
	if err != nil {
		return err
	}
	c.detail.Issue = issue
	c.setInfo("comment added to " + issueKey)
	return nil
}

func (c *Controller) submitSummary(ctx context.Context) error {
	summary := strings.TrimSpace(c.input.Value())
	if !c.detail.Loaded {
		return ErrNoIssue
	}
	issueKey := c.detail.Issue.Key
	previous := c.detail.Issue.Fields.Summary
	if summary == "" || summary == previous {
		c.input.Clear()
		c.mode = ModeIssueDetail
		return nil
	}
	if err := c.tracker.UpdateIssue(ctx, issueKey, domain.IssueUpdate{Summary: &summary}); err != nil {
		return err
	}
	c.record(ctx, domain.ActivitySummaryEdit, issueKey, truncate(previous, 60)+" -> "+truncate(summary, 60))

	c.input.Clear()
	c.mode = ModeIssueDetail
	issue, err := c.tracker.GetIssue(ctx, issueKey)
	if err != nil {
		return err
	}
	c.detail.Issue = issue
	c.replaceIssue(issue)
	c.setInfo("summary updated on " + issueKey)
	return nil
}

func (c *Controller) chooseSprint(ctx context.Context) error {
	sprint, ok := c.sprintSelector.Selected()
	if !ok {
		c.sprintSelector.Active = false
		c.mode = ModeSprint
		return nil
	}
	if c.defaultBoardID == 0 {
		return ErrNoBoard
	}
	issues, err := c.tracker.ListSprintIssues(ctx, c.defaultBoardID, sprint.ID)
	if err != nil {
		return err
	}
	c.currentSprintID = sprint.ID
	c.sprint.set(sprint, issues)
	c.sprintSelector.Active = false
	c.mode = ModeSprint
	c.lastRefresh = c.clock()
	return nil
}

func (c *Controller) submitSprintName(ctx context.Context) error {
	name := strings.TrimSpace(c.input.Value())
	sprint, ok := c.sprintSelector.Selected()
	if name == "" || !ok || name == sprint.Name {
		c.input.Clear()
		c.mode = ModeSprintSelector
		return nil
	}
	if c.defaultBoardID == 0 {
		return ErrNoBoard
	}
	updated, err := c.tracker.UpdateSprint(ctx, sprint.ID, domain.SprintUpdate{Name: &name})
	if err != nil {
		return err
	}
	c.record(ctx, domain.ActivitySprintName, fmt.Sprintf("sprint %d", sprint.ID), sprint.Name+" -> "+updated.Name)

	c.input.Clear()
	c.mode = ModeSprintSelector
	sprints, err := c.tracker.ListBoardSprints(ctx, c.defaultBoardID)
	if err != nil {
		return err
	}
	domain.SortSprintsByID(sprints)
	c.availableSprints = sprints
	c.sprintSelector.Set(sprintsNewestFirst(sprints))
	c.sprintSelector.SelectFunc(func(s domain.Sprint) bool { return s.ID == sprint.ID })
	if c.currentSprintID == sprint.ID {
		c.sprint.Name = updated.Name
	}
	c.setInfo("sprint renamed to " + updated.Name)
	return nil
}

func (c *Controller) chooseBoard(ctx context.Context) error {
	board, ok := c.boardSelector.Selected()
	c.boardSelector.Active = false
	c.mode = ModeSprint
	if !ok {
		return nil
	}
	return c.switchBoard(ctx, board)
}

// chooseProject narrows the board list to the selected project. A project
// with no matching boards closes the selector and changes nothing else.
func (c *Controller) chooseProject(ctx context.Context) error {
	project, ok := c.projectSelector.Selected()
	c.projectSelector.Active = false
	c.mode = ModeSprint
	if !ok {
		return nil
	}
	boards := domain.FilterBoardsByProject(c.allBoards, project.Key)
	if len(boards) == 0 {
		c.logger.Debug("project has no boards", "project", project.Key)
		return nil
	}
	c.availableBoards = boards
	return c.switchBoard(ctx, boards[0])
}

// switchBoard drops every sprint-scoped cache before loading the new board so
// nothing from the previous board can be shown against it.
func (c *Controller) switchBoard(ctx context.Context, board domain.Board) error {
	changed := board.ID != c.defaultBoardID
	c.defaultBoardID = board.ID
	c.availableSprints = nil
	c.currentSprintID = 0
	c.sprint.setEmpty(board.Name)
	c.backlog.set(0, nil)
	if changed {
		c.persistBoard(ctx, board)
	}
	return c.refreshSprint(ctx)
}

func (c *Controller) persistBoard(ctx context.Context, board domain.Board) {
	c.record(ctx, domain.ActivityBoardSelect, board.Name, fmt.Sprintf("board %d", board.ID))
	if c.saveBoard == nil {
		return
	}
	if err := c.saveBoard(board.ID); err != nil {
		c.ReportError(fmt.Errorf("save default board: %w", err))
	}
}

func (c *Controller) copyIssueKey() error {
	if !c.detail.Loaded {
		return ErrNoIssue
	}
	if c.copyText == nil {
		return errors.New("clipboard unavailable")
	}
	if err := c.copyText(c.detail.Issue.Key); err != nil {
		return fmt.Errorf("copy issue key: %w", err)
	}
	c.setInfo("copied " + c.detail.Issue.Key)
	return nil
}

// replaceIssue swaps the same-key entry in the list views for a fresh snapshot.
func (c *Controller) replaceIssue(issue domain.Issue) {
	sameKey := func(i domain.Issue) bool { return i.Key == issue.Key }
	c.sprint.Issues.ReplaceFunc(sameKey, issue)
	c.backlog.Issues.ReplaceFunc(sameKey, issue)
}

func (c *Controller) record(ctx context.Context, action domain.ActivityAction, target, detail string) {
	if c.journal == nil {
		return
	}
	activity, err := domain.NewActivity(domain.ActivityInput{
		ID:      c.idGen(),
		Action:  action,
		Target:  target,
		Detail:  detail,
		BoardID: c.defaultBoardID,
	}, c.clock())
	if err != nil {
		c.logger.Warn("build activity failed", "action", action, "err", err)
		return
	}
	if err := c.journal.RecordActivity(ctx, activity); err != nil {
		c.logger.Warn("record activity failed", "action", action, "err", err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
