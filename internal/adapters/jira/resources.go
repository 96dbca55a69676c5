package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hylla/jdeck/internal/domain"
)

// GetIssue fetches one issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (domain.Issue, error) {
	path, err := issuePath(key, "")
	if err != nil {
		return domain.Issue{}, err
	}
	var issue domain.Issue
	if err := c.core.do(ctx, http.MethodGet, path, nil, nil, &issue); err != nil {
		return domain.Issue{}, err
	}
	return issue, nil
}

// ListSprintIssues fetches the issues of one sprint on a board.
func (c *Client) ListSprintIssues(ctx context.Context, boardID, sprintID int) ([]domain.Issue, error) {
	if boardID <= 0 || sprintID <= 0 {
		return nil, fmt.Errorf("%w: board and sprint ids must be > 0", ErrInvalidArgument)
	}
	return collect[domain.Issue](ctx, c.agile, fmt.Sprintf("/board/%d/sprint/%d/issue", boardID, sprintID), nil)
}

// ListBacklog fetches the backlog issues of a board.
func (c *Client) ListBacklog(ctx context.Context, boardID int) ([]domain.Issue, error) {
	if boardID <= 0 {
		return nil, fmt.Errorf("%w: board id must be > 0", ErrInvalidArgument)
	}
	return collect[domain.Issue](ctx, c.agile, fmt.Sprintf("/board/%d/backlog", boardID), nil)
}

// ListTransitions fetches the transitions currently available to an issue.
func (c *Client) ListTransitions(ctx context.Context, key string) ([]domain.Transition, error) {
	path, err := issuePath(key, "/transitions")
	if err != nil {
		return nil, err
	}
	var resp struct {
		Transitions []domain.Transition `json:"transitions"`
	}
	if err := c.core.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Transitions == nil {
		return []domain.Transition{}, nil
	}
	return resp.Transitions, nil
}

// TransitionIssue applies a transition to an issue.
func (c *Client) TransitionIssue(ctx context.Context, key, transitionID string) error {
	path, err := issuePath(key, "/transitions")
	if err != nil {
		return err
	}
	transitionID = strings.TrimSpace(transitionID)
	if transitionID == "" {
		return fmt.Errorf("%w: transition id is required", ErrInvalidArgument)
	}
	body := map[string]any{
		"transition": map[string]string{"id": transitionID},
	}
	return c.core.do(ctx, http.MethodPost, path, nil, body, nil)
}

// UpdateIssue changes the fields named in update.
func (c *Client) UpdateIssue(ctx context.Context, key string, update domain.IssueUpdate) error {
	path, err := issuePath(key, "")
	if err != nil {
		return err
	}
	if update.Empty() {
		return domain.ErrEmptyUpdate
	}
	fields := map[string]any{}
	if update.Summary != nil {
		fields["summary"] = *update.Summary
	}
	if update.Description != nil {
		fields["description"] = domain.ADFDocument(*update.Description)
	}
	return c.core.do(ctx, http.MethodPut, path, nil, map[string]any{"fields": fields}, nil)
}

// AddComment posts a comment and returns it as stored by the server.
func (c *Client) AddComment(ctx context.Context, key, body string) (domain.Comment, error) {
	path, err := issuePath(key, "/comment")
	if err != nil {
		return domain.Comment{}, err
	}
	if strings.TrimSpace(body) == "" {
		return domain.Comment{}, fmt.Errorf("%w: comment body is required", ErrInvalidArgument)
	}
	var comment domain.Comment
	payload := map[string]any{"body": domain.ADFDocument(body)}
	if err := c.core.do(ctx, http.MethodPost, path, nil, payload, &comment); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

// ListProjects fetches every visible project.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return collect[domain.Project](ctx, c.core, "/project/search", nil)
}

// ListBoards fetches every visible board.
func (c *Client) ListBoards(ctx context.Context) ([]domain.Board, error) {
	return collect[domain.Board](ctx, c.agile, "/board", nil)
}

// GetBoard fetches one board.
func (c *Client) GetBoard(ctx context.Context, boardID int) (domain.Board, error) {
	if boardID <= 0 {
		return domain.Board{}, fmt.Errorf("%w: board id must be > 0", ErrInvalidArgument)
	}
	var board domain.Board
	if err := c.agile.do(ctx, http.MethodGet, fmt.Sprintf("/board/%d", boardID), nil, nil, &board); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

// ListBoardSprints fetches every sprint of a board.
func (c *Client) ListBoardSprints(ctx context.Context, boardID int) ([]domain.Sprint, error) {
	if boardID <= 0 {
		return nil, fmt.Errorf("%w: board id must be > 0", ErrInvalidArgument)
	}
	return collect[domain.Sprint](ctx, c.agile, fmt.Sprintf("/board/%d/sprint", boardID), nil)
}

// GetSprint fetches one sprint.
func (c *Client) GetSprint(ctx context.Context, sprintID int) (domain.Sprint, error) {
	if sprintID <= 0 {
		return domain.Sprint{}, fmt.Errorf("%w: sprint id must be > 0", ErrInvalidArgument)
	}
	var sprint domain.Sprint
	if err := c.agile.do(ctx, http.MethodGet, fmt.Sprintf("/sprint/%d", sprintID), nil, nil, &sprint); err != nil {
		return domain.Sprint{}, err
	}
	return sprint, nil
}

// UpdateSprint applies a partial update and returns the stored sprint.
func (c *Client) UpdateSprint(ctx context.Context, sprintID int, update domain.SprintUpdate) (domain.Sprint, error) {
	if sprintID <= 0 {
		return domain.Sprint{}, fmt.Errorf("%w: sprint id must be > 0", ErrInvalidArgument)
	}
	if update.Empty() {
		return domain.Sprint{}, domain.ErrEmptyUpdate
	}
	var sprint domain.Sprint
	if err := c.agile.do(ctx, http.MethodPost, fmt.Sprintf("/sprint/%d", sprintID), nil, update, &sprint); err != nil {
		return domain.Sprint{}, err
	}
	return sprint, nil
}

// ListBoardEpics fetches the epics of a board.
func (c *Client) ListBoardEpics(ctx context.Context, boardID int) ([]domain.Epic, error) {
	if boardID <= 0 {
		return nil, fmt.Errorf("%w: board id must be > 0", ErrInvalidArgument)
	}
	return collect[domain.Epic](ctx, c.agile, fmt.Sprintf("/board/%d/epic", boardID), nil)
}

// ListEpicIssues fetches the issues of an epic.
func (c *Client) ListEpicIssues(ctx context.Context, epicID int) ([]domain.Issue, error) {
	if epicID <= 0 {
		return nil, fmt.Errorf("%w: epic id must be > 0", ErrInvalidArgument)
	}
	return collect[domain.Issue](ctx, c.agile, fmt.Sprintf("/epic/%d/issue", epicID), nil)
}

func issuePath(key, suffix string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: issue key is required", ErrInvalidArgument)
	}
	return "/issue/" + url.PathEscape(key) + suffix, nil
}
