// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"

	"github.com/hylla/jdeck/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrUpstream reports a remote tracker failure other than a missing resource.
var ErrUpstream = errors.New("upstream request failed")

// Tracker is the remote resource surface served over HTTP and MCP.
type Tracker interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListBoards(ctx context.Context) ([]domain.Board, error)
	GetBoard(ctx context.Context, boardID int) (domain.Board, error)
	ListBoardSprints(ctx context.Context, boardID int) ([]domain.Sprint, error)
	GetSprint(ctx context.Context, sprintID int) (domain.Sprint, error)
	ListSprintIssues(ctx context.Context, boardID, sprintID int) ([]domain.Issue, error)
	ListBacklog(ctx context.Context, boardID int) ([]domain.Issue, error)
	ListBoardEpics(ctx context.Context, boardID int) ([]domain.Epic, error)
	ListEpicIssues(ctx context.Context, epicID int) ([]domain.Issue, error)
	GetIssue(ctx context.Context, key string) (domain.Issue, error)
	ListTransitions(ctx context.Context, key string) ([]domain.Transition, error)
	TransitionIssue(ctx context.Context, key, transitionID string) error
	AddComment(ctx context.Context, key, body string) (domain.Comment, error)
}

// Journal records mutations performed through the server.
type Journal interface {
	RecordActivity(ctx context.Context, activity domain.Activity) error
}

// Logger is the narrow structured logger used by the server adapters.
type Logger interface {
	Warn(msg string, keyvals ...any)
}

// TransitionIssueRequest captures input for applying one transition.
type TransitionIssueRequest struct {
	Key          string `json:"key"`
	TransitionID string `json:"transition_id"`
}

// AddCommentRequest captures input for posting one comment.
type AddCommentRequest struct {
	Key  string `json:"key"`
	Body string `json:"body"`
}

// TransitionResult is the issue state after a transition was applied.
type TransitionResult struct {
	Key    string `json:"key"`
	Status string `json:"status"`
}

// Reader lists the read operations both transports expose.
type Reader interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListBoards(ctx context.Context) ([]domain.Board, error)
	GetBoard(ctx context.Context, boardID int) (domain.Board, error)
	ListBoardSprints(ctx context.Context, boardID int) ([]domain.Sprint, error)
	GetSprint(ctx context.Context, sprintID int) (domain.Sprint, error)
	ListSprintIssues(ctx context.Context, boardID, sprintID int) ([]domain.Issue, error)
	ListBacklog(ctx context.Context, boardID int) ([]domain.Issue, error)
	ListBoardEpics(ctx context.Context, boardID int) ([]domain.Epic, error)
	ListEpicIssues(ctx context.Context, epicID int) ([]domain.Issue, error)
	GetIssue(ctx context.Context, key string) (domain.Issue, error)
	ListTransitions(ctx context.Context, key string) ([]domain.Transition, error)
}

// Writer lists the mutations exposed over MCP.
type Writer interface {
	TransitionIssue(ctx context.Context, req TransitionIssueRequest) (TransitionResult, error)
	AddComment(ctx context.Context, req AddCommentRequest) (domain.Comment, error)
}
