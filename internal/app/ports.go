package app

import (
	"context"
	"time"

	"github.com/hylla/jdeck/internal/domain"
)

// Tracker is the remote resource client the controller drives.
type Tracker interface {
	GetIssue(ctx context.Context, key string) (domain.Issue, error)
	ListSprintIssues(ctx context.Context, boardID, sprintID int) ([]domain.Issue, error)
	ListBacklog(ctx context.Context, boardID int) ([]domain.Issue, error)
	ListTransitions(ctx context.Context, key string) ([]domain.Transition, error)
	TransitionIssue(ctx context.Context, key, transitionID string) error
	UpdateIssue(ctx context.Context, key string, update domain.IssueUpdate) error
	AddComment(ctx context.Context, key, body string) (domain.Comment, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListBoards(ctx context.Context) ([]domain.Board, error)
	ListBoardSprints(ctx context.Context, boardID int) ([]domain.Sprint, error)
	UpdateSprint(ctx context.Context, sprintID int, update domain.SprintUpdate) (domain.Sprint, error)
}

// Journal stores a record of mutations made from this client.
type Journal interface {
	RecordActivity(ctx context.Context, activity domain.Activity) error
}

// Logger is the structured logger used for recoverable failures.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// IDGenerator returns unique identifiers for journal entries.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
