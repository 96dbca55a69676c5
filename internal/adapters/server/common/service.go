package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hylla/jdeck/internal/adapters/jira"
	"github.com/hylla/jdeck/internal/domain"
)

// Service maps transport contracts onto the remote tracker, translating
// failures into the transport error set.
type Service struct {
	tracker Tracker
	journal Journal
	logger  Logger
	now     func() time.Time
	newID   func() string
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithJournal records server-side mutations.
func WithJournal(journal Journal) ServiceOption {
	return func(s *Service) {
		s.journal = journal
	}
}

// WithLogger sets the logger used for journal failures.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds one transport service over tracker.
func NewService(tracker Tracker, opts ...ServiceOption) *Service {
	s := &Service{
		tracker: tracker,
		logger:  noopLogger{},
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ListProjects lists visible projects.
func (s *Service) ListProjects(ctx context.Context) ([]domain.Project, error) {
	out, err := s.tracker.ListProjects(ctx)
	return out, mapTrackerError("list projects", err)
}

// ListBoards lists visible boards.
func (s *Service) ListBoards(ctx context.Context) ([]domain.Board, error) {
	out, err := s.tracker.ListBoards(ctx)
	return out, mapTrackerError("list boards", err)
}

// GetBoard fetches one board.
func (s *Service) GetBoard(ctx context.Context, boardID int) (domain.Board, error) {
	if err := requirePositive("board_id", boardID); err != nil {
		return domain.Board{}, err
	}
	out, err := s.tracker.GetBoard(ctx, boardID)
	return out, mapTrackerError("get board", err)
}

// ListBoardSprints lists the sprints of one board.
func (s *Service) ListBoardSprints(ctx context.Context, boardID int) ([]domain.Sprint, error) {
	if err := requirePositive("board_id", boardID); err != nil {
		return nil, err
	}
	out, err := s.tracker.ListBoardSprints(ctx, boardID)
	return out, mapTrackerError("list board sprints", err)
}

// GetSprint fetches one sprint.
func (s *Service) GetSprint(ctx context.Context, sprintID int) (domain.Sprint, error) {
	if err := requirePositive("sprint_id", sprintID); err != nil {
		return domain.Sprint{}, err
	}
	out, err := s.tracker.GetSprint(ctx, sprintID)
	return out, mapTrackerError("get sprint", err)
}

// ListSprintIssues lists the issues of one sprint, newest key first.
func (s *Service) ListSprintIssues(ctx context.Context, boardID, sprintID int) ([]domain.Issue, error) {
	if err := requirePositive("board_id", boardID); err != nil {
		return nil, err
	}
	if err := requirePositive("sprint_id", sprintID); err != nil {
		return nil, err
	}
	out, err := s.tracker.ListSprintIssues(ctx, boardID, sprintID)
	if err != nil {
		return nil, mapTrackerError("list sprint issues", err)
	}
	domain.SortIssuesByKeyDesc(out)
	return out, nil
}

// ListBacklog lists the backlog of one board, newest key first.
func (s *Service) ListBacklog(ctx context.Context, boardID int) ([]domain.Issue, error) {
	if err := requirePositive("board_id", boardID); err != nil {
		return nil, err
	}
	out, err := s.tracker.ListBacklog(ctx, boardID)
	if err != nil {
		return nil, mapTrackerError("list backlog", err)
	}
	domain.SortIssuesByKeyDesc(out)
	return out, nil
}

// ListBoardEpics lists the epics of one board.
func (s *Service) ListBoardEpics(ctx context.Context, boardID int) ([]domain.Epic, error) {
	if err := requirePositive("board_id", boardID); err != nil {
		return nil, err
	}
	out, err := s.tracker.ListBoardEpics(ctx, boardID)
	return out, mapTrackerError("list board epics", err)
}

// ListEpicIssues lists the issues of one epic.
func (s *Service) ListEpicIssues(ctx context.Context, epicID int) ([]domain.Issue, error) {
	if err := requirePositive("epic_id", epicID); err != nil {
		return nil, err
	}
	out, err := s.tracker.ListEpicIssues(ctx, epicID)
	return out, mapTrackerError("list epic issues", err)
}

// GetIssue fetches one issue.
func (s *Service) GetIssue(ctx context.Context, key string) (domain.Issue, error) {
	key, err := requireKey(key)
	if err != nil {
		return domain.Issue{}, err
	}
	out, err := s.tracker.GetIssue(ctx, key)
	return out, mapTrackerError("get issue", err)
}

// ListTransitions lists the transitions available to one issue.
func (s *Service) ListTransitions(ctx context.Context, key string) ([]domain.Transition, error) {
	key, err := requireKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.tracker.ListTransitions(ctx, key)
	return out, mapTrackerError("list transitions", err)
}

// TransitionIssue applies one transition and reports the resulting status.
func (s *Service) TransitionIssue(ctx context.Context, req TransitionIssueRequest) (TransitionResult, error) {
	key, err := requireKey(req.Key)
	if err != nil {
		return TransitionResult{}, err
	}
	transitionID := strings.TrimSpace(req.TransitionID)
	if transitionID == "" {
		return TransitionResult{}, fmt.Errorf("transition_id is required: %w", ErrInvalidRequest)
	}
	before, err := s.tracker.GetIssue(ctx, key)
	if err != nil {
		return TransitionResult{}, mapTrackerError("transition issue", err)
	}
	if err := s.tracker.TransitionIssue(ctx, key, transitionID); err != nil {
		return TransitionResult{}, mapTrackerError("transition issue", err)
	}
	after, err := s.tracker.GetIssue(ctx, key)
	if err != nil {
		return TransitionResult{}, mapTrackerError("reload issue", err)
	}
	s.record(ctx, domain.ActivityTransition, key, before.Fields.Status.Name+" -> "+after.Fields.Status.Name)
	return TransitionResult{Key: key, Status: after.Fields.Status.Name}, nil
}

// AddComment posts one comment.
func (s *Service) AddComment(ctx context.Context, req AddCommentRequest) (domain.Comment, error) {
	key, err := requireKey(req.Key)
	if err != nil {
		return domain.Comment{}, err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return domain.Comment{}, fmt.Errorf("body is required: %w", ErrInvalidRequest)
	}
	comment, err := s.tracker.AddComment(ctx, key, body)
	if err != nil {
		return domain.Comment{}, mapTrackerError("add comment", err)
	}
	s.record(ctx, domain.ActivityComment, key, body)
	return comment, nil
}

// record journals one mutation. Failures are logged and never surface.
func (s *Service) record(ctx context.Context, action domain.ActivityAction, target, detail string) {
	if s.journal == nil {
		return
	}
	activity, err := domain.NewActivity(domain.ActivityInput{
		ID:     s.newID(),
		Action: action,
		Target: target,
		Detail: detail,
	}, s.now())
	if err == nil {
		err = s.journal.RecordActivity(ctx, activity)
	}
	if err != nil {
		s.logger.Warn("record activity failed", "action", action, "target", target, "err", err)
	}
}

// remoteError is satisfied by tracker errors that carry a response status.
type remoteError interface {
	HTTPStatus() int
}

// mapTrackerError maps tracker failures onto the transport error set.
func mapTrackerError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var remote remoteError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", operation, err)
	case errors.Is(err, jira.ErrInvalidArgument), errors.Is(err, domain.ErrEmptyUpdate):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	case errors.As(err, &remote) && remote.HTTPStatus() == 404:
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	default:
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrUpstream, err))
	}
}

func requirePositive(name string, id int) error {
	if id <= 0 {
		return fmt.Errorf("%s must be > 0: %w", name, ErrInvalidRequest)
	}
	return nil
}

func requireKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("key is required: %w", ErrInvalidRequest)
	}
	return key, nil
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}
