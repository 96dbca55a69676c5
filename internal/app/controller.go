package app

import (
	"context"
	"slices"
	"time"

	"charm.land/bubbles/v2/key"

	"github.com/hylla/jdeck/internal/domain"
	"github.com/hylla/jdeck/internal/events"
)

// DefaultStatusTTL is how long a status message stays visible.
const DefaultStatusTTL = 5 * time.Second

// ControllerConfig holds configuration for the controller.
type ControllerConfig struct {
	DefaultBoardID  int
	RefreshInterval time.Duration
	StatusTTL       time.Duration
}

// Option configures optional collaborators.
type Option func(*Controller)

// WithJournal records successful mutations.
func WithJournal(journal Journal) Option {
	return func(c *Controller) {
		c.journal = journal
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClipboard sets the function used to copy issue keys.
func WithClipboard(copyText func(string) error) Option {
	return func(c *Controller) {
		c.copyText = copyText
	}
}

// WithDefaultBoardSaver persists the board chosen by the operator.
func WithDefaultBoardSaver(save func(boardID int) error) Option {
	return func(c *Controller) {
		c.saveBoard = save
	}
}

// Status is the transient message under the main view.
type Status struct {
	Text string
	Err  bool
	At   time.Time
}

// Controller owns every piece of view state and drives the tracker. It is not
// safe for concurrent use; a single event loop calls it one event at a time.
type Controller struct {
	tracker   Tracker
	journal   Journal
	logger    Logger
	idGen     IDGenerator
	clock     Clock
	copyText  func(string) error
	saveBoard func(int) error
	keys      KeyMap

	refreshInterval time.Duration
	statusTTL       time.Duration

	mode     Mode
	showHelp bool
	quitting bool

	defaultBoardID  int
	currentSprintID int

	projects         []domain.Project
	allBoards        []domain.Board
	availableBoards  []domain.Board
	availableSprints []domain.Sprint

	sprint          SprintView
	backlog         BacklogView
	detail          IssueDetail
	sprintSelector  Selector[domain.Sprint]
	boardSelector   Selector[domain.Board]
	projectSelector Selector[domain.Project]
	input           InputBuffer

	status      Status
	lastRefresh time.Time
}

// NewController constructs a controller in Sprint mode with empty views.
func NewController(tracker Tracker, idGen IDGenerator, clock Clock, cfg ControllerConfig, opts ...Option) *Controller {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.StatusTTL <= 0 {
		cfg.StatusTTL = DefaultStatusTTL
	}
	c := &Controller{
		tracker:         tracker,
		logger:          noopLogger{},
		idGen:           idGen,
		clock:           clock,
		keys:            DefaultKeyMap(),
		refreshInterval: max(cfg.RefreshInterval, 0),
		statusTTL:       cfg.StatusTTL,
		mode:            ModeSprint,
		defaultBoardID:  max(cfg.DefaultBoardID, 0),
	}
	c.sprint.setEmpty("")
	c.backlog.Issues.Set(nil)
	c.detail.Transitions.Set(nil)
	c.sprintSelector.Set(nil)
	c.boardSelector.Set(nil)
	c.projectSelector.Set(nil)
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// HandleEvent applies one event and reports whether shutdown was requested.
// A returned error aborted the current step only; view state committed before
// the failing call is left as it was.
func (c *Controller) HandleEvent(ctx context.Context, ev events.Event) (bool, error) {
	var err error
	switch ev.Type {
	case events.TypeTick:
		err = c.onTick(ctx)
	case events.TypeKey:
		err = c.onKey(ctx, ev.Key)
	}
	return c.quitting, err
}

// ReportError logs a recoverable failure and shows it on the status line.
func (c *Controller) ReportError(err error) {
	if err == nil {
		return
	}
	c.logger.Warn("action failed", "mode", c.mode.String(), "err", err)
	c.status = Status{Text: describeError(err), Err: true, At: c.clock()}
}

func (c *Controller) setInfo(text string) {
	c.status = Status{Text: text, At: c.clock()}
}

func (c *Controller) onTick(ctx context.Context) error {
	now := c.clock()
	if c.status.Text != "" && now.Sub(c.status.At) >= c.statusTTL {
		c.status = Status{}
	}
	if c.refreshInterval <= 0 || c.showHelp || c.lastRefresh.IsZero() {
		return nil
	}
	if now.Sub(c.lastRefresh) < c.refreshInterval {
		return nil
	}
	switch c.mode {
	case ModeSprint:
		c.lastRefresh = now
		return c.refreshSprint(ctx)
	case ModeBacklog:
		c.lastRefresh = now
		return c.loadBacklog(ctx)
	}
	return nil
}

func (c *Controller) onKey(ctx context.Context, k events.Key) error {
	if key.Matches(k, c.keys.forceQuit) {
		c.quitting = true
		return nil
	}
	if c.showHelp {
		switch {
		case key.Matches(k, c.keys.quit):
			c.quitting = true
		case key.Matches(k, c.keys.help, c.keys.back):
			c.showHelp = false
		}
		return nil
	}
	if c.mode.TextEntry() {
		return c.onTextKey(ctx, k)
	}
	switch {
	case key.Matches(k, c.keys.quit):
		c.quitting = true
		return nil
	case key.Matches(k, c.keys.help):
		c.showHelp = true
		return nil
	}

	switch c.mode {
	case ModeSprint:
		return c.onSprintKey(ctx, k)
	case ModeBacklog:
		return c.onBacklogKey(ctx, k)
	case ModeIssueDetail:
		return c.onDetailKey(ctx, k)
	case ModeSprintSelector:
		return c.onSprintSelectorKey(ctx, k)
	case ModeBoardSelector:
		return c.onBoardSelectorKey(ctx, k)
	case ModeProjectSelector:
		return c.onProjectSelectorKey(ctx, k)
	}
	return nil
}

func (c *Controller) onSprintKey(ctx context.Context, k events.Key) error {
	switch {
	case key.Matches(k, c.keys.sprint):
		c.mode = ModeSprint
	case key.Matches(k, c.keys.backlog):
		if err := c.loadBacklog(ctx); err != nil {
			return err
		}
		c.mode = ModeBacklog
	case key.Matches(k, c.keys.refresh):
		return c.refreshSprint(ctx)
	case key.Matches(k, c.keys.sprintSelector):
		c.sprintSelector.activate(sprintsNewestFirst(c.availableSprints))
		c.mode = ModeSprintSelector
	case key.Matches(k, c.keys.boardSelector):
		c.boardSelector.activate(boardsByName(c.availableBoards))
		c.mode = ModeBoardSelector
	case key.Matches(k, c.keys.projectSelector):
		c.projectSelector.activate(slices.Clone(c.projects))
		c.mode = ModeProjectSelector
	case key.Matches(k, c.keys.down):
		c.sprint.Issues.Next()
	case key.Matches(k, c.keys.up):
		c.sprint.Issues.Prev()
	case key.Matches(k, c.keys.enter):
		if issue, ok := c.sprint.Issues.Selected(); ok {
			return c.openIssue(ctx, issue, ModeSprint)
		}
	}
	return nil
}

func (c *Controller) onBacklogKey(ctx context.Context, k events.Key) error {
	switch {
	case key.Matches(k, c.keys.sprint):
		if err := c.refreshSprint(ctx); err != nil {
			return err
		}
		c.mode = ModeSprint
	case key.Matches(k, c.keys.backlog):
		c.mode = ModeBacklog
	case key.Matches(k, c.keys.refresh):
		return c.loadBacklog(ctx)
	case key.Matches(k, c.keys.down):
		c.backlog.Issues.Next()
	case key.Matches(k, c.keys.up):
		c.backlog.Issues.Prev()
	case key.Matches(k, c.keys.enter):
		if issue, ok := c.backlog.Issues.Selected(); ok {
			return c.openIssue(ctx, issue, ModeBacklog)
		}
	}
	return nil
}

func (c *Controller) onDetailKey(ctx context.Context, k events.Key) error {
	switch {
	case key.Matches(k, c.keys.back):
		if c.detail.ShowTransitions {
			c.detail.ShowTransitions = false
			return nil
		}
		c.mode = c.detail.ReturnMode
	case key.Matches(k, c.keys.comment):
		c.input.Reset("Add Comment", "")
		c.mode = ModeAddComment
	case key.Matches(k, c.keys.editSummary):
		c.input.Reset("Edit Summary", c.detail.Issue.Fields.Summary)
		c.mode = ModeEditIssue
	case key.Matches(k, c.keys.transitions):
		c.detail.ShowTransitions = true
	case key.Matches(k, c.keys.copyKey):
		return c.copyIssueKey()
	case c.detail.ShowTransitions && key.Matches(k, c.keys.down):
		c.detail.Transitions.Next()
	case c.detail.ShowTransitions && key.Matches(k, c.keys.up):
		c.detail.Transitions.Prev()
	case c.detail.ShowTransitions && key.Matches(k, c.keys.enter):
		return c.applyTransition(ctx)
	}
	return nil
}

func (c *Controller) onSprintSelectorKey(ctx context.Context, k events.Key) error {
	switch {
	case key.Matches(k, c.keys.back):
		c.sprintSelector.Active = false
		c.mode = ModeSprint
	case key.Matches(k, c.keys.down):
		c.sprintSelector.Next()
	case key.Matches(k, c.keys.up):
		c.sprintSelector.Prev()
	case key.Matches(k, c.keys.enter):
		return c.chooseSprint(ctx)
	case key.Matches(k, c.keys.editName):
		if sprint, ok := c.sprintSelector.Selected(); ok {
			c.input.Reset("Edit Sprint Name", sprint.Name)
			c.mode = ModeEditSprintName
		}
	}
	return nil
}

func (c *Controller) onBoardSelectorKey(ctx context.Context, k events.Key) error {
	switch {
	case key.Matches(k, c.keys.back):
		c.boardSelector.Active = false
		c.mode = ModeSprint
	case key.Matches(k, c.keys.down):
		c.boardSelector.Next()
	case key.Matches(k, c.keys.up):
		c.boardSelector.Prev()
	case key.Matches(k, c.keys.enter):
		return c.chooseBoard(ctx)
	}
	return nil
}

func (c *Controller) onProjectSelectorKey(ctx context.Context, k events.Key) error {
	switch {
	case key.Matches(k, c.keys.back):
		c.projectSelector.Active = false
		c.mode = ModeSprint
	case key.Matches(k, c.keys.down):
		c.projectSelector.Next()
	case key.Matches(k, c.keys.up):
		c.projectSelector.Prev()
	case key.Matches(k, c.keys.enter):
		return c.chooseProject(ctx)
	}
	return nil
}

func (c *Controller) onTextKey(ctx context.Context, k events.Key) error {
	switch {
	case key.Matches(k, c.keys.back):
		c.input.Clear()
		c.mode = c.textReturnMode()
	case key.Matches(k, c.keys.enter):
		switch c.mode {
		case ModeAddComment:
			return c.submitComment(ctx)
		case ModeEditIssue:
			return c.submitSummary(ctx)
		case ModeEditSprintName:
			return c.submitSprintName(ctx)
		}
	case key.Matches(k, c.keys.backspace):
		c.input.Backspace()
	case key.Matches(k, c.keys.left):
		c.input.Left()
	case key.Matches(k, c.keys.right):
		c.input.Right()
	case k.Printable():
		c.input.Insert(k.Rune)
	}
	return nil
}

func (c *Controller) textReturnMode() Mode {
	if c.mode == ModeEditSprintName {
		return ModeSprintSelector
	}
	return ModeIssueDetail
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// ShowHelp reports whether the help overlay is open.
func (c *Controller) ShowHelp() bool { return c.showHelp }

// Quitting reports whether shutdown was requested.
func (c *Controller) Quitting() bool { return c.quitting }

// Status returns the status line message.
func (c *Controller) Status() Status { return c.status }

// Keys returns the key bindings.
func (c *Controller) Keys() KeyMap { return c.keys }

// SprintView returns the sprint screen state.
func (c *Controller) SprintView() SprintView { return c.sprint }

// BacklogView returns the backlog screen state.
func (c *Controller) BacklogView() BacklogView { return c.backlog }

// IssueDetail returns the issue detail screen state.
func (c *Controller) IssueDetail() IssueDetail { return c.detail }

// SprintSelector returns the sprint pick list.
func (c *Controller) SprintSelector() Selector[domain.Sprint] { return c.sprintSelector }

// BoardSelector returns the board pick list.
func (c *Controller) BoardSelector() Selector[domain.Board] { return c.boardSelector }

// ProjectSelector returns the project pick list.
func (c *Controller) ProjectSelector() Selector[domain.Project] { return c.projectSelector }

// Input returns the text entry buffer.
func (c *Controller) Input() InputBuffer { return c.input }

// DefaultBoardID returns the board whose sprints are shown, 0 when none.
func (c *Controller) DefaultBoardID() int { return c.defaultBoardID }

// CurrentSprintID returns the remembered sprint id, 0 when unset.
func (c *Controller) CurrentSprintID() int { return c.currentSprintID }

// AvailableBoards returns the boards offered by the board selector.
func (c *Controller) AvailableBoards() []domain.Board { return c.availableBoards }

// AvailableSprints returns the cached sprints of the current board, oldest first.
func (c *Controller) AvailableSprints() []domain.Sprint { return c.availableSprints }

// Projects returns the known projects.
func (c *Controller) Projects() []domain.Project { return c.projects }

// CurrentBoard returns the board whose sprints are shown.
func (c *Controller) CurrentBoard() (domain.Board, bool) {
	for _, b := range c.allBoards {
		if b.ID == c.defaultBoardID {
			return b, true
		}
	}
	return domain.Board{}, false
}
