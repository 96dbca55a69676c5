package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/hylla/jdeck/internal/domain"
	"github.com/hylla/jdeck/internal/events"
)

// fakeTracker serves canned tracker data and records mutations.
type fakeTracker struct {
	projects     []domain.Project
	boards       []domain.Board
	sprints      map[int][]domain.Sprint
	sprintIssues map[int][]string
	backlog      map[int][]string
	issues       map[string]domain.Issue
	transitions  map[string][]domain.Transition

	projectsErr error
	boardsErr   error
	sprintsErr  error
	getErr      error

	onListBoardSprints func(boardID int)

	calls           []string
	transitionCalls []string
	comments        []string
	summaries       []string
	renames         []string
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		sprints:      map[int][]domain.Sprint{},
		sprintIssues: map[int][]string{},
		backlog:      map[int][]string{},
		issues:       map[string]domain.Issue{},
		transitions:  map[string][]domain.Transition{},
	}
}

func (f *fakeTracker) addIssue(key, summary, status string) {
	f.issues[key] = domain.Issue{
		ID:  key,
		Key: key,
		Fields: domain.IssueFields{
			Summary: summary,
			Status:  domain.Status{Name: status},
		},
	}
}

func (f *fakeTracker) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeTracker) lookup(keys []string) []domain.Issue {
	out := make([]domain.Issue, 0, len(keys))
	for _, key := range keys {
		out = append(out, f.issues[key])
	}
	return out
}

func (f *fakeTracker) GetIssue(_ context.Context, key string) (domain.Issue, error) {
	f.calls = append(f.calls, "GetIssue")
	if f.getErr != nil {
		return domain.Issue{}, f.getErr
	}
	issue, ok := f.issues[key]
	if !ok {
		return domain.Issue{}, fmt.Errorf("issue %s not found", key)
	}
	return issue, nil
}

func (f *fakeTracker) ListSprintIssues(_ context.Context, _ int, sprintID int) ([]domain.Issue, error) {
	f.calls = append(f.calls, "ListSprintIssues")
	return f.lookup(f.sprintIssues[sprintID]), nil
}

func (f *fakeTracker) ListBacklog(_ context.Context, boardID int) ([]domain.Issue, error) {
	f.calls = append(f.calls, "ListBacklog")
	return f.lookup(f.backlog[boardID]), nil
}

func (f *fakeTracker) ListTransitions(_ context.Context, key string) ([]domain.Transition, error) {
	f.calls = append(f.calls, "ListTransitions")
	return slices.Clone(f.transitions[key]), nil
}

func (f *fakeTracker) TransitionIssue(_ context.Context, key, transitionID string) error {
	f.calls = append(f.calls, "TransitionIssue")
	f.transitionCalls = append(f.transitionCalls, key+":"+transitionID)
	for _, tr := range f.transitions[key] {
		if tr.ID == transitionID {
			issue := f.issues[key]
			issue.Fields.Status = tr.To
			f.issues[key] = issue
			return nil
		}
	}
	return fmt.Errorf("transition %s not available", transitionID)
}

func (f *fakeTracker) UpdateIssue(_ context.Context, key string, update domain.IssueUpdate) error {
	f.calls = append(f.calls, "UpdateIssue")
	issue := f.issues[key]
	if update.Summary != nil {
		f.summaries = append(f.summaries, *update.Summary)
		issue.Fields.Summary = *update.Summary
	}
	f.issues[key] = issue
	return nil
}

func (f *fakeTracker) AddComment(_ context.Context, key, body string) (domain.Comment, error) {
	f.calls = append(f.calls, "AddComment")
	f.comments = append(f.comments, body)
	issue := f.issues[key]
	page := domain.CommentPage{}
	if issue.Fields.Comment != nil {
		page = *issue.Fields.Comment
	}
	comment := domain.Comment{ID: fmt.Sprint(len(page.Comments) + 1), Body: domain.RichText(body)}
	page.Comments = append(slices.Clone(page.Comments), comment)
	page.Total = len(page.Comments)
	issue.Fields.Comment = &page
	f.issues[key] = issue
	return comment, nil
}

func (f *fakeTracker) ListProjects(context.Context) ([]domain.Project, error) {
	f.calls = append(f.calls, "ListProjects")
	return slices.Clone(f.projects), f.projectsErr
}

func (f *fakeTracker) ListBoards(context.Context) ([]domain.Board, error) {
	f.calls = append(f.calls, "ListBoards")
	return slices.Clone(f.boards), f.boardsErr
}

func (f *fakeTracker) ListBoardSprints(_ context.Context, boardID int) ([]domain.Sprint, error) {
	f.calls = append(f.calls, "ListBoardSprints")
	if f.onListBoardSprints != nil {
		f.onListBoardSprints(boardID)
	}
	if f.sprintsErr != nil {
		return nil, f.sprintsErr
	}
	return slices.Clone(f.sprints[boardID]), nil
}

func (f *fakeTracker) UpdateSprint(_ context.Context, sprintID int, update domain.SprintUpdate) (domain.Sprint, error) {
	f.calls = append(f.calls, "UpdateSprint")
	for boardID, sprints := range f.sprints {
		for i := range sprints {
			if sprints[i].ID != sprintID {
				continue
			}
			if update.Name != nil {
				f.renames = append(f.renames, *update.Name)
				sprints[i].Name = *update.Name
			}
			f.sprints[boardID] = sprints
			return sprints[i], nil
		}
	}
	return domain.Sprint{}, fmt.Errorf("sprint %d not found", sprintID)
}

// fakeJournal records activity entries.
type fakeJournal struct {
	entries []domain.Activity
}

func (j *fakeJournal) RecordActivity(_ context.Context, activity domain.Activity) error {
	j.entries = append(j.entries, activity)
	return nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeRemoteError mimics a resource-client error carrying a response.
type fakeRemoteError struct {
	status int
	msg    string
}

func (e fakeRemoteError) Error() string   { return fmt.Sprintf("status %d", e.status) }
func (e fakeRemoteError) HTTPStatus() int { return e.status }
func (e fakeRemoteError) Message() string { return e.msg }

// seededTracker returns two boards with sprints and issues.
func seededTracker() *fakeTracker {
	f := newFakeTracker()
	f.projects = []domain.Project{{ID: "100", Key: "ALPHA", Name: "Alpha"}, {ID: "200", Key: "BETA", Name: "Beta"}}
	f.boards = []domain.Board{
		{ID: 1, Name: "ALPHA board", Type: "scrum"},
		{ID: 2, Name: "Team board", Type: "scrum", Location: &domain.BoardLocation{ProjectKey: "BETA"}},
	}
	f.sprints[1] = []domain.Sprint{
		{ID: 3, Name: "Sprint 3", State: domain.SprintStateClosed},
		{ID: 10, Name: "Sprint 10", State: domain.SprintStateActive},
		{ID: 7, Name: "Sprint 7", State: domain.SprintStateClosed},
	}
	f.sprints[2] = []domain.Sprint{{ID: 20, Name: "Beta Sprint", State: domain.SprintStateActive}}
	f.addIssue("ALPHA-1", "First", "To Do")
	f.addIssue("ALPHA-2", "Second", "To Do")
	f.addIssue("ALPHA-10", "Tenth", "In Progress")
	f.addIssue("ALPHA-4", "Backlog item", "To Do")
	f.addIssue("BETA-1", "Beta item", "To Do")
	f.sprintIssues[10] = []string{"ALPHA-2", "ALPHA-10", "ALPHA-1"}
	f.sprintIssues[7] = []string{"ALPHA-1"}
	f.sprintIssues[20] = []string{"BETA-1"}
	f.backlog[1] = []string{"ALPHA-4"}
	f.transitions["ALPHA-10"] = []domain.Transition{
		{ID: "21", Name: "Start", To: domain.Status{Name: "In Progress"}},
		{ID: "31", Name: "Finish", To: domain.Status{Name: "Done"}},
	}
	return f
}

type harness struct {
	t       *testing.T
	ctx     context.Context
	tracker *fakeTracker
	journal *fakeJournal
	clock   *fakeClock
	saved   []int
	copied  []string
	c       *Controller
}

func newHarness(t *testing.T, tracker *fakeTracker, cfg ControllerConfig) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		ctx:     context.Background(),
		tracker: tracker,
		journal: &fakeJournal{},
		clock:   &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	n := 0
	idGen := func() string {
		n++
		return fmt.Sprintf("act-%d", n)
	}
	h.c = NewController(tracker, idGen, h.clock.Now, cfg,
		WithJournal(h.journal),
		WithClipboard(func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		}),
		WithDefaultBoardSaver(func(id int) error {
			h.saved = append(h.saved, id)
			return nil
		}),
	)
	return h
}

func (h *harness) init() {
	h.t.Helper()
	if err := h.c.Initialize(h.ctx); err != nil {
		h.t.Fatalf("Initialize() error = %v", err)
	}
}

// keys presses each rune in order and fails on any error.
func (h *harness) keys(s string) {
	h.t.Helper()
	for _, r := range s {
		h.press(events.Rune(r))
	}
}

func (h *harness) press(k events.Key) {
	h.t.Helper()
	if _, err := h.c.HandleEvent(h.ctx, events.KeyEvent(k)); err != nil {
		h.t.Fatalf("HandleEvent(%s) error = %v", k, err)
	}
}

func (h *harness) pressErr(k events.Key) error {
	_, err := h.c.HandleEvent(h.ctx, events.KeyEvent(k))
	return err
}

func (h *harness) tick() {
	h.t.Helper()
	if _, err := h.c.HandleEvent(h.ctx, events.TickEvent()); err != nil {
		h.t.Fatalf("tick error = %v", err)
	}
}

func issueKeys(issues []domain.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Key)
	}
	return out
}

// TestInitializeLoadsLatestSprint verifies the default board and newest sprint are loaded.
func TestInitializeLoadsLatestSprint(t *testing.T) {
	h := newHarness(t, seededTracker(), ControllerConfig{})
	h.init()

	if got := h.c.DefaultBoardID(); got != 1 {
		t.Fatalf("expected first board as default, got %d", got)
	}
	if got := h.c.CurrentSprintID(); got != 10 {
		t.Fatalf("expected highest sprint id, got %d", got)
	}
	view := h.c.SprintView()
	if view.Name != "Sprint 10" {
		t.Fatalf("unexpected sprint name %q", view.Name)
	}
	want := []string{"ALPHA-10", "ALPHA-2", "ALPHA-1"}
	if got := issueKeys(view.Issues.Items()); !slices.Equal(got, want) {
		t.Fatalf("expected issues %v, got %v", want, got)
	}
	if got, _ := view.Issues.Selected(); got.Key != "ALPHA-10" {
		t.Fatalf("expected first issue selected, got %q", got.Key)
	}
	if h.c.Mode() != ModeSprint {
		t.Fatalf("expected sprint mode, got %s", h.c.Mode())
	}
	if len(h.c.Projects()) != 2 || len(h.c.AvailableBoards()) != 2 {
		t.Fatalf("expected projects and boards cached, got %d/%d", len(h.c.Projects()), len(h.c.AvailableBoards()))
	}
}

// TestInitializeKeepsConfiguredBoard verifies a configured board is not replaced.
func TestInitializeKeepsConfiguredBoard(t *testing.T) {
	h := newHarness(t, seededTracker(), ControllerConfig{DefaultBoardID: 2})
	h.init()
	if h.c.DefaultBoardID() != 2 || h.c.CurrentSprintID() != 20 {
		t.Fatalf("expected board 2 sprint 20, got %d/%d", h.c.DefaultBoardID(), h.c.CurrentSprintID())
	}
	if board, ok := h.c.CurrentBoard(); !ok || board.Name != "Team board" {
		t.Fatalf("unexpected current board %#v %v", board, ok)
	}
}

// TestInitializeBestEffort verifies list failures degrade to empty state.
func TestInitializeBestEffort(t *testing.T) {
	tracker := seededTracker()
	tracker.projectsErr = errors.New("projects down")
	tracker.boardsErr = errors.New("boards down")
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()

	if len(h.c.Projects()) != 0 || len(h.c.AvailableBoards()) != 0 {
		t.Fatal("expected empty projects and boards")
	}
	if h.c.DefaultBoardID() != 0 {
		t.Fatalf("expected no default board, got %d", h.c.DefaultBoardID())
	}
	if tracker.count("ListBoardSprints") != 0 {
		t.Fatal("expected no sprint load without a board")
	}
	if err := h.pressErr(events.Rune('b')); !errors.Is(err, ErrNoBoard) {
		t.Fatalf("expected ErrNoBoard for backlog, got %v", err)
	}
}

// TestIsFatalOnlyForShutdown verifies timeouts stay recoverable.
func TestIsFatalOnlyForShutdown(t *testing.T) {
	if !IsFatal(fmt.Errorf("load: %w", context.Canceled)) || !IsFatal(events.ErrClosed) {
		t.Fatal("expected cancellation and a closed source to be fatal")
	}
	if IsFatal(fmt.Errorf("load: %w", context.DeadlineExceeded)) {
		t.Fatal("expected deadline to be recoverable")
	}
}

// TestInitializeSprintFailureLeavesControllerUsable verifies the loop can continue.
func TestInitializeSprintFailureLeavesControllerUsable(t *testing.T) {
	tracker := seededTracker()
	tracker.sprintsErr = errors.New("sprints down")
	h := newHarness(t, tracker, ControllerConfig{})
	if err := h.c.Initialize(h.ctx); err == nil {
		t.Fatal("expected sprint load error")
	}
	if IsFatal(errors.New("sprints down")) {
		t.Fatal("expected remote failure to be recoverable")
	}
	h.keys("h")
	if !h.c.ShowHelp() {
		t.Fatal("expected help overlay after failed init")
	}
	tracker.sprintsErr = nil
	h.keys("h")
	h.keys("r")
	if h.c.CurrentSprintID() != 10 {
		t.Fatalf("expected refresh to recover, got sprint %d", h.c.CurrentSprintID())
	}
}

// TestRefreshWithoutSprints verifies the empty sentinel view.
func TestRefreshWithoutSprints(t *testing.T) {
	tracker := seededTracker()
	tracker.sprints[1] = nil
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()

	view := h.c.SprintView()
	if view.Name != NoSprintsName {
		t.Fatalf("expected %q, got %q", NoSprintsName, view.Name)
	}
	if view.Issues.Len() != 0 || h.c.CurrentSprintID() != 0 {
		t.Fatalf("expected empty sprint view, got %d issues sprint %d", view.Issues.Len(), h.c.CurrentSprintID())
	}
	if _, ok := view.Issues.Selected(); ok {
		t.Fatal("expected no selection")
	}
}

// TestBoardSwitchClearsSprintState verifies no stale sprint survives a board switch.
func TestBoardSwitchClearsSprintState(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()

	var observedSprints []domain.Sprint
	var observedSprintID = -1
	tracker.onListBoardSprints = func(boardID int) {
		if boardID == 2 {
			observedSprints = h.c.AvailableSprints()
			observedSprintID = h.c.CurrentSprintID()
		}
	}

	h.keys("B")
	if h.c.Mode() != ModeBoardSelector || !h.c.BoardSelector().Active {
		t.Fatalf("expected active board selector, got %s", h.c.Mode())
	}
	h.keys("j")
	h.press(events.Named(events.KeyEnter))

	if observedSprintID != 0 || len(observedSprints) != 0 {
		t.Fatalf("expected cleared sprint state during reload, got id=%d sprints=%v", observedSprintID, observedSprints)
	}
	if h.c.DefaultBoardID() != 2 || h.c.CurrentSprintID() != 20 {
		t.Fatalf("expected board 2 sprint 20, got %d/%d", h.c.DefaultBoardID(), h.c.CurrentSprintID())
	}
	if got := issueKeys(h.c.SprintView().Issues.Items()); !slices.Equal(got, []string{"BETA-1"}) {
		t.Fatalf("unexpected sprint issues %v", got)
	}
	if h.c.Mode() != ModeSprint || h.c.BoardSelector().Active {
		t.Fatal("expected selector closed in sprint mode")
	}
	if !slices.Equal(h.saved, []int{2}) {
		t.Fatalf("expected board 2 persisted, got %v", h.saved)
	}
	if len(h.journal.entries) != 1 || h.journal.entries[0].Action != domain.ActivityBoardSelect {
		t.Fatalf("expected board selection journaled, got %#v", h.journal.entries)
	}
}

// TestReselectingSameBoardDoesNotPersist verifies unchanged boards are only reloaded.
func TestReselectingSameBoardDoesNotPersist(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()
	before := tracker.count("ListBoardSprints")

	h.keys("B")
	h.press(events.Named(events.KeyEnter))

	if tracker.count("ListBoardSprints") != before+1 {
		t.Fatal("expected sprint list reloaded")
	}
	if len(h.saved) != 0 || len(h.journal.entries) != 0 {
		t.Fatalf("expected no persistence, got saved=%v journal=%d", h.saved, len(h.journal.entries))
	}
}

// TestProjectFilter verifies board filtering by project and repeat switching.
func TestProjectFilter(t *testing.T) {
	h := newHarness(t, seededTracker(), ControllerConfig{})
	h.init()

	h.keys("P")
	if h.c.Mode() != ModeProjectSelector {
		t.Fatalf("expected project selector, got %s", h.c.Mode())
	}
	h.keys("j")
	h.press(events.Named(events.KeyEnter))
	if h.c.DefaultBoardID() != 2 {
		t.Fatalf("expected BETA board, got %d", h.c.DefaultBoardID())
	}
	if boards := h.c.AvailableBoards(); len(boards) != 1 || boards[0].ID != 2 {
		t.Fatalf("expected only BETA boards, got %#v", boards)
	}

	h.keys("P")
	h.press(events.Named(events.KeyEnter))
	if h.c.DefaultBoardID() != 1 || h.c.CurrentSprintID() != 10 {
		t.Fatalf("expected switch back to ALPHA, got %d/%d", h.c.DefaultBoardID(), h.c.CurrentSprintID())
	}
}

// TestProjectFilterWithoutBoardsIsNoop verifies an unmatched project changes nothing.
func TestProjectFilterWithoutBoardsIsNoop(t *testing.T) {
	tracker := seededTracker()
	tracker.projects = []domain.Project{{ID: "9", Key: "ZZZ", Name: "Nothing"}}
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()

	h.keys("P")
	h.press(events.Named(events.KeyEnter))
	if h.c.Mode() != ModeSprint {
		t.Fatalf("expected sprint mode, got %s", h.c.Mode())
	}
	if h.c.DefaultBoardID() != 1 || len(h.c.AvailableBoards()) != 2 || h.c.CurrentSprintID() != 10 {
		t.Fatal("expected board state unchanged")
	}
	if h.c.Status().Text != "" {
		t.Fatalf("expected silent no-op, got %q", h.c.Status().Text)
	}
}

// TestTransitionRoundTrip verifies transitions refresh the detail and list views.
func TestTransitionRoundTrip(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()

	h.press(events.Named(events.KeyEnter))
	detail := h.c.IssueDetail()
	if h.c.Mode() != ModeIssueDetail || !detail.Loaded || detail.Issue.Key != "ALPHA-10" {
		t.Fatalf("expected ALPHA-10 detail, got mode=%s %#v", h.c.Mode(), detail.Issue.Key)
	}
	if detail.Transitions.Len() != 2 {
		t.Fatalf("expected transitions loaded, got %d", detail.Transitions.Len())
	}

	h.keys("tj")
	if !h.c.IssueDetail().ShowTransitions {
		t.Fatal("expected transition list visible")
	}
	h.press(events.Named(events.KeyEnter))

	if !slices.Equal(tracker.transitionCalls, []string{"ALPHA-10:31"}) {
		t.Fatalf("unexpected transition calls %v", tracker.transitionCalls)
	}
	detail = h.c.IssueDetail()
	if detail.Issue.Fields.Status.Name != "Done" || detail.ShowTransitions {
		t.Fatalf("expected Done with list hidden, got %q %v", detail.Issue.Fields.Status.Name, detail.ShowTransitions)
	}
	listed, _ := h.c.SprintView().Issues.Selected()
	if listed.Fields.Status.Name != "Done" {
		t.Fatalf("expected sprint list entry replaced, got %q", listed.Fields.Status.Name)
	}
	if h.c.Status().Text != "ALPHA-10 moved to Done" {
		t.Fatalf("unexpected status %q", h.c.Status().Text)
	}
	if len(h.journal.entries) != 1 || h.journal.entries[0].Detail != "In Progress -> Done" {
		t.Fatalf("unexpected journal %#v", h.journal.entries)
	}

	h.press(events.Named(events.KeyEsc))
	if h.c.Mode() != ModeSprint {
		t.Fatalf("expected return to sprint, got %s", h.c.Mode())
	}
}

// TestEnterWithoutTransitionsHidesList verifies Enter closes an empty transition list.
func TestEnterWithoutTransitionsHidesList(t *testing.T) {
	tracker := seededTracker()
	tracker.transitions["ALPHA-10"] = nil
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()
	h.press(events.Named(events.KeyEnter))
	h.keys("t")
	h.press(events.Named(events.KeyEnter))

	if h.c.Mode() != ModeIssueDetail || h.c.IssueDetail().ShowTransitions {
		t.Fatal("expected detail kept with transition list hidden")
	}
	if tracker.count("TransitionIssue") != 0 {
		t.Fatalf("expected no transition call, got %v", tracker.transitionCalls)
	}
}

// TestEscHidesTransitionsBeforeLeaving verifies the two-step back behavior.
func TestEscHidesTransitionsBeforeLeaving(t *testing.T) {
	h := newHarness(t, seededTracker(), ControllerConfig{})
	h.init()
	h.keys("b")
	h.press(events.Named(events.KeyEnter))
	h.keys("t")
	h.press(events.Named(events.KeyEsc))
	if h.c.Mode() != ModeIssueDetail || h.c.IssueDetail().ShowTransitions {
		t.Fatal("expected transitions hidden but detail kept")
	}
	h.press(events.Named(events.KeyEsc))
	if h.c.Mode() != ModeBacklog {
		t.Fatalf("expected return to backlog, got %s", h.c.Mode())
	}
}

// TestAddComment verifies text entry treats q and h as text and posts the body.
func TestAddComment(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()
	h.press(events.Named(events.KeyEnter))

	h.keys("c")
	if h.c.Mode() != ModeAddComment || h.c.Input().Title() != "Add Comment" {
		t.Fatalf("expected comment entry, got %s", h.c.Mode())
	}
	h.keys("hq ok")
	if h.c.Quitting() || h.c.ShowHelp() {
		t.Fatal("expected q and h inserted as text")
	}
	h.press(events.Named(events.KeyEnter))

	if !slices.Equal(tracker.comments, []string{"hq ok"}) {
		t.Fatalf("unexpected comments %v", tracker.comments)
	}
	if h.c.Mode() != ModeIssueDetail || h.c.Input().Value() != "" {
		t.Fatalf("expected detail mode with cleared input, got %s %q", h.c.Mode(), h.c.Input().Value())
	}
	if got := h.c.IssueDetail().Issue.Comments(); len(got) != 1 || got[0].Body != "hq ok" {
		t.Fatalf("expected refreshed comments, got %#v", got)
	}
}

// TestCancelComment verifies esc discards the buffer without a remote call.
func TestCancelComment(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()
	h.press(events.Named(events.KeyEnter))
	h.keys("cdraft")
	h.press(events.Named(events.KeyEsc))
	if h.c.Mode() != ModeIssueDetail || h.c.Input().Value() != "" {
		t.Fatal("expected cancel back to detail with empty input")
	}
	if tracker.count("AddComment") != 0 {
		t.Fatal("expected no comment posted")
	}
}

// TestEditSummary verifies the prefilled buffer and list replacement.
func TestEditSummary(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()
	h.press(events.Named(events.KeyEnter))

	h.keys("e")
	if h.c.Mode() != ModeEditIssue || h.c.Input().Value() != "Tenth" {
		t.Fatalf("expected prefilled summary, got %s %q", h.c.Mode(), h.c.Input().Value())
	}
	h.press(events.Named(events.KeyBackspace))
	h.keys("h!")
	h.press(events.Named(events.KeyEnter))

	if !slices.Equal(tracker.summaries, []string{"Tenth!"}) {
		t.Fatalf("unexpected summaries %v", tracker.summaries)
	}
	listed, _ := h.c.SprintView().Issues.Selected()
	if listed.Fields.Summary != "Tenth!" {
		t.Fatalf("expected list entry updated, got %q", listed.Fields.Summary)
	}
}

// TestSprintSelectionAndRename verifies sprint picking and renaming.
func TestSprintSelectionAndRename(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()

	h.press(events.Named(events.KeyTab))
	sel := h.c.SprintSelector()
	if h.c.Mode() != ModeSprintSelector || !sel.Active {
		t.Fatal("expected active sprint selector")
	}
	var ids []int
	for _, s := range sel.Items() {
		ids = append(ids, s.ID)
	}
	if !slices.Equal(ids, []int{10, 7, 3}) {
		t.Fatalf("expected newest first, got %v", ids)
	}

	h.keys("e")
	if h.c.Mode() != ModeEditSprintName || h.c.Input().Value() != "Sprint 10" {
		t.Fatalf("expected sprint name entry, got %s %q", h.c.Mode(), h.c.Input().Value())
	}
	h.keys("b")
	h.press(events.Named(events.KeyEnter))
	if !slices.Equal(tracker.renames, []string{"Sprint 10b"}) {
		t.Fatalf("unexpected renames %v", tracker.renames)
	}
	if h.c.Mode() != ModeSprintSelector {
		t.Fatalf("expected return to selector, got %s", h.c.Mode())
	}
	if got, _ := h.c.SprintSelector().Selected(); got.ID != 10 || got.Name != "Sprint 10b" {
		t.Fatalf("expected renamed sprint kept selected, got %#v", got)
	}
	if h.c.SprintView().Name != "Sprint 10b" {
		t.Fatalf("expected sprint title updated, got %q", h.c.SprintView().Name)
	}

	h.keys("j")
	h.press(events.Named(events.KeyEnter))
	if h.c.Mode() != ModeSprint || h.c.CurrentSprintID() != 7 {
		t.Fatalf("expected sprint 7 shown, got %s %d", h.c.Mode(), h.c.CurrentSprintID())
	}
	h.keys("r")
	if h.c.CurrentSprintID() != 7 {
		t.Fatalf("expected refresh to keep the chosen sprint, got %d", h.c.CurrentSprintID())
	}
}

// TestFailedFetchLeavesStateUntouched verifies a failing step commits nothing.
func TestFailedFetchLeavesStateUntouched(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()
	tracker.getErr = fakeRemoteError{status: 404, msg: "Issue does not exist"}

	err := h.pressErr(events.Named(events.KeyEnter))
	if err == nil {
		t.Fatal("expected open error")
	}
	if h.c.Mode() != ModeSprint || h.c.IssueDetail().Loaded {
		t.Fatal("expected no mode change on failure")
	}
	h.c.ReportError(err)
	status := h.c.Status()
	if !status.Err || status.Text != "request failed (404): Issue does not exist" {
		t.Fatalf("unexpected status %#v", status)
	}
}

// TestHelpOverlay verifies only quit and close keys act while help is open.
func TestHelpOverlay(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()

	h.keys("h")
	if !h.c.ShowHelp() {
		t.Fatal("expected help open")
	}
	h.keys("bjP")
	if h.c.Mode() != ModeSprint || tracker.count("ListBacklog") != 0 {
		t.Fatal("expected keys ignored under help")
	}
	if idx, _ := h.c.SprintView().Issues.Index(); idx != 0 {
		t.Fatalf("expected selection unchanged, got %d", idx)
	}
	h.press(events.Named(events.KeyEsc))
	if h.c.ShowHelp() {
		t.Fatal("expected esc to close help")
	}
	h.keys("h")
	quit, err := h.c.HandleEvent(h.ctx, events.KeyEvent(events.Rune('q')))
	if err != nil || !quit {
		t.Fatalf("expected quit from help, got %v %v", quit, err)
	}
}

// TestCtrlCQuitsFromTextEntry verifies force quit is never treated as text.
func TestCtrlCQuitsFromTextEntry(t *testing.T) {
	h := newHarness(t, seededTracker(), ControllerConfig{})
	h.init()
	h.press(events.Named(events.KeyEnter))
	h.keys("c")
	quit, err := h.c.HandleEvent(h.ctx, events.KeyEvent(events.Named(events.KeyCtrlC)))
	if err != nil || !quit {
		t.Fatalf("expected force quit, got %v %v", quit, err)
	}
}

// TestBacklogNavigation verifies backlog load and the return to sprint.
func TestBacklogNavigation(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()

	h.keys("b")
	if h.c.Mode() != ModeBacklog {
		t.Fatalf("expected backlog mode, got %s", h.c.Mode())
	}
	if got := issueKeys(h.c.BacklogView().Issues.Items()); !slices.Equal(got, []string{"ALPHA-4"}) {
		t.Fatalf("unexpected backlog %v", got)
	}
	before := tracker.count("ListSprintIssues")
	h.keys("s")
	if h.c.Mode() != ModeSprint || tracker.count("ListSprintIssues") != before+1 {
		t.Fatal("expected sprint reload on return")
	}
	h.keys("jjj")
	if idx, _ := h.c.SprintView().Issues.Index(); idx != 0 {
		t.Fatalf("expected wrap to 0 after three moves, got %d", idx)
	}
	h.keys("k")
	if idx, _ := h.c.SprintView().Issues.Index(); idx != 2 {
		t.Fatalf("expected wrap to last, got %d", idx)
	}
}

// TestCopyIssueKey verifies the clipboard hook receives the key.
func TestCopyIssueKey(t *testing.T) {
	h := newHarness(t, seededTracker(), ControllerConfig{})
	h.init()
	h.press(events.Named(events.KeyEnter))
	h.keys("y")
	if !slices.Equal(h.copied, []string{"ALPHA-10"}) {
		t.Fatalf("unexpected clipboard writes %v", h.copied)
	}
	if h.c.Status().Text != "copied ALPHA-10" {
		t.Fatalf("unexpected status %q", h.c.Status().Text)
	}
}

// TestTickExpiresStatusAndRefreshes verifies status expiry and auto refresh.
func TestTickExpiresStatusAndRefreshes(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{RefreshInterval: 30 * time.Second})
	h.init()
	h.c.ReportError(errors.New("boom"))

	h.clock.Advance(4 * time.Second)
	h.tick()
	if h.c.Status().Text != "boom" {
		t.Fatal("expected status kept before ttl")
	}
	h.clock.Advance(2 * time.Second)
	h.tick()
	if h.c.Status().Text != "" {
		t.Fatalf("expected status expired, got %q", h.c.Status().Text)
	}

	before := tracker.count("ListSprintIssues")
	h.clock.Advance(30 * time.Second)
	h.tick()
	if tracker.count("ListSprintIssues") != before+1 {
		t.Fatal("expected auto refresh after interval")
	}

	h.keys("h")
	h.clock.Advance(time.Minute)
	h.tick()
	if tracker.count("ListSprintIssues") != before+1 {
		t.Fatal("expected no auto refresh while help is open")
	}
}

// TestTickRetriesAfterFailedInitialize verifies auto refresh recovers from a failed first load.
func TestTickRetriesAfterFailedInitialize(t *testing.T) {
	tracker := seededTracker()
	tracker.sprintsErr = errors.New("sprints down")
	h := newHarness(t, tracker, ControllerConfig{RefreshInterval: 30 * time.Second})
	if err := h.c.Initialize(h.ctx); err == nil {
		t.Fatal("expected sprint load error")
	}
	tracker.sprintsErr = nil
	before := tracker.count("ListBoardSprints")

	h.clock.Advance(10 * time.Second)
	h.tick()
	if tracker.count("ListBoardSprints") != before {
		t.Fatal("expected no retry before the interval")
	}
	h.clock.Advance(25 * time.Second)
	h.tick()
	if tracker.count("ListBoardSprints") != before+1 {
		t.Fatalf("expected one retry after the interval, got %d", tracker.count("ListBoardSprints")-before)
	}
	if h.c.CurrentSprintID() != 10 || h.c.SprintView().Name != "Sprint 10" {
		t.Fatalf("expected sprint 10 loaded by tick, got %d %q", h.c.CurrentSprintID(), h.c.SprintView().Name)
	}
}

// TestTickWithoutIntervalDoesNotRefresh verifies auto refresh is opt-in.
func TestTickWithoutIntervalDoesNotRefresh(t *testing.T) {
	tracker := seededTracker()
	h := newHarness(t, tracker, ControllerConfig{})
	h.init()
	before := len(tracker.calls)
	h.clock.Advance(time.Hour)
	h.tick()
	if len(tracker.calls) != before {
		t.Fatalf("expected no calls on tick, got %v", tracker.calls[before:])
	}
}

// TestStatusBindings verifies the per-mode hints.
func TestStatusBindings(t *testing.T) {
	keys := DefaultKeyMap()
	helpKeys := func(mode Mode, transitions bool) []string {
		var out []string
		for _, b := range keys.StatusBindings(mode, transitions) {
			out = append(out, b.Help().Key+" "+b.Help().Desc)
		}
		return out
	}

	sprint := helpKeys(ModeSprint, false)
	for _, want := range []string{"q Quit", "h Help", "Enter View Issue", "Tab Sprint Selector", "B Board Selector", "P Project Selector"} {
		if !slices.Contains(sprint, want) {
			t.Fatalf("expected %q in sprint hints %v", want, sprint)
		}
	}
	if got := helpKeys(ModeAddComment, false); !slices.Equal(got, []string{"Enter Submit", "Esc Cancel"}) {
		t.Fatalf("unexpected text entry hints %v", got)
	}
	if got := helpKeys(ModeIssueDetail, true); !slices.Contains(got, "Enter Apply Transition") {
		t.Fatalf("expected transition hint, got %v", got)
	}
	if got := helpKeys(ModeIssueDetail, false); !slices.Contains(got, "t Transitions") {
		t.Fatalf("expected detail hints, got %v", got)
	}
	if len(keys.FullHelp()) == 0 {
		t.Fatal("expected full help groups")
	}
}
