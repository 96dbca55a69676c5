package tui

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/hylla/jdeck/internal/app"
	"github.com/hylla/jdeck/internal/events"
)

// chromeHeight is the number of lines around the main body: header, spacer,
// status line, and the bordered help line.
const chromeHeight = 5

// Model is the bubbletea program. It forwards terminal keys into the event
// source and applies the resulting event stream to the controller one event
// at a time; rendering only reads controller state.
type Model struct {
	ctrl   *app.Controller
	source *events.Source
	ctx    context.Context

	appName string
	theme   Theme
	styles  styles
	help    help.Model
	md      *markdownRenderer

	detail    viewport.Model
	detailSig string

	width   int
	height  int
	ready   bool
	started bool
	err     error
}

// startMsg runs controller initialization on the update goroutine.
type startMsg struct{}

// eventMsg carries the next item of the event stream.
type eventMsg struct {
	event events.Event
	err   error
}

// NewModel constructs the program model.
func NewModel(ctrl *app.Controller, source *events.Source, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		ctrl:    ctrl,
		source:  source,
		ctx:     context.Background(),
		appName: "jdeck",
		theme:   DefaultTheme(),
		help:    h,
		md:      &markdownRenderer{},
		detail:  viewport.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.styles = newStyles(m.theme)
	m.md.style = m.theme.MarkdownStyle
	return m
}

// Err returns the error that ended the event loop, if any.
func (m Model) Err() error {
	return m.err
}

// Init starts the event source and loads the initial data.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

// Update applies terminal messages and stream events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.resizeDetail()
		m.syncDetail(true)
		return m, nil

	case startMsg:
		if m.started {
			return m, nil
		}
		m.started = true
		m.source.Start(m.ctx)
		if err := m.ctrl.Initialize(m.ctx); err != nil {
			if app.IsFatal(err) {
				return m.fail(err)
			}
			m.ctrl.ReportError(err)
		}
		m.syncDetail(false)
		return m, m.waitForEvent

	case eventMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		quit, err := m.ctrl.HandleEvent(m.ctx, msg.event)
		if err != nil {
			if app.IsFatal(err) {
				return m.fail(err)
			}
			m.ctrl.ReportError(err)
		}
		if quit {
			m.source.Stop()
			return m, tea.Quit
		}
		m.syncDetail(false)
		return m, m.waitForEvent

	case tea.KeyPressMsg:
		k := msg.Key()
		if m.scrollDetail(msg) {
			return m, nil
		}
		if ek, ok := translateKey(k); ok {
			m.source.Feed(events.RawKey{Key: ek, Kind: rawKind(k)})
		}
		return m, nil

	case tea.KeyReleaseMsg:
		if ek, ok := translateKey(tea.Key(msg)); ok {
			m.source.Feed(events.RawKey{Key: ek, Kind: events.KindRelease})
		}
		return m, nil

	case tea.PasteMsg:
		for _, r := range msg.Content {
			if r == '\n' || r == '\r' || r == '\t' {
				r = ' '
			}
			m.source.Feed(events.RawKey{Key: events.Rune(r), Kind: events.KindPress})
		}
		return m, nil

	default:
		return m, nil
	}
}

// waitForEvent blocks on the event source. Only one is outstanding at a time,
// so events reach the controller strictly in arrival order.
func (m Model) waitForEvent() tea.Msg {
	ev, err := m.source.Next(m.ctx)
	return eventMsg{event: ev, err: err}
}

// fail ends the program after an error the loop cannot recover from. A
// closed source after a requested shutdown is not an error.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	if !(errors.Is(err, events.ErrClosed) && m.ctrl.Quitting()) {
		m.err = err
	}
	m.source.Stop()
	return m, tea.Quit
}

// scrollDetail pages the issue detail viewport. It reports whether the key
// was consumed.
func (m *Model) scrollDetail(msg tea.KeyPressMsg) bool {
	if m.ctrl.Mode() != app.ModeIssueDetail || m.ctrl.ShowHelp() {
		return false
	}
	switch {
	case key.Matches(msg, scrollKeys.pageUp):
		m.detail.PageUp()
		return true
	case key.Matches(msg, scrollKeys.pageDown):
		m.detail.PageDown()
		return true
	}
	return false
}

func (m *Model) resizeDetail() {
	m.detail.SetWidth(max(1, m.width))
	m.detail.SetHeight(max(1, m.height-chromeHeight))
}

// syncDetail rebuilds the detail viewport when the shown issue changed. A new
// issue key scrolls back to the top.
func (m *Model) syncDetail(force bool) {
	detail := m.ctrl.IssueDetail()
	if !detail.Loaded || !m.ready {
		return
	}
	sig := detailSignature(detail)
	if !force && sig == m.detailSig {
		return
	}
	sameIssue := m.detailSig != "" && sigKey(m.detailSig) == detail.Issue.Key
	m.detailSig = sig
	m.detail.SetContent(m.renderIssueDetail(detail.Issue, max(1, m.width-2)))
	if !sameIssue {
		m.detail.GotoTop()
	}
}
