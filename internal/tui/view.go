package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/jdeck/internal/app"
	"github.com/hylla/jdeck/internal/domain"
)

// selectorWindow caps the rows drawn in a pick list overlay.
const selectorWindow = 12

// View renders the current controller state.
func (m Model) View() tea.View {
	if !m.ready {
		return m.newView("loading...")
	}
	return m.newView(m.render())
}

// render draws the full screen: header, body, status, help line, and any overlay.
func (m Model) render() string {
	header := m.renderHeader()
	body := m.renderBody(max(1, m.height-chromeHeight))
	content := strings.Join([]string{header, "", body, m.renderStatus()}, "\n")

	hb := m.help
	hb.ShowAll = false
	hb.SetWidth(max(0, m.width-2))
	helpLine := m.styles.helpLine.Width(max(0, m.width)).Render(hb.View(m.helpKeys()))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	full := content + "\n" + helpLine
	if overlay := m.renderOverlay(); overlay != "" {
		height := lipgloss.Height(full)
		if m.height > 0 {
			height = m.height
		}
		full = overlayOnContent(full, overlay, max(1, m.width), max(1, height))
	}
	return full
}

func (m Model) newView(content string) tea.View {
	v := tea.NewView(content)
	v.AltScreen = true
	v.KeyboardEnhancements.ReportEventTypes = true
	v.WindowTitle = m.appName
	return v
}

func (m Model) helpKeys() helpKeys {
	return helpKeys{
		keys:        m.ctrl.Keys(),
		mode:        m.ctrl.Mode(),
		transitions: m.ctrl.IssueDetail().ShowTransitions,
	}
}

func (m Model) renderHeader() string {
	header := m.styles.title.Render(m.appName)
	if board, ok := m.ctrl.CurrentBoard(); ok {
		header += "  " + m.styles.text.Render(board.Name)
		if board.Type != "" {
			header += m.styles.dim.Render(" (" + board.Type + ")")
		}
	}
	header += m.styles.dim.Render("  [" + m.ctrl.Mode().String() + "]")
	return header
}

func (m Model) renderStatus() string {
	status := m.ctrl.Status()
	if status.Text == "" {
		return ""
	}
	if status.Err {
		return m.styles.errText.Render("error: " + status.Text)
	}
	return m.styles.muted.Render(status.Text)
}

func (m Model) renderBody(height int) string {
	switch m.ctrl.Mode() {
	case app.ModeBacklog:
		return m.renderBacklog(height)
	case app.ModeIssueDetail, app.ModeAddComment, app.ModeEditIssue:
		if !m.ctrl.IssueDetail().Loaded {
			return m.styles.muted.Render("no issue loaded")
		}
		return m.detail.View()
	default:
		return m.renderSprint(height)
	}
}

func (m Model) renderSprint(height int) string {
	view := m.ctrl.SprintView()
	title := m.styles.accent.Render("Sprint: " + view.Name)
	if view.Name == "" {
		title = m.styles.accent.Render("Sprint")
	}
	lines := []string{title}
	if goal := strings.TrimSpace(view.Goal); goal != "" {
		lines = append(lines, m.styles.muted.Render(truncate("Goal: "+goal, max(1, m.width))))
	}
	lines = append(lines, "")
	list := m.renderIssueList(view.Issues, max(1, height-len(lines)), "no issues in this sprint")
	return strings.Join(append(lines, list), "\n")
}

func (m Model) renderBacklog(height int) string {
	view := m.ctrl.BacklogView()
	lines := []string{m.styles.accent.Render(fmt.Sprintf("Backlog (%d)", view.Issues.Len())), ""}
	list := m.renderIssueList(view.Issues, max(1, height-len(lines)), "backlog is empty")
	return strings.Join(append(lines, list), "\n")
}

// renderIssueList draws one row per issue, scrolled so the selection stays visible.
func (m Model) renderIssueList(issues app.Cursor[domain.Issue], height int, empty string) string {
	if issues.Len() == 0 {
		return m.styles.dim.Render("(" + empty + ")")
	}
	selected, _ := issues.Index()
	start, end := scrollWindow(issues.Len(), selected, height)
	rows := make([]string, 0, end-start)
	for i, issue := range issues.Items()[start:end] {
		rows = append(rows, m.renderIssueRow(issue, start+i == selected))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderIssueRow(issue domain.Issue, selected bool) string {
	prefix := "  "
	if selected {
		prefix = "│ "
	}
	keyCol := fmt.Sprintf("%-10s", issue.Key)
	status := "[" + issue.Fields.Status.Name + "]"
	assignee := issue.AssigneeName()
	summaryWidth := max(8, m.width-len(prefix)-len(keyCol)-len(status)-len(assignee)-6)
	summary := truncate(issue.Fields.Summary, summaryWidth)
	row := prefix + keyCol + " " + summary
	if selected {
		row = m.styles.selected.Render(row)
	} else {
		row = m.styles.text.Render(row)
	}
	return row + "  " + m.styles.accent.Render(status) + "  " + m.styles.muted.Render(assignee)
}

// renderIssueDetail builds the scrollable detail document for one issue.
func (m Model) renderIssueDetail(issue domain.Issue, width int) string {
	label := func(name, value string) string {
		return m.styles.muted.Render(name+": ") + m.styles.text.Render(value)
	}
	reporter := "-"
	if issue.Fields.Reporter != nil {
		reporter = issue.Fields.Reporter.DisplayName
	}
	issueType := issue.Fields.IssueType.Name
	if issueType == "" {
		issueType = "-"
	}
	lines := []string{
		m.styles.accent.Render(issue.Key) + "  " + m.styles.title.Render(issue.Fields.Summary),
		"",
		strings.Join([]string{
			label("Type", issueType),
			label("Status", issue.Fields.Status.Name),
			label("Priority", issue.PriorityName()),
		}, "   "),
		strings.Join([]string{
			label("Assignee", issue.AssigneeName()),
			label("Reporter", reporter),
		}, "   "),
		strings.Join([]string{
			label("Created", issue.Fields.Created.Short()),
			label("Updated", issue.Fields.Updated.Short()),
		}, "   "),
		"",
		m.styles.accent.Render("Description"),
	}
	if desc := m.md.render(issue.Fields.Description.String(), width); desc != "" {
		lines = append(lines, desc)
	} else {
		lines = append(lines, m.styles.dim.Render("(no description)"))
	}

	comments := issue.Comments()
	lines = append(lines, "", m.styles.accent.Render(fmt.Sprintf("Comments (%d)", len(comments))))
	for _, comment := range comments {
		author := "unknown"
		if comment.Author != nil {
			author = comment.Author.DisplayName
		}
		lines = append(lines, m.styles.title.Render(author)+m.styles.dim.Render(" • "+comment.Created.Short()))
		if body := m.md.render(comment.Body.String(), width); body != "" {
			lines = append(lines, body)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderOverlay() string {
	if m.ctrl.ShowHelp() {
		return m.renderHelpOverlay()
	}
	switch m.ctrl.Mode() {
	case app.ModeSprintSelector:
		sel := m.ctrl.SprintSelector()
		return renderPickList(m, "Select Sprint", sel.Cursor, func(s domain.Sprint) string {
			return fmt.Sprintf("%s  (%s)", s.Name, s.State)
		})
	case app.ModeBoardSelector:
		sel := m.ctrl.BoardSelector()
		return renderPickList(m, "Select Board", sel.Cursor, func(b domain.Board) string {
			return fmt.Sprintf("%s  (%s, #%d)", b.Name, b.Type, b.ID)
		})
	case app.ModeProjectSelector:
		sel := m.ctrl.ProjectSelector()
		return renderPickList(m, "Select Project", sel.Cursor, func(p domain.Project) string {
			return fmt.Sprintf("%-8s %s", p.Key, p.Name)
		})
	case app.ModeAddComment, app.ModeEditIssue, app.ModeEditSprintName:
		return m.renderInput()
	case app.ModeIssueDetail:
		detail := m.ctrl.IssueDetail()
		if detail.ShowTransitions {
			return renderPickList(m, "Transitions for "+detail.Issue.Key, detail.Transitions, func(t domain.Transition) string {
				return t.Name + " → " + t.To.Name
			})
		}
	}
	return ""
}

// renderPickList draws a selector overlay around cursor.
func renderPickList[T any](m Model, title string, cursor app.Cursor[T], label func(T) string) string {
	width := clamp(m.width-8, 24, 72)
	lines := []string{m.styles.accent.Render(title), ""}
	if cursor.Len() == 0 {
		lines = append(lines, m.styles.dim.Render("(none available)"))
	} else {
		selected, _ := cursor.Index()
		start, end := scrollWindow(cursor.Len(), selected, selectorWindow)
		for i, item := range cursor.Items()[start:end] {
			text := truncate(label(item), width-6)
			if start+i == selected {
				lines = append(lines, m.styles.selected.Render("› "+text))
			} else {
				lines = append(lines, m.styles.text.Render("  "+text))
			}
		}
	}
	lines = append(lines, "", m.styles.muted.Render("enter select • esc back"))
	return m.styles.box.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderInput() string {
	input := m.ctrl.Input()
	width := clamp(m.width-8, 24, 80)
	before, after := input.Split()
	under := " "
	if after != "" {
		r := []rune(after)
		under, after = string(r[0]), string(r[1:])
	}
	field := before + m.styles.cursor.Render(under) + after
	lines := []string{
		m.styles.accent.Render(input.Title()),
		"",
		field,
		"",
		m.styles.muted.Render("enter submit • esc cancel"),
	}
	return m.styles.box.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelpOverlay() string {
	width := clamp(m.width-8, 48, 100)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)
	lines := []string{
		m.styles.accent.Render(m.appName + " help"),
		m.styles.muted.Render("sprint • backlog • selectors • issue detail • text entry"),
		"",
		hb.View(m.helpKeys()),
		"",
		m.styles.muted.Render("press h or esc to close"),
	}
	return m.styles.box.Width(width).Render(strings.Join(lines, "\n"))
}

// scrollWindow returns the [start, end) slice of n rows that keeps selected
// visible within height rows.
func scrollWindow(n, selected, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := clamp(selected-height/2, 0, n-height)
	return start, start + height
}

func detailSignature(detail app.IssueDetail) string {
	issue := detail.Issue
	return strings.Join([]string{
		issue.Key,
		issue.Fields.Summary,
		issue.Fields.Status.Name,
		issue.Fields.Updated.String(),
		fmt.Sprint(len(issue.Comments())),
	}, "\x00")
}

func sigKey(sig string) string {
	key, _, _ := strings.Cut(sig, "\x00")
	return key
}

// fitLines pads or cuts content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate shortens s to max runes with a trailing ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	return min(max(v, minV), maxV)
}
