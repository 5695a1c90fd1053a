package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ctkit/ctview/internal/api"
	"github.com/ctkit/ctview/internal/render"
	"github.com/ctkit/ctview/internal/viewer"
)

// paneWidths splits the terminal into three columns. The rightmost
// panel absorbs the rounding remainder.
func paneWidths(total int) [3]int {
	base := total / 3
	return [3]int{base, base, total - 2*base}
}

// panelAreaHeight is the vertical space left for the panels after the
// header, command bar and footer.
func (m Model) panelAreaHeight() int {
	return m.height - 3
}

// resizePanes applies the current terminal size to all three viewports.
func (m *Model) resizePanes() {
	widths := paneWidths(m.width)
	innerHeight := max(m.panelAreaHeight()-2, 1)
	for i := range m.panes {
		w := max(widths[i]-2-GutterWidth, 1)
		if m.panes[i].vp.Width == 0 {
			m.panes[i].vp = viewport.New(w, innerHeight)
		} else {
			m.panes[i].vp.Width = w
			m.panes[i].vp.Height = innerHeight
		}
	}
}

// rebuildPanes re-derives the display rows of every panel from the
// latest snapshot and refreshes the viewport contents.
func (m *Model) rebuildPanes() {
	if !m.ready {
		return
	}
	for i := range m.panes {
		p := &m.panes[i]
		ps := m.snap.Panels[p.stream]
		opts := render.Options{
			ShowTimestamps:  m.showTimestamps,
			HighlightSecond: m.snap.Selection.SelectedSecond,
		}
		if m.snap.SearchTerm != "" {
			opts.MatchIDs = render.MatchSet(ps.SearchResults)
		}
		if m.grouped {
			p.rows = render.Grouped(ps.Lines, opts)
		} else {
			p.rows = render.Flat(ps.Lines, opts)
		}
		p.vp.SetContent(m.paneBody(i, ps))
	}
	m.clampMatch()
}

// renderPanels renders the three stream panels side by side.
func (m Model) renderPanels() string {
	widths := paneWidths(m.width)
	height := m.panelAreaHeight()
	cols := make([]string, 0, len(m.panes))
	for i := range m.panes {
		cols = append(cols, m.renderPane(i, widths[i], height))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// renderPane renders one panel: titled box around the error gutter and
// the viewport content.
func (m Model) renderPane(i, width, height int) string {
	p := m.panes[i]
	ps := m.snap.Panels[p.stream]
	focused := i == m.focus

	title := m.paneTitle(ps, p.stream, width)
	content := m.paneView(i, ps)
	return m.renderTitledBox(title, content, width, height, focused)
}

// paneTitle builds the panel title: stream name, loaded/total counts,
// error summary tag and a spinner while a fetch is in flight.
func (m Model) paneTitle(ps viewer.PanelSnapshot, stream api.Stream, width int) string {
	title := stream.Title()
	if width < LayoutMinPanelWidth {
		title = strings.ToUpper(string(stream))
	}

	parts := []string{title}
	if ps.TotalLines > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", len(ps.Lines), ps.TotalLines))
	}
	if tag := ps.Tag(); tag != "" {
		parts = append(parts, tag)
	}
	if ps.LastError != nil {
		parts = append(parts, "fetch failed")
	}
	if ps.Loading || ps.FetchingSecond {
		parts = append(parts, m.spin.View())
	}
	return strings.Join(parts, " ")
}

// paneView combines the viewport lines with the error overlay gutter.
func (m Model) paneView(i int, ps viewer.PanelSnapshot) string {
	p := m.panes[i]
	bgColor := m.theme.SurfaceAlt
	if i == m.focus {
		bgColor = m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	// Mark offsets index the unfiltered stream, so the gutter goes
	// dark while a search filter narrows the buffer.
	var cells map[int]viewer.OverlayMark
	if m.snap.SearchTerm == "" {
		marks := viewer.OverlayMarks(ps.Marks, ps.TotalLines, p.vp.Height)
		cells = make(map[int]viewer.OverlayMark, len(marks))
		for _, mk := range marks {
			cells[mk.Row] = mk
		}
	}

	lines := strings.Split(p.vp.View(), "\n")
	for r := range lines {
		cell := bg.Space()
		if mk, ok := cells[r]; ok {
			style := styles.WarningText
			if mk.Level == api.LevelError {
				style = styles.DangerText
			}
			cell = bg.Render("▌", style)
		}
		lines[r] = cell + lines[r]
	}
	return strings.Join(lines, "\n")
}

// paneBody builds the styled content string fed to a panel's viewport,
// one line per display row.
func (m Model) paneBody(i int, ps viewer.PanelSnapshot) string {
	p := m.panes[i]
	bgColor := m.theme.SurfaceAlt
	if i == m.focus {
		bgColor = m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()
	width := p.vp.Width

	if len(p.rows) == 0 {
		if ps.LastError != nil {
			return bg.FillLine(bg.Render(truncate(ps.LastError.Error(), width), styles.DangerText), width)
		}
		if m.snap.SearchTerm != "" {
			return bg.FillLine(bg.Render("No matches", styles.MutedText), width)
		}
		return bg.FillLine(bg.Render("No lines loaded", styles.MutedText), width)
	}

	active := m.activeMatchRow(i)

	lines := make([]string, 0, len(p.rows))
	for r, row := range p.rows {
		lines = append(lines, m.renderRow(row, r == active, width, bg, styles))
	}
	return strings.Join(lines, "\n")
}

// renderRow styles one display row. Priority: active search match, then
// selected-second highlight, then level coloring. Lines spliced in by a
// second fetch while a search is active render faint so actual matches
// stand out.
func (m Model) renderRow(row render.Row, activeMatch bool, width int, bg BgStyle, styles Styles) string {
	if row.Kind == render.RowHeader {
		text := truncate(fmt.Sprintf("▸ %s (%d)", row.SecondKey, row.Count), width)
		if row.Highlight {
			sel := NewBgStyle(m.theme.SelectionBg)
			return sel.FillLine(sel.Render(text, styles.AccentText.Bold(true)), width)
		}
		return bg.FillLine(bg.Render(text, styles.FaintText), width)
	}

	text := truncate(row.Text, width)
	level := string(row.Line.Level)

	switch {
	case activeMatch:
		hl := NewBgStyle(m.theme.Warning)
		fg := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Background))
		return hl.FillLine(hl.Render(text, fg), width)
	case row.Highlight:
		sel := NewBgStyle(m.theme.SelectionBg)
		style := styles.LevelText(level)
		if m.flashOn {
			style = style.Bold(true)
		}
		return sel.FillLine(sel.Render(text, style), width)
	case m.snap.SearchTerm != "" && !row.Match:
		return bg.FillLine(bg.Render(text, styles.FaintText), width)
	default:
		return bg.FillLine(bg.Render(text, styles.LevelText(level)), width)
	}
}

// renderTitledBox renders content in a box with the title embedded in
// the top border: ┌─── Title ───┐. Focused panels get the focus border
// and background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := width - 2
	titleText := " " + truncate(title, max(innerWidth-4, 1)) + " "
	titleLen := lipgloss.Width(titleText)
	leftPad := max((innerWidth-titleLen)/2, 0)
	rightPad := max(innerWidth-titleLen-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(titleText, titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	side := bg.Render("│", borderStyle)

	contentLines := strings.Split(content, "\n")
	boxHeight := height - 2

	rows := make([]string, 0, boxHeight+2)
	rows = append(rows, topBorder)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		if lipgloss.Width(line) < innerWidth {
			line = bg.FillLine(line, innerWidth)
		}
		rows = append(rows, side+line+side)
	}
	rows = append(rows, bottomBorder)
	return strings.Join(rows, "\n")
}

// Scrolling

// scrollFocused applies a scroll operation to the focused panel.
func (m *Model) scrollFocused(fn func(*viewport.Model)) tea.Cmd {
	return m.scrollPane(m.focus, fn)
}

// scrollPane applies a manual scroll to panel i, dissolves any settled
// second selection, mirrors the position to the sibling panels and
// requests the next page when near the bottom.
func (m *Model) scrollPane(i int, fn func(*viewport.Model)) tea.Cmd {
	fn(&m.panes[i].vp)
	m.session.NoteManualScroll()
	if sel := m.snap.Selection; sel.SelectedSecond != "" && !sel.GroupSelectionActive {
		m.syncFromSession() // drop the dissolved highlight
	}
	m.mirrorFrom(i)
	return m.maybeLoadMore(i)
}

// mirrorFrom propagates panel i's relative position to the other panels
// through the session, which applies the sync policy and throttling.
func (m *Model) mirrorFrom(origin int) {
	positions := make(map[api.Stream]viewer.ScrollPos, len(m.panes))
	for i := range m.panes {
		p := &m.panes[i]
		positions[p.stream] = viewer.ScrollPos{
			Top:     p.vp.YOffset,
			Height:  len(p.rows),
			Visible: p.vp.Height,
		}
	}
	targets := m.session.MirrorScroll(m.panes[origin].stream, positions, time.Now())
	for i := range m.panes {
		if top, ok := targets[m.panes[i].stream]; ok {
			m.panes[i].vp.SetYOffset(top)
		}
	}
}

// maybeLoadMore requests the next page for panel i when it is scrolled
// within NearBottomRows of the end and more lines exist.
func (m *Model) maybeLoadMore(i int) tea.Cmd {
	p := &m.panes[i]
	ps, ok := m.snap.Panels[p.stream]
	if !ok || ps.Loading || !m.hasMoreToLoad(ps) {
		return nil
	}
	if p.vp.YOffset+p.vp.Height < len(p.rows)-NearBottomRows {
		return nil
	}
	return m.loadNextPageCmd(p.stream)
}

// hasMoreToLoad reports whether panel content continues past what is
// loaded, honoring search mode.
func (m Model) hasMoreToLoad(ps viewer.PanelSnapshot) bool {
	if m.snap.SearchTerm != "" {
		return ps.HasMore
	}
	return len(ps.Lines) < ps.TotalLines
}

// secondAtTop returns the second key of the first row at or below the
// top edge of panel i's viewport, "" when none is visible.
func (m Model) secondAtTop(i int) string {
	p := m.panes[i]
	if len(p.rows) == 0 {
		return ""
	}
	start := min(p.vp.YOffset, len(p.rows)-1)
	for j := start; j < len(p.rows); j++ {
		if key := p.rows[j].SecondKey; key != "" {
			return key
		}
	}
	return ""
}

// bottomAfterReplace scrolls panels whose buffer fits in one page to
// the end, so fresh loads open on the newest lines. Appends never move
// the viewport.
func (m *Model) bottomAfterReplace() {
	for i := range m.panes {
		ps := m.snap.Panels[m.panes[i].stream]
		if len(ps.Lines) > 0 && len(ps.Lines) <= m.config.PageSize {
			m.panes[i].vp.GotoBottom()
		}
	}
}

// paneAt returns the index of the panel covering column x, -1 when x is
// outside the panel area.
func (m Model) paneAt(x int) int {
	widths := paneWidths(m.width)
	edge := 0
	for i, w := range widths {
		edge += w
		if x < edge {
			return i
		}
	}
	return -1
}
