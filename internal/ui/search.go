package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ctkit/ctview/internal/render"
)

// handleSearchKey processes keys while the search input is focused.
// Enter applies immediately, esc cancels, and anything else feeds the
// input and arms a debounced live apply.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		term := m.searchInput.Value()
		m.searchActive = false
		m.searchInput.Blur()
		m.searchSeq++ // invalidate any pending debounce tick
		return m, m.applySearchCmd(term)

	case key.Matches(msg, m.keys.Escape):
		m.searchActive = false
		m.searchInput.Blur()
		m.searchSeq++
		m.searchInput.SetValue(m.snap.SearchTerm)
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	m.searchSeq++
	seq := m.searchSeq
	debounce := tea.Tick(SearchDebounce, func(time.Time) tea.Msg {
		return searchTickMsg(seq)
	})
	return m, tea.Batch(cmd, debounce)
}

// handleSearchTick fires the debounced search once typing settles.
// Stale ticks from earlier keystrokes carry an old sequence number and
// are dropped.
func (m Model) handleSearchTick(msg searchTickMsg) (tea.Model, tea.Cmd) {
	if !m.searchActive || int(msg) != m.searchSeq {
		return m, nil
	}
	term := m.searchInput.Value()
	if term == m.snap.SearchTerm {
		return m, nil
	}
	return m, m.applySearchCmd(term)
}

// handleSearchApplied re-renders every panel after a search round trip.
func (m Model) handleSearchApplied(msg searchAppliedMsg) (tea.Model, tea.Cmd) {
	m.syncFromSession()
	m.matchIdx = 0
	if msg.err != nil {
		cmd := m.setBanner("search failed: " + msg.err.Error())
		return m, cmd
	}
	// The buffers were replaced wholesale, so old scroll offsets point
	// at nothing recognizable.
	for i := range m.panes {
		m.panes[i].vp.GotoTop()
	}
	m.bottomAfterReplace()
	return m, nil
}

// gotoMatch steps the active match in the focused panel and centers the
// viewport on it. Stepping forward past the last loaded match pulls the
// next page of results when the server has more, otherwise wraps.
func (m *Model) gotoMatch(dir int) tea.Cmd {
	if m.snap.SearchTerm == "" {
		return nil
	}
	rows := m.matchRows(m.focus)
	if len(rows) == 0 {
		return m.setBanner("no matches in panel")
	}

	next := m.matchIdx + dir
	if next >= len(rows) {
		if ps, ok := m.snap.Panels[m.panes[m.focus].stream]; ok && ps.HasMore && !ps.Loading {
			banner := m.setBanner("loading more matches...")
			return tea.Batch(banner, m.loadNextPageCmd(m.panes[m.focus].stream))
		}
		next = 0
	}
	if next < 0 {
		next = len(rows) - 1
	}

	m.matchIdx = next
	m.rebuildPanes()
	m.centerFocused(rows[next])
	return nil
}

// centerFocused scrolls the focused viewport so the given row sits
// mid-screen.
func (m *Model) centerFocused(row int) {
	vp := &m.panes[m.focus].vp
	vp.SetYOffset(max(row-vp.Height/2, 0))
}

// matchRows returns the row indices in a panel that landed on a search
// match, in display order.
func (m Model) matchRows(i int) []int {
	var rows []int
	for r, row := range m.panes[i].rows {
		if row.Kind == render.RowLine && row.Match {
			rows = append(rows, r)
		}
	}
	return rows
}

// clampMatch keeps the active match index inside the focused panel's
// current match list after a rebuild.
func (m *Model) clampMatch() {
	if m.snap.SearchTerm == "" {
		m.matchIdx = 0
		return
	}
	n := len(m.matchRows(m.focus))
	switch {
	case n == 0:
		m.matchIdx = 0
	case m.matchIdx >= n:
		m.matchIdx = n - 1
	case m.matchIdx < 0:
		m.matchIdx = 0
	}
}

// activeMatchRow returns the row index of the active match in panel i,
// or -1 when the panel is unfocused or no search is applied.
func (m Model) activeMatchRow(i int) int {
	if i != m.focus || m.snap.SearchTerm == "" {
		return -1
	}
	rows := m.matchRows(i)
	if m.matchIdx < 0 || m.matchIdx >= len(rows) {
		return -1
	}
	return rows[m.matchIdx]
}
