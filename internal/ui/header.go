package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)
	compact := m.width < LayoutCompactWidth

	var parts []string

	parts = append(parts, bg.Render("ctview", styles.AccentText.Bold(true)))

	if err := m.snap.StatsErr; err != nil {
		parts = append(parts, bg.Render("● "+classifyConnectionError(err), styles.DangerText))
		parts = append(parts, bg.Render("Retrying...", styles.WarningText))
	} else {
		parts = append(parts, bg.Render("● ON", styles.SuccessText))
	}

	if !compact {
		parts = append(parts, bg.Render(truncateMiddle(m.config.Server, 40), styles.MutedText))
	}

	// Aggregate counts across all three streams
	var total, errs, warns int
	for _, st := range m.snap.Stats {
		total += st.TotalLines
		errs += st.LevelCounts.Error
		warns += st.LevelCounts.Warning
	}
	parts = append(parts,
		bg.Render("Lines:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", total), styles.Text),
	)

	errStyle := styles.MutedText
	if errs > 0 {
		errStyle = styles.DangerText
	}
	warnStyle := styles.MutedText
	if warns > 0 {
		warnStyle = styles.WarningText
	}
	if compact {
		parts = append(parts,
			bg.Render("E:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", errs), errStyle)+
				sep+bg.Render("•", styles.FaintText)+sep+
				bg.Render("W:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", warns), warnStyle),
		)
	} else {
		parts = append(parts,
			bg.Render("Errors:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", errs), errStyle)+
				sep+bg.Render("•", styles.FaintText)+sep+
				bg.Render("Warnings:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", warns), warnStyle),
		)
	}

	if sel := m.snap.Selection.SelectedSecond; sel != "" {
		parts = append(parts,
			bg.Render("@", styles.FaintText)+bg.Space()+
				bg.Render(sel, styles.AccentText.Bold(true)),
		)
	}

	if term := m.snap.SearchTerm; term != "" {
		matches := 0
		for _, ps := range m.snap.Panels {
			matches += len(ps.SearchResults)
		}
		parts = append(parts,
			bg.Render("/"+truncate(term, 18), styles.AccentText)+bg.Space()+
				bg.Render(fmt.Sprintf("(%d)", matches), styles.WarningText),
		)
	}

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the context-sensitive command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.searchActive:
		commands = []cmd{
			{"enter", "Apply"},
			{"esc", "Cancel"},
		}
	case m.snap.SearchTerm != "":
		commands = []cmd{
			{"n/N", "Next/Prev match"},
			{"/", "Refine"},
			{"esc", "Clear search"},
			{"enter", "Select second"},
			{"e", "Export"},
			{"?", "More"},
		}
	case m.snap.Selection.SelectedSecond != "":
		commands = []cmd{
			{"[/]", "Prev/Next second"},
			{"esc", "Clear"},
			{"j/k", "Scroll"},
			{"/", "Search"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"tab/1-3", "Panel"},
			{"j/k", "Scroll"},
			{"enter", "Select second"},
			{"/", "Search"},
			{"s", "Sync"},
			{"v", "Group"},
			{"e", "Export"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// renderFooter renders the bottom status line: the search input while
// typing, a transient banner, or the standing toggle summary.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.searchActive {
		return styles.Footer.Width(m.width).Render(m.searchInput.View())
	}

	if m.banner != "" {
		return styles.Footer.Width(m.width).Render(bg.Render(m.banner, styles.WarningText))
	}

	var parts []string
	parts = append(parts,
		bg.Render(fmt.Sprintf("[%d] %s", m.focus+1, m.panes[m.focus].stream.Title()), styles.AccentText))
	parts = append(parts, bg.Render("sync "+onOff(m.snap.SyncEnabled), styles.MutedText))
	parts = append(parts, bg.Render("group "+onOff(m.grouped), styles.MutedText))
	parts = append(parts, bg.Render("time "+onOff(m.showTimestamps), styles.MutedText))

	if m.snap.SearchTerm != "" {
		rows := m.matchRows(m.focus)
		if len(rows) > 0 {
			parts = append(parts,
				bg.Render(fmt.Sprintf("match %d/%d", m.matchIdx+1, len(rows)), styles.WarningText))
		} else {
			parts = append(parts, bg.Render("no matches in panel", styles.WarningText))
		}
	}

	if sel := m.snap.Selection; sel.GroupSelectionActive {
		parts = append(parts, bg.Render("selecting "+sel.SelectedSecond, styles.InfoText))
	}

	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return styles.Footer.Width(m.width).Render(strings.Join(parts, sep))
}

// renderStartup renders the blocking screen shown until the initial
// load succeeds: a connecting state and a retryable error state.
func (m Model) renderStartup() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("ctview"))
	b.WriteString("\n\n")

	if m.initErr != nil {
		b.WriteString(styles.DangerText.Render("CTVIEWD " + classifyConnectionError(m.initErr)))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render(truncate(m.initErr.Error(), 60)))
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render("r: Retry  •  q: Quit"))
	} else {
		b.WriteString(m.spin.View() + " " + styles.WarningText.Render("Connecting to ctviewd..."))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render(truncateMiddle(m.config.Server, 50)))
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

// formatTimestamp formats the last successful poll time with a
// relative indicator.
func (m Model) formatTimestamp() string {
	if m.snap.StatsAt.IsZero() {
		return ""
	}

	timeSince := time.Since(m.snap.StatsAt)
	timeStr := m.snap.StatsAt.Format("15:04:05")

	if timeSince < time.Minute {
		timeStr += " (now)"
	} else if timeSince < time.Hour {
		timeStr += fmt.Sprintf(" (%dm ago)", int(timeSince.Minutes()))
	} else if timeSince < 24*time.Hour {
		timeStr += fmt.Sprintf(" (%dh ago)", int(timeSince.Hours()))
	}

	return timeStr
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// truncateMiddle truncates a string in the middle, preserving start and end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 5 {
		return s[:max]
	}
	// Keep more of the end than the start
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return s[:startLen] + "..." + s[len(s)-endLen:]
}
