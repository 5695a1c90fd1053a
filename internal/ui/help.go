package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Panels",
			items: []helpItem{
				{"tab", "Cycle panels"},
				{"1/2/3", "Focus panel"},
				{"j/k", "Scroll up/down"},
				{"g/G", "Go to top/bottom"},
				{"d/u", "Half page down/up"},
				{"wheel", "Scroll under cursor"},
			},
		},
		{
			title: "Seconds",
			items: []helpItem{
				{"enter", "Select second at top"},
				{"[/]", "Prev/next second"},
				{"esc", "Clear selection"},
				{"s", "Toggle synced scroll"},
			},
		},
		{
			title: "Search",
			items: []helpItem{
				{"/", "Search all panels"},
				{"n/N", "Next/prev match"},
				{"esc", "Clear search"},
			},
		},
		{
			title: "View",
			items: []helpItem{
				{"v", "Group by second"},
				{"t", "Toggle timestamps"},
				{"T", "Cycle theme"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"e", "Export loaded lines"},
				{"r", "Reload from server"},
				{"?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	title := styles.Text.Bold(true).Render("Keyboard Shortcuts")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			keyStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Warning)).
				Width(12)
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	content := b.String()
	modalWidth := 40

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(modalWidth)

	modalContent := modal.Render(content)

	// Center the modal over the whole screen
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
