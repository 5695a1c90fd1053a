package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Dracula" || names[1] != "Nightfox" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Dracula Nightfox Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Dracula"); got != "Nightfox" {
		t.Fatalf("NextTheme(Dracula) = %q, want Nightfox", got)
	}
	if got := NextTheme("Nightfox"); got != "Slate" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Slate", got)
	}
	if got := NextTheme("Slate"); got != "Dracula" {
		t.Fatalf("NextTheme(Slate) = %q, want Dracula", got)
	}
	if got := NextTheme("Unknown"); got != "Dracula" {
		t.Fatalf("NextTheme(Unknown) = %q, want Dracula", got)
	}
}

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name); got.Name != name {
			t.Fatalf("GetTheme(%s).Name = %q, want %q", name, got.Name, name)
		}
	}

	unknown := GetTheme("Unknown")
	if unknown.Name != "Dracula" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Dracula (fallback)", unknown.Name)
	}
}

func TestThemesDefineAllLevelColors(t *testing.T) {
	levels := []string{"normal", "info", "warning", "error"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, level := range levels {
			if th.LevelColors[level] == "" {
				t.Fatalf("theme %s has no color for level %s", name, level)
			}
		}
	}
}

func TestLevelTextFallback(t *testing.T) {
	th := draculaTheme()
	styles := th.Styles()

	if got := styles.LevelText("error").GetForeground(); got != lipgloss.Color(th.LevelColors["error"]) {
		t.Fatalf("LevelText(error) foreground = %v, want %v", got, th.LevelColors["error"])
	}
	if got := styles.LevelText("unknown").GetForeground(); got != lipgloss.Color(th.Text) {
		t.Fatalf("LevelText(unknown) foreground = %v, want text color %v", got, th.Text)
	}
}

func TestWithBackgroundKeepsLevelColors(t *testing.T) {
	th := draculaTheme()
	styles := th.Styles().WithBackground(th.Surface)

	if got := styles.LevelText("warning").GetForeground(); got != lipgloss.Color(th.LevelColors["warning"]) {
		t.Fatalf("LevelText(warning) after WithBackground = %v, want %v", got, th.LevelColors["warning"])
	}
}
