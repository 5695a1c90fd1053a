// Package prefs handles ctview user preferences persistence.
// Preferences are stored in ~/.config/ctview/prefs.toml.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds the view toggles ctview restores between runs.
type Prefs struct {
	Theme          string `toml:"theme"`
	SyncScroll     bool   `toml:"sync_scroll"`
	GroupBySecond  bool   `toml:"group_by_second"`
	ShowTimestamps bool   `toml:"show_timestamps"`
}

const (
	defaultPrefsPath = "~/.config/ctview/prefs.toml"
	defaultTheme     = "Dracula"
)

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{
		Theme:          defaultTheme,
		SyncScroll:     true,
		GroupBySecond:  false,
		ShowTimestamps: true,
	}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults
// if missing. Preferences are cosmetic, so every failure degrades to
// defaults instead of surfacing an error.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return Default(), nil
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Default(), nil
	}

	// Booleans need tri-state parsing: an absent key keeps its
	// default, a present false is honored.
	var raw struct {
		Theme          string `toml:"theme"`
		SyncScroll     *bool  `toml:"sync_scroll"`
		GroupBySecond  *bool  `toml:"group_by_second"`
		ShowTimestamps *bool  `toml:"show_timestamps"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Default(), nil
	}

	prefs := Default()
	if strings.TrimSpace(raw.Theme) != "" {
		prefs.Theme = strings.TrimSpace(raw.Theme)
	}
	if raw.SyncScroll != nil {
		prefs.SyncScroll = *raw.SyncScroll
	}
	if raw.GroupBySecond != nil {
		prefs.GroupBySecond = *raw.GroupBySecond
	}
	if raw.ShowTimestamps != nil {
		prefs.ShowTimestamps = *raw.ShowTimestamps
	}
	return prefs, nil
}

// Save writes preferences to the given path, creating directories as
// needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
