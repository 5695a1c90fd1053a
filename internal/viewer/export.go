package viewer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ctkit/ctview/internal/api"
)

// ExportLoaded writes the currently loaded lines of every panel to a
// dated JSON file in dir and returns its path. The payload maps each
// stream name to its raw lines in buffer order, so an export captures
// exactly what the viewer shows, including second fetches.
func (s *Session) ExportLoaded(dir string, now time.Time) (string, error) {
	s.mu.Lock()
	payload := make(map[string][]string, len(s.panels))
	for stream, p := range s.panels {
		lines := make([]string, 0, len(p.lines))
		for i := range p.lines {
			lines = append(lines, p.lines[i].Original)
		}
		payload[stream.String()] = lines
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	name := fmt.Sprintf("ct-logs-%s.json", now.Format("2006-01-02"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// LoadedCount reports how many lines are loaded per stream, used by
// the status bar after an export.
func (s *Session) LoadedCount() map[api.Stream]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[api.Stream]int, len(s.panels))
	for stream, p := range s.panels {
		counts[stream] = len(p.lines)
	}
	return counts
}
