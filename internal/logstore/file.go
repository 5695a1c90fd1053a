package logstore

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctkit/ctview/internal/api"
	"github.com/ctkit/ctview/internal/logformat"
)

// LogFile is one stream's open log file: the mapping, the line span
// index, and the caches filled by the single full scan at open time
// (level counts, error positions, second keys). Files are immutable
// while open; an upload rebinds the stream to a new LogFile.
type LogFile struct {
	path      string
	mapped    *mappedFile
	idx       *lineIndex
	stats     api.StreamStats
	positions []api.ErrorPosition
	seconds   []string
}

// OpenLogFile maps the file, indexes its lines and runs the stats
// scan.
func OpenLogFile(path string) (*LogFile, error) {
	mapped, err := openMapped(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	idx, err := buildLineIndex(mapped)
	if err != nil {
		mapped.Close()
		return nil, fmt.Errorf("index log file: %w", err)
	}

	f := &LogFile{path: path, mapped: mapped, idx: idx}
	if err := f.scan(); err != nil {
		mapped.Close()
		return nil, fmt.Errorf("scan log file: %w", err)
	}
	return f, nil
}

// scan walks every line once, filling stats, error positions and the
// sorted unique second-key list.
func (f *LogFile) scan() error {
	total := f.idx.LineCount()
	f.stats = api.StreamStats{
		TotalLines: total,
		Size:       f.mapped.Size(),
	}

	secondSet := make(map[string]struct{})
	for i := 0; i < total; i++ {
		content, err := f.idx.Line(i)
		if err != nil {
			return err
		}
		line := string(content)

		switch logformat.DetectLevel(line) {
		case api.LevelError:
			f.stats.LevelCounts.Error++
			f.positions = append(f.positions, api.ErrorPosition{
				LineNumber: i,
				Level:      api.LevelError,
				Offset:     i,
			})
		case api.LevelWarning:
			f.stats.LevelCounts.Warning++
			f.positions = append(f.positions, api.ErrorPosition{
				LineNumber: i,
				Level:      api.LevelWarning,
				Offset:     i,
			})
		}

		if key := logformat.SecondKey(line); key != "" {
			secondSet[key] = struct{}{}
		}
	}

	f.seconds = make([]string, 0, len(secondSet))
	for key := range secondSet {
		f.seconds = append(f.seconds, key)
	}
	sort.Strings(f.seconds)
	return nil
}

// Page returns up to limit parsed lines starting at offset. With a
// search term, offset and limit address the subsequence of matching
// lines instead of the whole stream. hasMore reports whether another
// page exists in the same addressing mode.
func (f *LogFile) Page(offset, limit int, search string) ([]api.LogLine, bool, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return nil, false, nil
	}
	total := f.idx.LineCount()

	if search == "" {
		if offset >= total {
			return nil, false, nil
		}
		end := offset + limit
		if end > total {
			end = total
		}
		lines := make([]api.LogLine, 0, end-offset)
		for i := offset; i < end; i++ {
			content, err := f.idx.Line(i)
			if err != nil {
				return nil, false, err
			}
			lines = append(lines, logformat.Parse(i, string(content)))
		}
		return lines, end < total, nil
	}

	needle := strings.ToLower(search)
	var lines []api.LogLine
	skipped := 0
	hasMore := false
	for i := 0; i < total; i++ {
		content, err := f.idx.Line(i)
		if err != nil {
			return nil, false, err
		}
		line := string(content)
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(lines) == limit {
			hasMore = true
			break
		}
		lines = append(lines, logformat.Parse(i, line))
	}
	return lines, hasMore, nil
}

// Second returns up to limit lines whose secondKey equals key.
func (f *LogFile) Second(key string, limit int) ([]api.LogLine, error) {
	if key == "" || limit <= 0 {
		return nil, nil
	}
	var lines []api.LogLine
	total := f.idx.LineCount()
	for i := 0; i < total; i++ {
		content, err := f.idx.Line(i)
		if err != nil {
			return nil, err
		}
		line := string(content)
		if logformat.SecondKey(line) != key {
			continue
		}
		lines = append(lines, logformat.Parse(i, line))
		if len(lines) >= limit {
			break
		}
	}
	return lines, nil
}

// Search returns whole-stream matches for term, capped at max.
func (f *LogFile) Search(term string, max int) ([]api.LogLine, error) {
	if term == "" || max <= 0 {
		return nil, nil
	}
	needle := strings.ToLower(term)
	var matches []api.LogLine
	total := f.idx.LineCount()
	for i := 0; i < total; i++ {
		content, err := f.idx.Line(i)
		if err != nil {
			return nil, err
		}
		line := string(content)
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		matches = append(matches, logformat.Parse(i, line))
		if len(matches) >= max {
			break
		}
	}
	return matches, nil
}

// Stats returns the cached open-time statistics.
func (f *LogFile) Stats() api.StreamStats {
	return f.stats
}

// Positions returns a copy of the cached error/warning positions.
func (f *LogFile) Positions() []api.ErrorPosition {
	out := make([]api.ErrorPosition, len(f.positions))
	copy(out, f.positions)
	return out
}

// Seconds returns a copy of the sorted unique second keys.
func (f *LogFile) Seconds() []string {
	out := make([]string, len(f.seconds))
	copy(out, f.seconds)
	return out
}

// Name returns the file's base name.
func (f *LogFile) Name() string {
	return filepath.Base(f.path)
}

// Size returns the file size in bytes.
func (f *LogFile) Size() int64 {
	return f.mapped.Size()
}

// Close releases the mapping.
func (f *LogFile) Close() error {
	return f.mapped.Close()
}
