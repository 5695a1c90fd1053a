// Package logformat extracts timestamps, correlation keys and
// severity levels from raw scanner log lines.
//
// The three streams use different timestamp shapes (ISO 8601 with
// milliseconds, comma-millisecond variant, bare time-of-day); the
// pattern tables below cover all of them. The secondKey is the same
// match truncated to one-second resolution and is the key the viewer
// correlates streams on.
package logformat

import (
	"regexp"
	"strings"

	"github.com/ctkit/ctview/internal/api"
)

type timestampPattern struct {
	full   *regexp.Regexp
	second *regexp.Regexp
}

// Patterns are ordered most specific first; the first match wins for
// both the full timestamp and its second-resolution truncation.
var timestampPatterns = []timestampPattern{
	// 2025-06-02T10:00:05.123
	{
		full:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3})`),
		second: regexp.MustCompile(`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})`),
	},
	// 2025-06-02 10:00:05,123
	{
		full:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3})`),
		second: regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`),
	},
	// 10:00:05.123
	{
		full:   regexp.MustCompile(`(\d{2}:\d{2}:\d{2}\.\d{3})`),
		second: regexp.MustCompile(`(\d{2}:\d{2}:\d{2})`),
	},
}

// Timestamp returns the raw timestamp substring of line, or "" when
// no known shape matches.
func Timestamp(line string) string {
	for _, p := range timestampPatterns {
		if m := p.full.FindStringSubmatch(line); len(m) >= 2 {
			return m[1]
		}
	}
	return ""
}

// SecondKey returns line's timestamp truncated to one-second
// resolution, or "" when no known shape matches.
func SecondKey(line string) string {
	for _, p := range timestampPatterns {
		if m := p.second.FindStringSubmatch(line); len(m) >= 2 {
			return m[1]
		}
	}
	return ""
}

// DetectLevel classifies a line by severity keywords, most severe
// first. Matching is case-insensitive substring search.
func DetectLevel(line string) api.Level {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "error") || strings.Contains(lower, "exception"):
		return api.LevelError
	case strings.Contains(lower, "warn"):
		return api.LevelWarning
	case strings.Contains(lower, "info") || strings.Contains(lower, "debug"):
		return api.LevelInfo
	}
	return api.LevelNormal
}

// Parse builds the full wire record for one raw line. The caller
// supplies the line's zero-based position in its stream; the raw text
// must already be stripped of its trailing newline.
func Parse(lineNumber int, raw string) api.LogLine {
	return api.LogLine{
		ID:         lineNumber,
		LineNumber: lineNumber,
		Timestamp:  Timestamp(raw),
		SecondKey:  SecondKey(raw),
		Level:      DetectLevel(raw),
		Content:    raw,
		Original:   raw,
	}
}
