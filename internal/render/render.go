// Package render turns panel buffers into display rows. It owns the
// grouped-by-second and flat presentations plus the timestamp
// stripping toggle; everything here is a pure transform so the UI
// layer only styles rows, never derives them.
package render

import (
	"sort"
	"strings"

	"github.com/ctkit/ctview/internal/api"
)

// RowKind distinguishes group headers from log lines.
type RowKind int

const (
	RowLine RowKind = iota
	RowHeader
)

// Row is one display row of a panel.
type Row struct {
	Kind      RowKind
	SecondKey string
	Count     int
	Line      api.LogLine
	Text      string
	Highlight bool
	Match     bool
}

// Options control how rows are derived from lines.
type Options struct {
	// ShowTimestamps leaves timestamps in line text; when off, each
	// line's detected timestamp is stripped because the group header
	// or neighboring lines already carry the time.
	ShowTimestamps bool

	// HighlightSecond flags rows belonging to the selected second.
	HighlightSecond string

	// MatchIDs flags rows whose line id is a search match.
	MatchIDs map[int]struct{}
}

// MatchSet builds the MatchIDs set from a list of line ids.
func MatchSet(ids []int) map[int]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Flat renders lines in buffer order without grouping.
func Flat(lines []api.LogLine, opts Options) []Row {
	rows := make([]Row, 0, len(lines))
	for _, ln := range lines {
		rows = append(rows, lineRow(ln, opts))
	}
	return rows
}

// Grouped renders lines bucketed by second key in ascending key
// order, one header row per group followed by its members in buffer
// order. Lines without a second key have nothing to group under and
// are omitted; the flat presentation still shows them.
func Grouped(lines []api.LogLine, opts Options) []Row {
	groups := make(map[string][]api.LogLine)
	keys := make([]string, 0)
	for _, ln := range lines {
		if ln.SecondKey == "" {
			continue
		}
		if _, seen := groups[ln.SecondKey]; !seen {
			keys = append(keys, ln.SecondKey)
		}
		groups[ln.SecondKey] = append(groups[ln.SecondKey], ln)
	}
	sort.Strings(keys)

	rows := make([]Row, 0, len(lines)+len(keys))
	for _, key := range keys {
		members := groups[key]
		rows = append(rows, Row{
			Kind:      RowHeader,
			SecondKey: key,
			Count:     len(members),
			Text:      key,
			Highlight: opts.HighlightSecond != "" && key == opts.HighlightSecond,
		})
		for _, ln := range members {
			rows = append(rows, lineRow(ln, opts))
		}
	}
	return rows
}

// FindSecond returns the index of the first row belonging to the
// second, preferring its header, or -1 when the second is not
// rendered. Scrolling a panel to a selected second targets this row.
func FindSecond(rows []Row, key string) int {
	first := -1
	for i, row := range rows {
		if row.SecondKey != key {
			continue
		}
		if row.Kind == RowHeader {
			return i
		}
		if first == -1 {
			first = i
		}
	}
	return first
}

func lineRow(ln api.LogLine, opts Options) Row {
	row := Row{
		Kind:      RowLine,
		SecondKey: ln.SecondKey,
		Line:      ln,
		Text:      displayText(ln, opts.ShowTimestamps),
		Highlight: opts.HighlightSecond != "" && ln.SecondKey == opts.HighlightSecond,
	}
	if opts.MatchIDs != nil {
		_, row.Match = opts.MatchIDs[ln.ID]
	}
	return row
}

// displayText returns the line's text for the current timestamp
// toggle. Stripping removes the first occurrence of the detected
// timestamp from a copy; the line itself is never modified, so
// toggling back restores the full text.
func displayText(ln api.LogLine, showTimestamps bool) string {
	if showTimestamps || ln.Timestamp == "" {
		return ln.Content
	}
	return strings.TrimSpace(strings.Replace(ln.Content, ln.Timestamp, "", 1))
}
