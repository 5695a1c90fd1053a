package viewer

import (
	"fmt"
	"sort"

	"github.com/ctkit/ctview/internal/api"
)

// detectMarks recomputes a panel's error positions from its buffer.
// The scan is idempotent: running it twice over the same buffer
// yields the same marks and counts. Caller holds the lock.
func (s *Session) detectMarks(p *panelState) {
	p.tracked = make(map[int]struct{})
	p.marks = p.marks[:0]
	p.errors = 0
	p.warnings = 0
	s.extendMarks(p, p.lines)
}

// extendMarks folds newly loaded lines into the panel's marks without
// touching already-counted lines, so counts never double even when a
// page and a second fetch overlap. Caller holds the lock.
func (s *Session) extendMarks(p *panelState, lines []api.LogLine) {
	added := false
	for _, ln := range lines {
		if ln.Level != api.LevelError && ln.Level != api.LevelWarning {
			continue
		}
		if _, seen := p.tracked[ln.LineNumber]; seen {
			continue
		}
		p.tracked[ln.LineNumber] = struct{}{}
		p.marks = append(p.marks, api.ErrorPosition{
			LineNumber: ln.LineNumber,
			Level:      ln.Level,
			Offset:     ln.LineNumber,
		})
		if ln.Level == api.LevelError {
			p.errors++
		} else {
			p.warnings++
		}
		added = true
	}
	if added {
		sort.Slice(p.marks, func(a, b int) bool {
			return p.marks[a].LineNumber < p.marks[b].LineNumber
		})
	}
}

// summaryTag renders error and warning counts in the panel-title
// form: "3E 2W", "3E", "2W", or "" when both are zero.
func summaryTag(errors, warnings int) string {
	switch {
	case errors > 0 && warnings > 0:
		return fmt.Sprintf("%dE %dW", errors, warnings)
	case errors > 0:
		return fmt.Sprintf("%dE", errors)
	case warnings > 0:
		return fmt.Sprintf("%dW", warnings)
	default:
		return ""
	}
}

// OverlayMark is one row of the scroll-position overlay.
type OverlayMark struct {
	Row   int
	Level api.Level
}

// OverlayMarks projects error positions onto a gutter of the given
// height: each mark lands at (offset/total)*height, clamped to the
// last row. When an error and a warning collapse onto the same row
// the error wins. Marks are returned in ascending row order.
func OverlayMarks(positions []api.ErrorPosition, total, height int) []OverlayMark {
	if total <= 0 || height <= 0 {
		return nil
	}
	byRow := make(map[int]api.Level)
	for _, pos := range positions {
		row := pos.Offset * height / total
		if row >= height {
			row = height - 1
		}
		if row < 0 {
			row = 0
		}
		if prev, ok := byRow[row]; ok && prev == api.LevelError {
			continue
		}
		byRow[row] = pos.Level
	}
	marks := make([]OverlayMark, 0, len(byRow))
	for row, level := range byRow {
		marks = append(marks, OverlayMark{Row: row, Level: level})
	}
	sort.Slice(marks, func(a, b int) bool { return marks[a].Row < marks[b].Row })
	return marks
}
