package viewer

import (
	"math"
	"time"

	"github.com/ctkit/ctview/internal/api"
)

const (
	// syncThresholdRows is the largest drift, in rows, that mirroring
	// leaves alone. Anything bigger gets corrected; anything at or
	// below it would cause feedback loops between panels that round
	// to slightly different rows.
	syncThresholdRows = 1

	// syncThrottle caps mirroring to roughly one propagation per
	// frame so wheel events cannot flood the other panels.
	syncThrottle = 16 * time.Millisecond
)

// ScrollPos describes one panel's vertical scroll state in rows:
// Top is the first visible row, Height the total content height,
// Visible the viewport height.
type ScrollPos struct {
	Top     int
	Height  int
	Visible int
}

// fraction converts the position to relative scroll progress in
// [0, 1]. A panel whose content fits its viewport has no meaningful
// progress and reports 0.
func (p ScrollPos) fraction() float64 {
	span := p.Height - p.Visible
	if span <= 0 {
		return 0
	}
	top := p.Top
	if top < 0 {
		top = 0
	}
	if top > span {
		top = span
	}
	return float64(top) / float64(span)
}

// topAt maps relative progress back to a concrete top row for this
// panel, rounding to the nearest row.
func (p ScrollPos) topAt(frac float64) int {
	span := p.Height - p.Visible
	if span <= 0 {
		return 0
	}
	top := int(math.Round(frac * float64(span)))
	if top < 0 {
		top = 0
	}
	if top > span {
		top = span
	}
	return top
}

// MirrorScroll propagates a scroll on the origin panel to the others
// by relative position. It returns the target top row per panel that
// needs to move; panels already within the drift threshold are left
// out. Mirroring is suppressed while sync is off or a selection is
// actively aligning panels itself, and throttled so at most one
// propagation happens per frame.
func (s *Session) MirrorScroll(origin api.Stream, positions map[api.Stream]ScrollPos, now time.Time) map[api.Stream]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.syncEnabled || s.selection.GroupSelectionActive {
		return nil
	}
	if !s.lastPropagation.IsZero() && now.Sub(s.lastPropagation) < syncThrottle {
		return nil
	}
	from, ok := positions[origin]
	if !ok {
		return nil
	}
	frac := from.fraction()
	targets := make(map[api.Stream]int)
	for stream, pos := range positions {
		if stream == origin {
			continue
		}
		top := pos.topAt(frac)
		if abs(top-pos.Top) <= syncThresholdRows {
			continue
		}
		targets[stream] = top
	}
	if len(targets) == 0 {
		return nil
	}
	s.lastPropagation = now
	return targets
}

// SetSyncEnabled flips synchronized scrolling and returns the new
// state.
func (s *Session) SetSyncEnabled(on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncEnabled != on {
		s.syncEnabled = on
		s.bump()
	}
	return s.syncEnabled
}

// SyncEnabled reports whether synchronized scrolling is on.
func (s *Session) SyncEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncEnabled
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
