package ui

import (
	"log"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ctkit/ctview/internal/render"
)

// selectionAnim scrolls all three panels toward a selected second from
// one shared start timestamp so the motion lands together.
type selectionAnim struct {
	gen   uint64
	key   string
	start time.Time
	from  [3]int
	to    [3]int
}

type animFrameMsg uint64

type flashClearMsg int

// handleSettled starts the centering animation once a selection's
// splice results have rendered. Stale generations no-op.
func (m *Model) handleSettled(gen uint64) tea.Cmd {
	sel := m.snap.Selection
	if !sel.GroupSelectionActive || sel.Generation != gen {
		return nil
	}
	return m.startSelectionAnim(gen, sel.SelectedSecond)
}

// startSelectionAnim computes each panel's centered target row for key
// and kicks off the frame loop. A panel without a row for the key keeps
// its position; the jump proceeds for the others.
func (m *Model) startSelectionAnim(gen uint64, key string) tea.Cmd {
	anim := &selectionAnim{gen: gen, key: key, start: time.Now()}
	for i := range m.panes {
		p := &m.panes[i]
		anim.from[i] = p.vp.YOffset
		anim.to[i] = p.vp.YOffset
		idx := render.FindSecond(p.rows, key)
		if idx < 0 {
			if m.debug {
				log.Printf("no row for second %q in %s", key, p.stream)
			}
			continue
		}
		anim.to[i] = clampOffset(idx-p.vp.Height/2, len(p.rows)-p.vp.Height)
	}
	m.anim = anim
	return animFrameCmd(gen)
}

// handleAnimFrame advances the animation one frame. The final frame
// lands every panel exactly on target, flashes the highlight and
// settles the selection. Frames from a superseded animation or
// selection are dropped.
func (m *Model) handleAnimFrame(gen uint64) tea.Cmd {
	anim := m.anim
	if anim == nil || anim.gen != gen || m.snap.Selection.Generation != gen {
		return nil
	}

	t := float64(time.Since(anim.start)) / float64(AnimDuration)
	if t >= 1 {
		for i := range m.panes {
			m.panes[i].vp.SetYOffset(anim.to[i])
		}
		m.anim = nil
		m.session.FinishSelection(gen)
		m.syncFromSession()
		return m.flashTargets()
	}

	eased := easeOutCubic(t)
	for i := range m.panes {
		delta := eased * float64(anim.to[i]-anim.from[i])
		m.panes[i].vp.SetYOffset(anim.from[i] + int(math.Round(delta)))
	}
	return animFrameCmd(gen)
}

// flashTargets briefly brightens the selected-second highlight after
// the animation lands.
func (m *Model) flashTargets() tea.Cmd {
	m.flashOn = true
	m.flashSeq++
	seq := m.flashSeq
	m.rebuildPanes()
	return tea.Tick(FlashDuration, func(time.Time) tea.Msg {
		return flashClearMsg(seq)
	})
}

func animFrameCmd(gen uint64) tea.Cmd {
	return tea.Tick(AnimFrame, func(time.Time) tea.Msg {
		return animFrameMsg(gen)
	})
}

// easeOutCubic maps linear progress to a fast-start, gentle-stop curve.
func easeOutCubic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	u := 1 - t
	return 1 - u*u*u
}

// clampOffset bounds a scroll target to the panel's scrollable span.
func clampOffset(top, maxTop int) int {
	if maxTop < 0 {
		maxTop = 0
	}
	return min(max(top, 0), maxTop)
}
