package viewer

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ctkit/ctview/internal/api"
)

// PanelOutcome reports how one panel fared during a selection.
type PanelOutcome struct {
	Fetched bool
	Err     error
}

// SelectionResult is what SelectSecond hands back to the caller once
// every panel has settled.
type SelectionResult struct {
	Key        string
	Generation uint64
	Superseded bool
	Panels     map[api.Stream]PanelOutcome
}

// SelectSecond runs the cross-panel selection protocol for one second
// key. It bumps the selection generation, marks the selection active
// (which suspends scroll mirroring), then fetches the second's lines
// for every panel concurrently. Panels already holding the second
// skip their fetch; panels that fail keep their buffers and report
// the error in the result without disturbing the other panels.
//
// A newer selection started while this one is in flight supersedes
// it: the stale result is flagged and must be discarded by the
// caller. Scroll alignment and the settle animation belong to the UI
// layer, which runs them only for the winning generation.
func (s *Session) SelectSecond(ctx context.Context, key string) SelectionResult {
	s.mu.Lock()
	s.selection.Generation++
	gen := s.selection.Generation
	s.selection.SelectedSecond = key
	s.selection.GroupSelectionActive = true
	s.bump()
	s.mu.Unlock()

	var (
		g        errgroup.Group
		outcomes = make(map[api.Stream]PanelOutcome, 3)
		outMu    sync.Mutex
	)
	for _, stream := range api.Streams() {
		stream := stream
		g.Go(func() error {
			fetched, err := s.LoadSecond(ctx, stream, key)
			outMu.Lock()
			outcomes[stream] = PanelOutcome{Fetched: fetched, Err: err}
			outMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return SelectionResult{
		Key:        key,
		Generation: gen,
		Superseded: gen != s.selection.Generation,
		Panels:     outcomes,
	}
}

// FinishSelection ends the active phase of a selection: mirroring
// resumes and the highlight stays until cleared. A finisher carrying
// a superseded generation is ignored so a slow selection can never
// deactivate the one that replaced it.
func (s *Session) FinishSelection(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.selection.Generation || !s.selection.GroupSelectionActive {
		return false
	}
	s.selection.GroupSelectionActive = false
	s.bump()
	return true
}

// ClearSelection drops the selected second and any active state.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection.SelectedSecond == "" && !s.selection.GroupSelectionActive {
		return
	}
	s.selection = SelectionState{Generation: s.selection.Generation}
	s.bump()
}

// NoteManualScroll records that the user scrolled a panel by hand.
// While a selection is settling the scroll is part of the protocol
// and the selection stays; afterwards a manual scroll means the user
// has moved on, so the highlight clears.
func (s *Session) NoteManualScroll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection.GroupSelectionActive || s.selection.SelectedSecond == "" {
		return
	}
	s.selection = SelectionState{Generation: s.selection.Generation}
	s.bump()
}

// AdjacentSecond resolves the second key one step before or after
// current in the server's global ordering. dir is -1 or +1. An empty
// current lands on the first or last key. Returns "" when there is no
// neighbor in that direction.
func (s *Session) AdjacentSecond(ctx context.Context, current string, dir int) (string, error) {
	seconds, err := s.secondsList(ctx)
	if err != nil {
		return "", err
	}
	if len(seconds) == 0 {
		return "", nil
	}
	if current == "" {
		if dir < 0 {
			return seconds[len(seconds)-1], nil
		}
		return seconds[0], nil
	}
	i := sort.SearchStrings(seconds, current)
	if dir < 0 {
		if i == 0 {
			return "", nil
		}
		return seconds[i-1], nil
	}
	if i < len(seconds) && seconds[i] == current {
		i++
	}
	if i >= len(seconds) {
		return "", nil
	}
	return seconds[i], nil
}

// secondsList returns the global second list, fetched once on first
// use and cached for the rest of the run.
func (s *Session) secondsList(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	cached := s.seconds
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	seconds, err := s.fetcher.FetchSeconds(ctx)
	if err != nil {
		return nil, err
	}
	if seconds == nil {
		seconds = []string{}
	}
	s.mu.Lock()
	s.seconds = seconds
	s.mu.Unlock()
	return seconds, nil
}
