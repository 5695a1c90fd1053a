package viewer

import (
	"context"
	"errors"
	"testing"

	"github.com/ctkit/ctview/internal/api"
)

// selectionFixture backs all three streams with data whose first page
// covers seconds 0-1 (page size 20, ten lines per second), leaving
// later seconds to on-demand fetches. out is shifted so its first
// page already holds second 2.
func selectionFixture() *fakeBackend {
	f := newFakeBackend()
	f.data[api.StreamBT] = tenPerSecond("bt", 100, 0)
	f.data[api.StreamOut] = tenPerSecond("out", 100, 2)
	f.data[api.StreamRS] = tenPerSecond("rs", 100, 0)
	return f
}

func TestSelectSecond_FetchesOnlyUnsatisfiedPanels(t *testing.T) {
	f := selectionFixture()
	s := newTestSession(f, 20)
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	key := secondAt(2) // in out's first page, missing from bt and rs
	res := s.SelectSecond(ctx, key)

	if res.Superseded {
		t.Fatal("selection reported superseded with no competitor")
	}
	if !res.Panels[api.StreamBT].Fetched || !res.Panels[api.StreamRS].Fetched {
		t.Errorf("bt/rs outcomes = %+v, want both fetched", res.Panels)
	}
	if res.Panels[api.StreamOut].Fetched {
		t.Error("out fetched despite already holding the second")
	}
	if n := f.secondQueries(api.StreamOut); n != 0 {
		t.Errorf("out second queries = %d, want 0", n)
	}
	if n := f.secondQueries(api.StreamBT); n != 1 {
		t.Errorf("bt second queries = %d, want 1", n)
	}

	sel := s.Selection()
	if sel.SelectedSecond != key || !sel.GroupSelectionActive {
		t.Errorf("selection state = %+v, want %q active", sel, key)
	}
	// Every panel now holds the second.
	for _, stream := range api.Streams() {
		if got := s.SecondLines(stream, key); len(got) == 0 {
			t.Errorf("%s holds no lines for %q after selection", stream, key)
		}
	}

	if !s.FinishSelection(res.Generation) {
		t.Fatal("FinishSelection rejected the winning generation")
	}
	sel = s.Selection()
	if sel.GroupSelectionActive {
		t.Error("selection still active after finish")
	}
	if sel.SelectedSecond != key {
		t.Errorf("highlight cleared by finish: selected = %q, want %q", sel.SelectedSecond, key)
	}
}

func TestSelectSecond_NewerSelectionSupersedesOlder(t *testing.T) {
	f := selectionFixture()
	s1 := secondAt(4)
	s2 := secondAt(5)
	g := newGate()
	f.gateFor = func(q api.LogQuery) *gate {
		if q.Panel == api.StreamBT && q.Second == s1 {
			return g
		}
		return nil
	}
	s := newTestSession(f, 20)
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	done := make(chan SelectionResult, 1)
	go func() { done <- s.SelectSecond(ctx, s1) }()
	<-g.entered

	// A second selection lands while the first is still in flight.
	res2 := s.SelectSecond(ctx, s2)
	close(g.release)
	res1 := <-done

	if !res1.Superseded {
		t.Error("first selection not flagged superseded")
	}
	if res2.Superseded {
		t.Error("second selection flagged superseded")
	}
	if sel := s.Selection(); sel.SelectedSecond != s2 {
		t.Fatalf("selected second = %q, want %q", sel.SelectedSecond, s2)
	}

	// The stale finisher must not deactivate the winner.
	if s.FinishSelection(res1.Generation) {
		t.Error("FinishSelection accepted a superseded generation")
	}
	if sel := s.Selection(); !sel.GroupSelectionActive {
		t.Fatal("winning selection deactivated by stale finisher")
	}
	if !s.FinishSelection(res2.Generation) {
		t.Error("FinishSelection rejected the winning generation")
	}
}

func TestSelectSecond_PanelFailureIsIsolated(t *testing.T) {
	f := selectionFixture()
	boom := errors.New("read timeout")
	f.failLogs[api.StreamRS] = boom
	s := newTestSession(f, 20)
	ctx := context.Background()
	if err := s.Init(ctx); err == nil {
		t.Fatal("Init succeeded despite failing rs")
	}
	f.mu.Lock()
	delete(f.failLogs, api.StreamRS)
	f.mu.Unlock()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	f.mu.Lock()
	f.failLogs[api.StreamRS] = boom
	f.mu.Unlock()

	key := secondAt(4)
	res := s.SelectSecond(ctx, key)

	if err := res.Panels[api.StreamRS].Err; !errors.Is(err, boom) {
		t.Errorf("rs outcome error = %v, want %v", err, boom)
	}
	if res.Panels[api.StreamBT].Err != nil {
		t.Errorf("bt outcome error = %v, want nil", res.Panels[api.StreamBT].Err)
	}
	if got := s.SecondLines(api.StreamBT, key); len(got) == 0 {
		t.Error("bt failed to load the second despite rs failing")
	}
	if sel := s.Selection(); sel.SelectedSecond != key {
		t.Errorf("selection dropped on partial failure: %+v", sel)
	}
	if panel := s.Snapshot().Panels[api.StreamRS]; !errors.Is(panel.LastError, boom) {
		t.Errorf("rs LastError = %v, want %v", panel.LastError, boom)
	}
}

func TestSelection_ManualScrollClearsSettledHighlight(t *testing.T) {
	f := selectionFixture()
	s := newTestSession(f, 20)
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	res := s.SelectSecond(ctx, secondAt(4))

	// While the selection is settling, its own scrolls must not
	// clear it.
	s.NoteManualScroll()
	if sel := s.Selection(); sel.SelectedSecond == "" {
		t.Fatal("active selection cleared by scroll during settle")
	}

	s.FinishSelection(res.Generation)
	s.NoteManualScroll()
	if sel := s.Selection(); sel.SelectedSecond != "" {
		t.Errorf("manual scroll left selection %q, want cleared", sel.SelectedSecond)
	}
}

func TestClearSelection(t *testing.T) {
	f := selectionFixture()
	s := newTestSession(f, 20)
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	res := s.SelectSecond(ctx, secondAt(4))
	gen := res.Generation
	s.ClearSelection()

	sel := s.Selection()
	if sel.SelectedSecond != "" || sel.GroupSelectionActive {
		t.Errorf("selection after clear = %+v, want empty", sel)
	}
	if sel.Generation != gen {
		t.Errorf("clear changed generation %d to %d", gen, sel.Generation)
	}
}

func TestAdjacentSecond(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamBT] = tenPerSecond("bt", 30, 0) // seconds 0, 1, 2
	s := newTestSession(f, 100)
	ctx := context.Background()

	tests := []struct {
		name    string
		current string
		dir     int
		want    string
	}{
		{"empty forward lands on first", "", 1, secondAt(0)},
		{"empty backward lands on last", "", -1, secondAt(2)},
		{"middle forward", secondAt(1), 1, secondAt(2)},
		{"middle backward", secondAt(1), -1, secondAt(0)},
		{"past end", secondAt(2), 1, ""},
		{"before start", secondAt(0), -1, ""},
	}
	for _, tt := range tests {
		got, err := s.AdjacentSecond(ctx, tt.current, tt.dir)
		if err != nil {
			t.Fatalf("%s: AdjacentSecond returned error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: AdjacentSecond(%q, %d) = %q, want %q", tt.name, tt.current, tt.dir, got, tt.want)
		}
	}

	if f.secondsCalls != 1 {
		t.Errorf("seconds fetched %d times, want once", f.secondsCalls)
	}
}
