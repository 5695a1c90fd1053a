package viewer

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ctkit/ctview/internal/api"
)

func newTestSession(f *fakeBackend, pageSize int) *Session {
	return NewSession(f, Options{PageSize: pageSize, SecondFetchLimit: 50})
}

func TestLoadPage_AppendExtendsEarlierPages(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamBT] = tenPerSecond("bt", 250, 0)
	s := newTestSession(f, 100)
	ctx := context.Background()

	if _, err := s.LoadPage(ctx, api.StreamBT, 0); err != nil {
		t.Fatalf("LoadPage(0) returned error: %v", err)
	}
	if _, err := s.LoadPage(ctx, api.StreamBT, 100); err != nil {
		t.Fatalf("LoadPage(100) returned error: %v", err)
	}

	panel := s.Snapshot().Panels[api.StreamBT]
	if got, want := lineNums(panel.Lines), seqInts(0, 200); !reflect.DeepEqual(got, want) {
		t.Errorf("buffer after two pages = %v..%v (%d lines), want 0..199",
			got[0], got[len(got)-1], len(got))
	}
	if panel.CurrentOffset != 0 {
		t.Errorf("CurrentOffset = %d, want 0", panel.CurrentOffset)
	}
}

func TestLoadPage_OffsetZeroReplaces(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamBT] = tenPerSecond("bt", 250, 0)
	s := newTestSession(f, 100)
	ctx := context.Background()

	mustLoadPage(t, s, api.StreamBT, 0)
	mustLoadPage(t, s, api.StreamBT, 100)
	mustLoadPage(t, s, api.StreamBT, 0)

	panel := s.Snapshot().Panels[api.StreamBT]
	if got, want := lineNums(panel.Lines), seqInts(0, 100); !reflect.DeepEqual(got, want) {
		t.Fatalf("buffer after replacing load = %d lines, want the first page only", len(got))
	}

	// The replace resets pagination, so the next page starts at 100
	// again rather than after the discarded range.
	mustRefreshStats(t, s)
	if _, err := s.LoadNextPage(ctx, api.StreamBT); err != nil {
		t.Fatalf("LoadNextPage returned error: %v", err)
	}
	last := lastPageQuery(f, api.StreamBT)
	if last.Offset != 100 {
		t.Errorf("next page offset after replace = %d, want 100", last.Offset)
	}
}

func TestLoadPage_FirstAppendKeepsRequestedOffset(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamOut] = tenPerSecond("out", 600, 0)
	s := newTestSession(f, 100)

	mustLoadPage(t, s, api.StreamOut, 500)

	panel := s.Snapshot().Panels[api.StreamOut]
	if panel.CurrentOffset != 500 {
		t.Errorf("CurrentOffset = %d, want 500", panel.CurrentOffset)
	}
	if got, want := lineNums(panel.Lines), seqInts(500, 100); !reflect.DeepEqual(got, want) {
		t.Errorf("buffer = %d lines starting at %d, want 100 starting at 500", len(got), got[0])
	}
}

func TestLoadPage_InFlightLoadBlocksOverlap(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamBT] = tenPerSecond("bt", 50, 0)
	f.data[api.StreamOut] = tenPerSecond("out", 50, 0)
	g := newGate()
	f.gateFor = func(q api.LogQuery) *gate {
		if q.Panel == api.StreamBT && q.Second == "" {
			return g
		}
		return nil
	}
	s := newTestSession(f, 20)
	ctx := context.Background()

	type result struct {
		fetched bool
		err     error
	}
	done := make(chan result, 1)
	go func() {
		fetched, err := s.LoadPage(ctx, api.StreamBT, 0)
		done <- result{fetched, err}
	}()
	<-g.entered

	// Same panel while a load is in flight: silently ignored.
	fetched, err := s.LoadPage(ctx, api.StreamBT, 20)
	if fetched || err != nil {
		t.Errorf("overlapping LoadPage = (%v, %v), want (false, nil)", fetched, err)
	}
	if n := f.pageQueries(api.StreamBT); n != 1 {
		t.Errorf("bt page queries during in-flight load = %d, want 1", n)
	}
	// Other panels are independent.
	if fetched, err := s.LoadPage(ctx, api.StreamOut, 0); !fetched || err != nil {
		t.Errorf("LoadPage(out) during bt load = (%v, %v), want (true, nil)", fetched, err)
	}

	close(g.release)
	if res := <-done; !res.fetched || res.err != nil {
		t.Fatalf("gated LoadPage = (%v, %v), want (true, nil)", res.fetched, res.err)
	}
	panel := s.Snapshot().Panels[api.StreamBT]
	if len(panel.Lines) != 20 || panel.Loading {
		t.Errorf("after release: %d lines, loading=%v, want 20 lines and loading cleared",
			len(panel.Lines), panel.Loading)
	}
}

func TestLoadPage_ErrorKeepsBuffer(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamRS] = tenPerSecond("rs", 200, 0)
	s := newTestSession(f, 100)
	ctx := context.Background()

	mustLoadPage(t, s, api.StreamRS, 0)

	boom := errors.New("connection refused")
	f.mu.Lock()
	f.failLogs[api.StreamRS] = boom
	f.mu.Unlock()

	if _, err := s.LoadPage(ctx, api.StreamRS, 100); !errors.Is(err, boom) {
		t.Fatalf("LoadPage error = %v, want %v", err, boom)
	}
	panel := s.Snapshot().Panels[api.StreamRS]
	if len(panel.Lines) != 100 {
		t.Errorf("buffer after failed append = %d lines, want the 100 already loaded", len(panel.Lines))
	}
	if !errors.Is(panel.LastError, boom) {
		t.Errorf("LastError = %v, want %v", panel.LastError, boom)
	}
	if panel.Loading {
		t.Error("loading flag still set after failed load")
	}

	f.mu.Lock()
	delete(f.failLogs, api.StreamRS)
	f.mu.Unlock()
	mustLoadPage(t, s, api.StreamRS, 100)
	panel = s.Snapshot().Panels[api.StreamRS]
	if len(panel.Lines) != 200 || panel.LastError != nil {
		t.Errorf("after recovery: %d lines, lastError=%v, want 200 and nil", len(panel.Lines), panel.LastError)
	}
}

func TestLoadNextPage_ScrollToBottomReachesTotals(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamBT] = tenPerSecond("bt", 150, 0)
	f.data[api.StreamOut] = tenPerSecond("out", 80, 0)
	f.data[api.StreamRS] = tenPerSecond("rs", 120, 0)
	s := newTestSession(f, 100)
	ctx := context.Background()

	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	for _, stream := range api.Streams() {
		for {
			fetched, err := s.LoadNextPage(ctx, stream)
			if err != nil {
				t.Fatalf("LoadNextPage(%s) returned error: %v", stream, err)
			}
			if !fetched {
				break
			}
		}
	}

	snap := s.Snapshot()
	for stream, want := range map[api.Stream]int{
		api.StreamBT:  150,
		api.StreamOut: 80,
		api.StreamRS:  120,
	} {
		panel := snap.Panels[stream]
		if got := panel.CurrentOffset + len(panel.Lines); got != want {
			t.Errorf("%s: offset+loaded = %d, want total %d", stream, got, want)
		}
	}
	// 80 lines fit in one page, so out never issued a second request.
	if n := f.pageQueries(api.StreamOut); n != 1 {
		t.Errorf("out page queries = %d, want 1", n)
	}
	if n := f.pageQueries(api.StreamBT); n != 2 {
		t.Errorf("bt page queries = %d, want 2", n)
	}
}

func TestLoadSecond_SatisfiedPanelSkipsFetch(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamBT] = tenPerSecond("bt", 100, 0)
	s := newTestSession(f, 50)
	ctx := context.Background()

	mustLoadPage(t, s, api.StreamBT, 0)

	fetched, err := s.LoadSecond(ctx, api.StreamBT, secondAt(1))
	if fetched || err != nil {
		t.Errorf("LoadSecond for a loaded second = (%v, %v), want (false, nil)", fetched, err)
	}
	if n := f.secondQueries(api.StreamBT); n != 0 {
		t.Errorf("second queries = %d, want 0", n)
	}
}

func TestLoadSecond_FetchesAndSplicesInOrder(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamBT] = tenPerSecond("bt", 200, 0)
	s := newTestSession(f, 100)
	ctx := context.Background()

	mustLoadPage(t, s, api.StreamBT, 0)

	key := secondAt(12) // lines 120-129, beyond the loaded page
	fetched, err := s.LoadSecond(ctx, api.StreamBT, key)
	if !fetched || err != nil {
		t.Fatalf("LoadSecond = (%v, %v), want (true, nil)", fetched, err)
	}
	panel := s.Snapshot().Panels[api.StreamBT]
	want := append(seqInts(0, 100), seqInts(120, 10)...)
	if got := lineNums(panel.Lines); !reflect.DeepEqual(got, want) {
		t.Errorf("buffer after second fetch = %v, want first page plus 120..129 in order", got)
	}
	if got := s.SecondLines(api.StreamBT, key); len(got) != 10 {
		t.Errorf("indexed lines for %q = %d, want 10", key, len(got))
	}

	// A second fetch for the same key is now a no-op.
	if fetched, _ := s.LoadSecond(ctx, api.StreamBT, key); fetched {
		t.Error("repeat LoadSecond fetched again, want satisfied no-op")
	}
}

func TestLoadSecond_OverlapWithLaterPageStaysUnique(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamBT] = tenPerSecond("bt", 200, 0)
	s := newTestSession(f, 100)
	ctx := context.Background()

	mustLoadPage(t, s, api.StreamBT, 0)
	if _, err := s.LoadSecond(ctx, api.StreamBT, secondAt(12)); err != nil {
		t.Fatalf("LoadSecond returned error: %v", err)
	}
	// The next page covers 100-199, including the ten lines the
	// second fetch already inserted.
	mustLoadPage(t, s, api.StreamBT, 100)

	panel := s.Snapshot().Panels[api.StreamBT]
	if got, want := lineNums(panel.Lines), seqInts(0, 200); !reflect.DeepEqual(got, want) {
		t.Fatalf("buffer = %d lines, want 0..199 exactly once each", len(got))
	}

	// Pagination still advances past the full page despite the
	// deduplicated overlap.
	mustRefreshStats(t, s)
	if fetched, err := s.LoadNextPage(ctx, api.StreamBT); fetched || err != nil {
		t.Errorf("LoadNextPage at end = (%v, %v), want (false, nil)", fetched, err)
	}
}

func TestApplySearch_FiltersAllPanels(t *testing.T) {
	f := newFakeBackend()
	bt := tenPerSecond("bt", 120, 0)
	for i := 0; i < len(bt); i += 3 {
		bt[i].Content += " beam"
	}
	f.data[api.StreamBT] = bt
	f.data[api.StreamOut] = tenPerSecond("out", 40, 0)
	f.data[api.StreamRS] = tenPerSecond("rs", 40, 0)
	s := newTestSession(f, 25)
	ctx := context.Background()

	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if err := s.ApplySearch(ctx, "beam"); err != nil {
		t.Fatalf("ApplySearch returned error: %v", err)
	}

	snap := s.Snapshot()
	panel := snap.Panels[api.StreamBT]
	if len(panel.Lines) != 25 {
		t.Fatalf("filtered first page = %d lines, want 25", len(panel.Lines))
	}
	for _, ln := range panel.Lines {
		if !strings.Contains(ln.Content, "beam") {
			t.Fatalf("filtered buffer contains non-match %q", ln.Content)
		}
	}
	if !panel.HasMore {
		t.Error("HasMore = false after first filtered page, want true")
	}
	if got := len(panel.SearchResults); got != 40 {
		t.Errorf("bt search results = %d ids, want 40", got)
	}
	if got := len(snap.Panels[api.StreamOut].Lines); got != 0 {
		t.Errorf("out filtered buffer = %d lines, want 0", got)
	}

	// Filtered pagination follows hasMore, counting in match space.
	mustLoadNext(t, s, api.StreamBT)
	panel = s.Snapshot().Panels[api.StreamBT]
	if len(panel.Lines) != 40 || panel.HasMore {
		t.Fatalf("after second filtered page: %d lines, hasMore=%v, want all 40 matches", len(panel.Lines), panel.HasMore)
	}
	if fetched, err := s.LoadNextPage(ctx, api.StreamBT); fetched || err != nil {
		t.Errorf("LoadNextPage past last match = (%v, %v), want (false, nil)", fetched, err)
	}

	// Clearing the term restores unfiltered content and drops ids.
	if err := s.ApplySearch(ctx, ""); err != nil {
		t.Fatalf("ApplySearch(\"\") returned error: %v", err)
	}
	panel = s.Snapshot().Panels[api.StreamBT]
	if got, want := lineNums(panel.Lines), seqInts(0, 25); !reflect.DeepEqual(got, want) {
		t.Errorf("unfiltered reload = %v, want the plain first page", got)
	}
	if panel.SearchResults != nil {
		t.Errorf("SearchResults after clearing = %v, want none", panel.SearchResults)
	}
}

func TestRefreshStats_UpdatesTotals(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamBT] = tenPerSecond("bt", 42, 0)
	s := newTestSession(f, 100)

	mustRefreshStats(t, s)

	snap := s.Snapshot()
	if got := snap.Panels[api.StreamBT].TotalLines; got != 42 {
		t.Errorf("bt TotalLines = %d, want 42", got)
	}
	if got := snap.Stats[api.StreamRS].TotalLines; got != 0 {
		t.Errorf("rs total = %d, want 0", got)
	}
}

func TestInit_FailureIsFatal(t *testing.T) {
	f := newFakeBackend()
	f.data[api.StreamBT] = tenPerSecond("bt", 10, 0)
	boom := errors.New("no route to host")
	f.failStats = boom
	s := newTestSession(f, 100)
	ctx := context.Background()

	if err := s.Init(ctx); !errors.Is(err, boom) {
		t.Fatalf("Init with failing stats = %v, want %v", err, boom)
	}

	f.failStats = nil
	f.mu.Lock()
	f.failLogs[api.StreamOut] = boom
	f.mu.Unlock()
	if err := s.Init(ctx); !errors.Is(err, boom) {
		t.Fatalf("Init with one failing panel = %v, want %v", err, boom)
	}

	f.mu.Lock()
	delete(f.failLogs, api.StreamOut)
	f.mu.Unlock()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init after recovery returned error: %v", err)
	}
}

func mustLoadPage(t *testing.T, s *Session, panel api.Stream, offset int) {
	t.Helper()
	fetched, err := s.LoadPage(context.Background(), panel, offset)
	if err != nil {
		t.Fatalf("LoadPage(%s, %d) returned error: %v", panel, offset, err)
	}
	if !fetched {
		t.Fatalf("LoadPage(%s, %d) did not fetch", panel, offset)
	}
}

func mustLoadNext(t *testing.T, s *Session, panel api.Stream) {
	t.Helper()
	fetched, err := s.LoadNextPage(context.Background(), panel)
	if err != nil {
		t.Fatalf("LoadNextPage(%s) returned error: %v", panel, err)
	}
	if !fetched {
		t.Fatalf("LoadNextPage(%s) did not fetch", panel)
	}
}

func mustRefreshStats(t *testing.T, s *Session) {
	t.Helper()
	if err := s.RefreshStats(context.Background()); err != nil {
		t.Fatalf("RefreshStats returned error: %v", err)
	}
}

func lastPageQuery(f *fakeBackend, panel api.Stream) api.LogQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last api.LogQuery
	for _, q := range f.logQueries {
		if q.Panel == panel && q.Second == "" {
			last = q
		}
	}
	return last
}
