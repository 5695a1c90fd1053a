package viewer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ctkit/ctview/internal/api"
)

// Init performs the blocking startup sequence: stats first, then the
// first page of every stream concurrently. Any failure aborts the
// whole load; the caller surfaces it as a fatal connection error and
// offers a retry.
func (s *Session) Init(ctx context.Context) error {
	if err := s.RefreshStats(ctx); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, stream := range api.Streams() {
		stream := stream
		g.Go(func() error {
			_, err := s.LoadPage(gctx, stream, 0)
			return err
		})
	}
	return g.Wait()
}

// LoadPage fetches one page for the panel. Offset zero replaces the
// buffer, any other offset appends. The per-panel loading flag makes
// overlapping page loads no-ops instead of races: the second caller
// returns (false, nil) without touching the network. Returns whether
// a fetch was performed.
func (s *Session) LoadPage(ctx context.Context, panel api.Stream, offset int) (bool, error) {
	s.mu.Lock()
	p, ok := s.panels[panel]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	if p.loading {
		s.mu.Unlock()
		return false, nil
	}
	p.loading = true
	term := s.searchTerm
	limit := s.pageSize
	s.bump()
	s.mu.Unlock()

	res, err := s.fetcher.FetchLogs(ctx, api.LogQuery{
		Panel:  panel,
		Offset: offset,
		Limit:  limit,
		Search: term,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	p.loading = false
	s.bump()
	if err != nil {
		p.lastError = err
		return false, err
	}
	p.lastError = nil

	if offset == 0 {
		s.replaceBuffer(p, res.Lines)
	} else {
		s.appendPage(panel, p, offset, res.Lines)
	}
	p.hasMore = res.HasMore
	return true, nil
}

// LoadNextPage loads the page following the already-paged range, if
// the stream has one. Unfiltered panels compare against the total
// line count; filtered panels rely on the server's hasMore signal
// because match counts are unknown up front.
func (s *Session) LoadNextPage(ctx context.Context, panel api.Stream) (bool, error) {
	s.mu.Lock()
	p, ok := s.panels[panel]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	offset := p.pageOffset + p.pagedCount
	more := p.hasMore
	if s.searchTerm == "" {
		more = offset < p.totalLines
	}
	s.mu.Unlock()
	if !more {
		return false, nil
	}
	return s.LoadPage(ctx, panel, offset)
}

// LoadSecond pulls every line of one second for the panel, capped at
// the second fetch limit. A panel that already holds at least one
// line of the second is considered satisfied and skips the fetch.
// Fetched lines that the buffer already contains are dropped, the
// rest are inserted and the buffer re-sorted so out-of-band data
// lands in reading order. Returns whether a fetch was performed.
func (s *Session) LoadSecond(ctx context.Context, panel api.Stream, key string) (bool, error) {
	s.mu.Lock()
	p, ok := s.panels[panel]
	if !ok || key == "" {
		s.mu.Unlock()
		return false, nil
	}
	if p.hasSecond(key) {
		s.mu.Unlock()
		return false, nil
	}
	p.fetchingSecond = true
	limit := s.secondFetchLimit
	s.bump()
	s.mu.Unlock()

	res, err := s.fetcher.FetchLogs(ctx, api.LogQuery{
		Panel:  panel,
		Second: key,
		Limit:  limit,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	p.fetchingSecond = false
	s.bump()
	if err != nil {
		p.lastError = err
		return false, err
	}
	p.lastError = nil

	fresh := p.insert(res.Lines)
	p.sortIfNeeded()
	s.index.extend(panel, fresh)
	s.extendMarks(p, fresh)
	return true, nil
}

// RefreshStats fetches /api/stats and folds the totals into panel
// state. Called once at startup and then by the background poller.
// The outcome is recorded either way so snapshots reflect connection
// health.
func (s *Session) RefreshStats(ctx context.Context) error {
	stats, err := s.fetcher.FetchStats(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.statsErr = err
	s.bump()
	if err != nil {
		return err
	}

	s.statsAt = time.Now()
	s.stats = stats
	for stream, st := range stats {
		if p, ok := s.panels[stream]; ok {
			p.totalLines = st.TotalLines
		}
	}
	return nil
}

// ApplySearch installs a new filter term and reloads every panel from
// offset zero under it. A non-empty term additionally runs the
// cross-stream search endpoint to collect match ids for highlighting
// and match navigation; clearing the term clears them.
func (s *Session) ApplySearch(ctx context.Context, term string) error {
	s.mu.Lock()
	s.searchTerm = term
	for _, p := range s.panels {
		p.searchResults = nil
	}
	s.bump()
	s.mu.Unlock()

	var g errgroup.Group
	for _, stream := range api.Streams() {
		stream := stream
		g.Go(func() error {
			_, err := s.LoadPage(ctx, stream, 0)
			return err
		})
	}
	if term != "" {
		g.Go(func() error {
			matches, err := s.fetcher.FetchSearch(ctx, term)
			if err != nil {
				return err
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			for stream, lines := range matches {
				p, ok := s.panels[stream]
				if !ok {
					continue
				}
				ids := make([]int, 0, len(lines))
				for _, ln := range lines {
					ids = append(ids, ln.ID)
				}
				p.searchResults = ids
			}
			s.bump()
			return nil
		})
	}
	return g.Wait()
}

// replaceBuffer installs lines as the panel's entire content and
// recomputes the derived structures from scratch. Caller holds the
// lock.
func (s *Session) replaceBuffer(p *panelState, lines []api.LogLine) {
	p.lines = append(p.lines[:0:0], lines...)
	p.pageOffset = 0
	p.pagedCount = len(lines)
	p.present = make(map[int]struct{}, len(lines))
	for i := range lines {
		p.present[lines[i].LineNumber] = struct{}{}
	}
	s.index.rebuild(s.panels)
	s.detectMarks(p)
}

// appendPage extends the paged range by one fetched page. Lines an
// earlier second fetch already inserted are skipped so each line
// appears once, but the paged count advances by the full page so the
// next offset stays aligned with the server's pagination.
func (s *Session) appendPage(panel api.Stream, p *panelState, offset int, lines []api.LogLine) {
	if p.pagedCount == 0 {
		p.pageOffset = offset
	}
	fresh := p.insert(lines)
	p.pagedCount += len(lines)
	p.sortIfNeeded()
	s.index.extend(panel, fresh)
	s.extendMarks(p, fresh)
}

// insert adds the lines not already present and returns them. Caller
// holds the lock.
func (p *panelState) insert(lines []api.LogLine) []api.LogLine {
	fresh := make([]api.LogLine, 0, len(lines))
	for _, ln := range lines {
		if _, dup := p.present[ln.LineNumber]; dup {
			continue
		}
		p.present[ln.LineNumber] = struct{}{}
		p.lines = append(p.lines, ln)
		fresh = append(fresh, ln)
	}
	return fresh
}
