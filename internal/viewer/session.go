package viewer

import (
	"sort"
	"sync"
	"time"

	"github.com/ctkit/ctview/internal/api"
)

// Defaults for the loader tuning knobs.
const (
	DefaultPageSize         = 100
	DefaultSecondFetchLimit = 50
)

// SelectionState tracks the cross-panel second selection. Generation
// is the cancellation token: every new selection bumps it, and any
// completion or finisher carrying an older generation is discarded.
type SelectionState struct {
	SelectedSecond       string
	GroupSelectionActive bool
	Generation           uint64
}

// panelState is one stream's mutable viewing state. All access goes
// through the session lock.
type panelState struct {
	lines          []api.LogLine
	pageOffset     int
	pagedCount     int
	totalLines     int
	loading        bool
	hasMore        bool
	fetchingSecond bool

	searchResults []int
	lastError     error

	present  map[int]struct{}
	tracked  map[int]struct{}
	marks    []api.ErrorPosition
	errors   int
	warnings int
}

// Options tunes a Session.
type Options struct {
	PageSize         int
	SecondFetchLimit int
}

// Session owns every piece of viewer state: the three panel buffers,
// the second index, the error trackers and the selection and sync
// controllers. One Session exists per viewer run; components receive
// it by reference and all mutation is serialized by its lock, so the
// cooperative flags below behave like the single event loop they
// model.
type Session struct {
	mu      sync.Mutex
	fetcher api.Fetcher

	panels     map[api.Stream]*panelState
	index      secondIndex
	selection  SelectionState
	stats      api.StatsResponse
	statsErr   error
	statsAt    time.Time
	searchTerm string
	seconds    []string

	syncEnabled     bool
	lastPropagation time.Time

	pageSize         int
	secondFetchLimit int
	version          uint64
}

// NewSession builds an empty session over a fetcher.
func NewSession(fetcher api.Fetcher, opts Options) *Session {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.SecondFetchLimit <= 0 {
		opts.SecondFetchLimit = DefaultSecondFetchLimit
	}
	panels := make(map[api.Stream]*panelState, 3)
	for _, stream := range api.Streams() {
		panels[stream] = &panelState{
			present: make(map[int]struct{}),
			tracked: make(map[int]struct{}),
		}
	}
	return &Session{
		fetcher:          fetcher,
		panels:           panels,
		index:            make(secondIndex),
		syncEnabled:      true,
		pageSize:         opts.PageSize,
		secondFetchLimit: opts.SecondFetchLimit,
	}
}

// PanelSnapshot is a copy of one panel's state safe to render from.
type PanelSnapshot struct {
	Lines          []api.LogLine
	CurrentOffset  int
	TotalLines     int
	Loading        bool
	FetchingSecond bool
	HasMore        bool
	SearchResults  []int
	LastError      error
	Marks          []api.ErrorPosition
	ErrorCount     int
	WarningCount   int
}

// Tag returns the panel's combined error summary ("3E 2W", "3E",
// "2W", or "" when clean).
func (p PanelSnapshot) Tag() string {
	return summaryTag(p.ErrorCount, p.WarningCount)
}

// Snapshot is a consistent copy of the whole session, taken under the
// lock. StatsErr carries the outcome of the most recent stats poll so
// the UI can show connection health; StatsAt is when a poll last
// succeeded.
type Snapshot struct {
	Panels      map[api.Stream]PanelSnapshot
	Selection   SelectionState
	SearchTerm  string
	SyncEnabled bool
	Stats       api.StatsResponse
	StatsErr    error
	StatsAt     time.Time
	Version     uint64
}

// Snapshot returns a deep copy of the current state. Mutating the
// copy never affects the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Panels:      make(map[api.Stream]PanelSnapshot, len(s.panels)),
		Selection:   s.selection,
		SearchTerm:  s.searchTerm,
		SyncEnabled: s.syncEnabled,
		StatsErr:    s.statsErr,
		StatsAt:     s.statsAt,
		Version:     s.version,
	}
	if s.stats != nil {
		snap.Stats = make(api.StatsResponse, len(s.stats))
		for stream, st := range s.stats {
			snap.Stats[stream] = st
		}
	}
	for stream, p := range s.panels {
		snap.Panels[stream] = PanelSnapshot{
			Lines:          append([]api.LogLine(nil), p.lines...),
			CurrentOffset:  p.pageOffset,
			TotalLines:     p.totalLines,
			Loading:        p.loading,
			FetchingSecond: p.fetchingSecond,
			HasMore:        p.hasMore,
			SearchResults:  append([]int(nil), p.searchResults...),
			LastError:      p.lastError,
			Marks:          append([]api.ErrorPosition(nil), p.marks...),
			ErrorCount:     p.errors,
			WarningCount:   p.warnings,
		}
	}
	return snap
}

// Version returns a counter bumped by every visible mutation; the UI
// re-renders when it changes.
func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Selection returns the current selection state.
func (s *Session) Selection() SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// SearchTerm returns the active search filter, "" when none.
func (s *Session) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

// hasSecond reports whether any loaded line in the panel carries key.
// Caller holds the lock.
func (p *panelState) hasSecond(key string) bool {
	for i := range p.lines {
		if p.lines[i].SecondKey == key {
			return true
		}
	}
	return false
}

// sortIfNeeded restores ascending line-number order after an
// insertion broke it. Buffers stay sorted at all times so grouped
// rendering and the contiguity arithmetic can rely on order.
func (p *panelState) sortIfNeeded() {
	for i := 1; i < len(p.lines); i++ {
		if p.lines[i-1].LineNumber > p.lines[i].LineNumber {
			sort.Slice(p.lines, func(a, b int) bool {
				return p.lines[a].LineNumber < p.lines[b].LineNumber
			})
			return
		}
	}
}

func (s *Session) bump() {
	s.version++
}
