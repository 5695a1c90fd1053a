package viewer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ctkit/ctview/internal/api"
)

// fakeBackend implements api.Fetcher over in-memory stream data with
// the same query semantics as ctviewd, recording every request so
// tests can assert exactly which calls a session issued.
type fakeBackend struct {
	mu   sync.Mutex
	data map[api.Stream][]api.LogLine

	logQueries   []api.LogQuery
	statsCalls   int
	secondsCalls int
	searchTerms  []string

	failLogs  map[api.Stream]error
	failStats error

	// gateFor lets a test hold selected requests in flight: a
	// matching request signals entered, then blocks until release
	// closes.
	gateFor func(api.LogQuery) *gate
}

type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		data:     make(map[api.Stream][]api.LogLine),
		failLogs: make(map[api.Stream]error),
	}
}

func (f *fakeBackend) FetchStats(ctx context.Context) (api.StatsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStats != nil {
		return nil, f.failStats
	}
	f.statsCalls++
	resp := make(api.StatsResponse, 3)
	for _, stream := range api.Streams() {
		st := api.StreamStats{TotalLines: len(f.data[stream])}
		for _, ln := range f.data[stream] {
			switch ln.Level {
			case api.LevelError:
				st.LevelCounts.Error++
			case api.LevelWarning:
				st.LevelCounts.Warning++
			}
		}
		resp[stream] = st
	}
	return resp, nil
}

func (f *fakeBackend) FetchLogs(ctx context.Context, query api.LogQuery) (api.LogsResponse, error) {
	f.mu.Lock()
	f.logQueries = append(f.logQueries, query)
	err := f.failLogs[query.Panel]
	lines := append([]api.LogLine(nil), f.data[query.Panel]...)
	gateFor := f.gateFor
	f.mu.Unlock()

	if gateFor != nil {
		if g := gateFor(query); g != nil {
			select {
			case g.entered <- struct{}{}:
			default:
			}
			<-g.release
		}
	}
	if err != nil {
		return api.LogsResponse{}, err
	}

	if query.Second != "" {
		matched := make([]api.LogLine, 0, query.Limit)
		for _, ln := range lines {
			if ln.SecondKey != query.Second {
				continue
			}
			matched = append(matched, ln)
			if query.Limit > 0 && len(matched) >= query.Limit {
				break
			}
		}
		return api.LogsResponse{Lines: matched}, nil
	}

	if query.Search != "" {
		needle := strings.ToLower(query.Search)
		filtered := lines[:0:0]
		for _, ln := range lines {
			if strings.Contains(strings.ToLower(ln.Content), needle) {
				filtered = append(filtered, ln)
			}
		}
		lines = filtered
	}
	if query.Offset >= len(lines) {
		return api.LogsResponse{Lines: []api.LogLine{}}, nil
	}
	end := query.Offset + query.Limit
	if query.Limit <= 0 || end > len(lines) {
		end = len(lines)
	}
	return api.LogsResponse{
		Lines:   lines[query.Offset:end],
		HasMore: end < len(lines),
	}, nil
}

func (f *fakeBackend) FetchSearch(ctx context.Context, term string) (api.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchTerms = append(f.searchTerms, term)
	needle := strings.ToLower(term)
	resp := make(api.SearchResponse)
	for stream, lines := range f.data {
		for _, ln := range lines {
			if strings.Contains(strings.ToLower(ln.Content), needle) {
				resp[stream] = append(resp[stream], ln)
			}
		}
	}
	return resp, nil
}

func (f *fakeBackend) FetchSeconds(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secondsCalls++
	seen := make(map[string]struct{})
	var seconds []string
	for _, lines := range f.data {
		for _, ln := range lines {
			if ln.SecondKey == "" {
				continue
			}
			if _, dup := seen[ln.SecondKey]; dup {
				continue
			}
			seen[ln.SecondKey] = struct{}{}
			seconds = append(seconds, ln.SecondKey)
		}
	}
	sort.Strings(seconds)
	return seconds, nil
}

// pageQueries counts page-mode log requests for one panel.
func (f *fakeBackend) pageQueries(panel api.Stream) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.logQueries {
		if q.Panel == panel && q.Second == "" {
			n++
		}
	}
	return n
}

// secondQueries counts second-mode log requests for one panel.
func (f *fakeBackend) secondQueries(panel api.Stream) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.logQueries {
		if q.Panel == panel && q.Second != "" {
			n++
		}
	}
	return n
}

// secondAt formats the test fixture's second key for index i.
func secondAt(i int) string {
	return fmt.Sprintf("2025-06-02 10:%02d:%02d", i/60, i%60)
}

// tenPerSecond builds n lines for one stream, ten lines per second,
// with second keys starting at index base.
func tenPerSecond(prefix string, n, base int) []api.LogLine {
	lines := make([]api.LogLine, n)
	for i := range lines {
		sec := secondAt(base + i/10)
		ts := sec + ",000"
		lines[i] = api.LogLine{
			ID:         i,
			LineNumber: i,
			Timestamp:  ts,
			SecondKey:  sec,
			Level:      api.LevelNormal,
			Content:    fmt.Sprintf("%s event %d", prefix, i),
			Original:   fmt.Sprintf("%s %s event %d", ts, prefix, i),
		}
	}
	return lines
}

// markLevel stamps a level onto the lines at the given indexes.
func markLevel(lines []api.LogLine, level api.Level, at ...int) {
	for _, i := range at {
		lines[i].Level = level
	}
}

func lineNums(lines []api.LogLine) []int {
	if len(lines) == 0 {
		return nil
	}
	nums := make([]int, len(lines))
	for i, ln := range lines {
		nums[i] = ln.LineNumber
	}
	return nums
}

func seqInts(start, n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}
