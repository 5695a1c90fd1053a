package viewer

import "github.com/ctkit/ctview/internal/api"

// secondIndex maps a second key to the loaded lines carrying it, per
// stream. It answers two questions cheaply during selection and
// rendering: which streams have data for this second, and which lines
// belong to it. Lines without a second key are never indexed.
type secondIndex map[string]map[api.Stream][]api.LogLine

// rebuild recomputes the index from every panel buffer. Used after a
// replacing load, when incremental bookkeeping would have to undo
// arbitrary amounts of prior state.
func (idx secondIndex) rebuild(panels map[api.Stream]*panelState) {
	for key := range idx {
		delete(idx, key)
	}
	for stream, p := range panels {
		idx.extend(stream, p.lines)
	}
}

// extend folds newly loaded lines into the index. Callers pass only
// lines that just entered a buffer, so a line is indexed exactly
// once between rebuilds.
func (idx secondIndex) extend(stream api.Stream, lines []api.LogLine) {
	for _, ln := range lines {
		if ln.SecondKey == "" {
			continue
		}
		byStream := idx[ln.SecondKey]
		if byStream == nil {
			byStream = make(map[api.Stream][]api.LogLine)
			idx[ln.SecondKey] = byStream
		}
		byStream[stream] = append(byStream[stream], ln)
	}
}

// streams reports which streams hold loaded data for the second.
func (idx secondIndex) streams(key string) []api.Stream {
	byStream, ok := idx[key]
	if !ok {
		return nil
	}
	out := make([]api.Stream, 0, len(byStream))
	for _, stream := range api.Streams() {
		if len(byStream[stream]) > 0 {
			out = append(out, stream)
		}
	}
	return out
}

// CorrelatedStreams reports, under the lock, which streams currently
// hold at least one loaded line for the second. The status bar uses
// it to show how far a selection reaches.
func (s *Session) CorrelatedStreams(key string) []api.Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.streams(key)
}

// SecondLines returns the loaded lines of one second in one stream.
func (s *Session) SecondLines(panel api.Stream, key string) []api.LogLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	byStream, ok := s.index[key]
	if !ok {
		return nil
	}
	return append([]api.LogLine(nil), byStream[panel]...)
}
