package logstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ctkit/ctview/internal/api"
)

// ErrUnknownPanel is returned when a request names a stream outside
// the closed bt/out/rs set.
var ErrUnknownPanel = errors.New("unknown panel")

// MaxSearchResults caps whole-stream search matches per stream.
const MaxSearchResults = 100

// filePatterns maps each stream to the glob its files are discovered
// by. The newest name wins, which for the dated scanner file names
// means the latest session.
var filePatterns = map[api.Stream]string{
	api.StreamBT:  "bt_log_*.txt",
	api.StreamOut: "out.log*",
	api.StreamRS:  "rs_log_*.txt",
}

// Store binds the three streams to log files in one data directory.
// A stream with no matching file stays unbound and serves empty
// results, mirroring the tolerant behavior of the scanner's own
// tooling; uploads can bind it later.
type Store struct {
	mu    sync.RWMutex
	dir   string
	files map[api.Stream]*LogFile
}

// Open discovers and opens the stream files under dir. The three
// open-time scans run concurrently.
func Open(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open data dir: %s is not a directory", dir)
	}

	streams := api.Streams()
	opened := make([]*LogFile, len(streams))
	var g errgroup.Group
	for i, stream := range streams {
		i, stream := i, stream
		path, err := discover(dir, stream)
		if err != nil {
			return nil, err
		}
		if path == "" {
			continue
		}
		g.Go(func() error {
			f, err := OpenLogFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", stream, err)
			}
			opened[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, f := range opened {
			if f != nil {
				f.Close()
			}
		}
		return nil, err
	}

	s := &Store{dir: dir, files: make(map[api.Stream]*LogFile, len(streams))}
	for i, stream := range streams {
		if opened[i] != nil {
			s.files[stream] = opened[i]
		}
	}
	return s, nil
}

// discover returns the newest file matching the stream's pattern, or
// "" when none exists.
func discover(dir string, stream api.Stream) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filePatterns[stream]))
	if err != nil {
		return "", fmt.Errorf("discover %s: %w", stream, err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches[0], nil
}

// Missing lists streams with no bound file.
func (s *Store) Missing() []api.Stream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var missing []api.Stream
	for _, stream := range api.Streams() {
		if s.files[stream] == nil {
			missing = append(missing, stream)
		}
	}
	return missing
}

// Page returns one page of parsed lines for a stream. Unbound
// streams serve empty pages.
func (s *Store) Page(stream api.Stream, offset, limit int, search string) ([]api.LogLine, bool, error) {
	f, err := s.file(stream)
	if err != nil {
		return nil, false, err
	}
	if f == nil {
		return nil, false, nil
	}
	return f.Page(offset, limit, search)
}

// Second returns up to limit lines carrying the given second key.
func (s *Store) Second(stream api.Stream, key string, limit int) ([]api.LogLine, error) {
	f, err := s.file(stream)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	return f.Second(key, limit)
}

// SearchAll returns whole-stream matches for term across every bound
// stream, capped at MaxSearchResults per stream.
func (s *Store) SearchAll(term string) (api.SearchResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(api.SearchResponse, len(s.files))
	for _, stream := range api.Streams() {
		f := s.files[stream]
		if f == nil {
			continue
		}
		matches, err := f.Search(term, MaxSearchResults)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", stream, err)
		}
		result[stream] = matches
	}
	return result, nil
}

// Stats returns per-stream statistics. Unbound streams report zero
// values so the response always carries all three keys.
func (s *Store) Stats() api.StatsResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := make(api.StatsResponse, 3)
	for _, stream := range api.Streams() {
		if f := s.files[stream]; f != nil {
			stats[stream] = f.Stats()
		} else {
			stats[stream] = api.StreamStats{}
		}
	}
	return stats
}

// Positions returns the whole-stream error/warning positions for a
// stream.
func (s *Store) Positions(stream api.Stream) ([]api.ErrorPosition, error) {
	f, err := s.file(stream)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	return f.Positions(), nil
}

// Seconds returns the sorted union of second keys across all bound
// streams.
func (s *Store) Seconds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(map[string]struct{})
	for _, f := range s.files {
		for _, key := range f.seconds {
			set[key] = struct{}{}
		}
	}
	union := make([]string, 0, len(set))
	for key := range set {
		union = append(union, key)
	}
	sort.Strings(union)
	return union
}

// Files lists the bound files in stream display order.
func (s *Store) Files() []api.FileInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var files []api.FileInfo
	for _, stream := range api.Streams() {
		f := s.files[stream]
		if f == nil {
			continue
		}
		files = append(files, api.FileInfo{
			Panel: stream,
			Name:  f.Name(),
			Size:  f.Size(),
		})
	}
	return files
}

// Upload stores the uploaded content as a new file for the stream and
// rebinds the stream to it. The generated name matches the stream's
// discovery pattern so the binding survives a daemon restart.
func (s *Store) Upload(stream api.Stream, src io.Reader) (api.FileInfo, error) {
	if !stream.Valid() {
		return api.FileInfo{}, ErrUnknownPanel
	}

	path := filepath.Join(s.dir, uploadName(stream, uuid.NewString()))
	dst, err := os.Create(path)
	if err != nil {
		return api.FileInfo{}, fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return api.FileInfo{}, fmt.Errorf("write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return api.FileInfo{}, fmt.Errorf("close upload: %w", err)
	}

	f, err := OpenLogFile(path)
	if err != nil {
		os.Remove(path)
		return api.FileInfo{}, err
	}

	s.mu.Lock()
	if old := s.files[stream]; old != nil {
		old.Close()
	}
	s.files[stream] = f
	s.mu.Unlock()

	return api.FileInfo{Panel: stream, Name: f.Name(), Size: f.Size()}, nil
}

func uploadName(stream api.Stream, id string) string {
	switch stream {
	case api.StreamOut:
		return "out.logupload-" + id
	case api.StreamRS:
		return "rs_log_upload-" + id + ".txt"
	default:
		return "bt_log_upload-" + id + ".txt"
	}
}

// Close releases every bound file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for stream, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.files, stream)
	}
	return firstErr
}

func (s *Store) file(stream api.Stream) (*LogFile, error) {
	if !stream.Valid() {
		return nil, ErrUnknownPanel
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.files[stream], nil
}
