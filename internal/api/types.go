package api

// Stream identifies one of the three scanner log streams. The set is
// closed: every panel in the viewer and every file served by the
// daemon belongs to exactly one of these.
type Stream string

const (
	StreamBT  Stream = "bt"
	StreamOut Stream = "out"
	StreamRS  Stream = "rs"
)

// Streams returns the fixed display order of the three streams.
func Streams() []Stream {
	return []Stream{StreamBT, StreamOut, StreamRS}
}

// Valid reports whether s names one of the three known streams.
func (s Stream) Valid() bool {
	switch s {
	case StreamBT, StreamOut, StreamRS:
		return true
	}
	return false
}

// Title returns the human-readable stream name.
func (s Stream) Title() string {
	switch s {
	case StreamBT:
		return "BodyTom Scanner"
	case StreamOut:
		return "Output Log"
	case StreamRS:
		return "RSScanner"
	}
	return string(s)
}

func (s Stream) String() string { return string(s) }

// Level classifies a log line by severity keywords in its content.
type Level string

const (
	LevelNormal  Level = "normal"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// LogLine is one parsed log record as served by /api/logs. Immutable
// once received; ID equals LineNumber, the zero-based position of the
// line in its stream.
type LogLine struct {
	ID         int    `json:"id"`
	LineNumber int    `json:"lineNumber"`
	Timestamp  string `json:"timestamp,omitempty"`
	SecondKey  string `json:"secondKey,omitempty"`
	Level      Level  `json:"level"`
	Content    string `json:"content"`
	Original   string `json:"original"`
}

// StreamStats mirrors one stream's entry in /api/stats.
type StreamStats struct {
	TotalLines  int         `json:"totalLines"`
	Size        int64       `json:"size"`
	LevelCounts LevelCounts `json:"levelCounts"`
}

// LevelCounts carries the error and warning totals for a stream.
type LevelCounts struct {
	Error   int `json:"error"`
	Warning int `json:"warning"`
}

// StatsResponse mirrors /api/stats: one entry per stream.
type StatsResponse map[Stream]StreamStats

// LogsResponse mirrors /api/logs. HasMore reports whether another
// page exists past this one in the same selection mode (offset or
// search-filtered).
type LogsResponse struct {
	Lines   []LogLine `json:"lines"`
	HasMore bool      `json:"hasMore"`
}

// SearchResponse mirrors /api/search: whole-stream matches per
// stream, capped server-side.
type SearchResponse map[Stream][]LogLine

// SecondsResponse mirrors /api/seconds: the sorted union of second
// keys present in any stream.
type SecondsResponse struct {
	Seconds []string `json:"seconds"`
}

// ErrorPosition is one error or warning line's absolute position
// within its stream, as served by /api/errors.
type ErrorPosition struct {
	LineNumber int   `json:"lineNumber"`
	Level      Level `json:"level"`
	Offset     int   `json:"offset"`
}

// ErrorsResponse mirrors /api/errors for a single panel.
type ErrorsResponse struct {
	Positions []ErrorPosition `json:"positions"`
}

// FileInfo describes one discovered log file.
type FileInfo struct {
	Panel Stream `json:"panel"`
	Name  string `json:"name"`
	Size  int64  `json:"size"`
}

// FilesResponse mirrors /api/files.
type FilesResponse struct {
	Files []FileInfo `json:"files"`
}

// UploadResponse mirrors the acknowledgement for /api/upload.
type UploadResponse struct {
	Panel Stream `json:"panel"`
	Name  string `json:"name"`
}
