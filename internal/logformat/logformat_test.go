package logformat

import (
	"testing"

	"github.com/ctkit/ctview/internal/api"
)

func TestTimestampAndSecondKey(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantStamp  string
		wantSecond string
	}{
		{
			name:       "iso with milliseconds",
			line:       "2025-06-02T10:00:05.123 scanner armed",
			wantStamp:  "2025-06-02T10:00:05.123",
			wantSecond: "2025-06-02T10:00:05",
		},
		{
			name:       "space separated comma millis",
			line:       "2025-06-02 10:00:05,456 gantry rotation started",
			wantStamp:  "2025-06-02 10:00:05,456",
			wantSecond: "2025-06-02 10:00:05",
		},
		{
			name:       "time only",
			line:       "10:00:05.789 detector sync",
			wantStamp:  "10:00:05.789",
			wantSecond: "10:00:05",
		},
		{
			name:       "embedded mid-line",
			line:       "worker[3] 2025-06-02T10:00:05.001 tick",
			wantStamp:  "2025-06-02T10:00:05.001",
			wantSecond: "2025-06-02T10:00:05",
		},
		{
			name:       "no timestamp",
			line:       "---- session boundary ----",
			wantStamp:  "",
			wantSecond: "",
		},
		{
			name:       "iso without millis has no full stamp but a second key",
			line:       "2025-06-02T10:00:05 coarse event",
			wantStamp:  "",
			wantSecond: "2025-06-02T10:00:05",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Timestamp(tt.line); got != tt.wantStamp {
				t.Fatalf("Timestamp(%q) = %q, want %q", tt.line, got, tt.wantStamp)
			}
			if got := SecondKey(tt.line); got != tt.wantSecond {
				t.Fatalf("SecondKey(%q) = %q, want %q", tt.line, got, tt.wantSecond)
			}
		})
	}
}

func TestDetectLevel(t *testing.T) {
	tests := []struct {
		name string
		line string
		want api.Level
	}{
		{"error keyword", "disk ERROR: write failed", api.LevelError},
		{"exception keyword", "Unhandled Exception in module", api.LevelError},
		{"error wins over warn", "error while handling warning", api.LevelError},
		{"warn keyword", "WARN: voltage drift", api.LevelWarning},
		{"warning keyword", "warning: table position", api.LevelWarning},
		{"info keyword", "INFO scanner ready", api.LevelInfo},
		{"debug keyword", "debug: frame 12", api.LevelInfo},
		{"plain line", "gantry at home position", api.LevelNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLevel(tt.line); got != tt.want {
				t.Fatalf("DetectLevel(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	raw := "2025-06-02T10:00:05.123 ERROR detector offline"
	got := Parse(41, raw)
	want := api.LogLine{
		ID:         41,
		LineNumber: 41,
		Timestamp:  "2025-06-02T10:00:05.123",
		SecondKey:  "2025-06-02T10:00:05",
		Level:      api.LevelError,
		Content:    raw,
		Original:   raw,
	}
	if got != want {
		t.Fatalf("Parse = %#v, want %#v", got, want)
	}
}
