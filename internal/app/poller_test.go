package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ctkit/ctview/internal/api"
	"github.com/ctkit/ctview/internal/viewer"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestStartPollerRecordsFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := viewer.NewSession(offlineFetcher{}, viewer.Options{})
	StartPoller(ctx, session, time.Millisecond)

	deadline := time.After(2 * time.Second)
	for session.Snapshot().StatsErr == nil {
		select {
		case <-deadline:
			t.Fatalf("poller never recorded a stats failure")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

type offlineFetcher struct{}

func (offlineFetcher) FetchStats(context.Context) (api.StatsResponse, error) {
	return nil, errors.New("connection refused")
}

func (offlineFetcher) FetchLogs(context.Context, api.LogQuery) (api.LogsResponse, error) {
	return api.LogsResponse{}, errors.New("connection refused")
}

func (offlineFetcher) FetchSearch(context.Context, string) (api.SearchResponse, error) {
	return nil, errors.New("connection refused")
}

func (offlineFetcher) FetchSeconds(context.Context) ([]string, error) {
	return nil, errors.New("connection refused")
}
