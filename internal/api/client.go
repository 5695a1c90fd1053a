package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetcher defines the interface the viewer uses to reach the log API.
// Implemented by *Client; tests substitute counting stubs.
type Fetcher interface {
	FetchStats(ctx context.Context) (StatsResponse, error)
	FetchLogs(ctx context.Context, query LogQuery) (LogsResponse, error)
	FetchSearch(ctx context.Context, term string) (SearchResponse, error)
	FetchSeconds(ctx context.Context) ([]string, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the ctviewd HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:8000"
	defaultUserAgent = "ctview/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client using the provided server host:port value.
func NewClient(server string) (*Client, error) {
	base, err := parseBaseURL(server)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchStats retrieves per-stream totals and level counts.
func (c *Client) FetchStats(ctx context.Context) (StatsResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload StatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/stats", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// LogQuery configures /api/logs requests. Second selects lines by
// correlation key; when set, Offset is ignored and Limit only caps
// the result. Otherwise Offset/Limit paginate, with Search filtering.
type LogQuery struct {
	Panel  Stream
	Offset int
	Limit  int
	Search string
	Second string
}

// FetchLogs retrieves one page of parsed lines for a panel.
func (c *Client) FetchLogs(ctx context.Context, query LogQuery) (LogsResponse, error) {
	if c == nil {
		return LogsResponse{}, fmt.Errorf("client is nil")
	}
	if !query.Panel.Valid() {
		return LogsResponse{}, fmt.Errorf("unknown panel %q", query.Panel)
	}
	values := url.Values{}
	values.Set("panel", query.Panel.String())
	if second := strings.TrimSpace(query.Second); second != "" {
		values.Set("second", second)
	} else {
		values.Set("offset", strconv.Itoa(query.Offset))
		if search := strings.TrimSpace(query.Search); search != "" {
			values.Set("search", search)
		}
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	rel := &url.URL{Path: "/api/logs", RawQuery: values.Encode()}
	var payload LogsResponse
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return LogsResponse{}, err
	}
	return payload, nil
}

// FetchSearch retrieves whole-stream matches for a term across all
// three streams.
func (c *Client) FetchSearch(ctx context.Context, term string) (SearchResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("search term required")
	}
	values := url.Values{}
	values.Set("q", term)
	rel := &url.URL{Path: "/api/search", RawQuery: values.Encode()}
	var payload SearchResponse
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchSeconds retrieves the sorted union of second keys across all
// streams.
func (c *Client) FetchSeconds(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload SecondsResponse
	if err := c.do(ctx, http.MethodGet, "/api/seconds", &payload); err != nil {
		return nil, err
	}
	return payload.Seconds, nil
}

func (c *Client) do(ctx context.Context, method, path string, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(server string) (*url.URL, error) {
	trimmed := strings.TrimSpace(server)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server %q: %w", server, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
