// Package api defines the wire schema of the ctviewd log query API
// and the HTTP client the viewer uses to consume it.
//
// # Overview
//
// The viewer never touches log files directly. Everything it shows is
// fetched on demand from a small stateless query API served by
// ctviewd, one endpoint per question: totals, a page of lines, all
// lines for one second, whole-stream search matches, the set of
// correlation keys. This package owns the request/response types for
// that API and a typed client over them.
//
// # Architecture
//
// The package is split into two files:
//
//   - types.go: Data structures mirroring the API schema, shared by
//     the client here and the handlers in internal/server
//   - client.go: HTTP client implementation and request/response
//     handling
//
// # Streams
//
// Panel identity is the closed Stream type: bt (BodyTom Scanner),
// out (Output Log), rs (RSScanner). APIs taking a Stream validate it
// up front; there are no free-form panel names anywhere in the
// system.
//
// # Client Usage
//
// Create a client using the server address from configuration:
//
//	client, err := api.NewClient("127.0.0.1:8000")
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	stats, err := client.FetchStats(ctx)
//	if err != nil {
//		log.Printf("stats fetch failed: %v", err)
//	}
//
//	page, err := client.FetchLogs(ctx, api.LogQuery{
//		Panel:  api.StreamBT,
//		Offset: 100,
//		Limit:  100,
//	})
//
// # Endpoints
//
//   - GET /api/stats: per-stream totals, file size, level counts
//   - GET /api/logs: one page of parsed lines (offset/limit, search
//     filter, or second filter)
//   - GET /api/search: whole-stream matches for a term, all streams
//   - GET /api/seconds: sorted union of second keys across streams
//
// The daemon additionally serves /api/errors, /api/files and
// /api/upload for external tooling; the viewer does not call them, so
// the client does not wrap them.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: ctview/0.1
//   - Have a 5-second timeout via the underlying http.Client
//   - Return wrapped errors with context about what failed
//
// Example error messages:
//   - "execute request: dial tcp: connection refused"
//   - "api /api/logs?panel=bt returned status 500"
//   - "decode response: unexpected end of JSON input"
//
// # The Fetcher Interface
//
// The viewer's session logic depends on the Fetcher interface rather
// than *Client, so its loaders and the selection controller are
// tested against counting stubs with no network at all. *Client is
// the only production implementation.
//
// # Design Rationale
//
// The client is intentionally minimal:
//   - No caching (the session owns all loaded state)
//   - No retries (every retry in the viewer is user-initiated)
//   - No mutations (the viewer is read-only over the streams)
//
// The client is safe for concurrent use; the session issues fetches
// from multiple goroutines during selection fan-out.
package api
