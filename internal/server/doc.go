// Package server exposes the log query API over HTTP.
//
// # Overview
//
// ctviewd serves seven endpoints, all thin translations between HTTP
// and the logstore:
//
//   - GET  /api/stats   per-stream totals, sizes, level counts
//   - GET  /api/logs    one page of lines (offset/limit, search or
//     second filter)
//   - GET  /api/search  whole-stream matches across all streams
//   - GET  /api/seconds sorted union of correlation keys
//   - GET  /api/errors  whole-stream error/warning positions
//   - GET  /api/files   bound file listing
//   - POST /api/upload  multipart upload rebinding one stream
//
// Responses are the JSON shapes in internal/api. Parameter errors are
// 400s with a plain-text reason; unexpected store failures are logged
// and surfaced as bare 500s.
//
// # Port Fallback
//
// Run binds the configured port, falling back through the next nine
// on bind failure. When the whole range is taken it returns ErrNoPort
// and the daemon exits non-zero; there is no retry loop.
//
// # Shutdown
//
// Run shuts the server down gracefully when its context is cancelled,
// bounded by a five second timeout.
package server
