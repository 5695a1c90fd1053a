// Package logstore gives the daemon random access to the three
// scanner log files.
//
// # Overview
//
// Each bound stream is one memory-mapped file plus a byte-span index
// of its non-empty lines, built in 64KB chunks at open time. Line
// numbers everywhere in the API address this sequence of non-empty
// lines, which keeps pagination arithmetic exact: the viewer's
// "currentOffset + loaded length" always names the next unread line.
//
// # Open-Time Scan
//
// Opening a file runs one full pass that caches everything the cheap
// endpoints serve from memory afterwards:
//
//   - level counts for /api/stats
//   - error/warning positions for /api/errors
//   - the sorted unique second-key list feeding /api/seconds
//
// The three stream scans run concurrently under an errgroup when the
// store opens.
//
// # Queries
//
// Page reads are O(page) via the span index. Search and second
// filtering scan the file on demand; search pagination counts in the
// subsequence of matching lines so a filtered viewer can page through
// matches with the same offset arithmetic it uses unfiltered.
//
// # Discovery and Uploads
//
// Streams bind to the newest file matching their naming pattern
// (bt_log_*.txt, out.log*, rs_log_*.txt) in the data directory. A
// missing file leaves the stream unbound serving empty results rather
// than failing the daemon, so an operator can start empty and upload.
// Uploads are written under a generated name that matches the
// discovery pattern and atomically rebind the stream.
package logstore
