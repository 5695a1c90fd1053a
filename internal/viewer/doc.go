// Package viewer holds the correlation engine behind the UI: panel
// buffers, the second index, error tracking, the selection protocol
// and scroll mirroring.
//
// # Overview
//
// A Session owns all viewing state for the three streams. The UI
// layer renders from immutable snapshots and mutates only through
// Session methods, each of which takes the session lock, so the state
// machine behaves like a single event loop even though loads run on
// goroutines.
//
// # Panels and Pagination
//
// Each panel buffers the lines loaded so far. A load at offset zero
// replaces the buffer; any other offset appends one page. A per-panel
// loading flag turns overlapping page loads into no-ops rather than
// queues, which keeps rapid scrolling from stacking requests. Panels
// paginate independently: the streams differ wildly in volume, so a
// shared offset would make no sense.
//
// Unfiltered panels know their full extent from the stats endpoint
// and page until offset reaches the total. Under a search filter only
// the server knows how many matches remain, so panels follow its
// hasMore signal instead.
//
// # Second Correlation
//
// Every parsed line may carry a second key, its timestamp truncated
// to whole seconds. The second index maps each key to the loaded
// lines carrying it per stream; it is rebuilt after replacing loads
// and extended as pages and second fetches land. Selecting a second
// fans out to all three panels: each panel that does not yet hold the
// second fetches its lines on demand and splices them into the buffer
// in line order. A generation counter makes rapid re-selection safe:
// results from a superseded selection are discarded wherever they
// surface.
//
// # Error Tracking
//
// Panels track the positions of error and warning lines among what
// they have loaded. Detection is idempotent and extension never
// counts a line twice, so the title tags ("3E 2W") and the scroll
// overlay stay truthful as loads overlap.
//
// # Scroll Mirroring
//
// With sync on, a scroll in one panel moves the others to the same
// relative position. Mirroring is proportional rather than absolute
// because the panels' content heights differ; a one-row threshold and
// a per-frame throttle stop rounding feedback between panels.
package viewer
