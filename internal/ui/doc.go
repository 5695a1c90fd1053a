// Package ui provides the Bubble Tea terminal interface for ctview.
//
// # Architecture Overview
//
// The UI renders three log panels side by side, one per hardware stream
// (BodyTom Scanner, Output Log, RSScanner), over a shared viewer
// session. All data access goes through viewer.Session; the UI never
// talks to the daemon directly. The interface is read-only.
//
// # Package Structure
//
//   - app.go: Root model, message routing, commands, and the Run function
//   - panels.go: Panel sizing, row rendering, scrolling, and the overlay gutter
//   - search.go: Debounced search input and match navigation
//   - header.go: Header, command bar, footer, and the startup screen
//   - help.go: Keyboard shortcut overlay
//   - theme.go: Color themes and style construction
//
// # Main Components
//
// Model is the central state container:
//
//   - Header section: Connection state, aggregate counts, and command hints
//   - Panel row: One bordered viewport per stream with an error gutter
//   - Footer: Search input, transient notices, and toggle state
//
// # Event Flow
//
//  1. Run() builds the model and starts the Bubble Tea program
//  2. initCmd performs the blocking first load through the session
//  3. A poll tick refreshes stream statistics at a fixed interval
//  4. Key and mouse input drive scrolling, selection, and search commands
//  5. Command results come back as messages and trigger a snapshot re-render
//
// # External Dependencies
//
//   - viewer.Session: Panel buffers, second selection, search, scroll sync
//   - render: Converts log lines to flat or second-grouped display rows
//   - prefs: Persists theme and toggle choices between runs
//
// # Usage Example
//
//	opts := ui.Options{
//		Session: session,
//		Config:  cfg,
//		Prefs:   prefs.Default(),
//	}
//	if err := ui.Run(opts); err != nil {
//		log.Fatal(err)
//	}
//
// # Design Principles
//
//   - Read-only interface: No mutations to daemon state
//   - Snapshot rendering: Every view is built from an immutable session snapshot
//   - Single operator: No multi-user or authentication support
package ui
