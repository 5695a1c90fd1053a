// Package app provides the orchestration layer for the ctview viewer.
//
// # Overview
//
// This package wires together configuration, the daemon client, the
// viewer session, background polling, and the UI to form the complete
// ctview TUI. It serves as the composition root where all dependencies
// are initialized and connected.
//
// # Architecture
//
// The app package follows a simple initialization pattern:
//
//  1. Load ctview configuration from ~/.config/ctview/config.toml
//  2. Load user preferences (theme, toggles)
//  3. Initialize the HTTP client for the ctviewd API
//  4. Create the shared viewer.Session over the client
//  5. Launch the background stats poller goroutine
//  6. Start the TUI and block until the user exits or the context cancels
//
// # Components
//
//   - app.go: Main Run function and dependency wiring
//   - poller.go: Background goroutine that refreshes stream statistics periodically
//
// # Polling Behavior
//
// The poller runs continuously in the background at a configurable
// interval (default: 2 seconds). On each tick it refreshes the three
// streams' statistics through the session; the UI reads session
// snapshots at its own tick rate, so slow polls never block input
// handling. Consecutive failures back off exponentially up to 30
// seconds and the interval resets on the first success.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//
//   - Configuration file unreadable or invalid
//   - Daemon client initialization failure (malformed server address)
//
// Recoverable errors (recorded in the session, polling continues):
//
//   - Periodic stats fetch failures
//   - Network timeouts during polling
//
// An unreachable daemon at startup is not fatal; the UI shows a
// connect screen with a retry key instead, and the poller keeps
// trying in the background.
//
// # Usage Example
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	opts := app.Options{
//		ConfigPath: "", // Use default
//		PollEvery:  2,  // 2 second polling
//	}
//
//	if err := app.Run(ctx, opts); err != nil {
//		log.Fatalf("ctview failed: %v", err)
//	}
package app
