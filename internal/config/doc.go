// Package config handles loading and parsing ctview configuration files.
//
// # Overview
//
// This package reads the shared TOML configuration used by both the
// ctview terminal viewer and the ctviewd daemon: where the daemon
// listens, where the log files live, and the pagination limits.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/ctview/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/ctview/config.toml
//   - Server: 127.0.0.1:8000
//   - Data directory: ~/ct-logs
//   - Page size: 100 lines
//   - Second limit: 50 lines
//
// # TOML Format
//
// Example config.toml:
//
//	server = "127.0.0.1:8000"
//	data_dir = "~/ct-logs"
//	page_size = 100
//	second_limit = 50
//
// All fields are optional. Tilde expansion is performed automatically.
//
// # Path Expansion
//
// The package handles several path formats:
//
//   - Absolute paths: Used as-is ("/var/log/ct")
//   - Tilde paths: Expanded to home directory ("~/ct-logs")
//   - Relative paths: Converted to absolute based on current directory
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//
// Missing config files are NOT an error - defaults are used instead.
// This allows ctview to work out-of-the-box against a daemon running
// on the same machine.
package config
