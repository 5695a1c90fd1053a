package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ctkit/ctview/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override ctview config path (optional)")
	serverAddr := flag.String("server", "", "ctviewd address (overrides config)")
	pollSeconds := flag.Int("poll", 0, "stats poll interval in seconds (optional, defaults to 2s)")
	flag.Parse()

	// The terminal belongs to the TUI, so debug output goes to a file
	// or nowhere.
	if os.Getenv("CTVIEW_DEBUG") != "" {
		logFile, err := tea.LogToFile("ctview-debug.log", "ctview")
		if err != nil {
			fmt.Fprintf(os.Stderr, "ctview: %v\n", err)
			return 1
		}
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := app.Options{
		ConfigPath: *configPath,
		Server:     *serverAddr,
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "ctview: %v\n", err)
		return 1
	}
	return 0
}
