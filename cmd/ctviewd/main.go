package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ctkit/ctview/internal/config"
	"github.com/ctkit/ctview/internal/logging"
	"github.com/ctkit/ctview/internal/logstore"
	"github.com/ctkit/ctview/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override ctview config path (optional)")
	dataDir := flag.String("data", "", "log directory (overrides config)")
	port := flag.Int("port", 8000, "port to listen on, next free port is tried on conflict")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logging.SetVerbose(*verbose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ctviewd: %v\n", err)
		return 1
	}
	dir := cfg.DataDir
	if *dataDir != "" {
		dir = *dataDir
	}

	store, err := logstore.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ctviewd: %v\n", err)
		return 1
	}
	defer store.Close()

	if err := server.Run(ctx, store, *port); err != nil {
		fmt.Fprintf(os.Stderr, "ctviewd: %v\n", err)
		return 1
	}
	return 0
}
