package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ctkit/ctview/internal/api"
	"github.com/ctkit/ctview/internal/config"
	"github.com/ctkit/ctview/internal/prefs"
	"github.com/ctkit/ctview/internal/ui"
	"github.com/ctkit/ctview/internal/viewer"
)

// Options configure the ctview application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/ctview/prefs.toml
	Server     string // overrides the configured daemon address
	ExportDir  string // destination for exported snapshots; empty uses cwd
	PollEvery  int    // seconds; zero uses default
}

// Run boots the ctview TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Server != "" {
		cfg.Server = opts.Server
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client, err := api.NewClient(cfg.Server)
	if err != nil {
		return fmt.Errorf("init daemon client: %w", err)
	}

	session := viewer.NewSession(client, viewer.Options{
		PageSize:         cfg.PageSize,
		SecondFetchLimit: cfg.SecondLimit,
	})

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Background stats poller; the UI does the blocking initial load
	// itself so it can offer a retry screen.
	StartPoller(ctx, session, interval)

	uiOpts := ui.Options{
		Context:   ctx,
		Session:   session,
		Config:    cfg,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		PollTick:  interval,
		ExportDir: opts.ExportDir,
	}
	return ui.Run(uiOpts)
}
