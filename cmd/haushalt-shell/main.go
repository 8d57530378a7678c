package main

import (
	"os"
	"time"

	"haushalt/internal/cache"
	"haushalt/internal/cli"
	"haushalt/internal/client"
	"haushalt/internal/log"
	"haushalt/internal/pages"
)

func main() {
	cli.LoadEnvFile()
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level)
	cfg := cli.LoadAndValidateConfig(logger)

	initial := ""
	if len(os.Args) > 1 {
		initial = os.Args[1]
	}

	templates := pages.DefaultTemplates(logger)
	if cfg.WebDir != "" {
		// Templates on disk are reparsed periodically so edits show up
		// without a restart.
		dir := os.DirFS(cfg.WebDir)
		templates = pages.NewTemplates(dir, dir, time.Minute, logger)
		caches := cache.NewManager(logger)
		caches.Register(templates)
		caches.StartCleanup(30 * time.Second)
		defer caches.Stop()
	}

	// Nothing to release on a signal: the API client holds no connections
	// worth draining, so the callback is nil.
	ctx, done := cli.GracefulShutdown(logger, time.Second, nil)
	sh := newShell(os.Stdin, os.Stdout, client.New(client.Config{BaseURL: cfg.APIBaseURL}), templates, logger)

	// Reading stdin blocks, so a signal ends the process instead of
	// waiting for the next line.
	finished := make(chan error, 1)
	go func() { finished <- sh.Run(ctx, initial) }()
	select {
	case err := <-finished:
		if err != nil {
			logger.Error("Shell stopped", log.FieldError, err)
			os.Exit(1)
		}
	case <-ctx.Done():
		cli.WaitForShutdown(ctx, done)
	}
}
