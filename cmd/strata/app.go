package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/strata-dev/strata"
	"github.com/strata-dev/strata/internal/config"
	"github.com/strata-dev/strata/pkg/middleware"
	"github.com/strata-dev/strata/pkg/source"
)

// loadConfig finds and parses strata.json, starting from the --config path or
// the working directory.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		path, err = config.Find(cwd)
		if err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

// buildApp assembles a strata.App from project configuration. CLI-launched
// apps read content from the local routes directory; embedding users wire
// their own readers, modules, and widgets through the library API.
func buildApp(cfg *config.Config, logger *slog.Logger, mw ...middleware.Middleware) (*strata.App, error) {
	manifest, err := os.ReadFile(cfg.ManifestPath())
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return strata.New(strata.Config{
		Manifest:       manifest,
		Reader:         source.NewDirReader(cfg.RoutesPath()),
		Formats:        cfg.Render.Formats,
		MaxWidgetDepth: cfg.Render.MaxWidgetDepth,
		Middleware:     mw,
		Logger:         logger,
	})
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
