package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/strata-dev/strata"
	"github.com/strata-dev/strata/internal/dev"
	"github.com/strata-dev/strata/pkg/middleware"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
		devMode    bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP",
		Long: `Serve rendered pages over HTTP.

Every request URL is resolved against the route manifest and rendered
on the fly. Prometheus metrics are exposed at /metrics.

With --dev, the manifest file is watched for changes; edits rebuild
the route tree and notify connected browsers over the reload
WebSocket at /_strata/reload.

Examples:
  strata serve
  strata serve --port=3000
  strata serve --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, port, host, devMode, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to strata.json (default: search upward from cwd)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from strata.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from strata.json)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "Watch the manifest and push browser reloads")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	return cmd
}

func runServe(configPath string, port int, host string, devMode, verbose bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}

	logger := newLogger(verbose)
	app, err := buildApp(cfg, logger, middleware.Prometheus(), middleware.OTel())
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Handle("/metrics", promhttp.Handler())

	if devMode {
		reload := dev.NewReloadServer()
		r.Get("/_strata/reload", reload.HandleWebSocket)
		go watchManifest(cfg.ManifestPath(), app, reload, logger)
	}

	r.Handle("/*", app)

	logger.Info("serving",
		"name", cfg.Name,
		"addr", cfg.Addr(),
		"routes", cfg.RoutesPath(),
		"formats", cfg.Render.Formats,
	)
	fmt.Printf("Listening on http://%s\n", cfg.Addr())
	return http.ListenAndServe(cfg.Addr(), r)
}

// watchManifest polls the manifest file and rebuilds the route tree when its
// modification time changes.
func watchManifest(path string, app *strata.App, reload *dev.ReloadServer, logger *slog.Logger) {
	var lastMod time.Time
	if fi, err := os.Stat(path); err == nil {
		lastMod = fi.ModTime()
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		fi, err := os.Stat(path)
		if err != nil || !fi.ModTime().After(lastMod) {
			continue
		}
		lastMod = fi.ModTime()

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("manifest read failed", "error", err)
			continue
		}
		if err := app.Reload(data); err != nil {
			logger.Error("manifest reload failed", "error", err)
			reload.NotifyError(err.Error())
			continue
		}
		logger.Info("manifest reloaded", "path", path)
		reload.NotifyReload(path)
	}
}
