package strata

import (
	"log/slog"

	"github.com/strata-dev/strata/pkg/engine"
	"github.com/strata-dev/strata/pkg/middleware"
	"github.com/strata-dev/strata/pkg/widget"
)

// Format names accepted in Config.Formats and in the "format" query
// parameter.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Config is the main application configuration.
// This is the user-friendly entry point for configuring a Strata app.
type Config struct {
	// Manifest is the raw JSON route manifest. Required.
	Manifest []byte

	// Reader reads route template and style files. Required for any route
	// that declares files. Use source.NewDirReader for local content or
	// source.NewS3Reader for bucket-hosted content.
	Reader engine.FileReader

	// Modules resolves module references from the manifest to registered
	// Go values. If nil, routes may not declare module files or module
	// redirect targets.
	Modules engine.ModuleLoader

	// Widgets resolves widget names embedded in templates. If nil, widget
	// blocks are left untouched.
	Widgets widget.Registry

	// Formats lists the output formats to build renderers for.
	// Defaults to [FormatHTML]. The first entry is the default format.
	Formats []string

	// MaxWidgetDepth caps recursive widget expansion. Zero uses the
	// built-in default.
	MaxWidgetDepth int

	// StatusPages maps HTTP status codes to route patterns rendered in
	// place of the built-in status pages, e.g. {404: "/404"}.
	StatusPages map[int]string

	// Enrich extends every component context before rendering. May be nil.
	Enrich engine.EnrichFunc

	// Middleware wraps every render call, outermost first. Use
	// middleware.Prometheus() and middleware.OTel() for observability.
	Middleware []middleware.Middleware

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// applyDefaults fills zero values in-place.
func (c *Config) applyDefaults() {
	if len(c.Formats) == 0 {
		c.Formats = []string{FormatHTML}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
