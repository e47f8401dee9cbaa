package strata

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/strata-dev/strata/pkg/engine"
	"github.com/strata-dev/strata/pkg/markdown"
	"github.com/strata-dev/strata/pkg/middleware"
	"github.com/strata-dev/strata/pkg/renderer"
	"github.com/strata-dev/strata/pkg/routetree"
)

// App is the main Strata application entry point. It wraps the route
// resolver, the rendering core, and one renderer per output format into a
// single http.Handler.
//
// Create an App with strata.New():
//
//	app, err := strata.New(strata.Config{
//	    Manifest: manifestJSON,
//	    Reader:   source.NewDirReader("routes"),
//	    Modules:  modules,
//	    Formats:  []string{strata.FormatHTML, strata.FormatMarkdown},
//	})
//	http.ListenAndServe(":8080", app)
type App struct {
	cfg Config

	mu      sync.RWMutex
	formats map[string]*pipeline
	order   []string
}

// pipeline is one format's renderer with the middleware chain applied.
type pipeline struct {
	renderer    *renderer.Renderer
	render      middleware.RenderFunc
	contentType string
}

// New creates a Strata application from the given configuration.
func New(cfg Config) (*App, error) {
	cfg.applyDefaults()
	if len(cfg.Manifest) == 0 {
		return nil, fmt.Errorf("strata: Config.Manifest is required")
	}

	app := &App{cfg: cfg}
	if err := app.rebuild(cfg.Manifest); err != nil {
		return nil, err
	}
	return app, nil
}

// Reload replaces the route manifest and rebuilds the resolver and all
// renderers. In-flight renders finish against the old tree. Module and file
// caches start empty after a reload.
func (a *App) Reload(manifest []byte) error {
	return a.rebuild(manifest)
}

// rebuild parses the manifest and swaps in a fresh engine and renderers.
func (a *App) rebuild(manifest []byte) error {
	root, err := routetree.ParseManifest(manifest)
	if err != nil {
		return fmt.Errorf("strata: %w", err)
	}

	eng, err := engine.New(engine.Options{
		Resolver: routetree.NewResolver(root),
		Loader:   a.cfg.Modules,
		Reader:   a.cfg.Reader,
		Enrich:   a.cfg.Enrich,
		Logger:   a.cfg.Logger,
	})
	if err != nil {
		return err
	}

	formats := make(map[string]*pipeline, len(a.cfg.Formats))
	order := make([]string, 0, len(a.cfg.Formats))
	for _, name := range a.cfg.Formats {
		format, err := buildFormat(name)
		if err != nil {
			return err
		}
		rend, err := renderer.New(renderer.Config{
			Engine:         eng,
			Format:         format,
			Widgets:        a.cfg.Widgets,
			MaxWidgetDepth: a.cfg.MaxWidgetDepth,
		})
		if err != nil {
			return err
		}
		for status, pattern := range a.cfg.StatusPages {
			rend.SetStatusPage(status, pattern)
		}

		render := middleware.RenderFunc(rend.Render)
		for i := len(a.cfg.Middleware) - 1; i >= 0; i-- {
			render = a.cfg.Middleware[i](render)
		}

		formats[name] = &pipeline{
			renderer:    rend,
			render:      render,
			contentType: format.ContentType(),
		}
		order = append(order, name)
	}

	a.mu.Lock()
	a.formats = formats
	a.order = order
	a.mu.Unlock()
	return nil
}

// buildFormat constructs the format adapter for a configured name.
func buildFormat(name string) (renderer.Format, error) {
	switch name {
	case FormatHTML:
		return renderer.NewHTMLFormat(markdown.New().Convert), nil
	case FormatMarkdown:
		return renderer.NewMarkdownFormat(), nil
	default:
		return nil, fmt.Errorf("strata: unknown format %q", name)
	}
}

// Render renders one URL in the named format. An empty format selects the
// default (first configured) format.
//
// The error is non-nil when the format is unknown or ctx was canceled; every
// other failure is rendered into the Result.
func (a *App) Render(ctx context.Context, url, format string) (Result, error) {
	p, err := a.pipeline(format)
	if err != nil {
		return Result{}, err
	}
	return p.render(ctx, url)
}

// Formats returns the configured format names, default first.
func (a *App) Formats() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// pipeline returns the pipeline for a format name, or the default for "".
func (a *App) pipeline(format string) (*pipeline, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if format == "" {
		format = a.order[0]
	}
	p, ok := a.formats[format]
	if !ok {
		return nil, fmt.Errorf("strata: format %q not configured", format)
	}
	return p, nil
}

// ServeHTTP implements http.Handler. GET and HEAD requests are rendered; the
// output format is chosen by the "format" query parameter, falling back to
// the default format.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p, err := a.pipeline(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotAcceptable)
		return
	}

	result, err := p.render(r.Context(), r.URL.RequestURI())
	if err != nil {
		// Render only fails on context cancellation; the client is
		// gone, so any status works.
		a.cfg.Logger.Debug("render aborted", "url", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	if result.Redirect != "" {
		http.Redirect(w, r, result.Redirect, result.Status)
		return
	}

	w.Header().Set("Content-Type", p.contentType)
	w.WriteHeader(result.Status)
	if r.Method != http.MethodHead {
		w.Write([]byte(result.Content))
	}
}
