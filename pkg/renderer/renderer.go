package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/strata-dev/strata/pkg/engine"
	"github.com/strata-dev/strata/pkg/routetree"
	"github.com/strata-dev/strata/pkg/widget"
)

// Config configures a Renderer.
type Config struct {
	// Engine is the rendering core. Required.
	Engine *engine.Engine

	// Format supplies the per-format primitives. Required.
	Format Format

	// Widgets is the active widget registry. Nil disables widget expansion.
	Widgets widget.Registry

	// MaxWidgetDepth caps recursive widget expansion. Zero uses the widget
	// package default.
	MaxWidgetDepth int
}

// Renderer composes a matched route's ancestor chain into a complete page for
// one output format.
type Renderer struct {
	engine  *engine.Engine
	format  Format
	widgets widget.Registry

	maxWidgetDepth int
	statusPages    map[int]string
}

// New creates a Renderer.
func New(cfg Config) (*Renderer, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("renderer: Config.Engine is required")
	}
	if cfg.Format == nil {
		return nil, fmt.Errorf("renderer: Config.Format is required")
	}
	return &Renderer{
		engine:         cfg.Engine,
		format:         cfg.Format,
		widgets:        cfg.Widgets,
		maxWidgetDepth: cfg.MaxWidgetDepth,
		statusPages:    make(map[int]string),
	}, nil
}

// SetStatusPage registers a route pattern rendered for a status code instead
// of the built-in fallback page.
//
//	r.SetStatusPage(404, "/404")
func (r *Renderer) SetStatusPage(status int, pattern string) {
	r.statusPages[status] = routetree.NormalizePath(pattern)
}

// Render resolves and renders one URL.
//
// The returned error is non-nil only when the render was aborted by the
// context; callers map that to "no response". Every other failure is rendered
// into the Result (status page, error page, or inline widget fragments).
func (r *Renderer) Render(ctx context.Context, rawURL string) (Result, error) {
	log := r.engine.Logger().With(
		slog.String("render_id", uuid.NewString()),
		slog.String("format", r.format.Name()),
		slog.String("url", rawURL),
	)

	u, err := engine.NormalizeURL(rawURL)
	if err != nil {
		log.Warn("unparseable request url", "error", err)
		return Result{
			Content: r.format.StatusPage(http.StatusBadRequest, rawURL),
			Status:  http.StatusBadRequest,
		}, nil
	}

	// Match on the escaped path: the resolver decodes each segment itself,
	// and decoding here first would both double-decode params and let an
	// encoded slash split one segment into two.
	route, ok := r.engine.Resolver().Match(u.EscapedPath())
	if !ok {
		log.Info("no route matched")
		return r.renderStatus(ctx, u, http.StatusNotFound)
	}

	if route.Node.Redirect != "" {
		return r.renderRedirect(ctx, route, u, log)
	}

	result, err := r.renderHierarchy(ctx, route, u)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		var se *StatusError
		if errors.As(err, &se) {
			log.Info("status signaled during render", "status", se.Code)
			return r.renderStatus(ctx, u, se.Code)
		}
		log.Error("render failed", "error", err, "path", u.Path)
		return r.renderError(ctx, u, err)
	}
	return result, nil
}

// renderHierarchy composes all levels of the matched route, root to leaf.
// Levels render strictly in order; each child's output is injected into the
// composed ancestor content before the next level starts.
func (r *Renderer) renderHierarchy(ctx context.Context, route *routetree.ResolvedRoute, u *url.URL) (Result, error) {
	patterns := r.engine.BuildRouteHierarchy(route.Pattern)

	var composed, title string
	var leafCC *engine.ComponentContext

	for i, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		isLeaf := i == len(patterns)-1

		// Intermediate levels may be pass-through: the root in particular
		// often has no definition of its own.
		node, _ := r.engine.Resolver().FindRoute(pattern)

		levelInfo := &engine.RouteInfo{Pattern: pattern, Params: route.Params, URL: u}
		cc, err := r.engine.BuildComponentContext(ctx, levelInfo, node, isLeaf)
		if err != nil {
			return Result{}, err
		}

		mod, err := r.loadRouteModule(ctx, node)
		if err != nil {
			return Result{}, err
		}

		content, levelTitle, err := r.renderLevel(ctx, cc, mod)
		if err != nil {
			return Result{}, err
		}
		if levelTitle != "" {
			title = levelTitle
		}

		if i == 0 {
			composed = content
		} else {
			composed = r.format.InjectSlot(composed, content)
		}
		if isLeaf {
			leafCC = cc
		}
	}

	// A route with no nested children legitimately leaves its own slot
	// unfilled; remove whatever remains in one pass.
	composed = r.format.StripSlots(composed)

	if r.widgets != nil {
		var err error
		composed, err = widget.Resolve(ctx, composed, leafCC, widget.Options{
			Registry:     r.widgets,
			Render:       r.format.RenderWidget,
			InlineError:  r.format.InlineWidgetError,
			ResolveFiles: r.resolveCompanionFiles,
			MaxDepth:     r.maxWidgetDepth,
		})
		if err != nil {
			return Result{}, err
		}
	}

	return Result{Content: composed, Status: http.StatusOK, Title: title}, nil
}

// loadRouteModule loads a node's behavior module, when declared.
func (r *Renderer) loadRouteModule(ctx context.Context, node *routetree.RouteNode) (any, error) {
	if node == nil {
		return nil, nil
	}
	ref, ok := node.Files[routetree.FileModule]
	if !ok || ref == "" {
		return nil, nil
	}
	return r.engine.LoadModule(ctx, ref)
}

// renderLevel runs one level's data fetch and content render, converting
// panics from user callbacks into errors.
func (r *Renderer) renderLevel(ctx context.Context, cc *engine.ComponentContext, mod any) (content, title string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("renderer: panic in render step: %v", p)
		}
	}()

	var data any
	if dp, ok := mod.(engine.DataProvider); ok {
		data, err = dp.GetData(ctx, cc)
		if err != nil {
			return "", "", err
		}
	}

	content, title, err = r.format.RenderRouteContent(cc, mod, data)
	if err != nil {
		return "", "", err
	}

	if t, ok := mod.(engine.Titler); ok {
		if s := t.Title(cc, data); s != "" {
			title = s
		}
	}
	return content, title, nil
}

// renderRedirect produces a redirect result without ever invoking
// RenderRouteContent. Destinations must stay within the site.
func (r *Renderer) renderRedirect(ctx context.Context, route *routetree.ResolvedRoute, u *url.URL, log *slog.Logger) (Result, error) {
	target := route.Node.Redirect

	// A non-rooted redirect value is a module reference exporting the
	// destination.
	if !strings.HasPrefix(target, "/") {
		mod, err := r.engine.LoadModule(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			return r.renderError(ctx, u, err)
		}
		rd, ok := mod.(engine.Redirector)
		if !ok {
			return r.renderError(ctx, u, fmt.Errorf("renderer: redirect module %q exports no target", target))
		}
		target = rd.RedirectTarget()
	}

	if !SafeRedirectTarget(target) {
		log.Warn("rejecting unsafe redirect", "target", target)
		return r.renderError(ctx, u, &UnsafeRedirectError{Target: target})
	}

	return Result{Status: route.Node.RedirectStatusCode(), Redirect: target}, nil
}

// SafeRedirectTarget reports whether a redirect destination stays within the
// site: rooted, not protocol-relative, and free of backslash tricks.
func SafeRedirectTarget(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	return !strings.Contains(target, "\\")
}

// renderStatus renders the page for a status code: the caller-registered
// custom route when present, else the built-in fallback.
func (r *Renderer) renderStatus(ctx context.Context, u *url.URL, status int) (Result, error) {
	if pattern, ok := r.statusPages[status]; ok {
		if node, found := r.engine.Resolver().FindRoute(pattern); found {
			content, title, err := r.renderSingle(ctx, u, pattern, node)
			if err == nil {
				return Result{
					Content: r.format.StripSlots(content),
					Status:  status,
					Title:   title,
				}, nil
			}
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			r.engine.Logger().Error("custom status page failed", "status", status, "error", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{Content: r.format.StatusPage(status, u.Path), Status: status}, nil
}

// renderError gives the deepest committed error boundary a chance to render
// before falling back to the built-in error page. Always status 500.
func (r *Renderer) renderError(ctx context.Context, u *url.URL, cause error) (Result, error) {
	if ref, ok := r.engine.Resolver().FindErrorBoundary(u.EscapedPath()); ok {
		content, title, err := r.renderBoundary(ctx, ref, u, cause)
		if err == nil {
			return Result{Content: content, Status: http.StatusInternalServerError, Title: title}, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		r.engine.Logger().Error("error boundary failed", "boundary", ref, "error", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{
		Content: r.format.ErrorPage(u.Path, cause),
		Status:  http.StatusInternalServerError,
	}, nil
}

// renderBoundary renders an error-boundary module with the failure as its
// data.
func (r *Renderer) renderBoundary(ctx context.Context, ref string, u *url.URL, cause error) (content, title string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("renderer: panic in error boundary: %v", p)
		}
	}()

	mod, err := r.engine.LoadModule(ctx, ref)
	if err != nil {
		return "", "", err
	}

	info := &engine.RouteInfo{Pattern: u.Path, Params: map[string]string{}, URL: u}
	cc, err := r.engine.BuildComponentContext(ctx, info, nil, true)
	if err != nil {
		return "", "", err
	}
	cc.SetValue("error", cause.Error())

	return r.format.RenderRouteContent(cc, mod, cause)
}

// renderSingle renders a standalone route (custom status pages) as a
// one-level hierarchy.
func (r *Renderer) renderSingle(ctx context.Context, u *url.URL, pattern string, node *routetree.RouteNode) (content, title string, err error) {
	info := &engine.RouteInfo{Pattern: pattern, Params: map[string]string{}, URL: u}
	cc, err := r.engine.BuildComponentContext(ctx, info, node, true)
	if err != nil {
		return "", "", err
	}
	mod, err := r.loadRouteModule(ctx, node)
	if err != nil {
		return "", "", err
	}
	return r.renderLevel(ctx, cc, mod)
}

// resolveCompanionFiles fetches a widget's companion files through the
// engine's file cache.
func (r *Renderer) resolveCompanionFiles(ctx context.Context, files map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(files))
	for kind, path := range files {
		text, err := r.engine.ReadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		out[kind] = text
	}
	return out, nil
}
