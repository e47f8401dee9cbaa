package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/strata-dev/strata/pkg/routetree"
)

// Options configures an Engine.
type Options struct {
	// Resolver is the indexed route tree. Required.
	Resolver *routetree.Resolver

	// Loader resolves module references. If nil, an empty ModuleMap is used.
	Loader ModuleLoader

	// Reader reads template and style files. If nil, every read fails.
	Reader FileReader

	// Enrich extends the base component context. May be nil.
	Enrich EnrichFunc

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Engine is the rendering core: it owns the resolver, the injected loaders,
// and the memoization caches shared by every renderer.
//
// One Engine per route tree; concurrent renders against the same Engine are
// safe. The only shared mutable state is the append-only module and file
// caches.
type Engine struct {
	resolver *routetree.Resolver
	loader   ModuleLoader
	reader   FileReader
	enrich   EnrichFunc
	logger   *slog.Logger

	modules *memoCache[any]
	files   *memoCache[string]
}

// New creates an Engine from options.
func New(opts Options) (*Engine, error) {
	if opts.Resolver == nil {
		return nil, fmt.Errorf("engine: Options.Resolver is required")
	}
	loader := opts.Loader
	if loader == nil {
		loader = ModuleMap{}
	}
	reader := opts.Reader
	if reader == nil {
		reader = FileReaderFunc(func(ctx context.Context, path string) (string, error) {
			return "", fmt.Errorf("engine: no file reader configured (reading %q)", path)
		})
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		resolver: opts.Resolver,
		loader:   loader,
		reader:   reader,
		enrich:   opts.Enrich,
		logger:   logger,
		modules:  newMemoCache[any](),
		files:    newMemoCache[string](),
	}, nil
}

// Resolver returns the engine's route resolver.
func (e *Engine) Resolver() *routetree.Resolver { return e.resolver }

// Logger returns the engine's structured logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// LoadModule resolves a module reference, memoized per path for the lifetime
// of the engine.
func (e *Engine) LoadModule(ctx context.Context, path string) (any, error) {
	return e.modules.get(ctx, path, func() (any, error) {
		return e.loader.LoadModule(ctx, path)
	})
}

// ReadFile fetches file text, memoized per path with at-most-once in-flight
// semantics.
func (e *Engine) ReadFile(ctx context.Context, path string) (string, error) {
	return e.files.get(ctx, path, func() (string, error) {
		return e.reader.ReadFile(ctx, path)
	})
}

// NormalizeURL parses a raw request URL and normalizes its path for matching.
// The percent-encoded form of the path is preserved so that matching can
// decode each segment exactly once; u.EscapedPath() is the form to match.
func NormalizeURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("engine: parse url %q: %w", rawURL, err)
	}
	escaped := routetree.NormalizePath(u.EscapedPath())
	decoded, derr := url.PathUnescape(escaped)
	if derr != nil {
		decoded = escaped
	}
	u.Path = decoded
	u.RawPath = escaped
	return u, nil
}

// ToRouteInfo builds the per-request route view from a resolved route. File
// contents are not fetched here; BuildComponentContext fetches them lazily.
func ToRouteInfo(route *routetree.ResolvedRoute, u *url.URL) *RouteInfo {
	info := &RouteInfo{
		Pattern: route.Pattern,
		Params:  route.Params,
		URL:     u,
	}
	if route.Node != nil {
		info.FilePaths = route.Node.Files
	}
	return info
}

// BuildComponentContext resolves every file declared by node through the file
// cache, assembles the base context, and applies the enrichment callback.
// The enrichment return value is used verbatim.
func (e *Engine) BuildComponentContext(ctx context.Context, info *RouteInfo, node *routetree.RouteNode, isLeaf bool) (*ComponentContext, error) {
	files, err := e.resolveFiles(ctx, node)
	if err != nil {
		return nil, err
	}

	cc := &ComponentContext{
		Route: &RouteInfo{
			Pattern:   info.Pattern,
			Params:    info.Params,
			URL:       info.URL,
			FilePaths: nil,
			Files:     files,
		},
		IsLeaf: isLeaf,
		Ctx:    ctx,
	}
	if node != nil {
		cc.Route.FilePaths = node.Files
	}

	if e.enrich != nil {
		cc = e.enrich(cc)
	}
	return cc, nil
}

// resolveFiles fetches each declared file for node, one fetch per kind.
// Module references are not files; they resolve through LoadModule.
func (e *Engine) resolveFiles(ctx context.Context, node *routetree.RouteNode) (map[string]string, error) {
	if node == nil || len(node.Files) == 0 {
		return nil, nil
	}
	files := make(map[string]string, len(node.Files))
	for kind, path := range node.Files {
		if kind == routetree.FileModule {
			continue
		}
		text, err := e.ReadFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("engine: read %s file %q: %w", kind, path, err)
		}
		files[kind] = text
	}
	return files, nil
}

// BuildRouteHierarchy returns the ordered ancestor chain for a leaf pattern,
// root-first, derived by structural prefix walking. The root pattern "/" is
// always the first element.
func (e *Engine) BuildRouteHierarchy(leafPattern string) []string {
	leafPattern = routetree.NormalizePath(leafPattern)
	patterns := []string{"/"}
	if leafPattern == "/" {
		return patterns
	}

	prefix := ""
	for _, segment := range strings.Split(strings.Trim(leafPattern, "/"), "/") {
		prefix += "/" + segment
		patterns = append(patterns, prefix)
	}
	return patterns
}
