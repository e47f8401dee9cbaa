package engine

import (
	"context"
	"net/url"
)

// FileReader reads template and style files by path. Implementations may
// block on I/O and must honor the context.
type FileReader interface {
	ReadFile(ctx context.Context, path string) (string, error)
}

// FileReaderFunc is a function adapter for FileReader.
type FileReaderFunc func(ctx context.Context, path string) (string, error)

// ReadFile implements FileReader.
func (f FileReaderFunc) ReadFile(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// ModuleLoader resolves a module reference to its behavior value. The
// returned value is inspected for the capability interfaces below.
type ModuleLoader interface {
	LoadModule(ctx context.Context, path string) (any, error)
}

// ModuleLoaderFunc is a function adapter for ModuleLoader.
type ModuleLoaderFunc func(ctx context.Context, path string) (any, error)

// LoadModule implements ModuleLoader.
func (f ModuleLoaderFunc) LoadModule(ctx context.Context, path string) (any, error) {
	return f(ctx, path)
}

// ModuleMap is a ModuleLoader backed by an in-code registry, the usual way to
// wire page and boundary modules in a compiled binary.
type ModuleMap map[string]any

// LoadModule implements ModuleLoader.
func (m ModuleMap) LoadModule(ctx context.Context, path string) (any, error) {
	mod, ok := m[path]
	if !ok {
		return nil, &ModuleNotFoundError{Path: path}
	}
	return mod, nil
}

// ModuleNotFoundError reports a module reference with no registered value.
type ModuleNotFoundError struct {
	Path string
}

func (e *ModuleNotFoundError) Error() string {
	return "engine: module not found: " + e.Path
}

// DataProvider is the capability interface for modules that fetch data before
// rendering.
type DataProvider interface {
	GetData(ctx context.Context, cc *ComponentContext) (any, error)
}

// Redirector is the capability interface for modules that export a redirect
// destination.
type Redirector interface {
	RedirectTarget() string
}

// Titler is the capability interface for modules that supply a page title.
type Titler interface {
	Title(cc *ComponentContext, data any) string
}

// EnrichFunc lets the application layer extend the base component context.
// The return value is used verbatim; enrichment may add fields but the engine
// never removes base fields on its behalf.
type EnrichFunc func(cc *ComponentContext) *ComponentContext

// RouteInfo is the per-request view of a matched route.
type RouteInfo struct {
	// Pattern is the canonical route template (e.g. "/projects/:id").
	Pattern string

	// Params are the extracted route parameters, percent-decoded.
	Params map[string]string

	// URL is the request URL, for query-string access.
	URL *url.URL

	// FilePaths maps declared content kinds to their file paths.
	FilePaths map[string]string

	// Files maps content kinds to fetched file contents. Populated by
	// BuildComponentContext, one fetch per declared file.
	Files map[string]string
}

// Query returns the query parameter value for key, or "".
func (ri *RouteInfo) Query(key string) string {
	if ri == nil || ri.URL == nil {
		return ""
	}
	return ri.URL.Query().Get(key)
}

// Param returns the route parameter value for key, or "".
func (ri *RouteInfo) Param(key string) string {
	if ri == nil {
		return ""
	}
	return ri.Params[key]
}

// ComponentContext is passed into every render callback.
type ComponentContext struct {
	// Route is the per-request route view.
	Route *RouteInfo

	// IsLeaf is true only for the innermost route of the hierarchy being
	// rendered.
	IsLeaf bool

	// Ctx carries the render's cancellation signal.
	Ctx context.Context

	// Extra holds application-supplied enrichment values.
	Extra map[string]any
}

// Value returns an enrichment value by key, or nil.
func (cc *ComponentContext) Value(key string) any {
	if cc == nil || cc.Extra == nil {
		return nil
	}
	return cc.Extra[key]
}

// SetValue stores an enrichment value, allocating the map on first use.
func (cc *ComponentContext) SetValue(key string, v any) {
	if cc.Extra == nil {
		cc.Extra = make(map[string]any)
	}
	cc.Extra[key] = v
}
