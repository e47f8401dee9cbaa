package renderer

import (
	"github.com/strata-dev/strata/pkg/engine"
	"github.com/strata-dev/strata/pkg/widget"
)

// Result is the outcome of rendering one URL.
type Result struct {
	// Content is the composed page. Not meaningful when Redirect is set.
	Content string

	// Status is the HTTP-like status code.
	Status int

	// Title is the page title, when any level produced one. The deepest
	// non-empty title wins.
	Title string

	// Redirect is the redirect destination. When set, Status is a redirect
	// code and Content is empty.
	Redirect string
}

// Format supplies the per-format primitives the hierarchical renderer is
// parameterized by. Implementations must be stateless and safe for concurrent
// renders.
type Format interface {
	// Name identifies the format ("html" or "markdown").
	Name() string

	// ContentType is the MIME type callers should serve the content with.
	ContentType() string

	// PassThrough is the content of a level with nothing of its own to
	// render: the bare slot placeholder.
	PassThrough() string

	// InjectSlot splices child content into the parent's slot placeholder.
	InjectSlot(parent, child string) string

	// StripSlots removes any placeholder left unfilled, trimming the
	// whitespace around it.
	StripSlots(content string) string

	// RenderRouteContent produces one level's content and optional title
	// from its module (may be nil) and pre-fetched data.
	RenderRouteContent(cc *engine.ComponentContext, mod, data any) (content, title string, err error)

	// RenderWidget invokes the format's render capability on a widget.
	RenderWidget(w widget.Widget, cc *engine.ComponentContext, data any) (string, error)

	// InlineWidgetError formats the scoped fragment replacing a failed
	// widget block.
	InlineWidgetError(name, msg string) string

	// StatusPage is the built-in fallback page for a status code.
	StatusPage(status int, pathname string) string

	// ErrorPage is the built-in internal error page.
	ErrorPage(pathname string, err error) string
}

// HTMLPage is the capability interface for page modules rendering HTML.
type HTMLPage interface {
	RenderHTML(cc *engine.ComponentContext, data any) (string, error)
}

// MarkdownPage is the capability interface for page modules rendering
// Markdown.
type MarkdownPage interface {
	RenderMarkdown(cc *engine.ComponentContext, data any) (string, error)
}

// MarkdownConverter converts Markdown text to HTML. The HTML format uses it
// for routes that declare only a Markdown template. Implementations are
// injected; pkg/markdown provides the default.
type MarkdownConverter func(markdown string) (string, error)
