package widget

import (
	"context"

	"github.com/strata-dev/strata/pkg/engine"
)

// Widget is the minimal capability every registered widget carries: fetching
// its own data. Render capabilities are per-format and asserted separately.
type Widget interface {
	GetData(ctx context.Context, params map[string]any, cc *engine.ComponentContext) (any, error)
}

// HTMLWidget renders a widget for the HTML output format.
type HTMLWidget interface {
	Widget
	RenderHTML(cc *engine.ComponentContext, data any) (string, error)
}

// MarkdownWidget renders a widget for the Markdown output format.
type MarkdownWidget interface {
	Widget
	RenderMarkdown(cc *engine.ComponentContext, data any) (string, error)
}

// FileWidget declares companion files resolved the same way as page files and
// exposed on the widget's component context.
type FileWidget interface {
	Widget
	Files() map[string]string
}

// Registry looks widgets up by name.
type Registry interface {
	Get(name string) (Widget, bool)
}

// MapRegistry is a Registry backed by a plain map.
type MapRegistry map[string]Widget

// Get implements Registry.
func (m MapRegistry) Get(name string) (Widget, bool) {
	w, ok := m[name]
	return w, ok
}

// Func builds a data-only widget from a function, for widgets whose render
// step is supplied by format-specific wrappers or tests.
type Func func(ctx context.Context, params map[string]any, cc *engine.ComponentContext) (any, error)

// GetData implements Widget.
func (f Func) GetData(ctx context.Context, params map[string]any, cc *engine.ComponentContext) (any, error) {
	return f(ctx, params, cc)
}
