package widget

import (
	"context"
	"fmt"
	"sync"

	"github.com/strata-dev/strata/pkg/engine"
)

// DefaultMaxDepth bounds recursive widget expansion. Widget output may itself
// contain widget blocks; each pass over the content consumes one depth unit.
const DefaultMaxDepth = 8

// DepthError reports widget expansion that exceeded the recursion cap.
type DepthError struct {
	Depth int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("widget: expansion exceeded %d passes, aborting (widget emitting itself?)", e.Depth)
}

// Options configures widget resolution for one output format.
type Options struct {
	// Registry is the active widget registry.
	Registry Registry

	// Render invokes the format-specific render capability of a widget.
	Render func(w Widget, cc *engine.ComponentContext, data any) (string, error)

	// InlineError formats a scoped error fragment placed where a failing
	// block was. The fragment must carry the widget name.
	InlineError func(name, msg string) string

	// ResolveFiles fetches a widget's companion files. May be nil when the
	// registry holds no FileWidget.
	ResolveFiles func(ctx context.Context, files map[string]string) (map[string]string, error)

	// MaxDepth caps recursive expansion passes. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Resolve expands every widget block in content. Blocks within one pass are
// resolved concurrently; textual replacement is applied by descending start
// offset so completed replacements never shift pending ones.
//
// Per-widget failures (unknown name, malformed params, data or render errors,
// panics) degrade to inline error fragments. The only returned errors are
// context cancellation and exceeding the recursion cap.
func Resolve(ctx context.Context, content string, page *engine.ComponentContext, opts Options) (string, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	for pass := 0; ; pass++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		blocks := ParseBlocks(content)
		if len(blocks) == 0 {
			return content, nil
		}
		if pass >= maxDepth {
			return "", &DepthError{Depth: maxDepth}
		}

		replacements := make([]string, len(blocks))
		var wg sync.WaitGroup
		for i := range blocks {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				replacements[i] = resolveBlock(ctx, blocks[i], page, opts)
			}(i)
		}
		wg.Wait()

		if err := ctx.Err(); err != nil {
			return "", err
		}

		for i := len(blocks) - 1; i >= 0; i-- {
			b := blocks[i]
			content = content[:b.Start] + replacements[i] + content[b.End:]
		}
	}
}

// resolveBlock resolves a single block to its replacement text. Failures are
// scoped to the block.
func resolveBlock(ctx context.Context, b ParsedBlock, page *engine.ComponentContext, opts Options) string {
	if b.ParseErr != "" {
		return opts.InlineError(b.Name, "invalid parameters: "+b.ParseErr)
	}

	w, ok := opts.Registry.Get(b.Name)
	if !ok {
		return opts.InlineError(b.Name, "unknown widget")
	}

	cc, err := widgetContext(ctx, w, page, opts)
	if err != nil {
		return opts.InlineError(b.Name, err.Error())
	}

	out, err := renderWidget(ctx, w, b.Params, cc, opts)
	if err != nil {
		return opts.InlineError(b.Name, err.Error())
	}
	return out
}

// widgetContext derives the widget's context from the page's, augmented with
// the widget's own companion files when declared. The page context is never
// mutated.
func widgetContext(ctx context.Context, w Widget, page *engine.ComponentContext, opts Options) (*engine.ComponentContext, error) {
	cc := &engine.ComponentContext{
		Route:  page.Route,
		IsLeaf: page.IsLeaf,
		Ctx:    ctx,
		Extra:  page.Extra,
	}

	fw, ok := w.(FileWidget)
	if !ok || len(fw.Files()) == 0 {
		return cc, nil
	}
	if opts.ResolveFiles == nil {
		return nil, fmt.Errorf("widget declares files but no file resolver is configured")
	}

	resolved, err := opts.ResolveFiles(ctx, fw.Files())
	if err != nil {
		return nil, err
	}

	route := *page.Route
	files := make(map[string]string, len(route.Files)+len(resolved))
	for k, v := range route.Files {
		files[k] = v
	}
	for k, v := range resolved {
		files[k] = v
	}
	route.Files = files
	cc.Route = &route
	return cc, nil
}

// renderWidget runs the widget's data fetch and format render, converting
// panics into errors.
func renderWidget(ctx context.Context, w Widget, params map[string]any, cc *engine.ComponentContext, opts Options) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("widget panic: %v", p)
		}
	}()

	data, err := w.GetData(ctx, params, cc)
	if err != nil {
		return "", err
	}
	return opts.Render(w, cc, data)
}
