package renderer

import (
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"

	"github.com/strata-dev/strata/pkg/engine"
	"github.com/strata-dev/strata/pkg/routetree"
	"github.com/strata-dev/strata/pkg/widget"
)

// SlotHTML is the placeholder a parent HTML template marks its child
// injection point with.
const SlotHTML = "<strata-slot></strata-slot>"

var (
	htmlSlotLine = regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(SlotHTML) + `[ \t]*\r?\n?`)
	htmlTitleTag = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

// HTMLFormat renders pages as HTML.
type HTMLFormat struct {
	// Convert renders a Markdown template to HTML for routes declaring only
	// a Markdown file. Nil means such routes are pass-through.
	Convert MarkdownConverter
}

// NewHTMLFormat creates the HTML format adapter with an injected Markdown
// converter.
func NewHTMLFormat(convert MarkdownConverter) *HTMLFormat {
	return &HTMLFormat{Convert: convert}
}

// Name implements Format.
func (f *HTMLFormat) Name() string { return "html" }

// ContentType implements Format.
func (f *HTMLFormat) ContentType() string { return "text/html; charset=utf-8" }

// PassThrough implements Format.
func (f *HTMLFormat) PassThrough() string { return SlotHTML }

// InjectSlot implements Format. Each level has a single placeholder; only the
// first occurrence is filled.
func (f *HTMLFormat) InjectSlot(parent, child string) string {
	return strings.Replace(parent, SlotHTML, child, 1)
}

// StripSlots implements Format.
func (f *HTMLFormat) StripSlots(content string) string {
	content = htmlSlotLine.ReplaceAllString(content, "")
	return strings.ReplaceAll(content, SlotHTML, "")
}

// RenderRouteContent implements Format. Preference order: the module's HTML
// render capability, the route's HTML template, the route's Markdown template
// through the injected converter, pass-through.
func (f *HTMLFormat) RenderRouteContent(cc *engine.ComponentContext, mod, data any) (string, string, error) {
	if page, ok := mod.(HTMLPage); ok {
		content, err := page.RenderHTML(cc, data)
		if err != nil {
			return "", "", err
		}
		return content, extractHTMLTitle(content), nil
	}

	if text, ok := cc.Route.Files[routetree.FileHTML]; ok {
		return text, extractHTMLTitle(text), nil
	}

	if md, ok := cc.Route.Files[routetree.FileMarkdown]; ok && f.Convert != nil {
		title := extractMarkdownTitle(md)
		content, err := f.convertMarkdown(md)
		if err != nil {
			return "", "", fmt.Errorf("renderer: markdown conversion: %w", err)
		}
		return content, title, nil
	}

	return f.PassThrough(), "", nil
}

// RenderWidget implements Format.
func (f *HTMLFormat) RenderWidget(w widget.Widget, cc *engine.ComponentContext, data any) (string, error) {
	hw, ok := w.(widget.HTMLWidget)
	if !ok {
		return "", fmt.Errorf("widget does not render HTML")
	}
	return hw.RenderHTML(cc, data)
}

// InlineWidgetError implements Format.
func (f *HTMLFormat) InlineWidgetError(name, msg string) string {
	return fmt.Sprintf(
		`<span class="strata-widget-error" data-widget="%s">widget %s failed: %s</span>`,
		html.EscapeString(name), html.EscapeString(name), html.EscapeString(msg),
	)
}

// StatusPage implements Format.
func (f *HTMLFormat) StatusPage(status int, pathname string) string {
	text := http.StatusText(status)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>%d %s</title></head>
<body>
<h1>%d %s</h1>
<p>%s</p>
</body>
</html>
`, status, text, status, text, html.EscapeString(pathname))
}

// ErrorPage implements Format.
func (f *HTMLFormat) ErrorPage(pathname string, err error) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>500 Internal Server Error</title></head>
<body>
<h1>500 Internal Server Error</h1>
<p>Rendering %s failed.</p>
<pre>%s</pre>
</body>
</html>
`, html.EscapeString(pathname), html.EscapeString(err.Error()))
}

// convertMarkdown converts a Markdown template to HTML while carrying widget
// blocks through verbatim. Widget expansion runs on the final composed
// content, so the fences must survive conversion.
func (f *HTMLFormat) convertMarkdown(md string) (string, error) {
	blocks := widget.ParseBlocks(md)
	if len(blocks) == 0 {
		return f.Convert(md)
	}

	var b strings.Builder
	last := 0
	for _, blk := range blocks {
		converted, err := f.Convert(md[last:blk.Start])
		if err != nil {
			return "", err
		}
		b.WriteString(converted)
		b.WriteString("\n")
		b.WriteString(blk.FullMatch)
		b.WriteString("\n")
		last = blk.End
	}
	tail, err := f.Convert(md[last:])
	if err != nil {
		return "", err
	}
	b.WriteString(tail)
	return b.String(), nil
}

// extractHTMLTitle pulls the <title> text out of rendered HTML, or "".
func extractHTMLTitle(content string) string {
	m := htmlTitleTag.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
