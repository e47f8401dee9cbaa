package renderer

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/strata-dev/strata/pkg/engine"
	"github.com/strata-dev/strata/pkg/routetree"
	"github.com/strata-dev/strata/pkg/widget"
)

// SlotMarkdown is the fenced sentinel a parent Markdown template marks its
// child injection point with.
const SlotMarkdown = "```slot\n```"

var (
	mdSlotBlock  = regexp.MustCompile("(?m)^```slot[ \t]*\r?\n```[ \t]*\r?\n?")
	mdSlotMarker = regexp.MustCompile("(?m)^```slot[ \t]*\r?\n```[ \t]*\r?$")
	mdFirstTitle = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)
)

// MarkdownFormat renders pages as Markdown.
type MarkdownFormat struct{}

// NewMarkdownFormat creates the Markdown format adapter.
func NewMarkdownFormat() *MarkdownFormat {
	return &MarkdownFormat{}
}

// Name implements Format.
func (f *MarkdownFormat) Name() string { return "markdown" }

// ContentType implements Format.
func (f *MarkdownFormat) ContentType() string { return "text/markdown; charset=utf-8" }

// PassThrough implements Format.
func (f *MarkdownFormat) PassThrough() string { return SlotMarkdown }

// InjectSlot implements Format. The sentinel is matched as loosely as
// StripSlots matches it, so templates authored with trailing spaces or CRLF
// line endings still receive their child content.
func (f *MarkdownFormat) InjectSlot(parent, child string) string {
	loc := mdSlotMarker.FindStringIndex(parent)
	if loc == nil {
		return parent
	}
	return parent[:loc[0]] + child + parent[loc[1]:]
}

// StripSlots implements Format.
func (f *MarkdownFormat) StripSlots(content string) string {
	content = mdSlotBlock.ReplaceAllString(content, "")
	return strings.ReplaceAll(content, SlotMarkdown, "")
}

// RenderRouteContent implements Format. Preference order: the module's
// Markdown render capability, the route's Markdown template, pass-through.
// HTML-only routes contribute nothing to Markdown output.
func (f *MarkdownFormat) RenderRouteContent(cc *engine.ComponentContext, mod, data any) (string, string, error) {
	if page, ok := mod.(MarkdownPage); ok {
		content, err := page.RenderMarkdown(cc, data)
		if err != nil {
			return "", "", err
		}
		return content, extractMarkdownTitle(content), nil
	}

	if text, ok := cc.Route.Files[routetree.FileMarkdown]; ok {
		return text, extractMarkdownTitle(text), nil
	}

	return f.PassThrough(), "", nil
}

// RenderWidget implements Format.
func (f *MarkdownFormat) RenderWidget(w widget.Widget, cc *engine.ComponentContext, data any) (string, error) {
	mw, ok := w.(widget.MarkdownWidget)
	if !ok {
		return "", fmt.Errorf("widget does not render Markdown")
	}
	return mw.RenderMarkdown(cc, data)
}

// InlineWidgetError implements Format. A failing block becomes a quoted
// error line in place.
func (f *MarkdownFormat) InlineWidgetError(name, msg string) string {
	return fmt.Sprintf("> **widget %s failed:** %s", name, msg)
}

// StatusPage implements Format.
func (f *MarkdownFormat) StatusPage(status int, pathname string) string {
	return fmt.Sprintf("# %d %s\n\nNo page at `%s`.\n", status, http.StatusText(status), pathname)
}

// ErrorPage implements Format.
func (f *MarkdownFormat) ErrorPage(pathname string, err error) string {
	return fmt.Sprintf("# 500 Internal Server Error\n\nRendering `%s` failed:\n\n```\n%s\n```\n", pathname, err.Error())
}

// extractMarkdownTitle takes the first level-one heading as the title, or "".
func extractMarkdownTitle(content string) string {
	m := mdFirstTitle.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
