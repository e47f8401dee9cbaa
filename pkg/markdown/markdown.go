// Package markdown provides the default Markdown-to-HTML converter injected
// into the HTML format adapter. The engine itself never parses Markdown; it
// only calls the injected converter.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Converter wraps a configured goldmark instance. Safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

// New creates a converter with GFM tables/strikethrough, footnotes, automatic
// heading IDs, and raw HTML passthrough. Templates are trusted input here;
// sanitize upstream if they ever are not.
func New() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithUnsafe(),
			),
		),
	}
}

// Convert renders Markdown to HTML.
func (c *Converter) Convert(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
