// Package widget resolves fenced widget blocks embedded in rendered content.
//
// A widget block is a fenced code block whose info string names the widget,
// with a JSON parameter object as its body:
//
//	```widget:gallery
//	{"album": "2024", "limit": 6}
//	```
//
// Blocks are parsed in document order, resolved against a registry (possibly
// concurrently), and spliced back by descending start offset so earlier
// replacements never invalidate later offsets. A failing widget degrades to
// an inline, format-specific error fragment; it never aborts the page.
package widget
