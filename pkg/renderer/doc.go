// Package renderer composes matched routes into complete pages.
//
// The hierarchical renderer is format-agnostic: given a matched route it
// walks the ancestor chain root to leaf, renders each level's content, and
// splices every child's output into its parent's single slot placeholder.
// The Format interface supplies the per-format primitives (placeholder
// syntax, route content rendering, status/redirect/error pages); HTMLFormat
// and MarkdownFormat are the two instantiations.
//
// Ancestor levels render strictly sequentially: a child's data fetch must not
// start before its parent's render completes, because error-boundary and
// title-propagation semantics depend on that order.
package renderer
