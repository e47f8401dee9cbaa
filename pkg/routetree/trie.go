package routetree

import (
	"net/url"
	"strings"
)

// trieNode is the indexed form of a RouteNode.
type trieNode struct {
	// node is the underlying manifest node.
	node *RouteNode

	// pattern is the canonical route template for this node (e.g. "/projects/:id").
	pattern string

	// route is set when the node is terminal (declares files or a redirect).
	route *RouteNode

	// boundary is the error-boundary module reference declared at this node.
	boundary string

	// static children keyed by literal segment (O(1) lookup).
	static map[string]*trieNode

	// dynamic is the single-segment parameter child.
	dynamic      *trieNode
	dynamicParam string

	// wildcard captures all remaining segments.
	wildcard      *trieNode
	wildcardParam string
}

// buildTrie converts a manifest node into its indexed form.
func buildTrie(n *RouteNode, pattern string) *trieNode {
	t := &trieNode{
		node:     n,
		pattern:  pattern,
		boundary: n.ErrorBoundary,
	}
	if n.Terminal() {
		t.route = n
	}
	if len(n.Children) > 0 {
		t.static = make(map[string]*trieNode, len(n.Children))
		for seg, child := range n.Children {
			t.static[seg] = buildTrie(child, joinPattern(pattern, seg))
		}
	}
	if n.Dynamic != nil {
		t.dynamicParam = n.Dynamic.Param
		t.dynamic = buildTrie(n.Dynamic.Child, joinPattern(pattern, ":"+n.Dynamic.Param))
	}
	if n.Wildcard != nil {
		t.wildcardParam = n.Wildcard.Param
		t.wildcard = buildTrie(n.Wildcard.Child, joinPattern(pattern, "*"+n.Wildcard.Param))
	}
	return t
}

// match walks the trie with backtracking. Priority at every level is
// static > dynamic > wildcard. A dynamic binding is undone when the recursive
// attempt below it fails, so abandoned bindings never leak into the result.
func (t *trieNode) match(segments []string, params map[string]string) (*trieNode, bool) {
	if len(segments) == 0 {
		if t.route != nil {
			return t, true
		}
		// A wildcard matching zero remaining segments is accepted as a
		// fallback, bound to the empty string.
		if t.wildcard != nil && t.wildcard.route != nil {
			params[t.wildcardParam] = ""
			return t.wildcard, true
		}
		return nil, false
	}

	segment := segments[0]
	remaining := segments[1:]

	if child, ok := t.static[segment]; ok {
		if node, ok := child.match(remaining, params); ok {
			return node, true
		}
	}

	if t.dynamic != nil {
		prev, had := params[t.dynamicParam]
		params[t.dynamicParam] = decodeSegment(segment)
		if node, ok := t.dynamic.match(remaining, params); ok {
			return node, true
		}
		// Backtrack: restore the previous binding (a shallower level may
		// reuse the same parameter name).
		if had {
			params[t.dynamicParam] = prev
		} else {
			delete(params, t.dynamicParam)
		}
	}

	// Wildcard is greedy: it consumes everything left and cannot backtrack.
	if t.wildcard != nil && t.wildcard.route != nil {
		decoded := make([]string, len(segments))
		for i, s := range segments {
			decoded[i] = decodeSegment(s)
		}
		params[t.wildcardParam] = strings.Join(decoded, "/")
		return t.wildcard, true
	}

	return nil, false
}

// decodeSegment percent-decodes one path segment. Decoding failures fall back
// to the raw segment rather than failing the match.
func decodeSegment(segment string) string {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return decoded
}

// NormalizePath ensures a single leading slash and strips one trailing slash
// (except for the root path "/").
func NormalizePath(pathname string) string {
	if pathname == "" {
		return "/"
	}
	if !strings.HasPrefix(pathname, "/") {
		pathname = "/" + pathname
	}
	if len(pathname) > 1 && strings.HasSuffix(pathname, "/") {
		pathname = pathname[:len(pathname)-1]
	}
	return pathname
}

// splitPath splits a normalized path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
