package routetree

import "strings"

// ResolvedRoute is the result of matching a pathname against the trie.
type ResolvedRoute struct {
	// Node is the matched manifest node.
	Node *RouteNode

	// Pattern is the canonical route template reconstructed from the match
	// (e.g. "/projects/:id"), not the concrete request path.
	Pattern string

	// Params are the extracted route parameters, percent-decoded.
	Params map[string]string
}

// Resolver matches pathnames against an indexed route tree.
//
// A Resolver is built once from a manifest and is safe for concurrent use:
// matching never mutates shared trie state.
type Resolver struct {
	root *trieNode
}

// NewResolver indexes a manifest tree for matching. The manifest must not be
// mutated afterwards.
func NewResolver(root *RouteNode) *Resolver {
	if root == nil {
		root = &RouteNode{}
	}
	return &Resolver{root: buildTrie(root, "/")}
}

// Match resolves a pathname to a terminal route.
//
// The walk tries, at every level, the static child for the current segment,
// then the dynamic child, then the wildcard child, backtracking across levels
// until a terminal route is found.
func (r *Resolver) Match(pathname string) (*ResolvedRoute, bool) {
	segments := splitPath(NormalizePath(pathname))
	params := make(map[string]string)

	node, ok := r.root.match(segments, params)
	if !ok {
		return nil, false
	}
	return &ResolvedRoute{
		Node:    node.route,
		Pattern: node.pattern,
		Params:  params,
	}, true
}

// FindErrorBoundary returns the deepest error-boundary module reference along
// the committed match path for pathname.
//
// Unlike Match, this walk does not backtrack: once a static, dynamic, or
// wildcard branch is chosen at a level it is committed to. For ambiguous paths
// this can select a different branch than Match would. This asymmetry is
// deliberate; changing it would change which boundary fires for such paths.
func (r *Resolver) FindErrorBoundary(pathname string) (string, bool) {
	segments := splitPath(NormalizePath(pathname))

	current := r.root
	boundary := current.boundary

	for _, segment := range segments {
		if child, ok := current.static[segment]; ok {
			current = child
		} else if current.dynamic != nil {
			current = current.dynamic
		} else if current.wildcard != nil {
			if current.wildcard.boundary != "" {
				boundary = current.wildcard.boundary
			}
			break
		} else {
			break
		}
		if current.boundary != "" {
			boundary = current.boundary
		}
	}

	return boundary, boundary != ""
}

// FindRoute looks up a manifest node by its literal pattern string. Segments
// beginning with ":" or "*" are matched structurally against the dynamic or
// wildcard child rather than by value.
//
// The returned node may be non-terminal: hierarchy construction needs access
// to intermediate nodes that only exist to carry children.
func (r *Resolver) FindRoute(pattern string) (*RouteNode, bool) {
	segments := splitPath(NormalizePath(pattern))

	current := r.root
	for _, segment := range segments {
		switch {
		case strings.HasPrefix(segment, ":"):
			if current.dynamic == nil {
				return nil, false
			}
			current = current.dynamic
		case strings.HasPrefix(segment, "*"):
			if current.wildcard == nil {
				return nil, false
			}
			current = current.wildcard
		default:
			child, ok := current.static[segment]
			if !ok {
				return nil, false
			}
			current = child
		}
	}
	return current.node, true
}
