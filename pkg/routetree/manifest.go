package routetree

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// File kinds a route node may declare. The engine fetches each declared file
// lazily when the route is rendered.
const (
	// FileHTML is the HTML template for a route.
	FileHTML = "html"

	// FileMarkdown is the Markdown template for a route.
	FileMarkdown = "markdown"

	// FileStyle is the stylesheet associated with a route.
	FileStyle = "style"

	// FileModule is the behavior module reference for a route.
	FileModule = "module"
)

// RouteNode is a node in the route manifest tree.
//
// The tree is passive data: it carries no behavior and is immutable once a
// Resolver has been built from it. A node is terminal (matchable) iff it
// declares files or a redirect.
type RouteNode struct {
	// Files maps a content kind (FileHTML, FileMarkdown, ...) to a file path.
	Files map[string]string `json:"files,omitempty"`

	// Redirect is the redirect target path. A node with a redirect is terminal
	// and never renders content.
	Redirect string `json:"redirect,omitempty"`

	// RedirectStatus is the HTTP status for the redirect.
	// Zero means http.StatusTemporaryRedirect.
	RedirectStatus int `json:"redirectStatus,omitempty"`

	// ErrorBoundary is a module reference rendered when a descendant route
	// fails. Deeper boundaries shadow shallower ones.
	ErrorBoundary string `json:"errorBoundary,omitempty"`

	// Children are static child segments keyed by literal segment.
	Children map[string]*RouteNode `json:"children,omitempty"`

	// Dynamic is the single-segment parameter child (:param), at most one.
	Dynamic *ParamChild `json:"dynamic,omitempty"`

	// Wildcard captures all remaining segments (*param), at most one.
	Wildcard *ParamChild `json:"wildcard,omitempty"`
}

// ParamChild binds a parameter name to a child subtree.
type ParamChild struct {
	Param string     `json:"param"`
	Child *RouteNode `json:"child"`
}

// Terminal reports whether the node can be matched directly.
func (n *RouteNode) Terminal() bool {
	return n != nil && (len(n.Files) > 0 || n.Redirect != "")
}

// redirectStatus returns the configured redirect status, defaulting to 307.
func (n *RouteNode) redirectStatus() int {
	if n.RedirectStatus != 0 {
		return n.RedirectStatus
	}
	return http.StatusTemporaryRedirect
}

// RedirectStatusCode returns the HTTP status to use when following the node's
// redirect. It returns 0 for nodes without a redirect.
func (n *RouteNode) RedirectStatusCode() int {
	if n == nil || n.Redirect == "" {
		return 0
	}
	return n.redirectStatus()
}

// LoadManifest decodes and validates a route manifest.
func LoadManifest(r io.Reader) (*RouteNode, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var root RouteNode
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("routetree: decode manifest: %w", err)
	}
	if err := validateNode(&root, "/"); err != nil {
		return nil, err
	}
	return &root, nil
}

// ParseManifest decodes a manifest from raw JSON.
func ParseManifest(data []byte) (*RouteNode, error) {
	var root RouteNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("routetree: decode manifest: %w", err)
	}
	if err := validateNode(&root, "/"); err != nil {
		return nil, err
	}
	return &root, nil
}

// validateNode checks structural invariants the matcher relies on.
func validateNode(n *RouteNode, pattern string) error {
	if n == nil {
		return fmt.Errorf("routetree: nil node at %s", pattern)
	}
	for kind, path := range n.Files {
		if path == "" {
			return fmt.Errorf("routetree: empty file path for kind %q at %s", kind, pattern)
		}
	}
	for seg, child := range n.Children {
		if seg == "" {
			return fmt.Errorf("routetree: empty child segment at %s", pattern)
		}
		if err := validateNode(child, joinPattern(pattern, seg)); err != nil {
			return err
		}
	}
	if n.Dynamic != nil {
		if n.Dynamic.Param == "" {
			return fmt.Errorf("routetree: dynamic child without parameter name at %s", pattern)
		}
		if err := validateNode(n.Dynamic.Child, joinPattern(pattern, ":"+n.Dynamic.Param)); err != nil {
			return err
		}
	}
	if n.Wildcard != nil {
		if n.Wildcard.Param == "" {
			return fmt.Errorf("routetree: wildcard child without parameter name at %s", pattern)
		}
		if err := validateNode(n.Wildcard.Child, joinPattern(pattern, "*"+n.Wildcard.Param)); err != nil {
			return err
		}
	}
	return nil
}

// joinPattern appends a segment to a pattern, keeping the root pattern "/".
func joinPattern(pattern, segment string) string {
	if pattern == "/" {
		return "/" + segment
	}
	return pattern + "/" + segment
}
