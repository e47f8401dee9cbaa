// Package routetree implements route manifest loading and path matching for Strata.
//
// The package provides:
//   - A JSON-serializable route manifest (RouteNode) produced by an external
//     discovery step
//   - A segment trie built once from the manifest for efficient matching
//   - Backtracking path matching with static > dynamic > wildcard priority
//   - Error-boundary lookup along the committed match path
//
// # Manifest Structure
//
// A manifest is a nested tree of RouteNode values:
//
//	{
//	  "files": {"html": "routes/index.html"},
//	  "children": {
//	    "about": {"files": {"html": "routes/about.html"}},
//	    "projects": {
//	      "dynamic": {
//	        "param": "id",
//	        "child": {"files": {"html": "routes/projects/[id].html"}}
//	      }
//	    }
//	  }
//	}
//
// A node is terminal (directly matchable) when it declares files or a redirect.
//
// # Usage
//
//	root, err := routetree.LoadManifest(f)
//	resolver := routetree.NewResolver(root)
//
//	route, ok := resolver.Match("/projects/123")
//	if ok {
//	    // route.Pattern == "/projects/:id"
//	    // route.Params["id"] == "123"
//	}
package routetree
