// Package strata provides the public API for the Strata rendering engine.
//
// Strata resolves URLs against a JSON route manifest, builds the hierarchy of
// route levels from root to leaf, and renders each level through a pluggable
// output format (HTML or Markdown), composing parent content around child
// content via slot placeholders and expanding embedded widget blocks.
//
// This is the recommended import for most applications:
//
//	import "github.com/strata-dev/strata"
//
// Usage:
//
//	app, err := strata.New(strata.Config{
//	    Manifest: manifestJSON,
//	    Reader:   source.NewDirReader("routes"),
//	    Modules:  modules,
//	    Widgets:  widgets,
//	})
//	http.ListenAndServe(":8080", app)
package strata

import (
	"github.com/strata-dev/strata/pkg/engine"
	"github.com/strata-dev/strata/pkg/renderer"
	"github.com/strata-dev/strata/pkg/routetree"
	"github.com/strata-dev/strata/pkg/widget"
)

// RouteNode is one node of the route manifest tree.
type RouteNode = routetree.RouteNode

// RouteInfo describes the matched route inside a component context.
type RouteInfo = engine.RouteInfo

// ComponentContext carries everything a route module needs to render one
// hierarchy level.
type ComponentContext = engine.ComponentContext

// Result is the outcome of rendering a URL.
type Result = renderer.Result

// StatusError signals a non-200 terminal status from a data provider.
type StatusError = renderer.StatusError

// NewStatusError returns a StatusError with the given code and message.
var NewStatusError = renderer.NewStatusError

// NotFound returns the StatusError used for unmatched URLs.
var NotFound = renderer.NotFound

// ModuleMap is a static module loader backed by a map.
type ModuleMap = engine.ModuleMap

// Registry resolves widget names to implementations.
type Registry = widget.Registry

// MapRegistry is a static widget registry backed by a map.
type MapRegistry = widget.MapRegistry

// DataProvider is implemented by route modules that fetch data before render.
type DataProvider = engine.DataProvider

// Titler is implemented by route modules that set the page title from data.
type Titler = engine.Titler

// Redirector is implemented by modules referenced as redirect targets.
type Redirector = engine.Redirector
