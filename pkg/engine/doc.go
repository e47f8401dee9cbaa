// Package engine implements the rendering core for Strata.
//
// The engine owns a route resolver, an injected module loader and file reader,
// and an optional context-enrichment callback. It builds the per-request
// values the hierarchical renderer consumes:
//
//   - RouteInfo: the matched pattern, params, request URL, and lazily fetched
//     file contents for the matched node
//   - ComponentContext: the value passed into every user render callback
//   - the root-first hierarchy of route patterns for a matched leaf
//
// Module loads and file reads are memoized per engine instance with
// at-most-once in-flight semantics, so concurrent renders against the same
// engine never duplicate a load.
package engine
