// Package middleware provides observability wrappers around renderer calls:
// Prometheus metrics and OpenTelemetry tracing. Wrappers compose:
//
//	render := middleware.Prometheus()(middleware.OTel()(rend.Render))
//	result, err := render(ctx, "/projects/42")
package middleware

import (
	"context"

	"github.com/strata-dev/strata/pkg/renderer"
)

// RenderFunc is the renderer entry point a middleware wraps.
type RenderFunc func(ctx context.Context, url string) (renderer.Result, error)

// Middleware wraps a RenderFunc with cross-cutting behavior.
type Middleware func(RenderFunc) RenderFunc
