package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/strata-dev/strata/pkg/renderer"
)

// Default tracer name for Strata applications.
const defaultTracerName = "strata"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "strata").
	TracerName string

	// Filter determines which renders to trace. Return true to trace.
	// If nil, all renders are traced.
	Filter func(url string) bool

	// AttributeExtractor extracts custom attributes per render.
	AttributeExtractor func(url string) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithRenderFilter sets a filter function for renders.
func WithRenderFilter(filter func(url string) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(url string) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OTel creates middleware that traces every render.
//
// Each render gets a "strata.render" span carrying the request URL, result
// status, and redirect target when present. Aborted renders record the error
// and set span status.
//
// The tracer uses the global OpenTelemetry tracer provider; configure it in
// main() before serving:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OTel(opts ...OTelOption) Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return func(next RenderFunc) RenderFunc {
		return func(ctx context.Context, url string) (renderer.Result, error) {
			if config.Filter != nil && !config.Filter(url) {
				return next(ctx, url)
			}

			attrs := []attribute.KeyValue{
				attribute.String("strata.url", url),
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(url)...)
			}

			spanCtx, span := config.tracer.Start(ctx, "strata.render",
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			res, err := next(spanCtx, url)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return res, err
			}

			span.SetAttributes(attribute.Int("strata.status", res.Status))
			if res.Redirect != "" {
				span.SetAttributes(attribute.String("strata.redirect", res.Redirect))
			}
			if res.Title != "" {
				span.SetAttributes(attribute.String("strata.title", res.Title))
			}
			span.SetStatus(codes.Ok, "")
			return res, nil
		}
	}
}
