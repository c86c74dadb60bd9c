// Package otelhooks implements observability.TreeHooks on OpenTelemetry.
//
// Render passes become spans named "tree.render" with explicit start and
// end timestamps; placements and hierarchy changes are recorded as span
// events or short spans.
package otelhooks

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/forgewm/forge/pkg/observability"
)

const instrumentationName = "github.com/forgewm/forge/pkg/tree"

// Hooks emits tree events as OpenTelemetry spans.
type Hooks struct {
	observability.NoopTreeHooks
	tracer trace.Tracer
}

// New creates hooks backed by a tracer from tp.
func New(tp trace.TracerProvider) *Hooks {
	return &Hooks{tracer: tp.Tracer(instrumentationName)}
}

// OnRenderComplete records the finished render pass as a span ending now.
func (h *Hooks) OnRenderComplete(ctx context.Context, placed int, d time.Duration) {
	end := time.Now()
	_, span := h.tracer.Start(ctx, "tree.render", trace.WithTimestamp(end.Add(-d)))
	span.SetAttributes(attribute.Int("forge.windows.placed", placed))
	span.End(trace.WithTimestamp(end))
}

// OnPlace annotates the span in ctx, if any, with the placement.
func (h *Hooks) OnPlace(ctx context.Context, class string, x, y, width, height int) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("place", trace.WithAttributes(
		attribute.String("forge.window.class", class),
		attribute.Int("forge.rect.x", x),
		attribute.Int("forge.rect.y", y),
		attribute.Int("forge.rect.width", width),
		attribute.Int("forge.rect.height", height),
	))
}

func (h *Hooks) OnNodeAdded(ctx context.Context, nodeType string) {
	h.instant(ctx, "tree.add_node", nodeType)
}

func (h *Hooks) OnNodeRemoved(ctx context.Context, nodeType string) {
	h.instant(ctx, "tree.remove_node", nodeType)
}

func (h *Hooks) instant(ctx context.Context, name, nodeType string) {
	_, span := h.tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("forge.node.type", nodeType))
	span.End()
}

// NewProvider builds a tracer provider that batches spans to an OTLP/HTTP
// endpoint (host:port). The caller must Shutdown the provider.
func NewProvider(ctx context.Context, endpoint, serviceName string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

var _ observability.TreeHooks = (*Hooks)(nil)
