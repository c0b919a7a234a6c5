package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "ecscluster"

// InstallNoop registers an SDK tracer provider with no exporter
// attached. It exists so the clustering packages can always call
// trace.Tracer.Start unconditionally — a real deployment replaces this
// by registering its own exporter-backed provider instead.
func InstallNoop() {
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
}

// Tracer returns the process-wide tracer for clustering spans.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// SpanDispatch wraps a message-handler call in a span named after the
// message kind, tagging the node and recording any error.
func SpanDispatch(ctx context.Context, node string, kind string, fn func(context.Context) error) error {
	ctx, span := Tracer().Start(ctx, "clustering.dispatch."+kind, trace.WithAttributes(
		attribute.String("ecscluster.node", node),
		attribute.String("ecscluster.message_kind", kind),
	))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// SpanScan wraps the periodic table-scan callback in a span.
func SpanScan(ctx context.Context, node string, fn func(context.Context)) {
	ctx, span := Tracer().Start(ctx, "clustering.scan", trace.WithAttributes(
		attribute.String("ecscluster.node", node),
	))
	defer span.End()
	fn(ctx)
}
