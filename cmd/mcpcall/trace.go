package main

import (
	"context"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanLogger exports finished spans as log records.
type spanLogger struct {
	log *slog.Logger
}

func (e *spanLogger) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		r := slog.NewRecord(s.EndTime(), slog.LevelInfo, "span finished", 0)
		r.Add(
			"span", s.Name(),
			"trace_id", s.SpanContext().TraceID().String(),
			"span_id", s.SpanContext().SpanID().String(),
			"duration", s.EndTime().Sub(s.StartTime()),
			"status", s.Status().Code.String(),
		)
		for _, kv := range s.Attributes() {
			r.AddAttrs(slog.String(string(kv.Key), kv.Value.Emit()))
		}
		// --trace output ignores the configured level.
		if err := e.log.Handler().Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (e *spanLogger) Shutdown(context.Context) error {
	return nil
}
