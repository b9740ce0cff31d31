package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/mcpcall/protocol"
)

const (
	instrumentationName    = "github.com/felixgeelhaar/mcpcall"
	instrumentationVersion = "0.1.0"
)

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
	serverAddress  string
	skipMethods    map[string]bool
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(c *otelConfig) {
		c.meterProvider = mp
	}
}

// WithOTelServiceName sets the service name for telemetry.
func WithOTelServiceName(name string) OTelOption {
	return func(c *otelConfig) {
		c.serviceName = name
	}
}

// WithOTelServerAddress records the endpoint being called on every span.
func WithOTelServerAddress(addr string) OTelOption {
	return func(c *otelConfig) {
		c.serverAddress = addr
	}
}

// WithOTelSkipMethods specifies methods to skip for tracing.
func WithOTelSkipMethods(methods ...string) OTelOption {
	return func(c *otelConfig) {
		for _, m := range methods {
			c.skipMethods[m] = true
		}
	}
}

// OTel returns middleware that adds OpenTelemetry tracing and metrics to outgoing calls.
// Each call gets a client span named "mcp.<method>" and is counted in
// mcp.client.requests, mcp.client.errors and mcp.client.request.duration.
func OTel(opts ...OTelOption) Middleware {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		serviceName:    "mcp-client",
		skipMethods:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := cfg.tracerProvider.Tracer(
		instrumentationName,
		trace.WithInstrumentationVersion(instrumentationVersion),
	)

	meter := cfg.meterProvider.Meter(
		instrumentationName,
		metric.WithInstrumentationVersion(instrumentationVersion),
	)

	requestCounter, _ := meter.Int64Counter(
		"mcp.client.requests",
		metric.WithDescription("Total number of MCP calls"),
		metric.WithUnit("{request}"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"mcp.client.request.duration",
		metric.WithDescription("Duration of MCP calls"),
		metric.WithUnit("ms"),
	)

	errorCounter, _ := meter.Int64Counter(
		"mcp.client.errors",
		metric.WithDescription("Total number of failed MCP calls"),
		metric.WithUnit("{error}"),
	)

	return func(next Invoker) Invoker {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.skipMethods[req.Method] {
				return next(ctx, req)
			}

			attrs := []attribute.KeyValue{
				attribute.String("mcp.method", req.Method),
				attribute.String("service.name", cfg.serviceName),
			}
			if cfg.serverAddress != "" {
				attrs = append(attrs, attribute.String("server.address", cfg.serverAddress))
			}

			ctx, span := tracer.Start(ctx, "mcp."+req.Method,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			span.SetAttributes(attribute.String("rpc.jsonrpc.request_id", string(req.ID)))
			if reqID := RequestIDFromContext(ctx); reqID != "" {
				span.SetAttributes(attribute.String("mcp.request_id", reqID))
			}

			startTime := time.Now()
			requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

			resp, err := next(ctx, req)

			duration := float64(time.Since(startTime).Milliseconds())
			requestDuration.Record(ctx, duration, metric.WithAttributes(attrs...))

			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())

				failed := append(attrs, attribute.String("error.type", errorType(err)))
				var rpcErr *protocol.Error
				if errors.As(err, &rpcErr) {
					failed = append(failed, attribute.Int("mcp.error_code", rpcErr.Code))
				}
				span.SetAttributes(failed[len(attrs):]...)
				errorCounter.Add(ctx, 1, metric.WithAttributes(failed...))

			case resp != nil && resp.Error != nil:
				failed := append(attrs,
					attribute.String("error.type", "remote"),
					attribute.Int("mcp.error_code", resp.Error.Code),
				)
				span.SetStatus(codes.Error, resp.Error.Message)
				span.SetAttributes(failed[len(attrs):]...)
				errorCounter.Add(ctx, 1, metric.WithAttributes(failed...))

			default:
				span.SetStatus(codes.Ok, "")
			}

			return resp, err
		}
	}
}

// errorType names the failure class of a call that never produced a response.
func errorType(err error) string {
	var rpcErr *protocol.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &rpcErr):
		return "local"
	}
	return fmt.Sprintf("%T", err)
}
