// Package telemetry sets up OpenTelemetry tracing for folio.
//
// Tracing is off unless an OTLP endpoint is configured, either through
// [WithEndpoint] or the standard OTEL_EXPORTER_OTLP_ENDPOINT and
// OTEL_EXPORTER_OTLP_TRACES_ENDPOINT variables.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/macropower/folio/pkg/version"
)

const serviceName = "folio"

// Endpoint environment variables read by the OTLP exporter.
const (
	EnvEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvTracesEndpoint = "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"
)

// Provider owns the tracer provider installed by [Setup].
type Provider struct {
	tp       trace.TracerProvider
	shutdown func(context.Context) error
	flush    func(context.Context) error
	enabled  bool
}

// Option configures [Setup].
type Option func(*options)

type options struct {
	exporter sdktrace.SpanExporter
	endpoint string
	insecure bool
}

// WithEndpoint sets the OTLP gRPC endpoint (host:port).
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithInsecure disables transport security for the OTLP connection.
func WithInsecure(insecure bool) Option {
	return func(o *options) {
		o.insecure = insecure
	}
}

// WithExporter replaces the OTLP exporter, e.g. with an in-memory exporter.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.exporter = exp
	}
}

// Setup creates the tracer provider and installs it globally. Without an
// exporter or endpoint, tracing is disabled and a no-op provider is used.
func Setup(ctx context.Context, opts ...Option) (*Provider, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	exp := o.exporter
	if exp == nil {
		if o.endpoint == "" && !endpointFromEnv() {
			p := &Provider{
				tp:       noop.NewTracerProvider(),
				shutdown: func(context.Context) error { return nil },
				flush:    func(context.Context) error { return nil },
			}
			otel.SetTracerProvider(p.tp)

			return p, nil
		}

		var grpcOpts []otlptracegrpc.Option
		if o.endpoint != "" {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithEndpoint(o.endpoint))
		}
		if o.insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}

		var err error

		exp, err = otlptracegrpc.New(ctx, grpcOpts...)
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version.GetVersion()),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp, shutdown: tp.Shutdown, flush: tp.ForceFlush, enabled: true}, nil
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p.enabled
}

// TracerProvider returns the installed provider.
func (p *Provider) TracerProvider() trace.TracerProvider { //nolint:ireturn // Either SDK or no-op.
	return p.tp
}

// Flush exports all pending spans.
func (p *Provider) Flush(ctx context.Context) error {
	err := p.flush(ctx)
	if err != nil {
		return fmt.Errorf("flush spans: %w", err)
	}

	return nil
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	err := p.shutdown(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}

	return nil
}

func endpointFromEnv() bool {
	return os.Getenv(EnvEndpoint) != "" || os.Getenv(EnvTracesEndpoint) != ""
}
