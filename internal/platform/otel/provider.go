// Package otel configures OpenTelemetry tracing for the atlas commands.
package otel

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	// EndpointVar names the OTLP/HTTP collector URL.
	EndpointVar = "ATLAS_OTEL_ENDPOINT"
	// EnabledVar disables tracing when set to "false".
	EnabledVar = "ATLAS_OTEL_ENABLED"
	// SampleRatioVar sets the fraction of root spans kept, from 0 to 1.
	SampleRatioVar = "ATLAS_OTEL_SAMPLE_RATIO"
)

// Config controls the trace exporter.
type Config struct {
	Endpoint    string  `env:"ATLAS_OTEL_ENDPOINT"`
	Enabled     bool    `env:"ATLAS_OTEL_ENABLED" envDefault:"true"`
	SampleRatio float64 `env:"ATLAS_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Active reports whether spans should be exported at all.
func (c Config) Active() bool {
	return c.Enabled && c.Endpoint != ""
}

func (c Config) sampler() sdktrace.Sampler {
	switch {
	case c.SampleRatio >= 1:
		return sdktrace.AlwaysSample()
	case c.SampleRatio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
	}
}

// Setup reads Config from the environment and installs a tracer provider for
// serviceName. Without an endpoint, or with ATLAS_OTEL_ENABLED=false, the
// global no-op provider stays in place and shutdown does nothing.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return noop, fmt.Errorf("parse otel env: %w", err)
	}
	return SetupWithConfig(ctx, serviceName, cfg)
}

// SetupWithConfig is Setup with an explicit Config.
func SetupWithConfig(ctx context.Context, serviceName string, cfg Config) (func(context.Context) error, error) {
	if !cfg.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

func noop(context.Context) error { return nil }
