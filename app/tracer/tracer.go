package tracer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Providers holds the installed global providers and the scrape handler.
type Providers struct {
	MetricsHandler http.Handler
	tp             *trace.TracerProvider
	mp             *metric.MeterProvider
}

// InitTracingAndMetrics installs global tracer and meter providers. Metrics
// are exported in prometheus format through MetricsHandler, to be mounted
// on the main router.
func InitTracingAndMetrics(serviceName string) (*Providers, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	tp := trace.NewTracerProvider(trace.WithResource(res))
	otel.SetTracerProvider(tp)

	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(mp)

	return &Providers{
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		tp:             tp,
		mp:             mp,
	}, nil
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.tp.Shutdown(ctx), p.mp.Shutdown(ctx))
}
