package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the assistant's metric instruments.
type AppMetrics struct {
	MessagesTotal         metric.Int64Counter
	FallbacksTotal        metric.Int64Counter
	NearbyLookupsTotal    metric.Int64Counter
	NearbyLookupDuration  metric.Float64Histogram
	NearbyResultsCount    metric.Int64Histogram
	UpstreamRequestErrors metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments once, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TravelAssistant")
		var err error
		m := &AppMetrics{}

		m.MessagesTotal, err = meter.Int64Counter(
			"assistant_messages_total",
			metric.WithDescription("Total number of chat messages handled"),
			metric.WithUnit("{message}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create assistant_messages_total: %v", err)
		}

		m.FallbacksTotal, err = meter.Int64Counter(
			"assistant_fallbacks_total",
			metric.WithDescription("Total number of replies replaced by the localized fallback"),
			metric.WithUnit("{message}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create assistant_fallbacks_total: %v", err)
		}

		m.NearbyLookupsTotal, err = meter.Int64Counter(
			"nearby_lookups_total",
			metric.WithDescription("Total number of nearby place lookups"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create nearby_lookups_total: %v", err)
		}

		m.NearbyLookupDuration, err = meter.Float64Histogram(
			"nearby_lookup_duration_seconds",
			metric.WithDescription("Duration of geodata lookups in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create nearby_lookup_duration_seconds: %v", err)
		}

		m.NearbyResultsCount, err = meter.Int64Histogram(
			"nearby_results_count",
			metric.WithDescription("Number of places returned per lookup"),
			metric.WithUnit("{place}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create nearby_results_count: %v", err)
		}

		m.UpstreamRequestErrors, err = meter.Int64Counter(
			"upstream_request_errors_total",
			metric.WithDescription("Total number of failed calls to external services"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_request_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing it against the current
// MeterProvider (a no-op provider when none was configured) on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
