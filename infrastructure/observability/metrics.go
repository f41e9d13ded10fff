package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"tipster/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var counterDescriptions = map[string]string{
	PredictionsSubmittedTotal:  "Predictions submitted for validation",
	PredictionTransitionsTotal: "Prediction lifecycle transitions by type",
	SweepPromotedTotal:         "Active predictions promoted to waiting_result by the sweep",
	SweepFailuresTotal:         "Sweep runs that returned an error",
	HTTPRequestsTotal:          "HTTP requests served",
	NATSMessagesReceivedTotal:  "Events consumed from NATS",
	NATSMessagesPublishedTotal: "Events published to NATS",
	DatabaseQueriesTotal:       "Repository queries executed",
}

var histogramBuckets = map[string][]float64{
	HTTPRequestDuration:   {0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	DatabaseQueryDuration: {0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
}

// MetricsProvider owns the OpenTelemetry meter provider and the service instruments.
// A nil or disabled provider accepts every call and records nothing.
type MetricsProvider struct {
	config *config.Config

	mu            sync.RWMutex
	meterProvider *sdkmetric.MeterProvider
	counters      map[string]metric.Int64Counter
	histograms    map[string]metric.Float64Histogram
}

// NewMetricsProvider creates a provider for the given configuration
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{config: cfg}
}

// newExporter builds the configured exporter; nil means metrics are not exported
func newExporter(ctx context.Context, cfg *config.Config) (sdkmetric.Exporter, error) {
	switch cfg.OTelExporterType {
	case "console":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		return exporter, nil
	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		exporter, err := otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(cfg.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter for %s: %w", cfg.OTelOTLPEndpoint, err)
		}
		return exporter, nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown exporter type %q", cfg.OTelExporterType)
}

// Initialize starts exporting metrics when OpenTelemetry is enabled
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		return nil
	}

	exporter, err := newExporter(ctx, mp.config)
	if err != nil {
		return err
	}
	if exporter == nil {
		log.Info("OpenTelemetry enabled without an exporter, metrics are dropped")
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to build metrics resource: %w", err)
	}

	interval := time.Duration(mp.config.OTelExportIntervalMillis) * time.Millisecond
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(provider)

	if err := mp.install(provider); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"exporter": mp.config.OTelExporterType,
		"interval": interval,
	}).Info("Metrics exporter started")
	return nil
}

// InitializeWithReader records into a caller supplied reader
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	return mp.install(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
}

func (mp *MetricsProvider) install(provider *sdkmetric.MeterProvider) error {
	meter := provider.Meter(MetricPrefix)

	counters := make(map[string]metric.Int64Counter, len(counterDescriptions))
	for name, description := range counterDescriptions {
		c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit("1"))
		if err != nil {
			return fmt.Errorf("failed to create counter %s: %w", name, err)
		}
		counters[name] = c
	}

	histograms := make(map[string]metric.Float64Histogram, len(histogramBuckets))
	for name, buckets := range histogramBuckets {
		h, err := meter.Float64Histogram(name, metric.WithUnit("s"), metric.WithExplicitBucketBoundaries(buckets...))
		if err != nil {
			return fmt.Errorf("failed to create histogram %s: %w", name, err)
		}
		histograms[name] = h
	}

	mp.mu.Lock()
	mp.meterProvider = provider
	mp.counters = counters
	mp.histograms = histograms
	mp.mu.Unlock()
	return nil
}

// Shutdown flushes pending metrics and stops the exporter
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	provider := mp.meterProvider
	mp.meterProvider, mp.counters, mp.histograms = nil, nil, nil
	mp.mu.Unlock()

	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

func (mp *MetricsProvider) add(name string, n int64, attrs ...attribute.KeyValue) {
	if mp == nil {
		return
	}
	mp.mu.RLock()
	c, ok := mp.counters[name]
	mp.mu.RUnlock()
	if ok {
		c.Add(context.Background(), n, metric.WithAttributes(attrs...))
	}
}

func (mp *MetricsProvider) observe(name string, d time.Duration, attrs ...attribute.KeyValue) {
	if mp == nil {
		return
	}
	mp.mu.RLock()
	h, ok := mp.histograms[name]
	mp.mu.RUnlock()
	if ok {
		h.Record(context.Background(), d.Seconds(), metric.WithAttributes(attrs...))
	}
}

// RecordPredictionSubmitted counts a submission for a sport
func (mp *MetricsProvider) RecordPredictionSubmitted(sport string) {
	mp.add(PredictionsSubmittedTotal, 1, attribute.String(LabelType, sport))
}

// RecordTransition counts a lifecycle transition (see the Transition constants)
func (mp *MetricsProvider) RecordTransition(transition string) {
	mp.add(PredictionTransitionsTotal, 1, attribute.String(LabelType, transition))
}

// RecordTransitions counts n transitions of the same type
func (mp *MetricsProvider) RecordTransitions(transition string, n int) {
	if n > 0 {
		mp.add(PredictionTransitionsTotal, int64(n), attribute.String(LabelType, transition))
	}
}

// RecordSweep counts the predictions promoted by one sweep run
func (mp *MetricsProvider) RecordSweep(promoted int) {
	mp.add(SweepPromotedTotal, int64(promoted))
}

// RecordSweepFailure counts a sweep run that returned an error
func (mp *MetricsProvider) RecordSweepFailure() {
	mp.add(SweepFailuresTotal, 1)
}

// RecordHTTPRequest counts a request by route pattern and status, with its latency
func (mp *MetricsProvider) RecordHTTPRequest(route string, status int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String(LabelRoute, route),
		attribute.String(LabelStatus, strconv.Itoa(status)),
	}
	mp.add(HTTPRequestsTotal, 1, attrs...)
	mp.observe(HTTPRequestDuration, duration, attrs...)
}

func (mp *MetricsProvider) RecordNATSMessageReceived(eventType string) {
	mp.add(NATSMessagesReceivedTotal, 1, attribute.String(LabelEventType, eventType))
}

func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	mp.add(NATSMessagesPublishedTotal, 1, attribute.String(LabelEventType, eventType))
}

// RecordDatabaseQuery counts a repository query with its latency
func (mp *MetricsProvider) RecordDatabaseQuery(repository, method string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String(LabelRepository, repository),
		attribute.String(LabelMethod, method),
	}
	mp.add(DatabaseQueriesTotal, 1, attrs...)
	mp.observe(DatabaseQueryDuration, duration, attrs...)
}

// MeasureDatabaseQuery starts timing a query; call the returned func when it completes:
//
//	defer observability.GetMetrics().MeasureDatabaseQuery("prediction", "List")()
func (mp *MetricsProvider) MeasureDatabaseQuery(repository, method string) func() {
	start := time.Now()
	return func() {
		mp.RecordDatabaseQuery(repository, method, time.Since(start))
	}
}

var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics sets up the process-wide provider once
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the process-wide provider, nil until initialized
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics flushes the process-wide provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics == nil {
		return nil
	}
	return globalMetrics.Shutdown(ctx)
}
