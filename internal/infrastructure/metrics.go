package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Fetch outcomes recorded on the feed fetch counter
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeEmpty   = "empty"
)

// BusinessMetrics holds the application metric instruments.
// A nil *BusinessMetrics records nothing.
type BusinessMetrics struct {
	FeedFetchesTotal    metric.Int64Counter
	FeedFetchDuration   metric.Float64Histogram
	RowsDroppedTotal    metric.Int64Counter
	IngestionRunsTotal  metric.Int64Counter
	RecordsPublished    metric.Int64Gauge
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	WebSocketClients    metric.Int64UpDownCounter
}

// CreateBusinessMetrics creates all instruments on meter
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	m := &BusinessMetrics{}
	var err error

	if m.FeedFetchesTotal, err = meter.Int64Counter(
		"marketpulse_feed_fetches_total",
		metric.WithDescription("Feed fetch attempts by region, granularity and outcome"),
	); err != nil {
		return nil, fmt.Errorf("feed fetch counter: %w", err)
	}

	if m.FeedFetchDuration, err = meter.Float64Histogram(
		"marketpulse_feed_fetch_duration_seconds",
		metric.WithDescription("Time to fetch and normalize one feed"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("feed fetch histogram: %w", err)
	}

	if m.RowsDroppedTotal, err = meter.Int64Counter(
		"marketpulse_rows_dropped_total",
		metric.WithDescription("Feed rows that could not produce a record"),
	); err != nil {
		return nil, fmt.Errorf("rows dropped counter: %w", err)
	}

	if m.IngestionRunsTotal, err = meter.Int64Counter(
		"marketpulse_ingestion_runs_total",
		metric.WithDescription("Completed ingestion cycles by result"),
	); err != nil {
		return nil, fmt.Errorf("ingestion runs counter: %w", err)
	}

	if m.RecordsPublished, err = meter.Int64Gauge(
		"marketpulse_records_published",
		metric.WithDescription("Records in the current snapshot by granularity"),
	); err != nil {
		return nil, fmt.Errorf("records gauge: %w", err)
	}

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"marketpulse_http_requests_total",
		metric.WithDescription("HTTP requests by method, route and status"),
	); err != nil {
		return nil, fmt.Errorf("http requests counter: %w", err)
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"marketpulse_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("http duration histogram: %w", err)
	}

	if m.WebSocketClients, err = meter.Int64UpDownCounter(
		"marketpulse_websocket_clients",
		metric.WithDescription("Connected WebSocket clients"),
	); err != nil {
		return nil, fmt.Errorf("websocket clients counter: %w", err)
	}

	return m, nil
}

// NoopBusinessMetrics returns instruments that discard every measurement
func NoopBusinessMetrics() *BusinessMetrics {
	m, _ := CreateBusinessMetrics(noop.NewMeterProvider().Meter(InstrumentationName))
	return m
}

// RecordFeedFetch records the outcome of one feed fetch
func (m *BusinessMetrics) RecordFeedFetch(ctx context.Context, region, granularity, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("region", region),
		attribute.String("granularity", granularity),
		attribute.String("outcome", outcome),
	)
	m.FeedFetchesTotal.Add(ctx, 1, attrs)
	m.FeedFetchDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordRowsDropped adds n dropped rows for a feed
func (m *BusinessMetrics) RecordRowsDropped(ctx context.Context, region, granularity string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsDroppedTotal.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("region", region),
		attribute.String("granularity", granularity),
	))
}

// RecordIngestionRun counts a finished cycle
func (m *BusinessMetrics) RecordIngestionRun(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.IngestionRunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordPublished sets the current record counts
func (m *BusinessMetrics) RecordPublished(ctx context.Context, weekly, monthly int) {
	if m == nil {
		return
	}
	m.RecordsPublished.Record(ctx, int64(weekly), metric.WithAttributes(attribute.String("granularity", "weekly")))
	m.RecordsPublished.Record(ctx, int64(monthly), metric.WithAttributes(attribute.String("granularity", "monthly")))
}

// RecordHTTPRequest records one served request
func (m *BusinessMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordWebSocketClients adjusts the connected client count
func (m *BusinessMetrics) RecordWebSocketClients(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.WebSocketClients.Add(ctx, delta)
}
