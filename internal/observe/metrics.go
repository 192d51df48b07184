// Package observe provides application-wide observability primitives for
// yaudiocord: OpenTelemetry metrics plus the Prometheus exporter bridge
// that serves them on /metrics.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A package-level
// default [Metrics] instance ([DefaultMetrics]) is provided for convenience;
// tests should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all yaudiocord metrics.
const meterName = "github.com/yaudiocord/yaudiocord"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ResolveDuration tracks track-resolution latency. Use with attribute:
	//   attribute.String("status", "ok"|"error")
	ResolveDuration metric.Float64Histogram

	// TracksEnqueued counts tracks added to guild queues. Use with attribute:
	//   attribute.String("guild", ...)
	TracksEnqueued metric.Int64Counter

	// TracksPlayed counts completed playback attempts. Use with attributes:
	//   attribute.String("guild", ...), attribute.String("outcome", ...)
	TracksPlayed metric.Int64Counter

	// TracksDropped counts tracks discarded without playing. Use with attributes:
	//   attribute.String("guild", ...), attribute.String("reason", ...)
	TracksDropped metric.Int64Counter

	// WorkerStarts counts playback-worker launches by guild.
	WorkerStarts metric.Int64Counter

	// ActiveWorkers tracks the number of playback workers currently running.
	ActiveWorkers metric.Int64UpDownCounter

	// QueueDepth tracks the number of queued tracks across all guilds.
	QueueDepth metric.Int64UpDownCounter
}

// resolveBuckets defines histogram bucket boundaries (in seconds) sized for
// external extraction-service latencies.
var resolveBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ResolveDuration, err = m.Float64Histogram("yaudiocord.resolve.duration",
		metric.WithDescription("Latency of track resolution."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(resolveBuckets...),
	); err != nil {
		return nil, err
	}

	if met.TracksEnqueued, err = m.Int64Counter("yaudiocord.tracks.enqueued",
		metric.WithDescription("Total tracks added to guild queues."),
	); err != nil {
		return nil, err
	}
	if met.TracksPlayed, err = m.Int64Counter("yaudiocord.tracks.played",
		metric.WithDescription("Total playback attempts by guild and outcome."),
	); err != nil {
		return nil, err
	}
	if met.TracksDropped, err = m.Int64Counter("yaudiocord.tracks.dropped",
		metric.WithDescription("Total tracks dropped without playing, by guild and reason."),
	); err != nil {
		return nil, err
	}
	if met.WorkerStarts, err = m.Int64Counter("yaudiocord.worker.starts",
		metric.WithDescription("Total playback-worker launches by guild."),
	); err != nil {
		return nil, err
	}

	if met.ActiveWorkers, err = m.Int64UpDownCounter("yaudiocord.active_workers",
		metric.WithDescription("Number of playback workers currently running."),
	); err != nil {
		return nil, err
	}
	if met.QueueDepth, err = m.Int64UpDownCounter("yaudiocord.queue_depth",
		metric.WithDescription("Number of queued tracks across all guilds."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordDrop records a dropped track with the standard attribute set.
func (m *Metrics) RecordDrop(ctx context.Context, guildID, reason string) {
	m.TracksDropped.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("guild", guildID),
			attribute.String("reason", reason),
		),
	)
}

// RecordPlayed records a finished playback attempt with the standard
// attribute set.
func (m *Metrics) RecordPlayed(ctx context.Context, guildID, outcome string) {
	m.TracksPlayed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("guild", guildID),
			attribute.String("outcome", outcome),
		),
	)
}
