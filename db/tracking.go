package db

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cheesedrawer/dbmodel/logger"
)

const (
	// DefaultSlowQueryThreshold defines the default threshold for slow query detection
	DefaultSlowQueryThreshold = 200 * time.Millisecond
	// DefaultMaxQueryLength defines the default maximum query length for logging
	DefaultMaxQueryLength = 1000

	meterName = "github.com/cheesedrawer/dbmodel/db"
)

// TrackingSettings controls how query executions are logged and measured.
type TrackingSettings struct {
	SlowQueryThreshold time.Duration
	MaxQueryLength     int
	LogQueryParameters bool
}

// NewTrackingSettings returns settings with defaults applied to non-positive values.
func NewTrackingSettings(slowThreshold time.Duration, maxQueryLength int, logParams bool) TrackingSettings {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowQueryThreshold
	}
	if maxQueryLength <= 0 {
		maxQueryLength = DefaultMaxQueryLength
	}
	return TrackingSettings{
		SlowQueryThreshold: slowThreshold,
		MaxQueryLength:     maxQueryLength,
		LogQueryParameters: logParams,
	}
}

// Tracker records per-operation metrics and logs slow or failed queries.
// Both client implementations route Execute and ExecuteAndReturn through one
// Tracker instance.
type Tracker struct {
	log      logger.Logger
	settings TrackingSettings

	operations metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewTracker creates a Tracker using the globally registered otel meter
// provider. Metric instrument creation failures are tolerated: tracking then
// degrades to logging only.
func NewTracker(log logger.Logger, settings TrackingSettings) *Tracker {
	meter := otel.Meter(meterName)

	operations, err := meter.Int64Counter(
		"db.client.operations",
		metric.WithDescription("Number of executed database operations"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create operation counter")
	}

	duration, err := meter.Float64Histogram(
		"db.client.operation.duration",
		metric.WithDescription("Database operation duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create operation duration histogram")
	}

	return &Tracker{
		log:        log,
		settings:   settings,
		operations: operations,
		duration:   duration,
	}
}

// Track records one finished operation. op is "EXECUTE" or "QUERY", query the
// SQL text, args the bound parameters, start the time the operation began.
func (t *Tracker) Track(ctx context.Context, op, query string, args []any, start time.Time, err error) {
	elapsed := time.Since(start)

	attrs := metric.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", op),
		attribute.Bool("error", err != nil),
	)
	if t.operations != nil {
		t.operations.Add(ctx, 1, attrs)
	}
	if t.duration != nil {
		t.duration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
	}

	switch {
	case err != nil:
		t.event(t.log.Error(), op, query, args).Err(err).Dur("elapsed", elapsed).Msg("Database operation failed")
	case elapsed >= t.settings.SlowQueryThreshold:
		t.event(t.log.Warn(), op, query, args).Dur("elapsed", elapsed).Msg("Slow database operation")
	default:
		t.event(t.log.Debug(), op, query, args).Dur("elapsed", elapsed).Msg("Database operation")
	}
}

func (t *Tracker) event(e logger.LogEvent, op, query string, args []any) logger.LogEvent {
	e = e.Str("operation", op).Str("query", t.truncate(query))
	if t.settings.LogQueryParameters && len(args) > 0 {
		e = e.Interface("parameters", args)
	}
	return e
}

func (t *Tracker) truncate(query string) string {
	if len(query) <= t.settings.MaxQueryLength {
		return query
	}
	return query[:t.settings.MaxQueryLength] + "..."
}
