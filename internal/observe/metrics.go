// Package observe holds the OpenTelemetry instruments for builds, questions
// and HTTP requests. Metrics are exported for Prometheus scraping through
// InitProvider; tests build a Metrics over their own MeterProvider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/hyperjump/kiku"

// Pipeline stages used as the "stage" attribute on Errors.
const (
	StageTranscript = "transcript"
	StageTranslate  = "translate"
	StageIndex      = "index"
	StageRetrieve   = "retrieve"
	StageAnswer     = "answer"
)

// Metrics holds the application's instruments. Safe for concurrent use.
type Metrics struct {
	// Builds counts index builds. Attributes: status, reused.
	Builds metric.Int64Counter
	// Questions counts answered questions. Attribute: status.
	Questions metric.Int64Counter
	// Translations counts transcripts sent through the translator. Attribute: lang.
	Translations metric.Int64Counter
	// Errors counts failures. Attribute: stage.
	Errors metric.Int64Counter

	BuildDuration       metric.Float64Histogram
	AskDuration         metric.Float64Histogram
	HTTPRequestDuration metric.Float64Histogram

	// ActiveSessions tracks videos with a loaded index.
	ActiveSessions metric.Int64UpDownCounter
}

// Builds embed whole transcripts, so buckets reach further than a request would.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics creates all instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Builds, err = m.Int64Counter("kiku.index.builds",
		metric.WithDescription("Index builds by status and whether an existing index was reused."),
	); err != nil {
		return nil, err
	}
	if met.Questions, err = m.Int64Counter("kiku.questions",
		metric.WithDescription("Questions asked by status."),
	); err != nil {
		return nil, err
	}
	if met.Translations, err = m.Int64Counter("kiku.translations",
		metric.WithDescription("Transcripts translated by source language."),
	); err != nil {
		return nil, err
	}
	if met.Errors, err = m.Int64Counter("kiku.errors",
		metric.WithDescription("Failures by pipeline stage."),
	); err != nil {
		return nil, err
	}

	if met.BuildDuration, err = m.Float64Histogram("kiku.index.build.duration",
		metric.WithDescription("Latency of fetching, translating and indexing a transcript."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AskDuration, err = m.Float64Histogram("kiku.ask.duration",
		metric.WithDescription("Latency of retrieving context and generating an answer."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("kiku.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if met.ActiveSessions, err = m.Int64UpDownCounter("kiku.active_sessions",
		metric.WithDescription("Videos with a loaded index."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level instance built on the global
// MeterProvider. Panics if instrument creation fails.
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

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordBuild records one build and its latency.
func (m *Metrics) RecordBuild(ctx context.Context, d time.Duration, reused bool, err error) {
	attrs := metric.WithAttributes(
		attribute.String("status", status(err)),
		attribute.Bool("reused", reused),
	)
	m.Builds.Add(ctx, 1, attrs)
	m.BuildDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordAsk records one question and its latency.
func (m *Metrics) RecordAsk(ctx context.Context, d time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("status", status(err)))
	m.Questions.Add(ctx, 1, attrs)
	m.AskDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordTranslation counts one translated transcript.
func (m *Metrics) RecordTranslation(ctx context.Context, lang string) {
	m.Translations.Add(ctx, 1, metric.WithAttributes(attribute.String("lang", lang)))
}

// RecordError counts a failure in stage.
func (m *Metrics) RecordError(ctx context.Context, stage string) {
	m.Errors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}
