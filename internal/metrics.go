package internal

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts pipeline activity on a private registry
type Metrics struct {
	registry *prometheus.Registry

	FilesParsed        *prometheus.CounterVec
	ParseFailures      *prometheus.CounterVec
	Lines              prometheus.Counter
	SkippedLines       prometheus.Counter
	SystemMessages     prometheus.Counter
	DroppedRecords     prometheus.Counter
	Records            prometheus.Counter
	TimestampParses    prometheus.Counter
	TimestampCacheHits prometheus.Counter
	ParseDuration      prometheus.Histogram
}

// NewMetrics registers the pipeline collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{Name: "chatsession_" + name, Help: help})
	}

	return &Metrics{
		registry: reg,
		FilesParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatsession_files_parsed_total",
			Help: "Files parsed successfully, by resolved grammar",
		}, []string{"grammar"}),
		ParseFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatsession_parse_failures_total",
			Help: "Files that failed to parse, by failure kind",
		}, []string{"kind"}),
		Lines:              counter("lines_total", "Physical lines read"),
		SkippedLines:       counter("skipped_lines_total", "Noise lines outside any message"),
		SystemMessages:     counter("system_messages_total", "Service messages excluded from the stream"),
		DroppedRecords:     counter("dropped_records_total", "Records dropped for unparseable timestamps"),
		Records:            counter("records_total", "Message records produced"),
		TimestampParses:    counter("timestamp_parses_total", "Full timestamp parses (cache misses)"),
		TimestampCacheHits: counter("timestamp_cache_hits_total", "Timestamps served from the per-run cache"),
		ParseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chatsession_parse_duration_seconds",
			Help:    "Wall time of a single file parse",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}

// Registry exposes the collectors for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveResult records a successful parse
func (m *Metrics) ObserveResult(res *ParseResult, elapsed time.Duration) {
	if m == nil || res == nil {
		return
	}
	m.FilesParsed.WithLabelValues(string(res.Format.Grammar)).Inc()
	m.Lines.Add(float64(res.Stats.TotalLines))
	m.SkippedLines.Add(float64(res.Stats.SkippedLines))
	m.SystemMessages.Add(float64(res.Stats.SystemMessages))
	m.DroppedRecords.Add(float64(res.Stats.DroppedRecords))
	m.Records.Add(float64(len(res.Records)))
	m.TimestampParses.Add(float64(res.Stats.TimestampParses))
	m.TimestampCacheHits.Add(float64(res.Stats.CacheHits))
	m.ParseDuration.Observe(elapsed.Seconds())
}

// ObserveFailure records a file-level failure under its kind
func (m *Metrics) ObserveFailure(err error) {
	if m == nil || err == nil {
		return
	}
	m.ParseFailures.WithLabelValues(FailureKind(err)).Inc()
}

// WriteTextfile writes the current values in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// FailureKind classifies a pipeline error for reporting
func FailureKind(err error) string {
	var decodeErr *DecodeError
	var formatErr *UnrecognizedFormatError
	var tsErr *TimestampParseError
	switch {
	case errors.As(err, &decodeErr):
		return "decode"
	case errors.As(err, &formatErr):
		return "format"
	case errors.As(err, &tsErr):
		return "timestamp"
	default:
		return "io"
	}
}
