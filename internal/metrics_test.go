package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gathered returns counter and histogram-count values keyed by metric name and first label value
func gathered(t *testing.T, m *Metrics) map[string]float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	out := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			if labels := metric.GetLabel(); len(labels) > 0 {
				key += "/" + labels[0].GetValue()
			}
			switch {
			case metric.GetCounter() != nil:
				out[key] = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				out[key] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestMetrics_ObserveResult(t *testing.T) {
	m := NewMetrics()
	res := &ParseResult{
		Records: CreateTestRecords("A: one", "B: two", "A: three"),
		Format:  &ResolvedFormat{Grammar: GrammarIOS12h},
		Stats: ParseStats{
			TotalLines: 6, SkippedLines: 1, SystemMessages: 1, DroppedRecords: 1,
			TimestampParses: 2, CacheHits: 1,
		},
	}
	m.ObserveResult(res, 20*time.Millisecond)

	got := gathered(t, m)
	assert.Equal(t, 1.0, got["chatsession_files_parsed_total/ios_12h"])
	assert.Equal(t, 6.0, got["chatsession_lines_total"])
	assert.Equal(t, 1.0, got["chatsession_skipped_lines_total"])
	assert.Equal(t, 1.0, got["chatsession_system_messages_total"])
	assert.Equal(t, 1.0, got["chatsession_dropped_records_total"])
	assert.Equal(t, 3.0, got["chatsession_records_total"])
	assert.Equal(t, 2.0, got["chatsession_timestamp_parses_total"])
	assert.Equal(t, 1.0, got["chatsession_timestamp_cache_hits_total"])
	assert.Equal(t, 1.0, got["chatsession_parse_duration_seconds"])
}

func TestMetrics_ObserveFailure(t *testing.T) {
	m := NewMetrics()
	m.ObserveFailure(&DecodeError{Err: errors.New("x")})
	m.ObserveFailure(&ParseError{Source: "a.txt", Stage: "resolve", Err: &UnrecognizedFormatError{}})
	m.ObserveFailure(&UnrecognizedFormatError{})
	m.ObserveFailure(os.ErrNotExist)
	m.ObserveFailure(nil)

	got := gathered(t, m)
	assert.Equal(t, 1.0, got["chatsession_parse_failures_total/decode"])
	assert.Equal(t, 2.0, got["chatsession_parse_failures_total/format"])
	assert.Equal(t, 1.0, got["chatsession_parse_failures_total/io"])
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveResult(&ParseResult{}, time.Second)
	m.ObserveFailure(errors.New("ignored"))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ObserveFailure(errors.New("io"))
	path := filepath.Join(t.TempDir(), "chat.prom")

	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `chatsession_parse_failures_total{kind="io"} 1`)
}

func TestFailureKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&DecodeError{}, "decode"},
		{&UnrecognizedFormatError{}, "format"},
		{&TimestampParseError{Err: errors.New("bad")}, "timestamp"},
		{&ParseError{Err: &DecodeError{}}, "decode"},
		{errors.New("disk"), "io"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FailureKind(tt.err), "%v", tt.err)
	}
}
