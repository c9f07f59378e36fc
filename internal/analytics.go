package internal

import (
	"math"
	"sort"
)

// MaxResponseMinutes is the upper bound of a reply delay; longer gaps are silences, not responses
const MaxResponseMinutes = 1440.0

// SortChronological returns a copy of records stably sorted by instant.
// Records with equal instants keep their file order.
func SortChronological(records []MessageRecord) []MessageRecord {
	sorted := make([]MessageRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// ResponseTimes holds accepted samples plus the slow replies excluded by the bound
type ResponseTimes struct {
	Samples map[string][]float64 `json:"samples"`
	Delayed map[string]int       `json:"delayed"`
}

// ComputeResponseTimes pairs adjacent messages of the chronologically sorted stream.
// A sample is kept for the later sender only when senders differ and 0 < delta <= 1440 minutes.
func ComputeResponseTimes(records []MessageRecord) *ResponseTimes {
	rt := &ResponseTimes{
		Samples: make(map[string][]float64),
		Delayed: make(map[string]int),
	}
	sorted := SortChronological(records)
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Sender == prev.Sender {
			continue
		}
		delta := cur.Timestamp.Sub(prev.Timestamp).Minutes()
		switch {
		case delta <= 0:
			continue
		case delta > MaxResponseMinutes:
			rt.Delayed[cur.Sender]++
		default:
			rt.Samples[cur.Sender] = append(rt.Samples[cur.Sender], delta)
		}
	}
	return rt
}

// AnalyzeResponseTimes returns each user's reply delays in minutes
func AnalyzeResponseTimes(records []MessageRecord) map[string][]float64 {
	return ComputeResponseTimes(records).Samples
}

// ResponseTimeSamples flattens the accepted samples in sorted-stream order
func ResponseTimeSamples(records []MessageRecord) []ResponseTimeSample {
	sorted := SortChronological(records)
	var out []ResponseTimeSample
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Sender == prev.Sender {
			continue
		}
		delta := cur.Timestamp.Sub(prev.Timestamp).Minutes()
		if delta > 0 && delta <= MaxResponseMinutes {
			out = append(out, ResponseTimeSample{Sender: cur.Sender, Minutes: delta})
		}
	}
	return out
}

// ResponseTimeSummary describes one user's reply delays
type ResponseTimeSummary struct {
	Count   int     `json:"count" yaml:"count"`
	Mean    float64 `json:"mean_minutes" yaml:"mean_minutes"`
	Median  float64 `json:"median_minutes" yaml:"median_minutes"`
	Min     float64 `json:"min_minutes" yaml:"min_minutes"`
	Max     float64 `json:"max_minutes" yaml:"max_minutes"`
	Delayed int     `json:"delayed_replies" yaml:"delayed_replies"`
}

// SummarizeResponseTimes computes count, mean, median, min and max
func SummarizeResponseTimes(samples []float64) ResponseTimeSummary {
	if len(samples) == 0 {
		return ResponseTimeSummary{}
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return ResponseTimeSummary{
		Count:  n,
		Mean:   round2(sum / float64(n)),
		Median: round2(median),
		Min:    round2(sorted[0]),
		Max:    round2(sorted[n-1]),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
