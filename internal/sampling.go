package internal

import (
	"math/rand/v2"
	"sort"
)

// SamplingConfig bounds the heavy per-message analyses
type SamplingConfig struct {
	Threshold int    `toml:"threshold"` // sample only when records exceed this count
	Size      int    `toml:"size"`
	Seed      uint64 `toml:"seed"`
}

// DefaultSampling returns the production sampling parameters
func DefaultSampling() SamplingConfig {
	return SamplingConfig{Threshold: 50000, Size: 20000, Seed: 42}
}

// SampleRecords returns a deterministic subset of records in their original
// order when the input exceeds the threshold; otherwise records unchanged.
func SampleRecords(records []MessageRecord, cfg SamplingConfig) ([]MessageRecord, bool) {
	n := len(records)
	if cfg.Threshold <= 0 || n <= cfg.Threshold || cfg.Size <= 0 || cfg.Size >= n {
		return records, false
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	idx := rng.Perm(n)[:cfg.Size]
	sort.Ints(idx)

	sample := make([]MessageRecord, len(idx))
	for i, j := range idx {
		sample[i] = records[j]
	}
	return sample, true
}
