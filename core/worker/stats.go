package worker

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DurationStats aggregates per-record worker durations for the batch summary,
// in milliseconds.
type DurationStats struct {
	MeanMs float64
	P50Ms  float64
	P95Ms  float64
}

// Summarize computes duration statistics over a batch. An empty input yields
// zero stats.
func Summarize(durationsMs []float64) DurationStats {
	if len(durationsMs) == 0 {
		return DurationStats{}
	}
	sorted := make([]float64, len(durationsMs))
	copy(sorted, durationsMs)
	sort.Float64s(sorted)
	return DurationStats{
		MeanMs: stat.Mean(sorted, nil),
		P50Ms:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95Ms:  stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
}
