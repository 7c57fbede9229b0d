// Package aggregator folds a sorted run of raw samples into one
// min/max/sum/count record per bin. It is not restartable across
// separate ingest calls — combining aggregates produced by different
// calls is the merger package's job.
package aggregator

import (
	"math"

	"github.com/gaby/telemdex/internal/sample"
)

// Aggregate groups samples (sorted by Timestamp ascending) into one
// Aggregate per contiguous run sharing a bin_timestamp = floor(t/d)*d,
// d being the duration in seconds. Empty input yields empty output; a
// single sample yields a single Aggregate with min=max=sum=value,
// count=1.
func Aggregate(samples []sample.Sample, duration int64) []sample.Aggregate {
	if len(samples) == 0 {
		return nil
	}

	var out []sample.Aggregate
	var cur *sample.Aggregate
	for _, s := range samples {
		bin := binOf(s.Timestamp, duration)
		if cur == nil || cur.BinTimestamp != bin {
			out = append(out, sample.Aggregate{
				BinTimestamp: bin,
				Min:          s.Value,
				Max:          s.Value,
				Sum:          s.Value,
				Count:        1,
			})
			cur = &out[len(out)-1]
			continue
		}
		cur.Min = math.Min(cur.Min, s.Value)
		cur.Max = math.Max(cur.Max, s.Value)
		cur.Sum += s.Value
		cur.Count++
	}
	return out
}

func binOf(timestamp float64, duration int64) int64 {
	return int64(math.Floor(timestamp/float64(duration))) * duration
}
