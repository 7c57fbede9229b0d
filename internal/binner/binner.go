// Package binner segments an already-sorted sequence of records into
// contiguous runs that share a truncated "group timestamp". It never
// combines values — that's the Aggregator's and AggregateMerger's job.
package binner

import "github.com/gaby/telemdex/internal/sample"

// SampleGroup is a contiguous run of raw samples that truncate to the
// same group timestamp.
type SampleGroup struct {
	GroupTimestamp int64
	Samples        []sample.Sample
}

// Samples bins a timestamp-sorted sequence of raw samples into groups
// of the given duration (seconds). Empty input yields no groups.
func Samples(samples []sample.Sample, duration int64) []SampleGroup {
	var groups []SampleGroup
	var cur *SampleGroup
	for _, s := range samples {
		gt := truncate(int64(s.Timestamp), duration)
		if cur == nil || cur.GroupTimestamp != gt {
			groups = append(groups, SampleGroup{GroupTimestamp: gt})
			cur = &groups[len(groups)-1]
		}
		cur.Samples = append(cur.Samples, s)
	}
	return groups
}

// AggregateGroup is a contiguous run of aggregates that truncate to
// the same group timestamp.
type AggregateGroup struct {
	GroupTimestamp int64
	Aggregates     []sample.Aggregate
}

// Aggregates bins a bin_timestamp-sorted sequence of aggregates into
// groups of the given duration (seconds). Empty input yields no
// groups.
func Aggregates(aggs []sample.Aggregate, duration int64) []AggregateGroup {
	var groups []AggregateGroup
	var cur *AggregateGroup
	for _, a := range aggs {
		gt := truncate(a.BinTimestamp, duration)
		if cur == nil || cur.GroupTimestamp != gt {
			groups = append(groups, AggregateGroup{GroupTimestamp: gt})
			cur = &groups[len(groups)-1]
		}
		cur.Aggregates = append(cur.Aggregates, a)
	}
	return groups
}

func truncate(t, duration int64) int64 {
	return (t / duration) * duration
}
