// Package merger combines two time-sorted aggregate sequences by
// coincident bin timestamp — the mechanism that keeps repeated partial
// ingests of the same bin correct.
package merger

import "github.com/gaby/telemdex/internal/sample"

// Merge combines a and b, each sorted strictly ascending by
// BinTimestamp with no duplicates internally, into one sequence sorted
// ascending by BinTimestamp. A bin present in only one input is
// emitted unchanged; a bin present in both is combined via
// sample.Aggregate.Combine. Runs in O(len(a)+len(b)).
func Merge(a, b []sample.Aggregate) []sample.Aggregate {
	out := make([]sample.Aggregate, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].BinTimestamp < b[j].BinTimestamp:
			out = append(out, a[i])
			i++
		case a[i].BinTimestamp > b[j].BinTimestamp:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i].Combine(b[j]))
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
