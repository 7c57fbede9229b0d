// Package fidelity defines the seven pre-computed aggregation tiers the
// index stores data at, and the policy for picking one given a query
// window.
package fidelity

import "fmt"

// Tier identifies one of the seven on-disk fidelity levels.
type Tier int

const (
	FULL Tier = iota
	F1
	F10
	F100
	F1000
	F10000
	F100000
)

// All lists every tier in ascending aggregation-period order, FULL first.
var All = []Tier{FULL, F1, F10, F100, F1000, F10000, F100000}

// Group is the target number of records held by a single file at any
// tier; every file_span below is chosen so one file holds roughly this
// many records.
const Group = 5000

// AggPeriod returns the aggregation bin duration in seconds for t, or 0
// for FULL (which stores raw samples, not bins).
func (t Tier) AggPeriod() int64 {
	switch t {
	case FULL:
		return 0
	case F1:
		return 1
	case F10:
		return 10
	case F100:
		return 100
	case F1000:
		return 1000
	case F10000:
		return 10000
	case F100000:
		return 100000
	default:
		panic(fmt.Sprintf("fidelity: invalid tier %d", t))
	}
}

// FileSpan returns how many wall-clock seconds one on-disk file covers
// at this tier. FULL is tuned for 10Hz input (Group/10); every other
// tier holds Group aggregate records per file.
func (t Tier) FileSpan() int64 {
	if t == FULL {
		return Group / 10
	}
	return Group * t.AggPeriod()
}

// Dir is the directory segment used under BASE/data for this tier
// (e.g. "full", "1", "10000").
func (t Tier) Dir() string {
	switch t {
	case FULL:
		return "full"
	case F1:
		return "1"
	case F10:
		return "10"
	case F100:
		return "100"
	case F1000:
		return "1000"
	case F10000:
		return "10000"
	case F100000:
		return "100000"
	default:
		panic(fmt.Sprintf("fidelity: invalid tier %d", t))
	}
}

func (t Tier) String() string { return t.Dir() }

// Select picks the finest tier that still keeps the returned sample
// count below Group for a window of the given duration: the smallest
// aggregate tier T such that duration < Group*AggPeriod(T). FULL is
// returned for durations below FileSpan(FULL) (500 seconds), and
// F100000 for anything at or above the F10000 limit.
func Select(durationSeconds float64) Tier {
	thresholds := []struct {
		tier  Tier
		limit float64
	}{
		{FULL, 500},
		{F1, 5000},
		{F10, 50000},
		{F100, 500000},
		{F1000, 5000000},
		{F10000, 50000000},
	}
	for _, th := range thresholds {
		if durationSeconds < th.limit {
			return th.tier
		}
	}
	return F100000
}
