// Package sample holds the value records the index stores: raw
// samples and the aggregates they fold into.
package sample

import "fmt"

// Sample is one raw measurement: a wall-clock timestamp (seconds since
// the Unix epoch, as a float so sub-second cadences are representable)
// and a value. Immutable once constructed.
type Sample struct {
	Timestamp float64
	Value     float64
}

// Aggregate summarizes every raw sample that fell into one bin:
// [BinTimestamp, BinTimestamp+duration). Mean is derived, not stored —
// Sum and Count are what's kept on disk so repeated merges stay exact.
type Aggregate struct {
	BinTimestamp int64
	Min          float64
	Max          float64
	Sum          float64
	Count        int
}

// Mean returns Sum/Count. Count is always >= 1 for a valid Aggregate.
func (a Aggregate) Mean() float64 {
	return a.Sum / float64(a.Count)
}

// Combine folds two aggregates for the *same* BinTimestamp into one:
// min of mins, max of maxes, sum of sums, count of counts. Combining
// aggregates with different BinTimestamps is a programmer error.
func (a Aggregate) Combine(o Aggregate) Aggregate {
	if a.BinTimestamp != o.BinTimestamp {
		panic(fmt.Sprintf("sample: Combine on mismatched bins %d != %d", a.BinTimestamp, o.BinTimestamp))
	}
	return Aggregate{
		BinTimestamp: a.BinTimestamp,
		Min:          min(a.Min, o.Min),
		Max:          max(a.Max, o.Max),
		Sum:          a.Sum + o.Sum,
		Count:        a.Count + o.Count,
	}
}

// Kind tags a Record as holding a raw Sample or a rolled-up Aggregate.
type Kind int

const (
	KindFull Kind = iota
	KindAggregate
)

// Record is the tagged variant returned by queries: FULL-fidelity
// queries yield Records built with NewFull, every other tier yields
// Records built with NewAggregate. The two shapes have disjoint
// fields, so this is a tagged union rather than an embedded/ shared
// struct — callers must check Kind before reading the payload.
type Record struct {
	kind Kind
	full Sample
	agg  Aggregate
}

// NewFull builds a full-fidelity Record.
func NewFull(s Sample) Record { return Record{kind: KindFull, full: s} }

// NewAggregate builds an aggregate-fidelity Record.
func NewAggregate(a Aggregate) Record { return Record{kind: KindAggregate, agg: a} }

// Kind reports which constructor built this Record.
func (r Record) Kind() Kind { return r.kind }

// Full returns the underlying Sample. Only valid if Kind() == KindFull.
func (r Record) Full() Sample { return r.full }

// Aggregate returns the underlying Aggregate. Only valid if
// Kind() == KindAggregate.
func (r Record) Aggregate() Aggregate { return r.agg }
