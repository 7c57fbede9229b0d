package aggregator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gaby/telemdex/internal/sample"
)

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil, 10); got != nil {
		t.Fatalf("Aggregate(nil) = %v, want nil", got)
	}
}

func TestAggregateSingleSample(t *testing.T) {
	got := Aggregate([]sample.Sample{{Timestamp: 105, Value: 7}}, 10)
	want := []sample.Aggregate{{BinTimestamp: 100, Min: 7, Max: 7, Sum: 7, Count: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Aggregate() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateBinsByFloorDuration(t *testing.T) {
	samples := []sample.Sample{
		{Timestamp: 100, Value: 1},
		{Timestamp: 105, Value: 3},
		{Timestamp: 109, Value: 2},
		{Timestamp: 110, Value: 10},
	}
	got := Aggregate(samples, 10)
	want := []sample.Aggregate{
		{BinTimestamp: 100, Min: 1, Max: 3, Sum: 6, Count: 3},
		{BinTimestamp: 110, Min: 10, Max: 10, Sum: 10, Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Aggregate() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateMeanDerivedFromSumCount(t *testing.T) {
	got := Aggregate([]sample.Sample{
		{Timestamp: 0, Value: 2},
		{Timestamp: 1, Value: 4},
	}, 10)
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if mean := got[0].Mean(); mean != 3 {
		t.Fatalf("Mean() = %g, want 3", mean)
	}
}
