package fidelity

import "testing"

func TestSelectThresholds(t *testing.T) {
	cases := []struct {
		duration float64
		want     Tier
	}{
		{0, FULL},
		{499, FULL},
		{500, F1},
		{4999, F1},
		{5000, F10},
		{49999, F10},
		{50000, F100},
		{499999, F100},
		{500000, F1000},
		{4999999, F1000},
		{5000000, F10000},
		{49999999, F10000},
		{50000000, F100000},
		{1e12, F100000},
	}
	for _, c := range cases {
		if got := Select(c.duration); got != c.want {
			t.Errorf("Select(%g) = %s, want %s", c.duration, got, c.want)
		}
	}
}

func TestFileSpanHoldsGroupRecords(t *testing.T) {
	for _, tier := range All {
		if tier == FULL {
			if tier.FileSpan() != Group/10 {
				t.Errorf("FULL.FileSpan() = %d, want %d", tier.FileSpan(), Group/10)
			}
			continue
		}
		if got, want := tier.FileSpan(), Group*tier.AggPeriod(); got != want {
			t.Errorf("%s.FileSpan() = %d, want %d", tier, got, want)
		}
	}
}

func TestDirUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, tier := range All {
		d := tier.Dir()
		if seen[d] {
			t.Errorf("duplicate Dir() %q", d)
		}
		seen[d] = true
	}
}
