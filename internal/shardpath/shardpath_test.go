package shardpath

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gaby/telemdex/internal/fidelity"
)

func TestValidateDatasetID(t *testing.T) {
	valid := []string{"cpu.load", "host-01_temp", "a", "A1._-"}
	for _, id := range valid {
		if err := ValidateDatasetID(id); err != nil {
			t.Errorf("ValidateDatasetID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{"", "has space", "slash/in/id", "..", "a/../b", "weird!char"}
	for _, id := range invalid {
		if err := ValidateDatasetID(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("ValidateDatasetID(%q) = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestPathNegativeTimestamp(t *testing.T) {
	_, err := Path("base", fidelity.FULL, "ds", -1)
	if !errors.Is(err, ErrNegativeTimestamp) {
		t.Fatalf("Path(negative) = %v, want ErrNegativeTimestamp", err)
	}
}

func TestPathNestingDepthPerTier(t *testing.T) {
	cases := []struct {
		tier  fidelity.Tier
		depth int // path segments below base/data/<tier>/<dataset>
	}{
		{fidelity.FULL, 4},
		{fidelity.F1, 3},
		{fidelity.F10, 3},
		{fidelity.F100, 2},
		{fidelity.F1000, 2},
		{fidelity.F10000, 1},
		{fidelity.F100000, 1},
	}
	for _, c := range cases {
		p, err := Path("base", c.tier, "ds", 12_345_678_901)
		if err != nil {
			t.Fatalf("Path(%s) error: %v", c.tier, err)
		}
		rel, err := filepath.Rel(filepath.Join("base", "data", c.tier.Dir(), "ds"), p)
		if err != nil {
			t.Fatalf("Rel: %v", err)
		}
		segs := len(strings.Split(filepath.ToSlash(rel), "/"))
		if segs != c.depth {
			t.Errorf("%s: path %q has depth %d, want %d", c.tier, p, segs, c.depth)
		}
	}
}

func TestEnumerateWindowTooLarge(t *testing.T) {
	// FULL file_span is Group/10 = 500 seconds; ask for a window that
	// would need more than MaxShards steps.
	span := float64(fidelity.FULL.FileSpan())
	_, err := Enumerate("base", fidelity.FULL, "ds", 0, span*(MaxShards+10))
	if !errors.Is(err, ErrWindowTooLarge) {
		t.Fatalf("Enumerate(huge window) = %v, want ErrWindowTooLarge", err)
	}
}

func TestEnumerateCoversWindow(t *testing.T) {
	paths, err := Enumerate("base", fidelity.FULL, "ds", 0, float64(fidelity.FULL.FileSpan())*2)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(paths) < 2 {
		t.Fatalf("len(paths) = %d, want >= 2", len(paths))
	}
}
