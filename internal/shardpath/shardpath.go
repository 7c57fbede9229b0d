// Package shardpath is the pure mapping from (fidelity, dataset,
// timestamp) to an on-disk file path, plus dataset id validation and
// shard enumeration over a query window.
package shardpath

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gaby/telemdex/internal/fidelity"
)

var (
	// ErrInvalidID is returned when a dataset id fails the character
	// class or contains "..".
	ErrInvalidID = errors.New("shardpath: invalid dataset id")
	// ErrNegativeTimestamp is returned when a derived shard timestamp
	// would be negative.
	ErrNegativeTimestamp = errors.New("shardpath: negative timestamp")
	// ErrWindowTooLarge is returned when a query window would
	// enumerate more shards than the store allows.
	ErrWindowTooLarge = errors.New("shardpath: window too large")
)

// MaxShards caps (end-start)/file_span for a single Enumerate call;
// a window within the cap yields at most MaxShards+2 paths (the first
// shard, one per step, and the extra step past the end).
const MaxShards = 500

var validID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateDatasetID rejects dataset ids that don't match
// [A-Za-z0-9._-]+ or that contain "..".
func ValidateDatasetID(id string) error {
	if id == "" || !validID.MatchString(id) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Path returns the file that holds timestamp t (an integer count of
// seconds) for the given tier and dataset, rooted at base. Every t in
// the same file_span-aligned interval maps to the same file.
func Path(base string, tier fidelity.Tier, datasetID string, t int64) (string, error) {
	if t < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegativeTimestamp, t)
	}

	a := strconv.FormatInt(t/10_000_000, 10)
	b := strconv.FormatInt(t/100_000, 10)
	c := strconv.FormatInt(t/1_000, 10)
	name := strconv.FormatInt(t/tier.FileSpan(), 10)

	root := filepath.Join(base, "data", tier.Dir(), datasetID)
	switch tier {
	case fidelity.FULL:
		return filepath.Join(root, a, b, c, name), nil
	case fidelity.F1, fidelity.F10:
		return filepath.Join(root, a, b, name), nil
	case fidelity.F100, fidelity.F1000:
		return filepath.Join(root, a, name), nil
	case fidelity.F10000, fidelity.F100000:
		return filepath.Join(root, name), nil
	default:
		panic(fmt.Sprintf("shardpath: invalid tier %d", tier))
	}
}

// Enumerate returns every file that might hold data for [startSeconds,
// endSeconds] at tier, in ascending-shard order. Duplicate paths can
// occur at coarse tiers where start and end land in the same shard;
// that's fine, missing files decode to empty. Fails with
// ErrWindowTooLarge before producing any paths if the window would
// take more than MaxShards steps.
func Enumerate(base string, tier fidelity.Tier, datasetID string, startSeconds, endSeconds float64) ([]string, error) {
	step := tier.FileSpan()
	if (endSeconds-startSeconds)/float64(step) > MaxShards {
		return nil, fmt.Errorf("%w: %g seconds at tier %s (max %d shards)", ErrWindowTooLarge, endSeconds-startSeconds, tier, MaxShards)
	}

	var paths []string
	t := startSeconds
	for {
		p, err := Path(base, tier, datasetID, int64(t))
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
		if t > endSeconds {
			break
		}
		t += float64(step)
	}
	return paths, nil
}
