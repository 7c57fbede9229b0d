// Package store implements Index, the orchestrator that fans writes
// out across all seven fidelities and, on read, picks a fidelity and
// stitches its shards back together.
//
// Index is built for single-writer, many-reader use within one
// process: Put is not safe to call concurrently for the same dataset,
// because aggregate tiers are read-modify-write (see
// codec.RewriteAggregates). Concurrent Get calls are always safe.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/gaby/telemdex/internal/aggregator"
	"github.com/gaby/telemdex/internal/binner"
	"github.com/gaby/telemdex/internal/codec"
	"github.com/gaby/telemdex/internal/fidelity"
	"github.com/gaby/telemdex/internal/merger"
	"github.com/gaby/telemdex/internal/sample"
	"github.com/gaby/telemdex/internal/shardpath"
)

// ErrStoreNotDirectory is returned by Open when base/data already
// exists as a regular file.
var ErrStoreNotDirectory = errors.New("store: base data path exists and is not a directory")

// Re-exported so callers don't need to import shardpath themselves to
// errors.Is against them.
var (
	ErrInvalidID      = shardpath.ErrInvalidID
	ErrWindowTooLarge = shardpath.ErrWindowTooLarge
)

// Observer is notified, best-effort, after a successful Put or Get. A
// failing Observer call never fails the Index call it's attached to —
// see internal/catalog, the one implementation in this repo.
type Observer interface {
	RecordPut(datasetID string)
	RecordGet(datasetID string)
}

// Index is the on-disk multi-fidelity store for one base directory.
type Index struct {
	base string

	numPuts atomic.Int64
	numGets atomic.Int64

	group    singleflight.Group
	Observer Observer
}

// aggTiers are every fidelity.Tier above FULL, in ascending order.
var aggTiers = []fidelity.Tier{fidelity.F1, fidelity.F10, fidelity.F100, fidelity.F1000, fidelity.F10000, fidelity.F100000}

// Open ensures base/data exists as a directory (creating parents as
// needed) and returns a ready Index with its counters at zero.
func Open(base string) (*Index, error) {
	dataDir := filepath.Join(base, "data")
	if info, err := os.Stat(dataDir); err == nil {
		if !info.IsDir() {
			return nil, ErrStoreNotDirectory
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &Index{base: base}, nil
}

// NumPuts returns the number of successful Put calls so far.
func (ix *Index) NumPuts() int64 { return ix.numPuts.Load() }

// NumGets returns the number of successful Get calls so far.
func (ix *Index) NumGets() int64 { return ix.numGets.Load() }

// Put validates datasetID, sorts samples by timestamp (stable on
// ties), and writes them into all seven fidelity layers. A failure
// partway through a later fidelity leaves every earlier fidelity's
// writes on disk — Put never rolls back.
func (ix *Index) Put(datasetID string, samples []sample.Sample) error {
	if err := shardpath.ValidateDatasetID(datasetID); err != nil {
		return err
	}

	sorted := make([]sample.Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	if err := ix.putFull(datasetID, sorted); err != nil {
		return err
	}
	for _, tier := range aggTiers {
		if err := ix.putAggregateTier(datasetID, sorted, tier); err != nil {
			return err
		}
	}

	ix.numPuts.Add(1)
	if ix.Observer != nil {
		ix.Observer.RecordPut(datasetID)
	}
	return nil
}

func (ix *Index) putFull(datasetID string, sorted []sample.Sample) error {
	for _, g := range binner.Samples(sorted, fidelity.FULL.FileSpan()) {
		path, err := shardpath.Path(ix.base, fidelity.FULL, datasetID, g.GroupTimestamp)
		if err != nil {
			return err
		}
		if err := codec.AppendFull(path, g.Samples); err != nil {
			return err
		}
	}
	return nil
}

func (ix *Index) putAggregateTier(datasetID string, sorted []sample.Sample, tier fidelity.Tier) error {
	aggs := aggregator.Aggregate(sorted, tier.AggPeriod())
	for _, g := range binner.Aggregates(aggs, tier.FileSpan()) {
		path, err := shardpath.Path(ix.base, tier, datasetID, g.GroupTimestamp)
		if err != nil {
			return err
		}
		existing, err := codec.ReadAggregateAll(path)
		if err != nil {
			return err
		}
		combined := merger.Merge(existing, g.Aggregates)
		if err := codec.RewriteAggregates(path, combined); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the samples (or aggregates) covering [start, end] for
// datasetID. If tier is nil, the fidelity is chosen automatically per
// fidelity.Select. The result is the concatenation of every shard the
// window touches, in shard order — not guaranteed sorted within or
// across shards; sort it yourself if you need that. Returns an empty,
// nil-error result for a dataset that has never been written.
func (ix *Index) Get(datasetID string, start, end float64, tier *fidelity.Tier) ([]sample.Record, error) {
	chosen := fidelity.Select(end - start)
	if tier != nil {
		chosen = *tier
	}

	key := fmt.Sprintf("%s|%d|%g|%g", datasetID, chosen, start, end)
	v, err, _ := ix.group.Do(key, func() (any, error) {
		return ix.get(datasetID, start, end, chosen)
	})
	if err != nil {
		return nil, err
	}

	ix.numGets.Add(1)
	if ix.Observer != nil {
		ix.Observer.RecordGet(datasetID)
	}
	return v.([]sample.Record), nil
}

func (ix *Index) get(datasetID string, start, end float64, tier fidelity.Tier) ([]sample.Record, error) {
	paths, err := shardpath.Enumerate(ix.base, tier, datasetID, start, end)
	if err != nil {
		return nil, err
	}

	var out []sample.Record
	if tier == fidelity.FULL {
		for _, p := range paths {
			samples, err := codec.ReadFullAll(p)
			if err != nil {
				return nil, err
			}
			for _, s := range samples {
				out = append(out, sample.NewFull(s))
			}
		}
	} else {
		for _, p := range paths {
			aggs, err := codec.ReadAggregateAll(p)
			if err != nil {
				return nil, err
			}
			for _, a := range aggs {
				out = append(out, sample.NewAggregate(a))
			}
		}
	}
	return out, nil
}

// Datasets lists dataset ids known to the store (discovered from the
// full-fidelity root) whose name contains query as a substring, sorted
// and truncated to max. Returns nil if the full tier has never been
// written to.
func (ix *Index) Datasets(query string, max int) ([]string, error) {
	root := filepath.Join(ix.base, "data", fidelity.FULL.Dir())
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, e := range entries {
		if strings.Contains(e.Name(), query) {
			ids = append(ids, e.Name())
		}
	}

	col := collate.New(language.Und)
	col.SortStrings(ids)

	if max > 0 && len(ids) > max {
		ids = ids[:max]
	}
	return ids, nil
}
