// Package codec is the line-oriented encoder/decoder for full and
// aggregate on-disk files, plus the low-level file I/O (append,
// atomic rewrite) the index's ingest algorithm drives.
//
// Full file: one sample per line, "<timestamp>,<value>\n".
// Aggregate file: one record per line,
// "<bin_timestamp>,<min>,<max>,<sum>,<count>\n".
// Both are append-friendly-by-construction: any rewrite must keep the
// format exactly decimal, comma-separated, newline-terminated.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/gaby/telemdex/internal/sample"
)

// AppendFull opens path for append (creating parent directories and
// the file as needed) and writes one line per sample in order. It
// never rewrites existing content, which is what makes the full tier
// safe to read concurrently with a writer: readers always see a
// consistent prefix.
func AppendFull(path string, samples []sample.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, s := range samples {
		fmt.Fprintf(w, "%s,%s\n",
			strconv.FormatFloat(s.Timestamp, 'f', -1, 64),
			strconv.FormatFloat(s.Value, 'f', -1, 64),
		)
	}
	return w.Flush()
}

// RewriteAggregates replaces path's entire contents with one line per
// aggregate, in the order given (callers pass them bin_timestamp
// ascending). It writes to a sibling temp file first and renames it
// into place, so a reader never observes a half-written file — the
// read-modify-write cycle at aggregate tiers would otherwise risk
// handing concurrent readers a truncated view mid-write.
func RewriteAggregates(path string, aggs []sample.Aggregate) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp-" + uuid.NewString()
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, a := range aggs {
		fmt.Fprintf(w, "%d,%s,%s,%s,%d\n",
			a.BinTimestamp,
			strconv.FormatFloat(a.Min, 'f', -1, 64),
			strconv.FormatFloat(a.Max, 'f', -1, 64),
			strconv.FormatFloat(a.Sum, 'f', -1, 64),
			a.Count,
		)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// FullSamples is a pull-based iterator over path's decoded samples, in
// file order. A missing file yields nothing. A malformed line is
// tolerated (skipped) only when it is the last line in the file —
// that's the signature of a concurrent writer truncating an
// in-progress append — any other malformed line is reported as an
// error through the iterator.
func FullSamples(path string) iter.Seq2[sample.Sample, error] {
	return func(yield func(sample.Sample, error) bool) {
		lines, closeErr, err := openLineIterator(path)
		if err != nil {
			yield(sample.Sample{}, err)
			return
		}
		defer closeErr()

		for line, isLast := range lines {
			s, perr := parseFullLine(line)
			if perr != nil {
				if isLast {
					return
				}
				if !yield(sample.Sample{}, fmt.Errorf("codec: %s: %w", path, perr)) {
					return
				}
				continue
			}
			if !yield(s, nil) {
				return
			}
		}
	}
}

// AggregateRecords is a pull-based iterator over path's decoded
// aggregates, in file order. Same missing-file and trailing-corruption
// handling as FullSamples.
func AggregateRecords(path string) iter.Seq2[sample.Aggregate, error] {
	return func(yield func(sample.Aggregate, error) bool) {
		lines, closeErr, err := openLineIterator(path)
		if err != nil {
			yield(sample.Aggregate{}, err)
			return
		}
		defer closeErr()

		for line, isLast := range lines {
			a, perr := parseAggregateLine(line)
			if perr != nil {
				if isLast {
					return
				}
				if !yield(sample.Aggregate{}, fmt.Errorf("codec: %s: %w", path, perr)) {
					return
				}
				continue
			}
			if !yield(a, nil) {
				return
			}
		}
	}
}

// ReadFullAll drains FullSamples into a slice, for callers that need
// the whole file materialized.
func ReadFullAll(path string) ([]sample.Sample, error) {
	var out []sample.Sample
	for s, err := range FullSamples(path) {
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ReadAggregateAll drains AggregateRecords into a slice. The
// aggregate-tier read-merge-rewrite in store.Index.Put reads each file
// through it, so that merge holds the whole file in memory.
func ReadAggregateAll(path string) ([]sample.Aggregate, error) {
	var out []sample.Aggregate
	for a, err := range AggregateRecords(path) {
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// openLineIterator yields (line, isLastLine) pairs read from path. A
// missing file produces an empty iterator and no error. The caller must
// invoke the returned close func once done (safe to call even on the
// error path, where it is a no-op).
func openLineIterator(path string) (iter.Seq2[string, bool], func(), error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return func(func(string, bool) bool) {}, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}

	return func(yield func(string, bool) bool) {
			sc := bufio.NewScanner(f)
			sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
			hasLine := sc.Scan()
			for hasLine {
				line := sc.Text()
				hasLine = sc.Scan()
				if !yield(line, !hasLine) {
					return
				}
			}
			_ = sc.Err()
		}, func() { _ = f.Close() }, nil
}

func parseFullLine(line string) (sample.Sample, error) {
	ts, value, ok := cut2(line)
	if !ok {
		return sample.Sample{}, io.ErrUnexpectedEOF
	}
	t, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return sample.Sample{}, err
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return sample.Sample{}, err
	}
	return sample.Sample{Timestamp: t, Value: v}, nil
}

func parseAggregateLine(line string) (sample.Aggregate, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return sample.Aggregate{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}
	bin, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return sample.Aggregate{}, err
	}
	mn, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return sample.Aggregate{}, err
	}
	mx, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return sample.Aggregate{}, err
	}
	sum, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return sample.Aggregate{}, err
	}
	count, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return sample.Aggregate{}, err
	}
	return sample.Aggregate{
		BinTimestamp: bin,
		Min:          mn,
		Max:          mx,
		Sum:          sum,
		Count:        int(count),
	}, nil
}

// cut2 splits "a,b" into ("a","b"); unlike strings.Cut it fails if
// there isn't exactly one comma, since a full-tier line is always
// exactly two fields.
func cut2(line string) (string, string, bool) {
	i := strings.IndexByte(line, ',')
	if i < 0 {
		return "", "", false
	}
	rest := line[i+1:]
	if strings.IndexByte(rest, ',') >= 0 {
		return "", "", false
	}
	return line[:i], rest, true
}
