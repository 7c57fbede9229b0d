package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gaby/telemdex/internal/sample"
)

func TestAppendFullThenReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "full")
	want := []sample.Sample{{Timestamp: 1, Value: 1.5}, {Timestamp: 2, Value: -3}}

	if err := AppendFull(path, want[:1]); err != nil {
		t.Fatalf("AppendFull: %v", err)
	}
	if err := AppendFull(path, want[1:]); err != nil {
		t.Fatalf("AppendFull: %v", err)
	}

	got, err := ReadFullAll(path)
	if err != nil {
		t.Fatalf("ReadFullAll: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ReadFullAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFullAllMissingFile(t *testing.T) {
	got, err := ReadFullAll(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ReadFullAll(missing) error = %v, want nil", err)
	}
	if got != nil {
		t.Fatalf("ReadFullAll(missing) = %v, want nil", got)
	}
}

func TestRewriteAggregatesIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agg")
	first := []sample.Aggregate{{BinTimestamp: 0, Min: 1, Max: 1, Sum: 1, Count: 1}}
	if err := RewriteAggregates(path, first); err != nil {
		t.Fatalf("RewriteAggregates: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries after rewrite, want 1 (no leftover temp file)", len(entries))
	}

	second := []sample.Aggregate{
		{BinTimestamp: 0, Min: 1, Max: 1, Sum: 1, Count: 1},
		{BinTimestamp: 10, Min: 2, Max: 2, Sum: 2, Count: 1},
	}
	if err := RewriteAggregates(path, second); err != nil {
		t.Fatalf("RewriteAggregates: %v", err)
	}
	got, err := ReadAggregateAll(path)
	if err != nil {
		t.Fatalf("ReadAggregateAll: %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Fatalf("ReadAggregateAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestFullSamplesTruncatedTrailingLineTolerated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "full")
	if err := os.WriteFile(path, []byte("1,2\n2,3\n4,"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFullAll(path)
	if err != nil {
		t.Fatalf("ReadFullAll: %v", err)
	}
	want := []sample.Sample{{Timestamp: 1, Value: 2}, {Timestamp: 2, Value: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ReadFullAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestFullSamplesMidFileCorruptionErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "full")
	if err := os.WriteFile(path, []byte("1,2\nbroken-line\n3,4\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := ReadFullAll(path)
	if err == nil {
		t.Fatal("ReadFullAll() error = nil, want non-nil for mid-file corruption")
	}
}
