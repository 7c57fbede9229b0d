package catalog

import (
	"path/filepath"
	"testing"
)

func TestRecordPutAndGetAccumulate(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	c.RecordPut("cpu.load")
	c.RecordPut("cpu.load")
	c.RecordGet("cpu.load")

	st, err := c.Stats("cpu.load")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.PutCount != 2 {
		t.Errorf("PutCount = %d, want 2", st.PutCount)
	}
	if st.GetCount != 1 {
		t.Errorf("GetCount = %d, want 1", st.GetCount)
	}
	if st.LastPutAt.IsZero() {
		t.Error("LastPutAt is zero, want set")
	}
}

func TestStatsUnknownDatasetIsZeroNotError(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	st, err := c.Stats("never.recorded")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.PutCount != 0 || st.GetCount != 0 {
		t.Fatalf("Stats(unknown) = %+v, want zero counts", st)
	}
}
