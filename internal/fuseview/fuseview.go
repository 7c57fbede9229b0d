// Package fuseview mounts a read-only, debug-only view of a running
// index: reading <mountpoint>/<dataset>/last-1h.csv (or -24h, -7d)
// runs a real Index.Get against the current time and renders the
// result as CSV. It carries none of the core index's invariants —
// it's a convenience for humans poking at a running store, not part
// of the put/get request path.
package fuseview

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"golang.org/x/sys/unix"

	"github.com/gaby/telemdex/internal/sample"
	"github.com/gaby/telemdex/internal/store"
)

// windows are the virtual files offered under every dataset directory.
var windows = []struct {
	name     string
	duration time.Duration
}{
	{"last-1h.csv", time.Hour},
	{"last-24h.csv", 24 * time.Hour},
	{"last-7d.csv", 7 * 24 * time.Hour},
}

// Mount is a handle to an active fuseview mount; Close unmounts it.
type Mount struct {
	conn *fuse.Conn
}

func (m *Mount) Close() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}

// Start mounts a fuseview filesystem for idx at mountpoint. The mount
// is torn down when ctx is canceled.
func Start(ctx context.Context, mountpoint string, idx *store.Index) (*Mount, error) {
	if mountpoint == "" {
		return nil, fmt.Errorf("fuseview: mountpoint required")
	}
	detachStaleMount(mountpoint)

	if err := os.MkdirAll(mountpoint, 0o755); err != nil {
		return nil, err
	}
	c, err := fuse.Mount(mountpoint,
		fuse.ReadOnly(),
		fuse.FSName("telemdex"),
		fuse.Subtype("telemdex-debug-view"),
	)
	if err != nil {
		return nil, err
	}
	m := &Mount{conn: c}
	go func() { _ = fs.Serve(c, &root{idx: idx}) }()
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()
	return m, nil
}

// detachStaleMount best-effort cleans up a leftover mount from a prior
// crashed run: three rounds of unmount, fusermount3 -uz and umount -l.
func detachStaleMount(mp string) {
	if strings.TrimSpace(mp) == "" {
		return
	}
	for i := 0; i < 3; i++ {
		_ = unix.Unmount(mp, unix.MNT_DETACH)
		_, _ = exec.Command("fusermount3", "-uz", mp).CombinedOutput()
		_, _ = exec.Command("umount", "-l", mp).CombinedOutput()
		time.Sleep(150 * time.Millisecond)
	}
}

type root struct {
	idx *store.Index
}

func (r *root) Root() (fs.Node, error) { return &rootDir{idx: r.idx}, nil }

type rootDir struct {
	idx *store.Index
}

func (d *rootDir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0o555
	return nil
}

func (d *rootDir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	ids, err := d.idx.Datasets("", 0)
	if err != nil {
		return nil, err
	}
	ents := make([]fuse.Dirent, 0, len(ids))
	for _, id := range ids {
		ents = append(ents, fuse.Dirent{Name: id, Type: fuse.DT_Dir})
	}
	return ents, nil
}

func (d *rootDir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	ids, err := d.idx.Datasets(name, 0)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id == name {
			return &datasetDir{idx: d.idx, dataset: name}, nil
		}
	}
	return nil, fuse.ENOENT
}

type datasetDir struct {
	idx     *store.Index
	dataset string
}

func (d *datasetDir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0o555
	return nil
}

func (d *datasetDir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	ents := make([]fuse.Dirent, 0, len(windows))
	for _, w := range windows {
		ents = append(ents, fuse.Dirent{Name: w.name, Type: fuse.DT_File})
	}
	return ents, nil
}

func (d *datasetDir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	for _, w := range windows {
		if w.name == name {
			return &queryFile{idx: d.idx, dataset: d.dataset, duration: w.duration}, nil
		}
	}
	return nil, fuse.ENOENT
}

type queryFile struct {
	idx      *store.Index
	dataset  string
	duration time.Duration
}

func (f *queryFile) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0o444
	a.Mtime = time.Now()
	content, err := f.render()
	if err != nil {
		return fuse.EIO
	}
	a.Size = uint64(len(content))
	return nil
}

func (f *queryFile) ReadAll(ctx context.Context) ([]byte, error) {
	return f.render()
}

func (f *queryFile) render() ([]byte, error) {
	now := time.Now()
	start := now.Add(-f.duration)
	records, err := f.idx.Get(f.dataset, float64(start.Unix()), float64(now.Unix()), nil)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if len(records) > 0 && records[0].Kind() == sample.KindAggregate {
		b.WriteString("timestamp,min,mean,max\n")
		for _, r := range records {
			a := r.Aggregate()
			fmt.Fprintf(&b, "%d,%g,%g,%g\n", a.BinTimestamp, a.Min, a.Mean(), a.Max)
		}
	} else {
		b.WriteString("timestamp,value\n")
		for _, r := range records {
			s := r.Full()
			fmt.Fprintf(&b, "%g,%g\n", s.Timestamp, s.Value)
		}
	}
	return []byte(b.String()), nil
}
