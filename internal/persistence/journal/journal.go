package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/udisondev/rsckernel/internal/droplog"
)

const backend = "journal"

// Entry kinds.
const (
	KindDrop = "drop"
	KindKill = "kill"
)

// Entry is one journal line. At is set when the entry is appended.
type Entry struct {
	Kind string              `json:"kind"`
	At   time.Time           `json:"at"`
	Drop *droplog.DropRecord `json:"drop,omitempty"`
	Kill *droplog.KillRecord `json:"kill,omitempty"`
}

// Journal implements droplog.Sink on hourly segment files.
type Journal struct {
	w *segmentWriter
}

// New creates a journal writing drops-<hour>.jsonl.zst files into dir.
func New(dir string, clock func() time.Time) *Journal {
	return &Journal{w: newSegmentWriter(dir, "drops", clock)}
}

// LogDrop implements droplog.Sink.
func (j *Journal) LogDrop(_ context.Context, rec droplog.DropRecord) error {
	return droplog.Wrap(backend, "write drop", j.w.Append(Entry{Kind: KindDrop, Drop: &rec}))
}

// LogKill implements droplog.Sink.
func (j *Journal) LogKill(_ context.Context, rec droplog.KillRecord) error {
	return droplog.Wrap(backend, "write kill", j.w.Append(Entry{Kind: KindKill, Kill: &rec}))
}

// Close seals the current segment; later writes fail with ErrClosed.
func (j *Journal) Close() error { return j.w.Close() }

// Files lists journal files in dir, oldest first.
func Files(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "drops-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// ReadFile decodes every entry of one journal file.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("opening zstd stream %s: %w", path, err)
	}
	defer dec.Close()

	var out []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, fmt.Errorf("decoding journal line %d of %s: %w", len(out)+1, path, err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}
