// Package journal appends drop and kill records to hourly zstd-compressed
// JSONL files, an append-only audit trail of everything the kernel dropped.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// ErrClosed is returned when appending to a closed journal.
var ErrClosed = errors.New("journal closed")

const hourLayout = "2006-01-02-15"

// segmentWriter appends entries to the segment of the current UTC hour.
// Each entry is flushed through the zstd frame before Append returns; a
// segment is synced to disk when it is rotated out or the writer closes.
type segmentWriter struct {
	dir    string
	prefix string
	clock  func() time.Time

	mu     sync.Mutex
	closed bool
	hour   string
	f      *os.File
	enc    *zstd.Encoder
	buf    *bufio.Writer
}

func newSegmentWriter(dir, prefix string, clock func() time.Time) *segmentWriter {
	if clock == nil {
		clock = time.Now
	}
	return &segmentWriter{dir: dir, prefix: prefix, clock: clock}
}

// Append stamps e with the write time and appends it as one line.
func (w *segmentWriter) Append(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	now := w.clock().UTC()
	e.At = now
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding %s entry: %w", e.Kind, err)
	}

	if hour := now.Format(hourLayout); hour != w.hour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	if _, err := w.buf.Write(line); err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

// Close seals and syncs the open segment. Later appends fail with ErrClosed.
func (w *segmentWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.sealLocked()
}

func (w *segmentWriter) rotateLocked(hour string) error {
	if err := w.sealLocked(); err != nil {
		return fmt.Errorf("sealing segment %s: %w", w.hour, err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.segmentPath(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f, w.enc, w.buf, w.hour = f, enc, bufio.NewWriter(enc), hour
	return nil
}

// sealLocked ends the zstd frame, syncs and closes the segment file.
func (w *segmentWriter) sealLocked() error {
	if w.f == nil {
		return nil
	}
	var errs []error
	if err := w.buf.Flush(); err != nil {
		errs = append(errs, err)
	}
	if err := w.enc.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := w.f.Sync(); err != nil {
		errs = append(errs, err)
	}
	if err := w.f.Close(); err != nil {
		errs = append(errs, err)
	}
	w.f, w.enc, w.buf, w.hour = nil, nil, nil, ""
	return errors.Join(errs...)
}

func (w *segmentWriter) segmentPath(hour string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}
