package recording

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Recorder captures a live sample stream into rotating recording files.
// A new file is started once the current one holds perFile records.
// It is driven from the ingestion goroutine only and needs no locking.
type Recorder struct {
	dir     string
	prefix  string
	perFile int
	seq     int
	w       *Writer
}

// NewRecorder prepares a recorder writing files named
// <prefix>_<unix>_<seq>.csi under dir. The directory is created if needed.
func NewRecorder(dir, prefix string, perFile int) (*Recorder, error) {
	if perFile <= 0 {
		return nil, fmt.Errorf("records per file must be positive, got %d", perFile)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create recording directory: %w", err)
	}
	return &Recorder{dir: dir, prefix: prefix, perFile: perFile}, nil
}

// Record appends one sample, rotating to a fresh file when the current
// one is full.
func (r *Recorder) Record(rec Record) error {
	if r.w == nil {
		name := fmt.Sprintf("%s_%d_%04d.csi", r.prefix, time.Now().Unix(), r.seq)
		w, err := Create(filepath.Join(r.dir, name))
		if err != nil {
			return err
		}
		r.w = w
		r.seq++
	}

	if err := r.w.Append(rec); err != nil {
		return err
	}
	if r.w.Count() >= r.perFile {
		w := r.w
		r.w = nil
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the partially filled file, if any.
func (r *Recorder) Close() error {
	if r.w == nil {
		return nil
	}
	w := r.w
	r.w = nil
	return w.Close()
}
