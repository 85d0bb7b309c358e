// Package output writes tab-separated row files.
package output

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// RowWriter writes tab-separated rows to a file. Paths ending in .gz are
// gzip-compressed. Rows are written to <path>.tmp and renamed into place on
// Close, so a failed build never leaves a truncated artifact behind.
type RowWriter struct {
	path    string
	tmpPath string
	f       *os.File
	gz      *gzip.Writer
	w       *bufio.Writer
}

// NewRowWriter creates a row writer for the given path.
func NewRowWriter(path string) (*RowWriter, error) {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", tmpPath, err)
	}

	rw := &RowWriter{path: path, tmpPath: tmpPath, f: f}
	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		rw.gz = gzip.NewWriter(f)
		w = rw.gz
	}
	rw.w = bufio.NewWriter(w)
	return rw, nil
}

// WriteRow writes one tab-joined row followed by a newline.
func (rw *RowWriter) WriteRow(fields ...string) error {
	if _, err := rw.w.WriteString(strings.Join(fields, "\t")); err != nil {
		return fmt.Errorf("write %s: %w", rw.path, err)
	}
	if err := rw.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write %s: %w", rw.path, err)
	}
	return nil
}

// Close flushes all buffered data and moves the temporary file into place.
// On any error the temporary file is removed and the target left untouched.
func (rw *RowWriter) Close() error {
	err := rw.w.Flush()
	if err == nil && rw.gz != nil {
		err = rw.gz.Close()
	}
	if cerr := rw.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(rw.tmpPath)
		return fmt.Errorf("close %s: %w", rw.path, err)
	}
	if err := os.Rename(rw.tmpPath, rw.path); err != nil {
		os.Remove(rw.tmpPath)
		return fmt.Errorf("rename %s: %w", rw.tmpPath, err)
	}
	return nil
}

// Abort discards the partially written file.
func (rw *RowWriter) Abort() {
	if rw.gz != nil {
		rw.gz.Close()
	}
	rw.f.Close()
	os.Remove(rw.tmpPath)
}
