// Package archive streams decision history out of the database as
// zstd-compressed NDJSON before retention pruning deletes it.
package archive

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Writer compresses NDJSON rows onto an underlying io.Writer. Each row
// must already be a valid JSON document; Writer appends the newline.
type Writer struct {
	enc  *zstd.Encoder
	rows int
}

// NewWriter wraps w with a zstd encoder. Callers must Close the Writer
// to flush the final frame.
func NewWriter(w io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("archive: failed to create zstd encoder: %w", err)
	}
	return &Writer{enc: enc}, nil
}

// WriteRow appends one JSON document as an NDJSON line.
func (w *Writer) WriteRow(row json.RawMessage) error {
	if !json.Valid(row) {
		return fmt.Errorf("archive: row %d is not valid JSON", w.rows)
	}
	if _, err := w.enc.Write(row); err != nil {
		return fmt.Errorf("archive: failed to write row %d: %w", w.rows, err)
	}
	if _, err := w.enc.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("archive: failed to write row %d: %w", w.rows, err)
	}
	w.rows++
	return nil
}

// Rows returns the number of rows written so far.
func (w *Writer) Rows() int {
	return w.rows
}

// Close flushes and finishes the zstd frame. The underlying writer is
// not closed.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("archive: failed to finish zstd frame: %w", err)
	}
	return nil
}

// Export writes all rows to w as one compressed NDJSON stream and
// returns the row count.
func Export(w io.Writer, rows []json.RawMessage) (int, error) {
	aw, err := NewWriter(w)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		if err := aw.WriteRow(row); err != nil {
			return aw.Rows(), err
		}
	}
	if err := aw.Close(); err != nil {
		return aw.Rows(), err
	}
	return aw.Rows(), nil
}
