// Package recordio reads and writes study logs: one JSON record per line,
// in arrival order. A log starts with a study record and grows by
// appending evaluation records; consumers reconstruct trial state by
// folding over the records in order.
package recordio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ashita-ai/togi"
)

// defaultMaxLine caps a single record line. Reading never buffers more
// than this per line; use NewReaderSize to raise the cap.
const defaultMaxLine = 16 << 20 // 16 MB

// Writer appends records to a study log, one JSON object per line.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer that appends to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes rec and appends it as a single line.
func (w *Writer) Write(rec togi.Record) error {
	data, err := togi.Encode(rec)
	if err != nil {
		return fmt.Errorf("recordio: encode: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("recordio: write: %w", err)
	}
	return nil
}

// WriteAll appends every record in order, stopping at the first error.
func (w *Writer) WriteAll(recs []togi.Record) error {
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Reader reads a study log line by line. Blank lines are skipped;
// anything else must decode as a record. A malformed line surfaces as an
// error from Read and is never silently recovered; the next Read moves on
// to the following line, so callers choose whether to stop or keep
// scanning.
type Reader struct {
	s    *bufio.Scanner
	line int
}

// NewReader returns a Reader over r with the default line cap.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, defaultMaxLine)
}

// NewReaderSize returns a Reader over r that accepts lines up to max
// bytes.
func NewReaderSize(r io.Reader, max int) *Reader {
	s := bufio.NewScanner(r)
	// The scanner takes the larger of max and the initial capacity as its
	// limit, so the initial buffer must not exceed max.
	size := 64 * 1024
	if size > max {
		size = max
	}
	s.Buffer(make([]byte, 0, size), max)
	return &Reader{s: s}
}

// Read returns the next record in the log, or io.EOF after the last one.
// Decode errors carry the 1-based line number and wrap the schema's
// *DecodeError, so togi.IsDecodeError still answers through them.
func (r *Reader) Read() (togi.Record, error) {
	for r.s.Scan() {
		r.line++
		line := bytes.TrimSpace(r.s.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := togi.Decode(line)
		if err != nil {
			return nil, fmt.Errorf("recordio: line %d: %w", r.line, err)
		}
		return rec, nil
	}
	if err := r.s.Err(); err != nil {
		return nil, fmt.Errorf("recordio: line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

// ReadAll reads records until the end of the log. On error it returns the
// records read so far along with the error.
func (r *Reader) ReadAll() ([]togi.Record, error) {
	var recs []togi.Record
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}
