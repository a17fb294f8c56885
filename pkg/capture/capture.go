// Package capture records raw station frames to a stream of msgpack records
// and plays them back, so decoder problems seen in the field can be
// reproduced offline.
package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Record is one captured frame
type Record struct {
	Time    time.Time `msgpack:"t"`
	Station string    `msgpack:"station"`
	Frame   []byte    `msgpack:"frame"`
}

// Writer appends records to an underlying stream. It is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	enc *msgpack.Encoder
	c   io.Closer
}

// NewWriter returns a Writer encoding onto w
func NewWriter(w io.Writer) *Writer {
	cw := &Writer{enc: msgpack.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		cw.c = c
	}
	return cw
}

// Create opens path for appending and returns a Writer on it
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open capture file %s: %w", path, err)
	}
	return NewWriter(f), nil
}

// Write encodes one record. The frame is copied by the encoder, so callers
// may reuse their buffer afterwards.
func (w *Writer) Write(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(&r)
}

// Close closes the underlying stream if it is closable
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.c == nil {
		return nil
	}
	return w.c.Close()
}

// Reader decodes records from a capture stream
type Reader struct {
	dec *msgpack.Decoder
}

// NewReader returns a Reader decoding from r
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: msgpack.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the stream
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("could not decode capture record: %w", err)
	}
	// msgpack hands back local time
	rec.Time = rec.Time.UTC()
	return rec, nil
}

// ReadAll returns every remaining record
func (r *Reader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// File is a Reader over an opened capture file
type File struct {
	*Reader
	f *os.File
}

// Open opens a capture file for reading
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open capture file %s: %w", path, err)
	}
	return &File{Reader: NewReader(f), f: f}, nil
}

// Close closes the file
func (f *File) Close() error {
	return f.f.Close()
}
