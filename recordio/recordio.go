// Package recordio reads and writes files of length-delimited records using
// the TFRecord framing:
//
//	uint64 length (little endian)
//	uint32 masked crc32c of length
//	byte   data[length]
//	uint32 masked crc32c of data
//
// Payloads are opaque to this package.
package recordio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	headerSize  = 12
	footerSize  = 4
	maskDelta   = 0xa282ead8
	maxRecordSz = 1 << 30
)

// ErrCorrupt is returned when a checksum does not match or a length is out of
// range.
var ErrCorrupt = errors.New("corrupt record")

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func maskedCRC(b []byte) uint32 {
	c := crc32.Checksum(b, castagnoli)
	return ((c >> 15) | (c << 17)) + maskDelta
}

// Reader reads records sequentially.
type Reader struct {
	r      *bufio.Reader
	header [headerSize]byte
	footer [footerSize]byte
	buf    []byte
	offset int64
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Offset returns the byte offset of the next record.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Next returns the next record. The returned slice is only valid until the
// next call. Next returns io.EOF at a clean end of input and
// io.ErrUnexpectedEOF when the input ends inside a record.
func (r *Reader) Next() ([]byte, error) {
	if _, err := io.ReadFull(r.r, r.header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, r.readErr(err)
	}

	length := binary.LittleEndian.Uint64(r.header[:8])
	if maskedCRC(r.header[:8]) != binary.LittleEndian.Uint32(r.header[8:]) {
		return nil, fmt.Errorf("%w: length checksum at offset %d", ErrCorrupt, r.offset)
	}
	if length > maxRecordSz {
		return nil, fmt.Errorf("%w: length %d at offset %d", ErrCorrupt, length, r.offset)
	}

	if uint64(cap(r.buf)) < length {
		r.buf = make([]byte, length)
	}
	r.buf = r.buf[:length]
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		return nil, r.readErr(err)
	}
	if _, err := io.ReadFull(r.r, r.footer[:]); err != nil {
		return nil, r.readErr(err)
	}
	if maskedCRC(r.buf) != binary.LittleEndian.Uint32(r.footer[:]) {
		return nil, fmt.Errorf("%w: data checksum at offset %d", ErrCorrupt, r.offset)
	}

	r.offset += int64(headerSize + len(r.buf) + footerSize)
	return r.buf, nil
}

// readErr reports a failed read inside a record. Running out of input is
// io.ErrUnexpectedEOF; other errors are returned wrapped.
func (r *Reader) readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return io.ErrUnexpectedEOF
	}
	return fmt.Errorf("read record at offset %d: %w", r.offset, err)
}

// Writer writes records. Call Flush or Close when done.
type Writer struct {
	w      *bufio.Writer
	closer io.Closer
	header [headerSize]byte
	footer [footerSize]byte
}

// NewWriter returns a Writer writing to w. If w is an io.Closer, Close closes
// it after flushing.
func NewWriter(w io.Writer) *Writer {
	wr := &Writer{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		wr.closer = c
	}
	return wr
}

// Write appends one record.
func (w *Writer) Write(data []byte) error {
	binary.LittleEndian.PutUint64(w.header[:8], uint64(len(data)))
	binary.LittleEndian.PutUint32(w.header[8:], maskedCRC(w.header[:8]))
	binary.LittleEndian.PutUint32(w.footer[:], maskedCRC(data))

	if _, err := w.w.Write(w.header[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	_, err := w.w.Write(w.footer[:])
	return err
}

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes and closes the underlying writer if it is an io.Closer.
func (w *Writer) Close() error {
	err := w.w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
