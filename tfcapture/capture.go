package tfcapture

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/minio/highwayhash"
	"github.com/pkg/errors"

	"github.com/grailbio/tf/tfcore"
)

// checksumKey is highwayhash's required 32-byte key. Capture files are a
// local integrity check against truncation/corruption, not an
// authenticated format, so a fixed key is fine here.
var checksumKey = make([]byte, 32)

// Record is one captured message: its original stream (dynamic or
// static) and the TFMessage observed.
type Record struct {
	Stamp    tfcore.Stamp
	IsStatic bool
	Message  tfcore.TFMessage
}

type wireRecord struct {
	Stamp    tfcore.Stamp     `json:"stamp"`
	IsStatic bool             `json:"is_static"`
	Message  tfcore.TFMessage `json:"message"`
}

// Writer appends Records to a gzip-compressed capture stream, matching
// encoding/bgzf's use of github.com/klauspost/compress as a drop-in
// compress/gzip replacement. Each record is framed as a 4-byte
// big-endian length, the JSON payload, and an 8-byte highwayhash64
// checksum of the payload.
type Writer struct {
	gz *gzip.Writer
}

// NewWriter wraps w, compressing every appended record.
func NewWriter(w io.Writer) *Writer {
	return &Writer{gz: gzip.NewWriter(w)}
}

// Write appends rec to the capture stream.
func (w *Writer) Write(rec Record) error {
	payload, err := json.Marshal(wireRecord{Stamp: rec.Stamp, IsStatic: rec.IsStatic, Message: rec.Message})
	if err != nil {
		return errors.Wrap(err, "tfcapture: marshal record")
	}

	sum, err := highwayhash.New64(checksumKey)
	if err != nil {
		return errors.Wrap(err, "tfcapture: init checksum")
	}
	if _, err := sum.Write(payload); err != nil {
		return errors.Wrap(err, "tfcapture: checksum record")
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.gz.Write(lenBuf[:]); err != nil {
		return errors.Wrap(err, "tfcapture: write length")
	}
	if _, err := w.gz.Write(payload); err != nil {
		return errors.Wrap(err, "tfcapture: write payload")
	}
	var sumBuf [8]byte
	binary.BigEndian.PutUint64(sumBuf[:], sum.Sum64())
	if _, err := w.gz.Write(sumBuf[:]); err != nil {
		return errors.Wrap(err, "tfcapture: write checksum")
	}
	return nil
}

// Close flushes and closes the underlying gzip stream.
func (w *Writer) Close() error {
	return w.gz.Close()
}

// Reader decodes a capture stream written by Writer.
type Reader struct {
	gz *gzip.Reader
	br *bufio.Reader
}

// NewReader opens r for reading as a capture stream.
func NewReader(r io.Reader) (*Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "tfcapture: open gzip stream")
	}
	return &Reader{gz: gz, br: bufio.NewReader(gz)}, nil
}

// Read returns the next Record, or io.EOF once the stream is exhausted.
func (r *Reader) Read() (Record, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r.br, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Record{}, errors.Wrap(err, "tfcapture: truncated record header")
		}
		return Record{}, err // io.EOF propagates as-is
	}
	n := binary.BigEndian.Uint32(lenBuf[:])

	payload := make([]byte, n)
	if _, err := io.ReadFull(r.br, payload); err != nil {
		return Record{}, errors.Wrap(err, "tfcapture: truncated record payload")
	}

	var sumBuf [8]byte
	if _, err := io.ReadFull(r.br, sumBuf[:]); err != nil {
		return Record{}, errors.Wrap(err, "tfcapture: truncated record checksum")
	}

	sum, err := highwayhash.New64(checksumKey)
	if err != nil {
		return Record{}, errors.Wrap(err, "tfcapture: init checksum")
	}
	if _, err := sum.Write(payload); err != nil {
		return Record{}, errors.Wrap(err, "tfcapture: checksum record")
	}
	if sum.Sum64() != binary.BigEndian.Uint64(sumBuf[:]) {
		return Record{}, errors.New("tfcapture: checksum mismatch, capture file is corrupt")
	}

	var wr wireRecord
	if err := json.Unmarshal(payload, &wr); err != nil {
		return Record{}, errors.Wrap(err, "tfcapture: unmarshal record")
	}
	return Record{Stamp: wr.Stamp, IsStatic: wr.IsStatic, Message: wr.Message}, nil
}

// ReadAll decodes every remaining record in the stream.
func (r *Reader) ReadAll() ([]Record, error) {
	var recs []Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}

// Close closes the underlying gzip stream.
func (r *Reader) Close() error {
	return r.gz.Close()
}
