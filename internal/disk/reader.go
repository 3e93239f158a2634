package disk

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/deploymenttheory/go-sav/internal/interfaces"
	"github.com/deploymenttheory/go-sav/internal/types"
)

// Reader implements interfaces.PrimitiveReader over a seekable byte source.
// The reader tracks its own absolute position so errors can carry offsets
// without asking the source.
type Reader struct {
	src     interfaces.ByteSource
	order   binary.ByteOrder
	enc     encoding.Encoding
	decoder *encoding.Decoder
	pos     int64
	size    int64
	scratch [8]byte
}

var _ interfaces.PrimitiveReader = (*Reader)(nil)

// NewReader creates a little-endian reader positioned at the current offset of src.
// A nil encoding selects ISO-8859-1.
func NewReader(src interfaces.ByteSource, enc encoding.Encoding) (*Reader, error) {
	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, types.IOFailure("seek", -1, err)
	}
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, types.IOFailure("seek", pos, err)
	}
	if _, err := src.Seek(pos, io.SeekStart); err != nil {
		return nil, types.IOFailure("seek", pos, err)
	}

	r := &Reader{
		src:   src,
		order: binary.LittleEndian,
		pos:   pos,
		size:  size,
	}
	r.SetEncoding(enc)

	return r, nil
}

// ReadBytes reads exactly n bytes. A short read is an ErrIO DecodeError that still
// matches io.EOF when no byte at all was available.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, types.FormatViolation("read", r.pos, "negative length %d", n)
	}
	buf := make([]byte, n)
	if err := r.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *Reader) readFull(buf []byte) error {
	got, err := io.ReadFull(r.src, buf)
	start := r.pos
	r.pos += int64(got)
	if err != nil {
		return types.IOFailure("read", start, fmt.Errorf("short read: wanted %d bytes, got %d: %w", len(buf), got, err))
	}
	return nil
}

// ReadInt32 reads a signed 4-byte integer
func (r *Reader) ReadInt32() (int32, error) {
	if err := r.readFull(r.scratch[:4]); err != nil {
		return 0, err
	}
	return int32(r.order.Uint32(r.scratch[:4])), nil
}

// ReadUint8 reads one byte
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.readFull(r.scratch[:1]); err != nil {
		return 0, err
	}
	return r.scratch[0], nil
}

// ReadFloat64 reads an IEEE-754 double
func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.readFull(r.scratch[:8]); err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(r.scratch[:8])), nil
}

// ReadString reads n bytes and decodes them. No trimming is done.
func (r *Reader) ReadString(n int) (string, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return r.DecodeString(b), nil
}

// DecodeString decodes raw bytes with the current character set. Bytes the
// decoder rejects are passed through unchanged.
func (r *Reader) DecodeString(b []byte) string {
	out, err := r.decoder.Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// PeekInt32 reads a 4-byte integer without consuming it
func (r *Reader) PeekInt32() (int32, error) {
	start := r.pos
	v, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if err := r.Seek(start); err != nil {
		return 0, err
	}
	return v, nil
}

// Skip advances by n bytes
func (r *Reader) Skip(n int64) error {
	if n == 0 {
		return nil
	}
	return r.Seek(r.pos + n)
}

// Seek moves to an absolute offset
func (r *Reader) Seek(offset int64) error {
	if offset < 0 {
		return types.IOFailure("seek", r.pos, fmt.Errorf("negative offset %d", offset))
	}
	pos, err := r.src.Seek(offset, io.SeekStart)
	if err != nil {
		return types.IOFailure("seek", offset, err)
	}
	r.pos = pos
	return nil
}

// Position returns the absolute offset of the next read
func (r *Reader) Position() int64 {
	return r.pos
}

// Remaining returns the number of bytes between the read position and the end
// of the source
func (r *Reader) Remaining() int64 {
	if r.pos >= r.size {
		return 0
	}
	return r.size - r.pos
}

// ByteOrder returns the current byte order
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

// SetByteOrder sets the byte order used by every later read
func (r *Reader) SetByteOrder(order binary.ByteOrder) {
	r.order = order
}

// Encoding returns the current character set
func (r *Reader) Encoding() encoding.Encoding {
	return r.enc
}

// SetEncoding sets the character set used by every later text decode
func (r *Reader) SetEncoding(enc encoding.Encoding) {
	if enc == nil {
		enc = charmap.ISO8859_1
	}
	r.enc = enc
	r.decoder = enc.NewDecoder()
}
