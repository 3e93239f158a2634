// File: internal/interfaces/byte_source.go
package interfaces

import (
	"encoding/binary"
	"io"

	"golang.org/x/text/encoding"
)

// ByteSource is a random-access, seekable stream of bytes with a current read position
type ByteSource interface {
	io.Reader
	io.Seeker
}

// PrimitiveReader provides endian-aware reads of the fixed-width values that make up a system file
type PrimitiveReader interface {
	// ReadInt32 reads a signed 4-byte integer in the current byte order
	ReadInt32() (int32, error)

	// ReadUint8 reads a single unsigned byte
	ReadUint8() (uint8, error)

	// ReadFloat64 reads an IEEE-754 double in the current byte order. Every bit pattern is accepted.
	ReadFloat64() (float64, error)

	// ReadBytes reads exactly n raw bytes
	ReadBytes(n int) ([]byte, error)

	// ReadString reads n bytes and decodes them with the current character set without trimming
	ReadString(n int) (string, error)

	// DecodeString decodes raw bytes with the current character set
	DecodeString(b []byte) string

	// PeekInt32 reads a 4-byte integer and rewinds to where it started
	PeekInt32() (int32, error)

	// Skip advances the read position by n bytes
	Skip(n int64) error

	// Seek moves the read position to an absolute offset
	Seek(offset int64) error

	// Position returns the absolute read position
	Position() int64

	// Remaining returns the number of bytes left after the read position
	Remaining() int64

	// ByteOrder returns the byte order applied to multi-byte reads
	ByteOrder() binary.ByteOrder

	// SetByteOrder changes the byte order for every later read
	SetByteOrder(order binary.ByteOrder)

	// Encoding returns the character set used to decode text
	Encoding() encoding.Encoding

	// SetEncoding changes the character set for every later text decode
	SetEncoding(enc encoding.Encoding)
}
