package dictionary

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-sav/internal/interfaces"
	"github.com/deploymenttheory/go-sav/internal/types"
)

const opHeader = "file header"

// ReadHeader decodes the type 1 record at the current position. The byte order
// of r is switched to big-endian when the layout code only makes sense that way;
// every later read on r then uses the detected order.
func ReadHeader(r interfaces.PrimitiveReader) (*types.FileHeader, error) {
	start := r.Position()

	magic, err := r.ReadBytes(len(types.FileMagic))
	if err != nil {
		return nil, err
	}
	if string(magic) != types.FileMagic {
		return nil, types.FormatViolation(opHeader, start, "invalid signature %q, expected %q", magic, types.FileMagic)
	}

	h := &types.FileHeader{Offset: start, Signature: string(magic)}

	product, err := r.ReadString(types.ProductNameSize)
	if err != nil {
		return nil, err
	}
	h.ProductName = trimText(product)

	if h.LayoutCode, err = readLayoutCode(r); err != nil {
		return nil, err
	}

	for _, field := range []*int32{&h.ObservationsPerCase, &h.Compression, &h.WeightIndex, &h.CaseCount} {
		if *field, err = r.ReadInt32(); err != nil {
			return nil, err
		}
	}

	switch h.Compression {
	case types.CompressionNone, types.CompressionBytecode:
	case types.CompressionZlib:
		return nil, types.FormatViolation(opHeader, start, "zlib compressed files are not supported")
	default:
		return nil, types.FormatViolation(opHeader, start, "invalid compression code %d", h.Compression)
	}

	if h.Bias, err = r.ReadFloat64(); err != nil {
		return nil, err
	}

	date, err := r.ReadString(types.CreationDateSize)
	if err != nil {
		return nil, err
	}
	clock, err := r.ReadString(types.CreationTimeSize)
	if err != nil {
		return nil, err
	}
	label, err := r.ReadString(types.FileLabelSize)
	if err != nil {
		return nil, err
	}
	h.CreationDate = trimText(date)
	h.CreationTime = trimText(clock)
	h.FileLabel = trimText(label)

	if err := r.Skip(types.HeaderPaddingSize); err != nil {
		return nil, err
	}

	return h, nil
}

// readLayoutCode reads the layout code, retrying with the opposite byte order
// before giving up
func readLayoutCode(r interfaces.PrimitiveReader) (int32, error) {
	at := r.Position()
	code, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if validLayoutCode(code) {
		return code, nil
	}

	r.SetByteOrder(flip(r.ByteOrder()))
	if err := r.Seek(at); err != nil {
		return 0, err
	}
	retry, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if !validLayoutCode(retry) {
		return 0, types.FormatViolation(opHeader, at, "invalid layout code %d (%d with swapped byte order), expected %d or %d",
			code, retry, types.LayoutCodeStandard, types.LayoutCodeAlternate)
	}
	return retry, nil
}

func validLayoutCode(code int32) bool {
	return code == types.LayoutCodeStandard || code == types.LayoutCodeAlternate
}

func flip(order binary.ByteOrder) binary.ByteOrder {
	if order == binary.BigEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
