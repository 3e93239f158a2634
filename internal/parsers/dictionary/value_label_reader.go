package dictionary

import (
	"github.com/deploymenttheory/go-sav/internal/interfaces"
	"github.com/deploymenttheory/go-sav/internal/types"
)

const (
	opValueLabels     = "value label record"
	opValueLabelIndex = "value label index record"
)

// ReadValueLabels decodes a type 3 record. Values are kept as the raw 8 bytes
// found on disk; the caller decodes them once the owning variables are known.
func ReadValueLabels(r interfaces.PrimitiveReader) (*types.ValueLabelRecord, error) {
	start, err := readTag(r, opValueLabels, types.RecordTypeValueLabels)
	if err != nil {
		return nil, err
	}

	// 8-byte value, length byte, padding to 8
	count, err := readCountOf(r, opValueLabels, start, 2*types.BlockSize)
	if err != nil {
		return nil, err
	}

	rec := &types.ValueLabelRecord{Offset: start, Labels: make([]types.ValueLabel, 0, count)}
	for i := 0; i < count; i++ {
		value, err := r.ReadBytes(types.BlockSize)
		if err != nil {
			return nil, err
		}
		n, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		label, err := r.ReadString(int(n))
		if err != nil {
			return nil, err
		}
		// the length byte counts towards the 8-byte alignment
		if err := r.Skip(int64(roundUp(int(n)+1, types.BlockSize) - int(n) - 1)); err != nil {
			return nil, err
		}
		rec.Labels = append(rec.Labels, types.ValueLabel{Value: value, Label: trimText(label)})
	}

	return rec, nil
}

// ReadValueLabelIndex decodes the type 4 record that follows every type 3 record
func ReadValueLabelIndex(r interfaces.PrimitiveReader) (*types.ValueLabelIndex, error) {
	start, err := readTag(r, opValueLabelIndex, types.RecordTypeValueLabelIndex)
	if err != nil {
		return nil, err
	}

	count, err := readCountOf(r, opValueLabelIndex, start, 4)
	if err != nil {
		return nil, err
	}

	idx := &types.ValueLabelIndex{Offset: start, Variables: make([]int32, count)}
	for i := range idx.Variables {
		if idx.Variables[i], err = r.ReadInt32(); err != nil {
			return nil, err
		}
	}

	return idx, nil
}
