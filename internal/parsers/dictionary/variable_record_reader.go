package dictionary

import (
	"github.com/deploymenttheory/go-sav/internal/interfaces"
	"github.com/deploymenttheory/go-sav/internal/types"
)

const opVariable = "variable record"

// ReadVariableRecord decodes a type 2 record. slot is the 0-based position of the
// record among all type 2 records read so far.
func ReadVariableRecord(r interfaces.PrimitiveReader, slot int) (*types.VariableRecord, error) {
	start, err := readTag(r, opVariable, types.RecordTypeVariable)
	if err != nil {
		return nil, err
	}

	v := &types.VariableRecord{Offset: start, Slot: slot}

	var printFormat, writeFormat int32
	for _, field := range []*int32{&v.TypeCode, &v.HasLabel, &v.MissingFormat, &printFormat, &writeFormat} {
		if *field, err = r.ReadInt32(); err != nil {
			return nil, err
		}
	}
	v.PrintFormat = types.ParseFormatSpec(printFormat)
	v.WriteFormat = types.ParseFormatSpec(writeFormat)

	if v.TypeCode < types.VariableTypeContinuation || v.TypeCode > types.MaxShortStringSize {
		return nil, types.FormatViolation(opVariable, start, "invalid variable type code %d", v.TypeCode)
	}
	if v.HasLabel != 0 && v.HasLabel != 1 {
		return nil, types.FormatViolation(opVariable, start, "invalid label flag %d, expected 0 or 1", v.HasLabel)
	}

	switch v.MissingFormat {
	case 0, 1, 2, 3:
	case -2, -3:
		if v.TypeCode != 0 {
			return nil, types.FormatViolation(opVariable, start, "missing value range on string variable")
		}
	default:
		return nil, types.FormatViolation(opVariable, start, "invalid missing value format code %d, expected -3..3", v.MissingFormat)
	}

	name, err := r.ReadString(types.ShortNameSize)
	if err != nil {
		return nil, err
	}
	v.Name = trimText(name)

	if v.HasLabel == 1 {
		n, err := readCountOf(r, opVariable, start, 1)
		if err != nil {
			return nil, err
		}
		label, err := r.ReadString(n)
		if err != nil {
			return nil, err
		}
		v.Label = trimText(label)
		if err := r.Skip(int64(roundUp(n, 4) - n)); err != nil {
			return nil, err
		}
	}

	slots := int(v.MissingFormat)
	if slots < 0 {
		slots = -slots
	}
	for i := 0; i < slots; i++ {
		raw, err := r.ReadBytes(types.BlockSize)
		if err != nil {
			return nil, err
		}
		v.MissingValues = append(v.MissingValues, raw)
	}

	return v, nil
}
