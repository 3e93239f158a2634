package dictionary

import (
	"github.com/deploymenttheory/go-sav/internal/interfaces"
	"github.com/deploymenttheory/go-sav/internal/types"
)

// ReadMachineIntegerInfo decodes extension subtype 3
func ReadMachineIntegerInfo(r interfaces.PrimitiveReader) (*types.MachineIntegerInfo, error) {
	h, err := readExtensionHeader(r, types.SubtypeMachineInteger)
	if err != nil {
		return nil, err
	}
	if err := expectSize(h, 4); err != nil {
		return nil, err
	}
	if err := expectCount(h, 8); err != nil {
		return nil, err
	}

	info := &types.MachineIntegerInfo{ExtensionHeader: h}
	fields := []*int32{
		&info.ReleaseMajor, &info.ReleaseMinor, &info.ReleaseSpecial, &info.MachineCode,
		&info.FloatRepresentation, &info.CompressionScheme, &info.Endianness, &info.CharacterCode,
	}
	for _, field := range fields {
		if *field, err = r.ReadInt32(); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// ReadMachineFloatInfo decodes extension subtype 4
func ReadMachineFloatInfo(r interfaces.PrimitiveReader) (*types.MachineFloatInfo, error) {
	h, err := readExtensionHeader(r, types.SubtypeMachineFloat)
	if err != nil {
		return nil, err
	}
	if err := expectSize(h, 8); err != nil {
		return nil, err
	}
	if err := expectCount(h, 3); err != nil {
		return nil, err
	}

	info := &types.MachineFloatInfo{ExtensionHeader: h}
	for _, field := range []*float64{&info.SysMiss, &info.Highest, &info.Lowest} {
		if *field, err = r.ReadFloat64(); err != nil {
			return nil, err
		}
	}
	return info, nil
}
