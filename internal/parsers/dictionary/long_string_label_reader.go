package dictionary

import (
	"github.com/deploymenttheory/go-sav/internal/interfaces"
	"github.com/deploymenttheory/go-sav/internal/types"
)

// ReadLongStringValueLabels decodes extension subtype 21. The payload is a list
// of {name, width, labels} groups, each string prefixed by its 4-byte length.
func ReadLongStringValueLabels(r interfaces.PrimitiveReader) (*types.LongStringValueLabels, error) {
	h, err := readExtensionHeader(r, types.SubtypeLongStringValueLabels)
	if err != nil {
		return nil, err
	}
	if err := expectSize(h, 1); err != nil {
		return nil, err
	}

	op := extensionOp(h.Subtype)
	end := r.Position() + int64(h.Count)
	rec := &types.LongStringValueLabels{ExtensionHeader: h}

	readText := func() (string, error) {
		n, err := readCount(r, op, h.Offset)
		if err != nil {
			return "", err
		}
		if r.Position()+int64(n) > end {
			return "", types.FormatViolation(op, h.Offset, "string of %d bytes overruns record", n)
		}
		return r.ReadString(n)
	}

	for r.Position() < end {
		var set types.LongStringLabelSet

		name, err := readText()
		if err != nil {
			return nil, err
		}
		set.Name = trimText(name)

		if set.Width, err = r.ReadInt32(); err != nil {
			return nil, err
		}
		count, err := readCount(r, op, h.Offset)
		if err != nil {
			return nil, err
		}

		for i := 0; i < count; i++ {
			value, err := readText()
			if err != nil {
				return nil, err
			}
			label, err := readText()
			if err != nil {
				return nil, err
			}
			set.Labels = append(set.Labels, types.LongStringLabel{Value: trimText(value), Label: trimText(label)})
		}
		rec.Variables = append(rec.Variables, set)
	}

	if r.Position() != end {
		return nil, types.FormatViolation(op, h.Offset, "payload overruns declared length %d", h.Count)
	}
	return rec, nil
}
