package dictionary

import (
	"fmt"
	"math"

	"github.com/deploymenttheory/go-sav/internal/interfaces"
	"github.com/deploymenttheory/go-sav/internal/types"
)

func extensionOp(subtype int32) string {
	if subtype == 0 {
		return "extension record"
	}
	return fmt.Sprintf("extension record subtype %d", subtype)
}

// PeekSubtype returns the subtype of the type 7 record at the current position
// without consuming anything
func PeekSubtype(r interfaces.PrimitiveReader) (int32, error) {
	start := r.Position()
	if _, err := readTag(r, extensionOp(0), types.RecordTypeExtension); err != nil {
		return 0, err
	}
	subtype, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if err := r.Seek(start); err != nil {
		return 0, err
	}
	return subtype, nil
}

// readExtensionHeader reads the tag, subtype, element size and element count.
// A want of zero accepts any subtype.
func readExtensionHeader(r interfaces.PrimitiveReader, want int32) (types.ExtensionHeader, error) {
	op := extensionOp(want)
	start, err := readTag(r, op, types.RecordTypeExtension)
	if err != nil {
		return types.ExtensionHeader{}, err
	}

	h := types.ExtensionHeader{Offset: start}
	for _, field := range []*int32{&h.Subtype, &h.Size, &h.Count} {
		if *field, err = r.ReadInt32(); err != nil {
			return h, err
		}
	}

	if want != 0 && h.Subtype != want {
		return h, types.FormatViolation(op, start, "unexpected subtype %d", h.Subtype)
	}
	if h.Size < 0 || h.Count < 0 || int64(h.Size)*int64(h.Count) > math.MaxInt32 {
		return h, types.FormatViolation(extensionOp(h.Subtype), start, "invalid element size %d or count %d", h.Size, h.Count)
	}
	if err := checkFits(r, extensionOp(h.Subtype), start, int64(h.Size)*int64(h.Count)); err != nil {
		return h, err
	}
	return h, nil
}

func expectSize(h types.ExtensionHeader, size int32) error {
	if h.Size != size {
		return types.FormatViolation(extensionOp(h.Subtype), h.Offset, "element size is %d, expected %d", h.Size, size)
	}
	return nil
}

func expectCount(h types.ExtensionHeader, count int32) error {
	if h.Count != count {
		return types.FormatViolation(extensionOp(h.Subtype), h.Offset, "element count is %d, expected %d", h.Count, count)
	}
	return nil
}

// ReadExtension decodes any type 7 record as an opaque payload
func ReadExtension(r interfaces.PrimitiveReader) (*types.ExtensionRecord, error) {
	h, err := readExtensionHeader(r, 0)
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes(int(h.Size) * int(h.Count))
	if err != nil {
		return nil, err
	}
	return &types.ExtensionRecord{ExtensionHeader: h, Data: data}, nil
}
