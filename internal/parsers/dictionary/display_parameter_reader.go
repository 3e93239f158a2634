package dictionary

import (
	"github.com/deploymenttheory/go-sav/internal/interfaces"
	"github.com/deploymenttheory/go-sav/internal/types"
)

// ReadDisplayParameters decodes extension subtype 11: one {measure, width,
// alignment} triple per variable in dictionary order
func ReadDisplayParameters(r interfaces.PrimitiveReader) (*types.DisplayParameters, error) {
	h, err := readExtensionHeader(r, types.SubtypeDisplayParameters)
	if err != nil {
		return nil, err
	}
	if err := expectSize(h, 4); err != nil {
		return nil, err
	}
	if h.Count%3 != 0 {
		return nil, types.FormatViolation(extensionOp(h.Subtype), h.Offset, "element count %d is not a multiple of 3", h.Count)
	}

	params := &types.DisplayParameters{ExtensionHeader: h, Variables: make([]types.DisplayParameter, h.Count/3)}
	for i := range params.Variables {
		p := &params.Variables[i]
		for _, field := range []*int32{&p.Measure, &p.Width, &p.Alignment} {
			if *field, err = r.ReadInt32(); err != nil {
				return nil, err
			}
		}
	}
	return params, nil
}
