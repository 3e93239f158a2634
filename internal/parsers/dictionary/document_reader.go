package dictionary

import (
	"github.com/deploymenttheory/go-sav/internal/interfaces"
	"github.com/deploymenttheory/go-sav/internal/types"
)

// ReadDocument decodes a type 6 record
func ReadDocument(r interfaces.PrimitiveReader) (*types.DocumentRecord, error) {
	const op = "document record"

	start, err := readTag(r, op, types.RecordTypeDocument)
	if err != nil {
		return nil, err
	}

	count, err := readCountOf(r, op, start, types.DocumentLineSize)
	if err != nil {
		return nil, err
	}

	doc := &types.DocumentRecord{Offset: start, Lines: make([]string, count)}
	for i := range doc.Lines {
		line, err := r.ReadString(types.DocumentLineSize)
		if err != nil {
			return nil, err
		}
		doc.Lines[i] = trimText(line)
	}

	return doc, nil
}
