package dictionary

import (
	"strconv"
	"strings"

	"github.com/deploymenttheory/go-sav/internal/interfaces"
	"github.com/deploymenttheory/go-sav/internal/types"
)

// readTextExtension reads an extension record whose payload is one text blob
func readTextExtension(r interfaces.PrimitiveReader, subtype int32) (types.ExtensionHeader, string, error) {
	h, err := readExtensionHeader(r, subtype)
	if err != nil {
		return h, "", err
	}
	if err := expectSize(h, 1); err != nil {
		return h, "", err
	}
	text, err := r.ReadString(int(h.Count))
	if err != nil {
		return h, "", err
	}
	return h, text, nil
}

// splitPairs parses tab separated key=value entries
func splitPairs(h types.ExtensionHeader, text string) ([]types.NamePair, error) {
	var pairs []types.NamePair
	for _, entry := range strings.Split(text, "\t") {
		entry = strings.Trim(entry, "\x00 \r\n")
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, types.FormatViolation(extensionOp(h.Subtype), h.Offset, "malformed entry %q, expected name=value", entry)
		}
		pairs = append(pairs, types.NamePair{Key: key, Value: value})
	}
	return pairs, nil
}

// ReadVariableSets decodes extension subtype 5. The text is not interpreted.
func ReadVariableSets(r interfaces.PrimitiveReader) (*types.VariableSets, error) {
	h, text, err := readTextExtension(r, types.SubtypeVariableSets)
	if err != nil {
		return nil, err
	}
	return &types.VariableSets{ExtensionHeader: h, Text: text}, nil
}

// ReadLongVariableNames decodes extension subtype 13
func ReadLongVariableNames(r interfaces.PrimitiveReader) (*types.LongVariableNames, error) {
	h, text, err := readTextExtension(r, types.SubtypeLongVariableNames)
	if err != nil {
		return nil, err
	}
	pairs, err := splitPairs(h, text)
	if err != nil {
		return nil, err
	}
	return &types.LongVariableNames{ExtensionHeader: h, Text: text, Names: pairs}, nil
}

// ReadVeryLongStrings decodes extension subtype 14. Writers terminate every
// length with a NUL byte, which is dropped before the integer is parsed.
func ReadVeryLongStrings(r interfaces.PrimitiveReader) (*types.VeryLongStrings, error) {
	h, text, err := readTextExtension(r, types.SubtypeVeryLongStrings)
	if err != nil {
		return nil, err
	}
	pairs, err := splitPairs(h, text)
	if err != nil {
		return nil, err
	}

	rec := &types.VeryLongStrings{ExtensionHeader: h, Text: text}
	for _, p := range pairs {
		width, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(p.Value, "\x00", "")))
		if err != nil || width <= 0 {
			return nil, types.FormatViolation(extensionOp(h.Subtype), h.Offset, "invalid string length %q for %s", p.Value, p.Key)
		}
		rec.Entries = append(rec.Entries, types.VeryLongStringWidth{Name: p.Key, Width: width})
	}
	return rec, nil
}

// ReadCharacterEncoding decodes extension subtype 20
func ReadCharacterEncoding(r interfaces.PrimitiveReader) (*types.CharacterEncoding, error) {
	h, text, err := readTextExtension(r, types.SubtypeCharacterEncoding)
	if err != nil {
		return nil, err
	}
	return &types.CharacterEncoding{ExtensionHeader: h, Name: trimText(text)}, nil
}
