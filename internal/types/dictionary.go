package types

// Dictionary records
// The dictionary is the sequence of records between the file header and the
// type 999 terminator. Every record carries the absolute offset it was read from
// so that errors and traces can point back into the file.

// FileHeader is the type 1 general information record (176 bytes).
type FileHeader struct {
	Offset int64

	// Signature is always FileMagic.
	Signature string

	// ProductName identifies the writer, right-trimmed.
	ProductName string

	// LayoutCode is 2 or 3 once the correct byte order has been found.
	LayoutCode int32

	// ObservationsPerCase is the number of 8-byte slots per case. Writers that do not
	// fill it in store UnknownObservationCount.
	ObservationsPerCase int32

	// Compression is CompressionNone or CompressionBytecode.
	Compression int32

	// WeightIndex is the 1-based dictionary slot of the weight variable, 0 if unweighted.
	WeightIndex int32

	// CaseCount is the number of cases, or UnknownCaseCount.
	CaseCount int32

	// Bias is subtracted from compression codes 1-251.
	Bias float64

	CreationDate string
	CreationTime string

	// FileLabel is the dataset label, right-trimmed.
	FileLabel string
}

// IsCompressed reports whether the data section uses bytecode compression.
func (h *FileHeader) IsCompressed() bool {
	return h.Compression != CompressionNone
}

// VariableRecord is a type 2 record describing one 8-byte slot of a case.
type VariableRecord struct {
	Offset int64

	// Slot is the 0-based position of the record among all type 2 records,
	// continuation records included.
	Slot int

	// TypeCode is 0 for numeric variables, 1-255 for the string width and
	// VariableTypeContinuation for continuation records.
	TypeCode int32

	HasLabel int32

	// MissingFormat is in -3..3: 1..3 discrete values, -2 a range, -3 a range plus
	// one discrete value.
	MissingFormat int32

	PrintFormat FormatSpec
	WriteFormat FormatSpec

	// Name is the 8-character short name, right-trimmed.
	Name string

	Label string

	// MissingValues holds the raw 8-byte missing value slots in file order. Their
	// interpretation depends on the variable type and the file byte order.
	MissingValues [][]byte
}

// IsContinuation reports whether the record only extends the previous string.
func (v *VariableRecord) IsContinuation() bool {
	return v.TypeCode == VariableTypeContinuation
}

// IsNumeric reports whether the record describes a numeric variable.
func (v *VariableRecord) IsNumeric() bool {
	return v.TypeCode == 0
}

// ValueLabel is one value/label pair of a type 3 record. Value holds the raw
// 8 bytes as stored on disk; numeric interpretation is deferred until the owning
// variable, and therefore its type, is known.
type ValueLabel struct {
	Value []byte
	Label string
}

// ValueLabelRecord is a type 3 record.
type ValueLabelRecord struct {
	Offset int64
	Labels []ValueLabel
}

// ValueLabelIndex is the type 4 record that must follow every type 3 record. It
// lists the 1-based dictionary slots the preceding labels apply to.
type ValueLabelIndex struct {
	Offset    int64
	Variables []int32
}

// DocumentRecord is a type 6 record of fixed 80-character lines.
type DocumentRecord struct {
	Offset int64
	Lines  []string
}

// ExtensionHeader is the common prefix of every type 7 record.
type ExtensionHeader struct {
	Offset  int64
	Subtype int32
	Size    int32
	Count   int32
}

// MachineIntegerInfo is extension subtype 3.
type MachineIntegerInfo struct {
	ExtensionHeader
	ReleaseMajor        int32
	ReleaseMinor        int32
	ReleaseSpecial      int32
	MachineCode         int32
	FloatRepresentation int32 // 1=IEEE, 2=IBM 370, 3=DEC VAX E
	CompressionScheme   int32
	Endianness          int32 // 1=big-endian, 2=little-endian
	CharacterCode       int32 // 1=EBCDIC, 2=7-bit ASCII, 3=8-bit ASCII, 4=DEC Kanji, or a code page
}

// FloatRepresentationLabel names the floating point format of the writer.
func (m *MachineIntegerInfo) FloatRepresentationLabel() string {
	switch m.FloatRepresentation {
	case 1:
		return "IEEE"
	case 2:
		return "IBM 370"
	case 3:
		return "DEC VAX E"
	}
	return "Unknown"
}

// EndiannessLabel names the byte order declared by the writer.
func (m *MachineIntegerInfo) EndiannessLabel() string {
	switch m.Endianness {
	case 1:
		return "Big endian"
	case 2:
		return "Little endian"
	}
	return "Unknown"
}

// CharacterCodeLabel names the character representation declared by the writer.
func (m *MachineIntegerInfo) CharacterCodeLabel() string {
	switch m.CharacterCode {
	case 1:
		return "EBCDIC"
	case 2:
		return "7-bit ASCII"
	case 3:
		return "8-bit ASCII"
	case 4:
		return "DEC Kanji"
	}
	return "Unknown"
}

// MachineFloatInfo is extension subtype 4.
type MachineFloatInfo struct {
	ExtensionHeader
	SysMiss float64
	Highest float64
	Lowest  float64
}

// VariableSets is extension subtype 5, kept as opaque text.
type VariableSets struct {
	ExtensionHeader
	Text string
}

// DisplayParameter holds the display settings of one variable.
type DisplayParameter struct {
	Measure   int32
	Width     int32
	Alignment int32
}

// DisplayParameters is extension subtype 11.
type DisplayParameters struct {
	ExtensionHeader
	Variables []DisplayParameter
}

// NamePair is one key=value entry of a tab separated extension record.
type NamePair struct {
	Key   string
	Value string
}

// LongVariableNames is extension subtype 13: short name to long name, in file order.
type LongVariableNames struct {
	ExtensionHeader
	Text  string
	Names []NamePair
}

// Lookup returns the long name recorded for a short name.
func (l *LongVariableNames) Lookup(short string) (string, bool) {
	for _, p := range l.Names {
		if p.Key == short {
			return p.Value, true
		}
	}
	return "", false
}

// VeryLongStringWidth is one entry of extension subtype 14.
type VeryLongStringWidth struct {
	Name  string
	Width int
}

// VeryLongStrings is extension subtype 14.
type VeryLongStrings struct {
	ExtensionHeader
	Text    string
	Entries []VeryLongStringWidth
}

// CharacterEncoding is extension subtype 20.
type CharacterEncoding struct {
	ExtensionHeader
	Name string
}

// LongStringLabel is one value/label pair of extension subtype 21.
type LongStringLabel struct {
	Value string
	Label string
}

// LongStringLabelSet holds the labels for one long string variable.
type LongStringLabelSet struct {
	Name   string
	Width  int32
	Labels []LongStringLabel
}

// LongStringValueLabels is extension subtype 21.
type LongStringValueLabels struct {
	ExtensionHeader
	Variables []LongStringLabelSet
}

// ExtensionRecord is any type 7 subtype without a dedicated decoder.
type ExtensionRecord struct {
	ExtensionHeader
	Data []byte
}
