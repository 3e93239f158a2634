// Package types implements the on-disk structures of the SPSS system file (.sav) format.
// Field layouts follow the system file description published with GNU PSPP
// (sfm-read.c) and the record types emitted by SPSS for Windows/Unix.
package types

// File signature and layout

// FileMagic is the 4-character signature at offset 0 of every uncompressed or
// bytecode-compressed system file.
const FileMagic = "$FL2"

// Layout codes stored in the file header. Any other value means the header was
// read with the wrong byte order.
const (
	LayoutCodeStandard  = 2
	LayoutCodeAlternate = 3
)

// Record type tags. Each dictionary record starts with one of these 4-byte codes.
const (
	RecordTypeHeader          int32 = 1
	RecordTypeVariable        int32 = 2
	RecordTypeValueLabels     int32 = 3
	RecordTypeValueLabelIndex int32 = 4
	RecordTypeDocument        int32 = 6
	RecordTypeExtension       int32 = 7
	RecordTypeTerminator      int32 = 999
)

// Extension (type 7) record subtypes.
const (
	SubtypeMachineInteger        int32 = 3
	SubtypeMachineFloat          int32 = 4
	SubtypeVariableSets          int32 = 5
	SubtypeDisplayParameters     int32 = 11
	SubtypeLongVariableNames     int32 = 13
	SubtypeVeryLongStrings       int32 = 14
	SubtypeCharacterEncoding     int32 = 20
	SubtypeLongStringValueLabels int32 = 21
)

// Sizes of fixed record fields, in bytes.
const (
	BlockSize          = 8  // one numeric value or up to 8 string characters
	ProductNameSize    = 60 // header product identification
	CreationDateSize   = 9  // dd mmm yy
	CreationTimeSize   = 8  // hh:mm:ss
	FileLabelSize      = 64 // header file label
	HeaderPaddingSize  = 3
	ShortNameSize      = 8  // type 2 record variable name
	DocumentLineSize   = 80 // type 6 record line
	MaxMissingValues   = 3
	MaxShortStringSize = 255 // widest string a single type 2 entry can hold
)

// VariableTypeContinuation marks a type 2 record that only reserves space for the
// next 8 characters of the preceding string variable.
const VariableTypeContinuation int32 = -1

// UnknownObservationCount is written in the header by writers that do not compute
// the number of 8-byte slots per case.
const UnknownObservationCount int32 = -1

// UnknownCaseCount is written in the header when the writer did not know the number
// of cases ahead of time.
const UnknownCaseCount int32 = -1

// DefaultCompressionBias is the bias SPSS subtracts from compression codes 1-251.
const DefaultCompressionBias = 100.0

// Compression switch values found in the header.
const (
	CompressionNone     int32 = 0
	CompressionBytecode int32 = 1
	CompressionZlib     int32 = 2
)

// Measure levels from the display parameter record.
const (
	MeasureUnknown = -1
	MeasureNominal = 1
	MeasureOrdinal = 2
	MeasureScale   = 3
)

// Alignments from the display parameter record.
const (
	AlignmentUnknown = -1
	AlignmentLeft    = 0
	AlignmentRight   = 1
	AlignmentCenter  = 2
)

// GregorianEpochOffset is the number of seconds between midnight 14 October 1582
// (the SPSS date origin) and the Unix epoch.
const GregorianEpochOffset = 12219379200.0
