package types

import "fmt"

// FormatType is the type byte of a print or write format specification.
type FormatType uint8

// Format types. Reference: PSPP format.def, SPSS system file format description.
const (
	FormatContinuation FormatType = 0
	FormatA            FormatType = 1
	FormatAHEX         FormatType = 2
	FormatCOMMA        FormatType = 3
	FormatDOLLAR       FormatType = 4
	FormatF            FormatType = 5
	FormatIB           FormatType = 6
	FormatPIBHEX       FormatType = 7
	FormatP            FormatType = 8
	FormatPIB          FormatType = 9
	FormatPK           FormatType = 10
	FormatRB           FormatType = 11
	FormatRBHEX        FormatType = 12
	FormatZ            FormatType = 15
	FormatN            FormatType = 16
	FormatE            FormatType = 17
	FormatDATE         FormatType = 20
	FormatTIME         FormatType = 21
	FormatDATETIME     FormatType = 22
	FormatADATE        FormatType = 23
	FormatJDATE        FormatType = 24
	FormatDTIME        FormatType = 25
	FormatWKDAY        FormatType = 26
	FormatMONTH        FormatType = 27
	FormatMOYR         FormatType = 28
	FormatQYR          FormatType = 29
	FormatWKYR         FormatType = 30
	FormatPCT          FormatType = 31
	FormatDOT          FormatType = 32
	FormatCCA          FormatType = 33
	FormatCCB          FormatType = 34
	FormatCCC          FormatType = 35
	FormatCCD          FormatType = 36
	FormatCCE          FormatType = 37
	FormatEDATE        FormatType = 38
	FormatSDATE        FormatType = 39
)

var formatCodes = map[FormatType]string{
	FormatContinuation: "",
	FormatA:            "A",
	FormatAHEX:         "AHEX",
	FormatCOMMA:        "COMMA",
	FormatDOLLAR:       "DOLLAR",
	FormatF:            "F",
	FormatIB:           "IB",
	FormatPIBHEX:       "PIBHEX",
	FormatP:            "P",
	FormatPIB:          "PIB",
	FormatPK:           "PK",
	FormatRB:           "RB",
	FormatRBHEX:        "RBHEX",
	FormatZ:            "Z",
	FormatN:            "N",
	FormatE:            "E",
	FormatDATE:         "DATE",
	FormatTIME:         "TIME",
	FormatDATETIME:     "DATETIME",
	FormatADATE:        "ADATE",
	FormatJDATE:        "JDATE",
	FormatDTIME:        "DTIME",
	FormatWKDAY:        "WKDAY",
	FormatMONTH:        "MONTH",
	FormatMOYR:         "MOYR",
	FormatQYR:          "QYR",
	FormatWKYR:         "WKYR",
	FormatPCT:          "PCT",
	FormatDOT:          "DOT",
	FormatCCA:          "CCA",
	FormatCCB:          "CCB",
	FormatCCC:          "CCC",
	FormatCCD:          "CCD",
	FormatCCE:          "CCE",
	FormatEDATE:        "EDATE",
	FormatSDATE:        "SDATE",
}

var formatLabels = map[FormatType]string{
	FormatContinuation: "Continuation of string variable",
	FormatA:            "Alphanumeric",
	FormatAHEX:         "Alphanumeric hexadecimal",
	FormatCOMMA:        "F format with comma",
	FormatDOLLAR:       "Commas and floating dollar sign",
	FormatF:            "F (default numeric) format",
	FormatIB:           "Integer binary",
	FormatPIBHEX:       "Positive integer binary - hexadecimal",
	FormatP:            "Packed decimal",
	FormatPIB:          "Positive integer binary (unsigned)",
	FormatPK:           "Positive packed decimal (unsigned)",
	FormatRB:           "Floating point binary",
	FormatRBHEX:        "Floating point binary - hex",
	FormatZ:            "Zoned decimal",
	FormatN:            "N format - unsigned with leading zeroes",
	FormatE:            "E format - with explicit power of 10",
	FormatDATE:         "Date format dd-mmm-yyyy",
	FormatTIME:         "Time format hh:mm:ss.s",
	FormatDATETIME:     "Date and time",
	FormatADATE:        "Date in mm/dd/yyyy form",
	FormatJDATE:        "Julian date - yyyyddd",
	FormatDTIME:        "Date-time dd hh:mm:ss.s",
	FormatWKDAY:        "Day of the week",
	FormatMONTH:        "Month",
	FormatMOYR:         "mmm yyyy",
	FormatQYR:          "q Q yyyy",
	FormatWKYR:         "ww WK yyyy",
	FormatPCT:          "Percent - F followed by '%'",
	FormatDOT:          "Like COMMA, switching dot for comma",
	FormatCCA:          "User-programmable currency format (1)",
	FormatCCB:          "User-programmable currency format (2)",
	FormatCCC:          "User-programmable currency format (3)",
	FormatCCD:          "User-programmable currency format (4)",
	FormatCCE:          "User-programmable currency format (5)",
	FormatEDATE:        "Date in dd.mm.yyyy style",
	FormatSDATE:        "Date in yyyy/mm/dd style",
}

// Code returns the SPSS keyword for the format type, or "UNK" when unknown.
func (t FormatType) Code() string {
	if code, ok := formatCodes[t]; ok {
		return code
	}
	return "UNK"
}

// Label returns a human readable description of the format type.
func (t FormatType) Label() string {
	if label, ok := formatLabels[t]; ok {
		return label
	}
	return "Unknown"
}

// IsDate reports whether the format renders values through the SPSS calendar.
func (t FormatType) IsDate() bool {
	switch t {
	case FormatDATE, FormatTIME, FormatDATETIME, FormatADATE, FormatJDATE, FormatDTIME,
		FormatMOYR, FormatQYR, FormatWKYR, FormatEDATE, FormatSDATE:
		return true
	}
	return false
}

// FormatSpec is a print or write format packed into a 4-byte integer as
// {decimals, width, type, reserved}, least significant byte first.
type FormatSpec struct {
	Decimals int
	Width    int
	Type     FormatType
	Reserved int
}

// ParseFormatSpec decomposes a packed format integer into its nibble fields.
func ParseFormatSpec(packed int32) FormatSpec {
	u := uint32(packed)
	return FormatSpec{
		Decimals: int(u & 0xFF),
		Width:    int((u >> 8) & 0xFF),
		Type:     FormatType((u >> 16) & 0xFF),
		Reserved: int((u >> 24) & 0xFF),
	}
}

// Pack re-encodes the specification into its on-disk integer form.
func (f FormatSpec) Pack() int32 {
	return int32(uint32(f.Decimals&0xFF) | uint32(f.Width&0xFF)<<8 | uint32(f.Type)<<16 | uint32(f.Reserved&0xFF)<<24)
}

// String renders the specification as an SPSS format keyword such as F8.2 or A20.
func (f FormatSpec) String() string {
	return fmt.Sprintf("%s%d.%d", f.Type.Code(), f.Width, f.Decimals)
}
