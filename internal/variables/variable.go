// Package variables models the logical variables of a system file: numeric and
// string variables with their categories, missing value rules and values.
package variables

import (
	"fmt"

	"github.com/deploymenttheory/go-sav/internal/format"
	"github.com/deploymenttheory/go-sav/internal/types"
)

// Kind distinguishes the two variable variants
type Kind int

const (
	Numeric Kind = iota
	String
)

func (k Kind) String() string {
	if k == String {
		return "string"
	}
	return "numeric"
}

// Variable is the behaviour shared by numeric and string variables
type Variable interface {
	// Kind returns Numeric or String
	Kind() Kind

	// Position returns the 1-based position among logical variables
	Position() int

	// Slot returns the 0-based dictionary slot of the defining type 2 record
	Slot() int

	// ShortName returns the 8-character name from the type 2 record
	ShortName() string

	// Name returns the long name, or the short name when none was recorded
	Name() string

	// Label returns the variable label
	Label() string

	// Width returns the logical display width: the write format width for
	// numeric variables and the full string length for string variables
	Width() int

	// Decimals returns the number of decimals of the write format
	Decimals() int

	PrintFormat() types.FormatSpec
	WriteFormat() types.FormatSpec

	// Measure, DisplayWidth and Alignment return the display parameters
	Measure() int32
	DisplayWidth() int32
	Alignment() int32

	// Missing returns the user-missing rule
	Missing() MissingRule

	// Categories returns the labelled and missing values in insertion order
	Categories() *CategoryMap

	// CategoryForRaw looks a category up by the raw 8 bytes of a value label record
	CategoryForRaw(raw []byte) (*Category, bool)

	// HasValueLabels reports whether any category carries a label
	HasValueLabels() bool

	// ObservationCount returns the number of values loaded in bulk
	ObservationCount() int

	// ValueAsText formats observation obs (1-based), or the current value when obs is 0
	ValueAsText(obs int, opts format.Options) (string, error)

	// SPSSFormat returns the write format in SPSS syntax, such as F8.2 or A20
	SPSSFormat() string

	// Record returns the defining type 2 record
	Record() *types.VariableRecord

	SetName(name string)
	SetPosition(position int)
	SetDisplay(p types.DisplayParameter)

	// ResetValues drops the current value and every loaded value
	ResetValues()
}

// base holds the fields shared by both variants
type base struct {
	record     *types.VariableRecord
	position   int
	name       string
	display    types.DisplayParameter
	missing    MissingRule
	categories *CategoryMap
}

func newBase(rec *types.VariableRecord) base {
	return base{
		record:     rec,
		name:       rec.Name,
		display:    types.DisplayParameter{Measure: types.MeasureUnknown, Width: -1, Alignment: types.AlignmentUnknown},
		missing:    MissingRule{Code: rec.MissingFormat},
		categories: NewCategoryMap(),
	}
}

func (b *base) Position() int                       { return b.position }
func (b *base) Slot() int                           { return b.record.Slot }
func (b *base) ShortName() string                   { return b.record.Name }
func (b *base) Name() string                        { return b.name }
func (b *base) Label() string                       { return b.record.Label }
func (b *base) Decimals() int                       { return b.record.WriteFormat.Decimals }
func (b *base) PrintFormat() types.FormatSpec       { return b.record.PrintFormat }
func (b *base) WriteFormat() types.FormatSpec       { return b.record.WriteFormat }
func (b *base) Measure() int32                      { return b.display.Measure }
func (b *base) DisplayWidth() int32                 { return b.display.Width }
func (b *base) Alignment() int32                    { return b.display.Alignment }
func (b *base) Missing() MissingRule                { return b.missing }
func (b *base) Categories() *CategoryMap            { return b.categories }
func (b *base) Record() *types.VariableRecord       { return b.record }
func (b *base) HasValueLabels() bool                { return b.categories.Labelled() > 0 }
func (b *base) SetName(name string)                 { b.name = name }
func (b *base) SetPosition(position int)            { b.position = position }
func (b *base) SetDisplay(p types.DisplayParameter) { b.display = p }

// observation validates an observation number against the loaded values
func observation(obs, loaded int) error {
	if obs < 0 || obs > loaded {
		if obs > 0 && loaded == 0 {
			return types.ErrDataNotLoaded
		}
		return fmt.Errorf("%w: %d, valid range is 1 to %d or 0 for the current value", types.ErrObservationRange, obs, loaded)
	}
	return nil
}

// MeasureLabel names a measure level
func MeasureLabel(measure int32) string {
	switch measure {
	case types.MeasureNominal:
		return "Nominal"
	case types.MeasureOrdinal:
		return "Ordinal"
	case types.MeasureScale:
		return "Scale"
	}
	return "Unknown"
}

// AlignmentLabel names an alignment
func AlignmentLabel(alignment int32) string {
	switch alignment {
	case types.AlignmentLeft:
		return "Left"
	case types.AlignmentRight:
		return "Right"
	case types.AlignmentCenter:
		return "Center"
	}
	return "Unknown"
}

// spssFormatNames maps write format types to the spelling used in SPSS syntax.
// Date formats without decimals are rendered by width only.
var spssFormatNames = map[types.FormatType]struct {
	name     string
	decimals bool
}{
	types.FormatCOMMA:    {"Comma", true},
	types.FormatDOLLAR:   {"Dollar", true},
	types.FormatF:        {"F", true},
	types.FormatE:        {"E", true},
	types.FormatDATE:     {"Date", false},
	types.FormatTIME:     {"Time", true},
	types.FormatDATETIME: {"DateTime", true},
	types.FormatADATE:    {"ADate", false},
	types.FormatJDATE:    {"JDate", false},
	types.FormatDTIME:    {"DTime", true},
	types.FormatWKDAY:    {"Wkday", false},
	types.FormatMONTH:    {"Month", false},
	types.FormatMOYR:     {"Moyr", false},
	types.FormatQYR:      {"QYr", false},
	types.FormatWKYR:     {"Wkyr", false},
	types.FormatPCT:      {"Pct", true},
	types.FormatDOT:      {"Dot", true},
	types.FormatCCA:      {"Cca", true},
	types.FormatCCB:      {"Ccb", true},
	types.FormatCCC:      {"Ccc", true},
	types.FormatCCD:      {"Ccd", true},
	types.FormatCCE:      {"Cce", true},
	types.FormatEDATE:    {"EDate", false},
	types.FormatSDATE:    {"SDate", false},
}

func spssFormat(spec types.FormatSpec) string {
	f, ok := spssFormatNames[spec.Type]
	if !ok {
		return "other"
	}
	if f.decimals {
		return fmt.Sprintf("%s%d.%d", f.name, spec.Width, spec.Decimals)
	}
	return fmt.Sprintf("%s%d", f.name, spec.Width)
}
