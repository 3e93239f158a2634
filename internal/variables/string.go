package variables

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/deploymenttheory/go-sav/internal/format"
	"github.com/deploymenttheory/go-sav/internal/types"
)

// StringVariable is a variable holding text. Strings longer than one dictionary
// entry allows are stored as an owner followed by segment entries; the owner
// decodes its segments and exposes the concatenated value.
type StringVariable struct {
	base
	decode       func([]byte) string
	value        string
	data         []string
	logicalWidth int
	segments     []*StringVariable
}

var _ Variable = (*StringVariable)(nil)

// NewStringVariable builds a string variable from its type 2 record. decode
// converts raw bytes to text with the file's character set.
func NewStringVariable(rec *types.VariableRecord, decode func([]byte) string) *StringVariable {
	v := &StringVariable{
		base:         newBase(rec),
		decode:       decode,
		logicalWidth: int(rec.TypeCode),
	}

	for _, raw := range rec.MissingValues {
		s := TrimValue(decode(raw))
		v.missing.Strings = append(v.missing.Strings, s)
		v.AddCategory(s, "")
	}

	return v
}

// Kind returns String
func (v *StringVariable) Kind() Kind { return String }

// EntryWidth returns the width of the dictionary entry, at most 255
func (v *StringVariable) EntryWidth() int { return int(v.record.TypeCode) }

// Blocks returns the number of 8-byte blocks the entry occupies in a case
func (v *StringVariable) Blocks() int {
	return (v.EntryWidth() + types.BlockSize - 1) / types.BlockSize
}

// Width returns the logical width, which exceeds the entry width for very long strings
func (v *StringVariable) Width() int { return v.logicalWidth }

// SetWidth sets the logical width
func (v *StringVariable) SetWidth(width int) { v.logicalWidth = width }

// Segments returns the segment entries in dictionary order
func (v *StringVariable) Segments() []*StringVariable { return v.segments }

// AddSegment appends a segment entry
func (v *StringVariable) AddSegment(seg *StringVariable) { v.segments = append(v.segments, seg) }

// Key returns the canonical category key of a value: the value right-trimmed
func (v *StringVariable) Key(s string) string {
	return TrimValue(s)
}

// TrimValue removes trailing whitespace from a string value. A value of only
// whitespace becomes empty.
func TrimValue(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// AddCategory merges a labelled value into the category map
func (v *StringVariable) AddCategory(s, label string) *Category {
	c := v.categories.Upsert(v.Key(s))
	c.Text = c.Key
	if label != "" {
		c.Label = label
	}
	c.Missing = v.missing.ContainsString(s)
	return c
}

// AddRawCategory merges a value label whose value is still in on-disk form
func (v *StringVariable) AddRawCategory(raw []byte, label string) *Category {
	return v.AddCategory(v.decode(raw), label)
}

// CategoryFor looks a category up by value
func (v *StringVariable) CategoryFor(s string) (*Category, bool) {
	return v.categories.Get(v.Key(s))
}

// CategoryForRaw looks a category up by the raw bytes of a value
func (v *StringVariable) CategoryForRaw(raw []byte) (*Category, bool) {
	return v.CategoryFor(v.decode(raw))
}

// IsMissing reports whether s is user-missing
func (v *StringVariable) IsMissing(s string) bool {
	return v.missing.ContainsString(s)
}

// Value returns the current value
func (v *StringVariable) Value() string { return v.value }

// SetValue sets the current value
func (v *StringVariable) SetValue(s string) { v.value = s }

// AppendValue appends a bulk-loaded value
func (v *StringVariable) AppendValue(s string) {
	v.value = s
	v.data = append(v.data, s)
}

// ValueAt returns observation obs (1-based), or the current value for 0
func (v *StringVariable) ValueAt(obs int) (string, error) {
	if err := observation(obs, len(v.data)); err != nil {
		return "", err
	}
	if obs == 0 {
		return v.value, nil
	}
	return v.data[obs-1], nil
}

// Values returns the bulk-loaded values
func (v *StringVariable) Values() []string { return v.data }

// ObservationCount returns the number of bulk-loaded values
func (v *StringVariable) ObservationCount() int { return len(v.data) }

// ResetValues clears the current value and the loaded values
func (v *StringVariable) ResetValues() {
	v.value = ""
	v.data = nil
}

// ValueAsText shapes an observation for opts
func (v *StringVariable) ValueAsText(obs int, opts format.Options) (string, error) {
	s, err := v.ValueAt(obs)
	if err != nil {
		return "", err
	}
	return format.ShapeString(s, v.Width(), opts), nil
}

// SPSSFormat returns A followed by the logical width
func (v *StringVariable) SPSSFormat() string {
	return "A" + strconv.Itoa(v.Width())
}
