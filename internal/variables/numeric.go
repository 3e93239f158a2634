package variables

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/deploymenttheory/go-sav/internal/format"
	"github.com/deploymenttheory/go-sav/internal/types"
)

// maxSynthesisedRange bounds the number of categories created for a missing range
const maxSynthesisedRange = 1000

// maxExactInteger is the magnitude from which consecutive integers are no longer
// distinct doubles
const maxExactInteger = 1 << 53

// NumericVariable is a variable holding doubles
type NumericVariable struct {
	base
	order   binary.ByteOrder
	value   float64
	data    []float64
	summary Summary
}

var _ Variable = (*NumericVariable)(nil)

// NewNumericVariable builds a numeric variable from its type 2 record. Raw
// missing values are decoded with order, and every missing value becomes a
// category: discrete values always, and for ranges every integer inside the range
// when both ends are finite, below 2^53 in magnitude and at most 1000 apart.
func NewNumericVariable(rec *types.VariableRecord, order binary.ByteOrder) (*NumericVariable, error) {
	v := &NumericVariable{base: newBase(rec), order: order, value: math.NaN()}
	v.summary.reset()

	for _, raw := range rec.MissingValues {
		v.missing.Values = append(v.missing.Values, v.decode(raw))
	}

	if low, high, ok := v.missing.Range(); ok {
		if math.Abs(low) < maxExactInteger && math.Abs(high) < maxExactInteger && high-low <= maxSynthesisedRange {
			for x := int64(math.Ceil(low)); x <= int64(math.Floor(high)); x++ {
				if _, err := v.AddCategory(float64(x), ""); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, d := range v.missing.Discrete() {
		if _, err := v.AddCategory(d, ""); err != nil {
			return nil, err
		}
	}

	return v, nil
}

func (v *NumericVariable) decode(raw []byte) float64 {
	return math.Float64frombits(v.order.Uint64(raw))
}

// Kind returns Numeric
func (v *NumericVariable) Kind() Kind { return Numeric }

// Width returns the write format width
func (v *NumericVariable) Width() int { return v.record.WriteFormat.Width }

// Key returns the canonical category key of a value: its text under the write
// format with surrounding blanks removed
func (v *NumericVariable) Key(x float64) (string, error) {
	text, err := format.Number(x, v.record.WriteFormat)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// AddCategory merges a labelled value into the category map. The missing flag
// follows the variable's missing value rule. An empty label never overwrites an
// existing one.
func (v *NumericVariable) AddCategory(x float64, label string) (*Category, error) {
	key, err := v.Key(x)
	if err != nil {
		return nil, err
	}
	c := v.categories.Upsert(key)
	c.Value = x
	if label != "" {
		c.Label = label
	}
	c.Missing = v.missing.Contains(x)
	return c, nil
}

// AddRawCategory merges a value label whose value is still in on-disk form
func (v *NumericVariable) AddRawCategory(raw []byte, label string) (*Category, error) {
	return v.AddCategory(v.decode(raw), label)
}

// CategoryFor looks a category up by value
func (v *NumericVariable) CategoryFor(x float64) (*Category, bool) {
	key, err := v.Key(x)
	if err != nil {
		return nil, false
	}
	return v.categories.Get(key)
}

// CategoryForRaw looks a category up by the raw bytes of a value
func (v *NumericVariable) CategoryForRaw(raw []byte) (*Category, bool) {
	if len(raw) != types.BlockSize {
		return nil, false
	}
	return v.CategoryFor(v.decode(raw))
}

// IsMissing reports whether x is system- or user-missing
func (v *NumericVariable) IsMissing(x float64) bool {
	return math.IsNaN(x) || v.missing.Contains(x)
}

// Value returns the current value
func (v *NumericVariable) Value() float64 { return v.value }

// SetValue sets the current value
func (v *NumericVariable) SetValue(x float64) { v.value = x }

// AppendValue appends a bulk-loaded value and folds it into the summary. weight
// is the case weight, 1 for unweighted files.
func (v *NumericVariable) AppendValue(x, weight float64) {
	v.value = x
	v.data = append(v.data, x)
	v.summary.observe(x, weight, v.IsMissing(x))
}

// ValueAt returns observation obs (1-based), or the current value for 0
func (v *NumericVariable) ValueAt(obs int) (float64, error) {
	if err := observation(obs, len(v.data)); err != nil {
		return 0, err
	}
	if obs == 0 {
		return v.value, nil
	}
	return v.data[obs-1], nil
}

// Values returns the bulk-loaded values
func (v *NumericVariable) Values() []float64 { return v.data }

// ObservationCount returns the number of bulk-loaded values
func (v *NumericVariable) ObservationCount() int { return len(v.data) }

// Summary returns statistics over the bulk-loaded values
func (v *NumericVariable) Summary() Summary { return v.summary }

// ResetValues clears the current value, the loaded values and the summary
func (v *NumericVariable) ResetValues() {
	v.value = math.NaN()
	v.data = nil
	v.summary.reset()
}

// ValueAsText formats an observation under the write format and shapes it for opts
func (v *NumericVariable) ValueAsText(obs int, opts format.Options) (string, error) {
	x, err := v.ValueAt(obs)
	if err != nil {
		return "", err
	}
	text, err := format.Number(x, v.record.WriteFormat)
	if err != nil {
		return "", err
	}
	return format.ShapeNumber(text, x, v.record.WriteFormat, opts), nil
}

// SPSSFormat returns the write format in SPSS syntax
func (v *NumericVariable) SPSSFormat() string {
	return spssFormat(v.record.WriteFormat)
}

// Summary holds running statistics over valid values. System- and user-missing
// values are counted but excluded from the statistics.
type Summary struct {
	Valid   int
	Missing int
	Min     float64
	Max     float64
	Sum     float64

	SumWeights  float64
	WeightedSum float64
}

func (s *Summary) reset() {
	*s = Summary{Min: math.Inf(1), Max: math.Inf(-1)}
}

func (s *Summary) observe(x, weight float64, missing bool) {
	if missing {
		s.Missing++
		return
	}
	s.Valid++
	s.Sum += x
	s.Min = math.Min(s.Min, x)
	s.Max = math.Max(s.Max, x)
	if weight > 0 && !math.IsNaN(weight) {
		s.SumWeights += weight
		s.WeightedSum += x * weight
	}
}

// Mean returns the arithmetic mean of the valid values, NaN when there are none
func (s Summary) Mean() float64 {
	if s.Valid == 0 {
		return math.NaN()
	}
	return s.Sum / float64(s.Valid)
}

// WeightedMean returns the case-weighted mean, NaN when no weight was positive
func (s Summary) WeightedMean() float64 {
	if s.SumWeights == 0 {
		return math.NaN()
	}
	return s.WeightedSum / s.SumWeights
}
