package variables

import (
	"math"
	"strconv"
	"strings"
)

// MissingRule is the user-missing definition of a variable. Code follows the
// type 2 record: 0 none, 1..3 discrete values, -2 a closed range, -3 a closed
// range plus one discrete value.
type MissingRule struct {
	Code int32

	// Values holds the discrete values, or low, high and the optional extra value
	// for range codes
	Values []float64

	// Strings holds the discrete values of a string variable, right-trimmed
	Strings []string
}

// IsRange reports whether the rule defines a range
func (r MissingRule) IsRange() bool {
	return r.Code <= -2 && len(r.Values) >= 2
}

// Range returns the bounds of a range rule
func (r MissingRule) Range() (low, high float64, ok bool) {
	if !r.IsRange() {
		return 0, 0, false
	}
	return r.Values[0], r.Values[1], true
}

// Discrete returns the discrete numeric values, including the extra value of a
// range rule
func (r MissingRule) Discrete() []float64 {
	if r.IsRange() {
		return r.Values[2:]
	}
	return r.Values
}

// Contains reports whether a numeric value is user-missing. System-missing is
// never user-missing.
func (r MissingRule) Contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	if low, high, ok := r.Range(); ok && v >= low && v <= high {
		return true
	}
	for _, d := range r.Discrete() {
		if v == d {
			return true
		}
	}
	return false
}

// ContainsString reports whether a string value is user-missing. Trailing blanks
// are ignored and the comparison is case-insensitive.
func (r MissingRule) ContainsString(s string) bool {
	s = TrimValue(s)
	for _, m := range r.Strings {
		if strings.EqualFold(s, m) {
			return true
		}
	}
	return false
}

// String describes the rule in SPSS syntax, for example "1, 2" or "LO THRU -1, 99"
func (r MissingRule) String() string {
	var parts []string
	if low, high, ok := r.Range(); ok {
		parts = append(parts, bound(low, "LO")+" THRU "+bound(high, "HI"))
	}
	for _, d := range r.Discrete() {
		parts = append(parts, strconv.FormatFloat(d, 'g', -1, 64))
	}
	for _, s := range r.Strings {
		parts = append(parts, strconv.Quote(s))
	}
	return strings.Join(parts, ", ")
}

func bound(v float64, name string) string {
	if math.Abs(v) >= math.Nextafter(math.MaxFloat64, 0) {
		return name
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
