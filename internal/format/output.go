package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/deploymenttheory/go-sav/internal/types"
)

// OutputKind selects how values are shaped for text output
type OutputKind int

const (
	// Fixed pads every value to its column width
	Fixed OutputKind = iota
	// Delimited trims values and separates them with a delimiter
	Delimited
	// CSV trims values, separates them with commas and quotes where needed
	CSV
)

// String returns the configuration name of the kind
func (k OutputKind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Delimited:
		return "delimited"
	case CSV:
		return "csv"
	}
	return fmt.Sprintf("OutputKind(%d)", int(k))
}

// ParseOutputKind parses a configuration name
func ParseOutputKind(s string) (OutputKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "":
		return Fixed, nil
	case "delimited", "tab", "tsv":
		return Delimited, nil
	case "csv":
		return CSV, nil
	}
	return Fixed, fmt.Errorf("unknown output kind %q (expected fixed, delimited or csv)", s)
}

// Options controls text output
type Options struct {
	Kind          OutputKind
	Delimiter     rune
	IncludeHeader bool
}

// DefaultOptions returns fixed-width output with a header row
func DefaultOptions() Options {
	return Options{Kind: Fixed, Delimiter: '\t', IncludeHeader: true}
}

// Separator returns the text placed between two fields
func (o Options) Separator() string {
	switch o.Kind {
	case Delimited:
		return string(o.Delimiter)
	case CSV:
		return ","
	}
	return ""
}

// QuoteCSV doubles embedded quotes and wraps the field in quotes when it contains
// a comma, a quote or a newline
func QuoteCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ShapeNumber fits the formatted text of a numeric value to the output kind.
// In fixed output a value wider than its column first loses decimals (F format
// only), then keeps its integer part, and is otherwise filled with asterisks.
func ShapeNumber(text string, v float64, spec types.FormatSpec, opts Options) string {
	switch opts.Kind {
	case Delimited:
		return strings.TrimSpace(text)
	case CSV:
		return QuoteCSV(strings.TrimSpace(text))
	}

	width := spec.Width
	switch {
	case text == Missing:
		return strings.Repeat(" ", width)
	case len(text) <= width:
		return padLeft(text, width, ' ')
	}

	if spec.Type == types.FormatF && spec.Decimals > 0 {
		dot := strings.LastIndex(text, ".")
		if dot >= 0 && dot+2 <= width {
			if fitted := FixedPoint(v, width-dot-1); len(fitted) <= width {
				return padLeft(fitted, width, ' ')
			}
		}
		if dot >= 0 && dot <= width {
			if whole := strings.TrimSpace(text[:dot]); len(whole) <= width {
				return padLeft(whole, width, ' ')
			}
		}
	}
	return strings.Repeat("*", width)
}

// ShapeString fits a string value to the output kind. Fixed output pads on the
// right to the logical width.
func ShapeString(text string, width int, opts Options) string {
	switch opts.Kind {
	case Fixed:
		return padRight(text, width)
	case CSV:
		return QuoteCSV(text)
	}
	return text
}

// ShapeHeader fits a variable name to its column. Fixed output cuts names longer
// than the column so the header lines up with the values.
func ShapeHeader(name string, width int, opts Options) string {
	if opts.Kind == Fixed && width > 0 && utf8.RuneCountInString(name) > width {
		name = string([]rune(name)[:width])
	}
	return ShapeString(name, width, opts)
}
