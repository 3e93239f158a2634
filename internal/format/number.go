// Package format renders decoded values the way SPSS displays them under a
// variable's write format.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/deploymenttheory/go-sav/internal/types"
)

// Missing is the text of the system-missing value
const Missing = "."

// Number formats a numeric value under a write format. The result is untrimmed:
// F and CC* formats are right-aligned to the format width.
func Number(v float64, spec types.FormatSpec) (string, error) {
	if math.IsNaN(v) {
		return Missing, nil
	}

	switch spec.Type {
	case types.FormatCOMMA:
		return grouped(v, spec.Decimals, ',', '.'), nil
	case types.FormatDOLLAR:
		return "$" + FixedPoint(v, spec.Decimals), nil
	case types.FormatF, types.FormatCCA, types.FormatCCB, types.FormatCCC, types.FormatCCD, types.FormatCCE:
		return padLeft(FixedPoint(v, spec.Decimals), spec.Width, ' '), nil
	case types.FormatE:
		return scientific(v, spec), nil
	case types.FormatPCT:
		return FixedPoint(v, spec.Decimals) + "%", nil
	case types.FormatDOT:
		return grouped(v, spec.Decimals, '.', ','), nil
	case types.FormatWKDAY:
		return weekday(v, spec.Width), nil
	case types.FormatMONTH:
		return month(v), nil
	}

	if spec.Type.IsDate() {
		return calendar(v, spec), nil
	}

	return "", &types.DecodeError{
		Kind:   types.ErrFormatViolation,
		Op:     "format value",
		Offset: -1,
		Err:    fmt.Errorf("%w %d (%s)", types.ErrUnknownFormat, spec.Type, spec),
	}
}

// FixedPoint renders v with exactly decimals digits after the point. Rounding is half
// up on the shortest decimal representation of v, so 2.675 becomes 2.68.
func FixedPoint(v float64, decimals int) string {
	if math.IsInf(v, 0) {
		if v < 0 {
			return "-Inf"
		}
		return "+Inf"
	}
	if decimals < 0 {
		decimals = 0
	}

	digits := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	intPart, fracPart, _ := strings.Cut(digits, ".")

	if len(fracPart) > decimals {
		roundUp := fracPart[decimals] >= '5'
		fracPart = fracPart[:decimals]
		if roundUp {
			intPart, fracPart = increment(intPart, fracPart)
		}
	} else {
		fracPart += strings.Repeat("0", decimals-len(fracPart))
	}

	var sb strings.Builder
	if math.Signbit(v) {
		sb.WriteByte('-')
	}
	sb.WriteString(intPart)
	if decimals > 0 {
		sb.WriteByte('.')
		sb.WriteString(fracPart)
	}
	return sb.String()
}

// increment adds one unit in the last place of intPart.fracPart
func increment(intPart, fracPart string) (string, string) {
	all := []byte(intPart + fracPart)
	i := len(all) - 1
	for ; i >= 0; i-- {
		if all[i] == '9' {
			all[i] = '0'
			continue
		}
		all[i]++
		break
	}
	if i < 0 {
		all = append([]byte{'1'}, all...)
	}
	split := len(all) - len(fracPart)
	return string(all[:split]), string(all[split:])
}

// grouped renders v with thousands separators
func grouped(v float64, decimals int, group, point byte) string {
	text := FixedPoint(v, decimals)
	if math.IsInf(v, 0) {
		return text
	}

	sign := ""
	if strings.HasPrefix(text, "-") {
		sign, text = "-", text[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(text, ".")

	var sb strings.Builder
	sb.WriteString(sign)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(group)
		}
		sb.WriteRune(c)
	}
	if hasFrac {
		sb.WriteByte(point)
		sb.WriteString(fracPart)
	}
	return sb.String()
}

// scientific renders v in E notation with one decimal fewer than the format asks
// for, leaving room for the sign
func scientific(v float64, spec types.FormatSpec) string {
	decimals := spec.Decimals
	if decimals > 0 {
		decimals--
	}
	return fmt.Sprintf("% *.*E", spec.Width, decimals, v)
}

func padLeft(s string, width int, fill byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(fill), width-len(s)) + s
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
