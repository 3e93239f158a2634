package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/deploymenttheory/go-sav/internal/types"
)

var weekdays = [7]string{"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"}

// ToTime converts a date value, counted in seconds since midnight 14 October 1582,
// to a UTC time on the proleptic Gregorian calendar. The offset from the Unix
// epoch is truncated toward zero to whole seconds.
func ToTime(v float64) time.Time {
	return time.Unix(int64(v-types.GregorianEpochOffset), 0).UTC()
}

// FromTime is the inverse of ToTime for whole seconds
func FromTime(t time.Time) float64 {
	return float64(t.Unix()) + types.GregorianEpochOffset
}

// hundredths mirrors the historic conversion, which truncates the fraction of a
// second before scaling it and therefore always yields zero
func hundredths(v float64) int {
	return int(v-math.Trunc(v)) * 100
}

func year(t time.Time, long bool) string {
	if long {
		return fmt.Sprintf("%04d", t.Year())
	}
	return fmt.Sprintf("%02d", t.Year()%100)
}

func calendar(v float64, spec types.FormatSpec) string {
	t := ToTime(v)
	w := spec.Width

	switch spec.Type {
	case types.FormatDATE:
		return strings.ToUpper(fmt.Sprintf("%02d-%s-%s", t.Day(), t.Month().String()[:3], year(t, w == 11)))
	case types.FormatTIME:
		return duration(v, false, w >= 8, w == 11)
	case types.FormatDATETIME:
		text := strings.ToUpper(fmt.Sprintf("%02d-%s-%04d %02d:%02d", t.Day(), t.Month().String()[:3], t.Year(), t.Hour(), t.Minute()))
		if w >= 20 {
			text += fmt.Sprintf(":%02d", t.Second())
		}
		if w == 23 {
			text += fmt.Sprintf(".%02d", hundredths(v))
		}
		return text
	case types.FormatADATE:
		return fmt.Sprintf("%02d/%02d/%s", int(t.Month()), t.Day(), year(t, w == 10))
	case types.FormatJDATE:
		return fmt.Sprintf("%s%03d", year(t, w == 7), t.YearDay())
	case types.FormatDTIME:
		return duration(v, true, w >= 12, w == 15)
	case types.FormatMOYR:
		return strings.ToUpper(fmt.Sprintf("%s %s", t.Month().String()[:3], year(t, w == 8)))
	case types.FormatQYR:
		return fmt.Sprintf("%d Q %s", (int(t.Month())-1)/3+1, year(t, w == 8))
	case types.FormatWKYR:
		return fmt.Sprintf("%2d WK %s", (t.YearDay()-1)/7+1, year(t, w == 10))
	case types.FormatEDATE:
		return fmt.Sprintf("%02d.%02d.%s", t.Day(), int(t.Month()), year(t, w == 10))
	case types.FormatSDATE:
		return fmt.Sprintf("%s/%02d/%02d", year(t, w == 10), int(t.Month()), t.Day())
	}
	return Missing
}

// duration renders a TIME or DTIME value: a signed number of seconds shown as
// [ddd:]hh:mm[:ss[.hh]]. Hours roll over into days only when days are shown.
func duration(v float64, days, seconds, fraction bool) string {
	sign := ""
	if v < 0 {
		sign = "-"
	}
	total := int64(math.Abs(v))

	var sb strings.Builder
	sb.WriteString(sign)
	hours := total / 3600
	if days {
		fmt.Fprintf(&sb, "%03d:", hours/24)
		hours %= 24
	}
	fmt.Fprintf(&sb, "%02d:%02d", hours, total/60%60)
	if seconds {
		fmt.Fprintf(&sb, ":%02d", total%60)
	}
	if fraction {
		fmt.Fprintf(&sb, ".%02d", hundredths(v))
	}
	return sb.String()
}

func weekday(v float64, width int) string {
	name := weekdays[((int(v)-1)%7+7)%7]
	if width == 9 {
		return name
	}
	return name[:3]
}

func month(v float64) string {
	m := time.Month(((int(v)-1)%12+12)%12 + 1)
	return strings.ToUpper(m.String()[:3])
}
