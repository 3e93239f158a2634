// Package dictionary decodes the individual records of a system file dictionary.
// Every reader re-reads and validates its own type tag, so callers may peek a tag
// and rewind before dispatching.
package dictionary

import (
	"strings"

	"github.com/deploymenttheory/go-sav/internal/interfaces"
	"github.com/deploymenttheory/go-sav/internal/types"
)

// readTag reads a 4-byte record tag and checks it against want
func readTag(r interfaces.PrimitiveReader, op string, want int32) (int64, error) {
	start := r.Position()
	tag, err := r.ReadInt32()
	if err != nil {
		return start, err
	}
	if tag != want {
		return start, types.FormatViolation(op, start, "unexpected record type %d, expected %d", tag, want)
	}
	return start, nil
}

// readCount reads a non-negative element count
func readCount(r interfaces.PrimitiveReader, op string, start int64) (int, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, types.FormatViolation(op, start, "negative element count %d", n)
	}
	return int(n), nil
}

// readCountOf reads an element count and checks that count elements of at least
// minSize bytes each fit in the rest of the source
func readCountOf(r interfaces.PrimitiveReader, op string, start int64, minSize int) (int, error) {
	n, err := readCount(r, op, start)
	if err != nil {
		return 0, err
	}
	if err := checkFits(r, op, start, int64(n)*int64(minSize)); err != nil {
		return 0, err
	}
	return n, nil
}

// checkFits fails when need bytes would run past the end of the source
func checkFits(r interfaces.PrimitiveReader, op string, start, need int64) error {
	if left := r.Remaining(); need > left {
		return types.FormatViolation(op, start, "declared length of %d bytes overruns the file, %d bytes remain", need, left)
	}
	return nil
}

// trimText removes the blank and NUL padding writers leave after fixed-width text
func trimText(s string) string {
	return strings.TrimRight(s, " \x00")
}

func roundUp(n, m int) int {
	return (n + m - 1) / m * m
}
