package format

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-sav/internal/types"
)

func spec(t types.FormatType, width, decimals int) types.FormatSpec {
	return types.FormatSpec{Type: t, Width: width, Decimals: decimals}
}

func TestNumber(t *testing.T) {
	testCases := []struct {
		name  string
		value float64
		spec  types.FormatSpec
		want  string
	}{
		{"fixed is right aligned", 137.34, spec(types.FormatF, 8, 2), "  137.34"},
		{"fixed wider than column", 12345.678, spec(types.FormatF, 7, 2), "12345.68"},
		{"fixed integer", 42, spec(types.FormatF, 3, 0), " 42"},
		{"negative fixed", -3.5, spec(types.FormatF, 6, 1), "  -3.5"},
		{"comma groups thousands", 1234567.891, spec(types.FormatCOMMA, 12, 2), "1,234,567.89"},
		{"comma negative", -1234.5, spec(types.FormatCOMMA, 9, 1), "-1,234.5"},
		{"comma below a thousand", 999, spec(types.FormatCOMMA, 3, 0), "999"},
		{"dollar", 1234.5, spec(types.FormatDOLLAR, 9, 2), "$1234.50"},
		{"dot swaps separators", 1234567.891, spec(types.FormatDOT, 12, 2), "1.234.567,89"},
		{"percent", 12.5, spec(types.FormatPCT, 6, 1), "12.5%"},
		{"custom currency is fixed", 7.25, spec(types.FormatCCA, 6, 2), "  7.25"},
		{"scientific drops one decimal", 12345.678, spec(types.FormatE, 10, 3), "  1.23E+04"},
		{"scientific without decimals", 12345.678, spec(types.FormatE, 6, 0), " 1E+04"},
		{"system missing", math.NaN(), spec(types.FormatDATE, 11, 0), "."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Number(tc.value, tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNumberIsDeterministic(t *testing.T) {
	f := spec(types.FormatF, 8, 2)
	first, err := Number(137.34, f)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Number(137.34, f)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "137.34", strings.TrimSpace(first))
}

func TestNumberUnknownFormat(t *testing.T) {
	for _, ft := range []types.FormatType{types.FormatA, types.FormatAHEX, types.FormatContinuation, types.FormatP, 99} {
		_, err := Number(1, spec(ft, 8, 0))
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrUnknownFormat))
		assert.True(t, errors.Is(err, types.ErrFormatViolation))
	}
}

func TestFixedPointRoundsHalfUp(t *testing.T) {
	testCases := []struct {
		value    float64
		decimals int
		want     string
	}{
		{2.675, 2, "2.68"},
		{0.125, 2, "0.13"},
		{-1.005, 2, "-1.01"},
		{9.995, 2, "10.00"},
		{0.5, 0, "1"},
		{1.4, 0, "1"},
		{99.99, 1, "100.0"},
		{3, 3, "3.000"},
		{-0.001, 2, "-0.00"},
		{1e21, 1, "1000000000000000000000.0"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, FixedPoint(tc.value, tc.decimals), "FixedPoint(%v, %d)", tc.value, tc.decimals)
	}
}
