package variables

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-sav/internal/format"
	"github.com/deploymenttheory/go-sav/internal/types"
)

func rawFloat(order binary.ByteOrder, v float64) []byte {
	buf := make([]byte, 8)
	order.PutUint64(buf, math.Float64bits(v))
	return buf
}

func numericRecord(order binary.ByteOrder, f types.FormatSpec, code int32, missing ...float64) *types.VariableRecord {
	rec := &types.VariableRecord{Name: "Q1", MissingFormat: code, PrintFormat: f, WriteFormat: f}
	for _, m := range missing {
		rec.MissingValues = append(rec.MissingValues, rawFloat(order, m))
	}
	return rec
}

func latin1(b []byte) string { return string(b) }

func TestNumericMissingRange(t *testing.T) {
	f80 := types.FormatSpec{Type: types.FormatF, Width: 8}
	order := binary.BigEndian

	v, err := NewNumericVariable(numericRecord(order, f80, -2, -2, -1), order)
	require.NoError(t, err)

	_, err = v.AddCategory(1, "Agree")
	require.NoError(t, err)
	_, err = v.AddCategory(-1, "Refused")
	require.NoError(t, err)

	keys := []string{}
	for _, c := range v.Categories().All() {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"-2", "-1", "1"}, keys)

	for key, missing := range map[string]bool{"-2": true, "-1": true, "1": false} {
		c, ok := v.Categories().Get(key)
		require.True(t, ok, key)
		assert.Equal(t, missing, c.Missing, key)
	}

	c, ok := v.CategoryForRaw(rawFloat(order, -1))
	require.True(t, ok)
	assert.Equal(t, "Refused", c.Label)
	assert.True(t, v.HasValueLabels())
	assert.Equal(t, "-2 THRU -1", v.Missing().String())
}

func TestNumericMissingRangePlusDiscrete(t *testing.T) {
	f := types.FormatSpec{Type: types.FormatF, Width: 4}
	order := binary.LittleEndian

	v, err := NewNumericVariable(numericRecord(order, f, -3, 97, 98, 0), order)
	require.NoError(t, err)

	assert.Equal(t, 3, v.Categories().Len())
	assert.True(t, v.IsMissing(97.5))
	assert.True(t, v.IsMissing(0))
	assert.True(t, v.IsMissing(math.NaN()))
	assert.False(t, v.IsMissing(99))
}

func TestNumericMissingRangeNotEnumerated(t *testing.T) {
	f := types.FormatSpec{Type: types.FormatF, Width: 8}
	order := binary.LittleEndian

	testCases := []struct {
		name      string
		low, high float64
	}{
		{"open lower bound", math.Nextafter(-math.MaxFloat64, 0), -1},
		{"too wide", 0, 5000},
		{"beyond exact integers", 1e17, 1e17 + 512},
		{"negative beyond exact integers", -1e17 - 512, -1e17},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := NewNumericVariable(numericRecord(order, f, -2, tc.low, tc.high), order)
			require.NoError(t, err)
			assert.Equal(t, 0, v.Categories().Len())
			assert.True(t, v.IsMissing(tc.high))

			c, err := v.AddCategory(tc.high, "boundary")
			require.NoError(t, err)
			assert.True(t, c.Missing)
		})
	}
}

func TestNumericCategoryKeyUsesWriteFormat(t *testing.T) {
	f := types.FormatSpec{Type: types.FormatF, Width: 8, Decimals: 2}
	v, err := NewNumericVariable(numericRecord(binary.LittleEndian, f, 0), binary.LittleEndian)
	require.NoError(t, err)

	c, err := v.AddCategory(1, "One")
	require.NoError(t, err)
	assert.Equal(t, "1.00", c.Key)

	// a second label for the same key replaces the first, an empty one does not
	_, err = v.AddCategory(1.0001, "Uno")
	require.NoError(t, err)
	_, err = v.AddCategory(1, "")
	require.NoError(t, err)
	got, ok := v.CategoryFor(1)
	require.True(t, ok)
	assert.Equal(t, "Uno", got.Label)
	assert.Equal(t, 1, v.Categories().Len())
}

func TestNumericUnknownWriteFormat(t *testing.T) {
	f := types.FormatSpec{Type: types.FormatAHEX, Width: 8}
	_, err := NewNumericVariable(numericRecord(binary.LittleEndian, f, 1, 9), binary.LittleEndian)
	assert.True(t, errors.Is(err, types.ErrUnknownFormat))
}

func TestNumericValues(t *testing.T) {
	f := types.FormatSpec{Type: types.FormatF, Width: 7, Decimals: 2}
	v, err := NewNumericVariable(numericRecord(binary.LittleEndian, f, 1, 99), binary.LittleEndian)
	require.NoError(t, err)

	_, err = v.ValueAsText(1, format.DefaultOptions())
	assert.True(t, errors.Is(err, types.ErrDataNotLoaded))

	v.AppendValue(137.34, 2)
	v.AppendValue(math.NaN(), 1)
	v.AppendValue(99, 1)
	v.AppendValue(9999.987, 1)

	assert.Equal(t, 4, v.ObservationCount())

	text, err := v.ValueAsText(1, format.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, " 137.34", text)

	text, err = v.ValueAsText(2, format.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "       ", text)

	text, err = v.ValueAsText(2, format.Options{Kind: format.CSV})
	require.NoError(t, err)
	assert.Equal(t, ".", text)

	text, err = v.ValueAsText(0, format.Options{Kind: format.Delimited, Delimiter: '\t'})
	require.NoError(t, err)
	assert.Equal(t, "9999.99", text)

	_, err = v.ValueAsText(5, format.DefaultOptions())
	assert.True(t, errors.Is(err, types.ErrObservationRange))
	_, err = v.ValueAsText(-1, format.DefaultOptions())
	assert.True(t, errors.Is(err, types.ErrObservationRange))

	s := v.Summary()
	assert.Equal(t, 2, s.Valid)
	assert.Equal(t, 2, s.Missing)
	assert.Equal(t, 137.34, s.Min)
	assert.Equal(t, 9999.987, s.Max)
	assert.InDelta(t, (137.34+9999.987)/2, s.Mean(), 1e-9)
	assert.InDelta(t, (137.34*2+9999.987)/3, s.WeightedMean(), 1e-9)

	v.ResetValues()
	assert.Equal(t, 0, v.ObservationCount())
	assert.True(t, math.IsNaN(v.Value()))
	assert.True(t, math.IsNaN(v.Summary().Mean()))
}

func TestNumericMissingRangeFractionalBounds(t *testing.T) {
	f := types.FormatSpec{Type: types.FormatF, Width: 8}
	order := binary.LittleEndian

	v, err := NewNumericVariable(numericRecord(order, f, -2, 1.5, 3.5), order)
	require.NoError(t, err)

	keys := []string{}
	for _, c := range v.Categories().All() {
		keys = append(keys, c.Key)
		assert.True(t, c.Missing, c.Key)
	}
	assert.Equal(t, []string{"2", "3"}, keys)
	assert.True(t, v.IsMissing(1.5))
	assert.False(t, v.IsMissing(1))
}

func TestStringMissingIsCaseInsensitive(t *testing.T) {
	rec := &types.VariableRecord{
		Name:          "ANSWER",
		TypeCode:      8,
		MissingFormat: 2,
		WriteFormat:   types.FormatSpec{Type: types.FormatA, Width: 8},
		MissingValues: [][]byte{[]byte("NA      "), []byte("refused ")},
	}
	v := NewStringVariable(rec, latin1)

	assert.True(t, v.IsMissing("na"))
	assert.True(t, v.IsMissing("Refused   "))
	assert.True(t, v.IsMissing("NA\t\r\n"))
	assert.False(t, v.IsMissing("yes"))

	c := v.AddRawCategory([]byte("Y       "), "Yes")
	assert.Equal(t, "Y", c.Key)
	assert.False(t, c.Missing)

	c = v.AddCategory("REFUSED", "Refused to answer")
	assert.True(t, c.Missing)

	got, ok := v.CategoryForRaw([]byte("Y       "))
	require.True(t, ok)
	assert.Equal(t, "Yes", got.Label)
	assert.Equal(t, 4, v.Categories().Len())
}

func TestStringVariableShape(t *testing.T) {
	rec := &types.VariableRecord{Name: "COMMENT", TypeCode: 255, WriteFormat: types.FormatSpec{Type: types.FormatA, Width: 255}}
	v := NewStringVariable(rec, latin1)
	v.SetWidth(300)
	v.SetName("Comment")

	seg := NewStringVariable(&types.VariableRecord{Name: "COMME0", TypeCode: 45}, latin1)
	v.AddSegment(seg)

	assert.Equal(t, 32, v.Blocks())
	assert.Equal(t, 6, seg.Blocks())
	assert.Equal(t, 300, v.Width())
	assert.Equal(t, "A300", v.SPSSFormat())
	assert.Equal(t, "COMMENT", v.ShortName())
	assert.Equal(t, "Comment", v.Name())
	assert.Len(t, v.Segments(), 1)

	v.AppendValue(`He said "hi", ok`)
	text, err := v.ValueAsText(1, format.Options{Kind: format.CSV})
	require.NoError(t, err)
	assert.Equal(t, `"He said ""hi"", ok"`, text)

	v.SetValue("abc")
	text, err = v.ValueAsText(0, format.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, text, 300)
}

func TestSPSSFormat(t *testing.T) {
	testCases := []struct {
		spec types.FormatSpec
		want string
	}{
		{types.FormatSpec{Type: types.FormatF, Width: 8, Decimals: 2}, "F8.2"},
		{types.FormatSpec{Type: types.FormatCOMMA, Width: 10, Decimals: 2}, "Comma10.2"},
		{types.FormatSpec{Type: types.FormatDATE, Width: 11}, "Date11"},
		{types.FormatSpec{Type: types.FormatDATETIME, Width: 20}, "DateTime20.0"},
		{types.FormatSpec{Type: types.FormatSDATE, Width: 10}, "SDate10"},
		{types.FormatSpec{Type: types.FormatAHEX, Width: 10}, "other"},
	}

	for _, tc := range testCases {
		v, err := NewNumericVariable(numericRecord(binary.LittleEndian, tc.spec, 0), binary.LittleEndian)
		require.NoError(t, err)
		assert.Equal(t, tc.want, v.SPSSFormat())
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Scale", MeasureLabel(types.MeasureScale))
	assert.Equal(t, "Unknown", MeasureLabel(0))
	assert.Equal(t, "Center", AlignmentLabel(types.AlignmentCenter))
	assert.Equal(t, "string", String.String())
}
