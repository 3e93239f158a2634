package dictionary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-sav/internal/disk"
	"github.com/deploymenttheory/go-sav/internal/testutil"
	"github.com/deploymenttheory/go-sav/internal/types"
)

func newReader(t *testing.T, data []byte, order binary.ByteOrder) *disk.Reader {
	t.Helper()
	r, err := disk.NewReader(bytes.NewReader(data), nil)
	require.NoError(t, err)
	r.SetByteOrder(order)
	return r
}

func TestReadHeader(t *testing.T) {
	testCases := []struct {
		name  string
		order binary.ByteOrder
	}{
		{"little endian", binary.LittleEndian},
		{"big endian detected from layout code", binary.BigEndian},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := testutil.New(tc.order).
				Compressed(100).
				FileLabel("Household survey").
				Weight(1).
				Numeric("AGE").
				Case(34.0).
				Bytes()

			// always start little-endian
			r := newReader(t, data, binary.LittleEndian)
			h, err := ReadHeader(r)
			require.NoError(t, err)

			assert.Equal(t, tc.order, r.ByteOrder())
			assert.Equal(t, types.FileMagic, h.Signature)
			assert.Equal(t, int32(types.LayoutCodeStandard), h.LayoutCode)
			assert.Equal(t, int32(1), h.ObservationsPerCase)
			assert.True(t, h.IsCompressed())
			assert.Equal(t, int32(1), h.WeightIndex)
			assert.Equal(t, int32(1), h.CaseCount)
			assert.Equal(t, 100.0, h.Bias)
			assert.Equal(t, "Household survey", h.FileLabel)
			assert.Equal(t, "17 Oct 26", h.CreationDate)
			assert.Equal(t, int64(176), r.Position())
		})
	}
}

func TestReadHeaderErrors(t *testing.T) {
	testCases := []struct {
		name    string
		builder *testutil.Builder
		kind    error
	}{
		{
			name:    "bad magic",
			builder: testutil.New(binary.LittleEndian).Magic("$FL3"),
			kind:    types.ErrFormatViolation,
		},
		{
			name:    "layout code invalid in both byte orders",
			builder: testutil.New(binary.LittleEndian).LayoutCode(7),
			kind:    types.ErrFormatViolation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newReader(t, tc.builder.Bytes(), binary.LittleEndian)
			_, err := ReadHeader(r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind))
		})
	}

	t.Run("truncated header", func(t *testing.T) {
		data := testutil.New(binary.LittleEndian).Bytes()[:100]
		_, err := ReadHeader(newReader(t, data, binary.LittleEndian))
		assert.True(t, errors.Is(err, types.ErrIO))
	})
}

func TestReadVariableRecord(t *testing.T) {
	f82 := types.FormatSpec{Type: types.FormatF, Width: 8, Decimals: 2}

	b := testutil.New(binary.BigEndian).
		AddVariable(testutil.Variable{
			Name:        "INCOME",
			Label:       "Net income",
			Print:       f82,
			Write:       f82,
			MissingCode: -3,
			Missing:     []float64{-2, -1, 99},
		}).
		String("CITY", 20)

	r := newReader(t, b.DictionaryRecords(), binary.BigEndian)

	v, err := ReadVariableRecord(r, 0)
	require.NoError(t, err)
	assert.True(t, v.IsNumeric())
	assert.Equal(t, "INCOME", v.Name)
	assert.Equal(t, "Net income", v.Label)
	assert.Equal(t, int32(-3), v.MissingFormat)
	assert.Equal(t, f82, v.WriteFormat)
	assert.Equal(t, "F8.2", v.PrintFormat.String())
	require.Len(t, v.MissingValues, 3)
	assert.Equal(t, 99.0, math.Float64frombits(binary.BigEndian.Uint64(v.MissingValues[2])))

	s, err := ReadVariableRecord(r, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(20), s.TypeCode)
	assert.Equal(t, "CITY", s.Name)
	assert.Equal(t, 1, s.Slot)

	for slot := 2; slot <= 3; slot++ {
		c, err := ReadVariableRecord(r, slot)
		require.NoError(t, err)
		assert.True(t, c.IsContinuation())
	}
}

func TestReadVariableRecordErrors(t *testing.T) {
	testCases := []struct {
		name     string
		variable testutil.Variable
	}{
		{"missing format code above range", testutil.Variable{Name: "X", MissingCode: 4}},
		{"missing format code -1", testutil.Variable{Name: "X", MissingCode: -1, Missing: []float64{1}}},
		{"range on a string", testutil.Variable{Name: "S", Width: 8, MissingCode: -2, MissingStrings: []string{"a", "b"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := testutil.New(binary.LittleEndian).AddVariable(tc.variable).DictionaryRecords()
			_, err := ReadVariableRecord(newReader(t, data, binary.LittleEndian), 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrFormatViolation))
		})
	}

	t.Run("wrong tag", func(t *testing.T) {
		data := testutil.New(binary.LittleEndian).Document("x").DictionaryRecords()
		_, err := ReadVariableRecord(newReader(t, data, binary.LittleEndian), 0)

		var de *types.DecodeError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, int64(0), de.Offset)
		assert.Contains(t, de.Error(), "unexpected record type 6, expected 2")
	})
}

func TestReadValueLabels(t *testing.T) {
	labels := []testutil.NumericLabel{
		{Value: 1, Label: "Yes"},
		{Value: 2, Label: "No label!"},       // 9 chars + length byte = 10, padded to 16
		{Value: 9, Label: "Refused"},         // 7 chars + length byte = 8, no padding
		{Value: 3.5, Label: "Halfway there"}, // 13 chars
	}

	data := testutil.New(binary.LittleEndian).NumericLabels(labels, 1, 3).DictionaryRecords()
	r := newReader(t, data, binary.LittleEndian)

	rec, err := ReadValueLabels(r)
	require.NoError(t, err)
	require.Len(t, rec.Labels, len(labels))
	for i, l := range labels {
		assert.Equal(t, l.Label, rec.Labels[i].Label)
		assert.Equal(t, l.Value, math.Float64frombits(binary.LittleEndian.Uint64(rec.Labels[i].Value)))
	}

	idx, err := ReadValueLabelIndex(r)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 3}, idx.Variables)
	assert.Equal(t, int64(len(data)), r.Position())
}

func TestReadStringValueLabelsKeepRawBytes(t *testing.T) {
	data := testutil.New(binary.BigEndian).
		StringLabels([]string{"ab"}, map[string]string{"ab": "Alpha Beta"}, 2).
		DictionaryRecords()

	rec, err := ReadValueLabels(newReader(t, data, binary.BigEndian))
	require.NoError(t, err)
	assert.Equal(t, []byte("ab      "), rec.Labels[0].Value)
}

func TestReadDocument(t *testing.T) {
	data := testutil.New(binary.LittleEndian).Document("first line", "second line").DictionaryRecords()

	doc, err := ReadDocument(newReader(t, data, binary.LittleEndian))
	require.NoError(t, err)
	assert.Equal(t, []string{"first line", "second line"}, doc.Lines)
}

func TestReadMachineInfo(t *testing.T) {
	data := testutil.New(binary.BigEndian).MachineInteger(65001).MachineFloat().DictionaryRecords()
	r := newReader(t, data, binary.BigEndian)

	subtype, err := PeekSubtype(r)
	require.NoError(t, err)
	assert.Equal(t, types.SubtypeMachineInteger, subtype)
	assert.Equal(t, int64(0), r.Position())

	ints, err := ReadMachineIntegerInfo(r)
	require.NoError(t, err)
	assert.Equal(t, int32(65001), ints.CharacterCode)
	assert.Equal(t, "Big endian", ints.EndiannessLabel())
	assert.Equal(t, "IEEE", ints.FloatRepresentationLabel())

	floats, err := ReadMachineFloatInfo(r)
	require.NoError(t, err)
	assert.Equal(t, -math.MaxFloat64, floats.SysMiss)
	assert.Equal(t, math.MaxFloat64, floats.Highest)
}

func TestExtensionCountValidation(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		read func(*disk.Reader) error
	}{
		{
			name: "machine integer with 7 elements",
			data: testutil.New(binary.LittleEndian).Extension(types.SubtypeMachineInteger, 4, 7, make([]byte, 28)).DictionaryRecords(),
			read: func(r *disk.Reader) error { _, err := ReadMachineIntegerInfo(r); return err },
		},
		{
			name: "machine float with size 4",
			data: testutil.New(binary.LittleEndian).Extension(types.SubtypeMachineFloat, 4, 3, make([]byte, 12)).DictionaryRecords(),
			read: func(r *disk.Reader) error { _, err := ReadMachineFloatInfo(r); return err },
		},
		{
			name: "display parameters not a multiple of 3",
			data: testutil.New(binary.LittleEndian).Extension(types.SubtypeDisplayParameters, 4, 4, make([]byte, 16)).DictionaryRecords(),
			read: func(r *disk.Reader) error { _, err := ReadDisplayParameters(r); return err },
		},
		{
			name: "long names with wrong subtype",
			data: testutil.New(binary.LittleEndian).VariableSets("x").DictionaryRecords(),
			read: func(r *disk.Reader) error { _, err := ReadLongVariableNames(r); return err },
		},
		{
			name: "long name entry without separator",
			data: testutil.New(binary.LittleEndian).Extension(types.SubtypeLongVariableNames, 1, 3, []byte("ABC")).DictionaryRecords(),
			read: func(r *disk.Reader) error { _, err := ReadLongVariableNames(r); return err },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.read(newReader(t, tc.data, binary.LittleEndian))
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrFormatViolation))
		})
	}
}

func TestReadDisplayParameters(t *testing.T) {
	data := testutil.New(binary.LittleEndian).DisplayParams(
		types.DisplayParameter{Measure: types.MeasureScale, Width: 8, Alignment: types.AlignmentRight},
		types.DisplayParameter{Measure: types.MeasureNominal, Width: 20, Alignment: types.AlignmentLeft},
	).DictionaryRecords()

	params, err := ReadDisplayParameters(newReader(t, data, binary.LittleEndian))
	require.NoError(t, err)
	require.Len(t, params.Variables, 2)
	assert.Equal(t, int32(20), params.Variables[1].Width)
	assert.Equal(t, int32(types.MeasureNominal), params.Variables[1].Measure)
}

func TestReadTextExtensions(t *testing.T) {
	data := testutil.New(binary.LittleEndian).
		LongNames(types.NamePair{Key: "INCOME", Value: "HouseholdIncome"}, types.NamePair{Key: "CITY", Value: "City"}).
		VeryLongStrings(types.VeryLongStringWidth{Name: "COMMENT", Width: 300}).
		CharacterEncoding("UTF-8").
		VariableSets("Demographics= AGE SEX").
		DictionaryRecords()
	r := newReader(t, data, binary.LittleEndian)

	names, err := ReadLongVariableNames(r)
	require.NoError(t, err)
	long, ok := names.Lookup("INCOME")
	assert.True(t, ok)
	assert.Equal(t, "HouseholdIncome", long)
	assert.Len(t, names.Names, 2)

	vls, err := ReadVeryLongStrings(r)
	require.NoError(t, err)
	assert.Equal(t, []types.VeryLongStringWidth{{Name: "COMMENT", Width: 300}}, vls.Entries)

	enc, err := ReadCharacterEncoding(r)
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", enc.Name)

	sets, err := ReadVariableSets(r)
	require.NoError(t, err)
	assert.Equal(t, "Demographics= AGE SEX", sets.Text)
}

func TestReadLongStringValueLabels(t *testing.T) {
	data := testutil.New(binary.LittleEndian).
		LongStringLabels("Comment", 300,
			types.LongStringLabel{Value: "none", Label: "No comment"},
			types.LongStringLabel{Value: "see attached", Label: "Attachment"},
		).
		DictionaryRecords()

	rec, err := ReadLongStringValueLabels(newReader(t, data, binary.LittleEndian))
	require.NoError(t, err)
	require.Len(t, rec.Variables, 1)
	assert.Equal(t, "Comment", rec.Variables[0].Name)
	assert.Equal(t, int32(300), rec.Variables[0].Width)
	assert.Equal(t, "Attachment", rec.Variables[0].Labels[1].Label)
}

func TestReadExtensionGeneric(t *testing.T) {
	data := testutil.New(binary.LittleEndian).Extension(18, 1, 5, []byte("hello")).DictionaryRecords()

	rec, err := ReadExtension(newReader(t, data, binary.LittleEndian))
	require.NoError(t, err)
	assert.Equal(t, int32(18), rec.Subtype)
	assert.Equal(t, []byte("hello"), rec.Data)
}

func TestDeclaredLengthOverrunsFile(t *testing.T) {
	le32 := func(values ...int32) []byte {
		var out []byte
		for _, v := range values {
			out = binary.LittleEndian.AppendUint32(out, uint32(v))
		}
		return out
	}
	f82 := int32(types.FormatF)<<16 | 8<<8 | 2
	labelled := append(le32(types.RecordTypeVariable, 0, 1, 0, f82, f82), []byte("B       ")...)

	testCases := []struct {
		name string
		data []byte
		read func(*disk.Reader) error
	}{
		{
			name: "value labels",
			data: le32(types.RecordTypeValueLabels, 0x7fffffff),
			read: func(r *disk.Reader) error { _, err := ReadValueLabels(r); return err },
		},
		{
			name: "value labels one entry short",
			data: append(le32(types.RecordTypeValueLabels, 2), make([]byte, 16)...),
			read: func(r *disk.Reader) error { _, err := ReadValueLabels(r); return err },
		},
		{
			name: "value label index",
			data: le32(types.RecordTypeValueLabelIndex, 0x7fffffff),
			read: func(r *disk.Reader) error { _, err := ReadValueLabelIndex(r); return err },
		},
		{
			name: "document",
			data: le32(types.RecordTypeDocument, 0x7fffffff),
			read: func(r *disk.Reader) error { _, err := ReadDocument(r); return err },
		},
		{
			name: "variable label",
			data: append(labelled, le32(0x7fffffff)...),
			read: func(r *disk.Reader) error { _, err := ReadVariableRecord(r, 0); return err },
		},
		{
			name: "generic extension",
			data: le32(types.RecordTypeExtension, 99, 1, 0x7fffffff),
			read: func(r *disk.Reader) error { _, err := ReadExtension(r); return err },
		},
		{
			name: "display parameters",
			data: le32(types.RecordTypeExtension, types.SubtypeDisplayParameters, 4, 3*10000),
			read: func(r *disk.Reader) error { _, err := ReadDisplayParameters(r); return err },
		},
		{
			name: "long variable names",
			data: le32(types.RecordTypeExtension, types.SubtypeLongVariableNames, 1, 0x7fffffff),
			read: func(r *disk.Reader) error { _, err := ReadLongVariableNames(r); return err },
		},
		{
			name: "long string value labels",
			data: le32(types.RecordTypeExtension, types.SubtypeLongStringValueLabels, 1, 0x7fffffff),
			read: func(r *disk.Reader) error { _, err := ReadLongStringValueLabels(r); return err },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.read(newReader(t, tc.data, binary.LittleEndian))
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrFormatViolation)

			var de *types.DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, int64(0), de.Offset)
		})
	}
}

func TestRemainingTracksPosition(t *testing.T) {
	r := newReader(t, make([]byte, 20), binary.LittleEndian)
	assert.Equal(t, int64(20), r.Remaining())

	_, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int64(16), r.Remaining())

	require.NoError(t, r.Seek(30))
	assert.Equal(t, int64(0), r.Remaining())
}
