package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-sav/internal/format"
	"github.com/deploymenttheory/go-sav/internal/testutil"
	"github.com/deploymenttheory/go-sav/internal/types"
)

func writeFixture(t *testing.T, b *testutil.Builder) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.sav")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}

func surveyFixture() *testutil.Builder {
	return testutil.New(binary.LittleEndian).
		Compressed(types.DefaultCompressionBias).
		FileLabel("Survey").
		Numeric("AGE").
		String("CITY", 10).
		Numeric("WT").
		Weight(4).
		NumericLabels([]testutil.NumericLabel{{Value: 30, Label: "Thirty"}}, 1).
		Document("collected in october").
		MachineInteger(65001).
		LongNames(
			types.NamePair{Key: "AGE", Value: "Age"},
			types.NamePair{Key: "CITY", Value: "City"},
			types.NamePair{Key: "WT", Value: "Weight"},
		).
		Case(30.0, "Lisbon", 1.0).
		Case(40.0, "Porto", 3.0).
		Case(math.NaN(), "", 1.0)
}

func TestServiceFactory(t *testing.T) {
	factory := NewServiceFactory()
	assert.False(t, factory.IsInitialized())

	svc, err := factory.DatasetService()
	require.NoError(t, err)
	assert.NotNil(t, svc)
	assert.True(t, factory.IsInitialized())

	again, err := factory.DatasetService()
	require.NoError(t, err)
	assert.Same(t, svc, again)

	require.Len(t, factory.ListAvailableServices(), 1)

	require.NoError(t, factory.Shutdown())
	assert.False(t, factory.IsInitialized())
}

func TestDescribe(t *testing.T) {
	path := writeFixture(t, surveyFixture())
	svc := NewDatasetService()

	var trace []string
	info, err := svc.Describe(context.Background(), path, OpenOptions{Trace: func(line string) { trace = append(trace, line) }}, false)
	require.NoError(t, err)

	assert.Equal(t, "Survey", info.FileLabel)
	assert.Equal(t, "LittleEndian", info.ByteOrder)
	assert.True(t, info.Compressed)
	assert.Equal(t, 3, info.CaseCount)
	assert.Equal(t, 3, info.VariableCount)
	assert.Equal(t, "Weight", info.Weight)
	assert.Equal(t, "UTF-8", info.Charset)
	assert.Equal(t, "20.0.0", info.Release)
	assert.Equal(t, []string{"collected in october"}, info.Documents)
	assert.Len(t, info.Fingerprint, 16)
	assert.NotEmpty(t, trace)

	require.Len(t, info.Variables, 3)
	age := info.Variables[0]
	assert.Equal(t, "Age", age.Name)
	assert.Equal(t, "AGE", age.ShortName)
	assert.Equal(t, "numeric", age.Type)
	assert.Equal(t, "F8.2", age.Format)
	require.Len(t, age.ValueLabels, 1)
	assert.Equal(t, ValueLabelInfo{Value: "30.00", Label: "Thirty"}, age.ValueLabels[0])
	assert.Nil(t, age.Summary)

	city := info.Variables[1]
	assert.Equal(t, "string", city.Type)
	assert.Equal(t, "A10", city.Format)
}

func TestDescribeWithSummaries(t *testing.T) {
	path := writeFixture(t, surveyFixture())

	info, err := NewDatasetService().Describe(context.Background(), path, OpenOptions{}, true)
	require.NoError(t, err)
	assert.Equal(t, 3, info.RecordsLoaded)

	sum := info.Variables[0].Summary
	require.NotNil(t, sum)
	assert.Equal(t, 2, sum.Valid)
	assert.Equal(t, 1, sum.Missing)
	require.NotNil(t, sum.Mean)
	assert.InDelta(t, 35, *sum.Mean, 1e-9)
	require.NotNil(t, sum.WeightedMean)
	assert.InDelta(t, 37.5, *sum.WeightedMean, 1e-9)

	_, err = json.Marshal(info)
	assert.NoError(t, err)
}

func TestDescribeErrors(t *testing.T) {
	svc := NewDatasetService()

	_, err := svc.Describe(context.Background(), filepath.Join(t.TempDir(), "missing.sav"), OpenOptions{}, false)
	assert.Error(t, err)

	bad := writeFixture(t, testutil.New(binary.LittleEndian).Magic("NOPE").Numeric("A"))
	_, err = svc.Describe(context.Background(), bad, OpenOptions{}, false)
	assert.ErrorIs(t, err, types.ErrFormatViolation)

	good := writeFixture(t, surveyFixture())
	_, err = svc.Describe(context.Background(), good, OpenOptions{Charset: "no-such-charset"}, false)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Describe(ctx, good, OpenOptions{}, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDump(t *testing.T) {
	path := writeFixture(t, surveyFixture())
	svc := NewDatasetService()
	opts := format.Options{Kind: format.CSV}

	result, err := svc.Dump(context.Background(), path, OpenOptions{}, 2, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "City", "Weight"}, result.Header)
	assert.Equal(t, [][]string{{"30.00", "Lisbon", "1.00"}, {"40.00", "Porto", "3.00"}}, result.Rows)
	assert.True(t, result.Truncated)

	result, err = svc.Dump(context.Background(), path, OpenOptions{}, 10, opts)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 3)
	assert.False(t, result.Truncated)
	assert.Equal(t, []string{".", "", "1.00"}, result.Rows[2])

	_, err = svc.Dump(context.Background(), path, OpenOptions{}, 0, opts)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestDumpUnknownCaseCount(t *testing.T) {
	path := writeFixture(t, testutil.New(binary.LittleEndian).Numeric("A").CaseCount(-1).Case(1.0).Case(2.0).Case(3.0))
	svc := NewDatasetService()

	result, err := svc.Dump(context.Background(), path, OpenOptions{}, 2, format.Options{Kind: format.Delimited, Delimiter: ';'})
	require.NoError(t, err)
	assert.True(t, result.Truncated)

	result, err = svc.Dump(context.Background(), path, OpenOptions{}, 3, format.Options{Kind: format.Delimited, Delimiter: ';'})
	require.NoError(t, err)
	assert.False(t, result.Truncated)
}

func TestExport(t *testing.T) {
	path := writeFixture(t, surveyFixture())
	svc := NewDatasetService()

	tests := []struct {
		name   string
		format format.Options
		want   string
	}{
		{
			name:   "csv with header",
			format: format.Options{Kind: format.CSV, IncludeHeader: true},
			want:   "Age,City,Weight\n30.00,Lisbon,1.00\n40.00,Porto,3.00\n.,,1.00\n",
		},
		{
			name:   "tab delimited",
			format: format.Options{Kind: format.Delimited, Delimiter: '\t'},
			want:   "30.00\tLisbon\t1.00\n40.00\tPorto\t3.00\n.\t\t1.00\n",
		},
		{
			name:   "fixed",
			format: format.Options{Kind: format.Fixed},
			want:   "   30.00Lisbon        1.00\n   40.00Porto         3.00\n                      1.00\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			var progress []int
			result, err := svc.Export(context.Background(), path, OpenOptions{}, &buf, ExportOptions{
				Format:   tt.format,
				Progress: func(done, total int) { progress = append(progress, done*10+total) },
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
			assert.Equal(t, 3, result.Records)
			assert.Equal(t, int64(buf.Len()), result.Bytes)
			assert.Equal(t, []int{13, 23, 33}, progress)
		})
	}
}

func TestExportStopsOnDecodeError(t *testing.T) {
	b := testutil.New(binary.LittleEndian).Compressed(types.DefaultCompressionBias).
		Numeric("A").String("S", 8).CaseCount(1).
		RawData([]byte{101, 255, 0, 0, 0, 0, 0, 0})
	path := writeFixture(t, b)

	var buf bytes.Buffer
	_, err := NewDatasetService().Export(context.Background(), path, OpenOptions{}, &buf, ExportOptions{Format: format.DefaultOptions()})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFormatViolation)
	assert.True(t, strings.Contains(err.Error(), "record 1"))
}
