package inspect

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-sav/pkg/services"
)

func sampleResponse() *Response {
	mean := 1.5
	return &Response{
		Dataset: &services.DatasetInfo{
			Path:          "panel.sav",
			FileLabel:     "Panel wave 3",
			Product:       "@(#) SPSS DATA FILE",
			ByteOrder:     "LittleEndian",
			LayoutCode:    2,
			Compressed:    true,
			Bias:          100,
			CaseCount:     -1,
			VariableCount: 1,
			Charset:       "UTF-8",
			Fingerprint:   "00000000deadbeef",
			Documents:     []string{"wave three"},
			Variables: []services.VariableInfo{
				{
					Position: 1, Name: "Score", ShortName: "SCORE", Type: "numeric", Format: "F8.0",
					Measure: "scale", Alignment: "right", Missing: "99",
					ValueLabels: []services.ValueLabelInfo{{Value: "1", Label: "Low"}, {Value: "99", Missing: true}},
					Summary:     &services.SummaryInfo{Valid: 2, Missing: 1, Mean: &mean},
				},
			},
		},
		Records: &services.DumpResult{
			Header:    []string{"Score   "},
			Rows:      [][]string{{"       1"}, {"       2"}},
			Truncated: true,
		},
		Duration: time.Millisecond,
	}
}

func TestFormatOutput(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		wantErr  bool
		validate func(*testing.T, string)
	}{
		{
			name:   "table format",
			format: "table",
			validate: func(t *testing.T, output string) {
				assert.Contains(t, output, "Label:       Panel wave 3")
				assert.Contains(t, output, "Compressed:  bytecode, bias 100")
				assert.Contains(t, output, "Cases:       unknown")
				assert.Contains(t, output, "  wave three")
				assert.Contains(t, output, "Score")
				assert.Regexp(t, `99\s+\(missing\)`, output)
				assert.Contains(t, output, "1.5")
				assert.Contains(t, output, "(showing first 2 records)")
			},
		},
		{
			name:   "json format",
			format: "json",
			validate: func(t *testing.T, output string) {
				var decoded map[string]any
				require.NoError(t, json.Unmarshal([]byte(output), &decoded))
				dataset := decoded["dataset"].(map[string]any)
				assert.Equal(t, "Panel wave 3", dataset["file_label"])
			},
		},
		{
			name:   "yaml format",
			format: "yaml",
			validate: func(t *testing.T, output string) {
				var decoded Response
				require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
				require.NotNil(t, decoded.Dataset)
				assert.Equal(t, "UTF-8", decoded.Dataset.Charset)
				assert.Equal(t, 1.5, *decoded.Dataset.Variables[0].Summary.Mean)
			},
		},
		{
			name:    "unknown format",
			format:  "xml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := FormatOutput(&buf, sampleResponse(), tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, buf.String())
		})
	}
}

func TestFormatSummary(t *testing.T) {
	assert.Equal(t, "1 variable, unknown cases, 2 records shown in 1ms", FormatSummary(sampleResponse()))
}
