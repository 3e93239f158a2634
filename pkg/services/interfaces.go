package services

import (
	"context"
	"errors"
	"io"

	"github.com/deploymenttheory/go-sav/internal/format"
)

// OpenOptions controls how a system file is opened
type OpenOptions struct {
	// Charset forces the character set for all text. Empty means the file's own
	// declaration, falling back to ISO-8859-1.
	Charset string

	// BufferSize is the read-ahead block size in bytes, 0 for the default
	BufferSize int

	// Trace receives one line per dictionary record
	Trace func(line string)
}

// DatasetInfo describes the dictionary of a system file
type DatasetInfo struct {
	Path                string          `json:"path" yaml:"path"`
	SessionID           string          `json:"session_id" yaml:"session_id"`
	Product             string          `json:"product" yaml:"product"`
	FileLabel           string          `json:"file_label,omitempty" yaml:"file_label,omitempty"`
	Created             string          `json:"created" yaml:"created"`
	ByteOrder           string          `json:"byte_order" yaml:"byte_order"`
	LayoutCode          int32           `json:"layout_code" yaml:"layout_code"`
	Compressed          bool            `json:"compressed" yaml:"compressed"`
	Bias                float64         `json:"bias" yaml:"bias"`
	CaseCount           int             `json:"case_count" yaml:"case_count"`
	ObservationsPerCase int             `json:"observations_per_case" yaml:"observations_per_case"`
	VariableCount       int             `json:"variable_count" yaml:"variable_count"`
	Weight              string          `json:"weight,omitempty" yaml:"weight,omitempty"`
	Charset             string          `json:"charset" yaml:"charset"`
	Release             string          `json:"release,omitempty" yaml:"release,omitempty"`
	Fingerprint         string          `json:"fingerprint" yaml:"fingerprint"`
	DataOffset          int64           `json:"data_offset" yaml:"data_offset"`
	RecordsLoaded       int             `json:"records_loaded,omitempty" yaml:"records_loaded,omitempty"`
	Documents           []string        `json:"documents,omitempty" yaml:"documents,omitempty"`
	Extensions          []ExtensionInfo `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Variables           []VariableInfo  `json:"variables" yaml:"variables"`
}

// ExtensionInfo describes an extension record that was skipped
type ExtensionInfo struct {
	Subtype int32 `json:"subtype" yaml:"subtype"`
	Size    int32 `json:"size" yaml:"size"`
	Count   int32 `json:"count" yaml:"count"`
	Offset  int64 `json:"offset" yaml:"offset"`
}

// VariableInfo describes one logical variable
type VariableInfo struct {
	Position     int              `json:"position" yaml:"position"`
	Name         string           `json:"name" yaml:"name"`
	ShortName    string           `json:"short_name" yaml:"short_name"`
	Label        string           `json:"label,omitempty" yaml:"label,omitempty"`
	Type         string           `json:"type" yaml:"type"`
	Width        int              `json:"width" yaml:"width"`
	Decimals     int              `json:"decimals" yaml:"decimals"`
	Format       string           `json:"format" yaml:"format"`
	Measure      string           `json:"measure" yaml:"measure"`
	Alignment    string           `json:"alignment" yaml:"alignment"`
	DisplayWidth int32            `json:"display_width,omitempty" yaml:"display_width,omitempty"`
	Segments     int              `json:"segments,omitempty" yaml:"segments,omitempty"`
	Missing      string           `json:"missing,omitempty" yaml:"missing,omitempty"`
	ValueLabels  []ValueLabelInfo `json:"value_labels,omitempty" yaml:"value_labels,omitempty"`
	Summary      *SummaryInfo     `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// ValueLabelInfo is one category of a variable
type ValueLabelInfo struct {
	Value   string `json:"value" yaml:"value"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Missing bool   `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// SummaryInfo holds statistics over the valid values of a numeric variable.
// Statistics are nil when there is no valid value.
type SummaryInfo struct {
	Valid        int      `json:"valid" yaml:"valid"`
	Missing      int      `json:"missing" yaml:"missing"`
	Min          *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean         *float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	WeightedMean *float64 `json:"weighted_mean,omitempty" yaml:"weighted_mean,omitempty"`
}

// DumpResult holds the first records of a file as shaped text fields
type DumpResult struct {
	Header    []string   `json:"header" yaml:"header"`
	Rows      [][]string `json:"rows" yaml:"rows"`
	Truncated bool       `json:"truncated" yaml:"truncated"`
}

// ExportOptions controls record export
type ExportOptions struct {
	Format format.Options

	// Progress is called after every record with the number written and the
	// declared case count, which is -1 when unknown
	Progress func(done, total int)
}

// ExportResult summarises an export
type ExportResult struct {
	Records int   `json:"records" yaml:"records"`
	Bytes   int64 `json:"bytes" yaml:"bytes"`
}

// DatasetService reads SPSS system files
type DatasetService interface {
	// Describe decodes the dictionary. With summaries set, all data is loaded and
	// every numeric variable carries summary statistics.
	Describe(ctx context.Context, path string, opts OpenOptions, summaries bool) (*DatasetInfo, error)

	// Dump streams at most limit records from disk
	Dump(ctx context.Context, path string, opts OpenOptions, limit int, out format.Options) (*DumpResult, error)

	// Export streams every record to w, one line per record
	Export(ctx context.Context, path string, opts OpenOptions, w io.Writer, export ExportOptions) (*ExportResult, error)
}

// Common service errors
var (
	ErrServiceNotInitialized = errors.New("service not initialized")
	ErrInvalidLimit          = errors.New("record limit must be positive")
)
