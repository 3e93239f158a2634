package export

import (
	"time"

	"github.com/deploymenttheory/go-sav/internal/format"
	"github.com/deploymenttheory/go-sav/pkg/app"
)

// Request represents a record export to a text file
type Request struct {
	Target     app.DatasetTarget
	OutputPath string
	Format     format.Options

	Compression Compression

	// Overwrite allows replacing an existing output file
	Overwrite bool

	// Manifest writes <output>.manifest.yaml next to the output
	Manifest bool

	// Verify re-reads the output and checks its checksum
	Verify bool
}

// Response represents export results
type Response struct {
	ID           string        `json:"id" yaml:"id"`
	Source       string        `json:"source" yaml:"source"`
	OutputPath   string        `json:"output_path" yaml:"output_path"`
	ManifestPath string        `json:"manifest_path,omitempty" yaml:"manifest_path,omitempty"`
	Format       string        `json:"format" yaml:"format"`
	Compression  Compression   `json:"compression" yaml:"compression"`
	Records      int           `json:"records" yaml:"records"`
	TextBytes    int64         `json:"text_bytes" yaml:"text_bytes"`
	FileBytes    int64         `json:"file_bytes" yaml:"file_bytes"`
	Checksum     string        `json:"checksum" yaml:"checksum"`
	Verified     bool          `json:"verified" yaml:"verified"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
}

// Ratio returns the file size as a fraction of the text size
func (r *Response) Ratio() float64 {
	if r.TextBytes == 0 {
		return 0
	}
	return float64(r.FileBytes) / float64(r.TextBytes)
}
