package inspect

import (
	"time"

	"github.com/deploymenttheory/go-sav/internal/format"
	"github.com/deploymenttheory/go-sav/pkg/app"
	"github.com/deploymenttheory/go-sav/pkg/services"
)

// Request represents a dictionary inspection, optionally with a record dump
type Request struct {
	Target app.DatasetTarget

	// Summaries loads all data and computes statistics for numeric variables
	Summaries bool

	// Rows is the number of records to dump, 0 for none
	Rows int

	// Format shapes dumped records
	Format format.Options

	// Variables restricts the variable listing to these names
	Variables []string
}

// Response represents inspection results
type Response struct {
	Dataset  *services.DatasetInfo `json:"dataset" yaml:"dataset"`
	Records  *services.DumpResult  `json:"records,omitempty" yaml:"records,omitempty"`
	Duration time.Duration         `json:"duration" yaml:"duration"`
}
