package export

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// FormatOutput writes export results in the requested output format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		encoder.SetIndent(2)
		return encoder.Encode(response)
	case "table", "":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func formatTable(w io.Writer, response *Response) error {
	fmt.Fprintf(w, "Export:      %s\n", response.ID)
	fmt.Fprintf(w, "Source:      %s\n", response.Source)
	fmt.Fprintf(w, "Output:      %s\n", response.OutputPath)
	fmt.Fprintf(w, "Format:      %s\n", response.Format)
	fmt.Fprintf(w, "Records:     %d\n", response.Records)
	if response.Compression != CompressionNone {
		fmt.Fprintf(w, "Compression: %s, %d -> %d bytes (%.1f%%)\n",
			response.Compression, response.TextBytes, response.FileBytes, response.Ratio()*100)
	} else {
		fmt.Fprintf(w, "Size:        %d bytes\n", response.FileBytes)
	}
	fmt.Fprintf(w, "Checksum:    %s", response.Checksum)
	if response.Verified {
		fmt.Fprintf(w, " (verified)")
	}
	fmt.Fprintln(w)
	if response.ManifestPath != "" {
		fmt.Fprintf(w, "Manifest:    %s\n", response.ManifestPath)
	}
	_, err := fmt.Fprintf(w, "Duration:    %v\n", response.Duration)
	return err
}
