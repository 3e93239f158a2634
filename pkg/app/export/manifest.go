package export

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest describes an export file so that it can be verified later
type Manifest struct {
	ID          string      `yaml:"id"`
	Source      string      `yaml:"source"`
	Fingerprint string      `yaml:"source_fingerprint"`
	Charset     string      `yaml:"charset"`
	Output      string      `yaml:"output"`
	Format      string      `yaml:"format"`
	Delimiter   string      `yaml:"delimiter,omitempty"`
	Header      bool        `yaml:"header"`
	Compression Compression `yaml:"compression"`
	Records     int         `yaml:"records"`
	TextBytes   int64       `yaml:"text_bytes"`
	Checksum    string      `yaml:"checksum"`
	Created     time.Time   `yaml:"created"`
}

// ManifestPath returns the manifest location for an output file
func ManifestPath(output string) string {
	return output + ".manifest.yaml"
}

// WriteManifest writes m as YAML
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest reads a manifest written by WriteManifest
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
