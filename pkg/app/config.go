package app

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-sav/internal/disk"
	"github.com/deploymenttheory/go-sav/internal/format"
)

// Config holds the settings read from sav-config.yaml and SAV_* variables
type Config struct {
	Charset       string `mapstructure:"charset"`
	OutputKind    string `mapstructure:"output_kind"`
	Delimiter     string `mapstructure:"delimiter"`
	IncludeHeader bool   `mapstructure:"include_header"`
	Compression   string `mapstructure:"compression"`
	BufferSize    int    `mapstructure:"buffer_size"`
	OutputFormat  string `mapstructure:"output_format"`
}

// LoadConfig loads configuration using Viper. An explicit path must exist;
// otherwise the standard locations are searched and a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sav-config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.sav")
		v.AddConfigPath("/etc/sav")
	}

	// Set defaults
	v.SetDefault("charset", "")
	v.SetDefault("output_kind", "fixed")
	v.SetDefault("delimiter", "\t")
	v.SetDefault("include_header", true)
	v.SetDefault("compression", "none")
	v.SetDefault("buffer_size", disk.DefaultBlockSize)
	v.SetDefault("output_format", "table")

	// Allow environment variables
	v.SetEnvPrefix("SAV")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// FormatOptions converts the output settings into formatter options
func (c *Config) FormatOptions() (format.Options, error) {
	kind, err := format.ParseOutputKind(c.OutputKind)
	if err != nil {
		return format.Options{}, err
	}

	delimiter, err := ParseDelimiter(c.Delimiter)
	if err != nil {
		return format.Options{}, err
	}

	return format.Options{Kind: kind, Delimiter: delimiter, IncludeHeader: c.IncludeHeader}, nil
}

// ParseDelimiter accepts a single character or one of the names tab, comma,
// semicolon, pipe and space
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	case "space":
		return ' ', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
