// Package config loads the optional jsoncsv config file. Both CUE and YAML
// files are accepted; the format is chosen by file extension.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds values read from a config file. Has* flags record which
// optional fields were present so CLI flags can take precedence.
type Config struct {
	ConfigVersion string
	Renames       map[string]string
	LineEnding    string
	Boundary      string
	HasLineEnding bool
	HasBoundary   bool
}

// CurrentConfigVersion is the only configVersion accepted so far.
const CurrentConfigVersion = "1"

var supportedConfigVersions = []string{CurrentConfigVersion}

var topLevelFields = []string{"configVersion", "renames", "lineEnding", "boundary"}

// Load reads and validates the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	var c Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		c, err = parseCUE(data)
	case ".yaml", ".yml":
		c, err = parseYAML(data)
	default:
		return Config{}, errors.New("unsupported config format: expected .cue, .yaml or .yml")
	}
	if err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.ConfigVersion != "" && !slices.Contains(supportedConfigVersions, c.ConfigVersion) {
		return fmt.Errorf("unsupported configVersion: %q (supported: %s)", c.ConfigVersion, strings.Join(supportedConfigVersions, ", "))
	}
	if c.HasLineEnding {
		if _, err := ParseLineEnding(c.LineEnding); err != nil {
			return err
		}
	}
	if c.HasBoundary {
		switch c.Boundary {
		case "column", "depth":
		default:
			return fmt.Errorf("invalid value for boundary: %q (expected column or depth)", c.Boundary)
		}
	}
	return nil
}

// ParseLineEnding maps "lf" or "crlf" to the terminator it names.
func ParseLineEnding(s string) (string, error) {
	switch strings.ToLower(s) {
	case "lf":
		return "\n", nil
	case "crlf":
		return "\r\n", nil
	}
	return "", fmt.Errorf("invalid value for lineEnding: %q (expected lf or crlf)", s)
}

type yamlConfig struct {
	ConfigVersion string            `yaml:"configVersion"`
	Renames       map[string]string `yaml:"renames"`
	LineEnding    *string           `yaml:"lineEnding"`
	Boundary      *string           `yaml:"boundary"`
}

func parseYAML(data []byte) (Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var raw yamlConfig
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("invalid config: %v", err)
	}
	c := Config{ConfigVersion: raw.ConfigVersion, Renames: raw.Renames}
	if raw.LineEnding != nil {
		c.LineEnding, c.HasLineEnding = *raw.LineEnding, true
	}
	if raw.Boundary != nil {
		c.Boundary, c.HasBoundary = *raw.Boundary, true
	}
	return c, nil
}
