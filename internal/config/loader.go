// Package config handles loading and saving crawl configuration files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/vnykmshr/skitter/internal/domain"
)

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default} syntax
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// LocalConfigFiles are looked up in the working directory, in order.
var LocalConfigFiles = []string{"skitter.yaml", "skitter.yml", "skitter.json"}

// Format is a configuration file encoding.
type Format int

// Supported formats.
const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFor picks the encoding from the file extension. Anything that is
// not .json is read as YAML, which also accepts plain JSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Loader handles loading configuration from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFromFile loads configuration from a YAML or JSON file. Keys missing
// from the file keep their default values.
// Supports environment variable substitution using ${VAR_NAME} syntax.
// Optional default values can be specified with ${VAR_NAME:-default}.
func (l *Loader) LoadFromFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w\nCheck if file exists and has read permissions", path, err)
	}

	// Substitute environment variables before parsing
	expandedData, err := substituteEnvVars(string(data))
	if err != nil {
		return nil, fmt.Errorf("environment variable substitution failed: %w", err)
	}

	config := domain.DefaultConfig()
	switch FormatFor(path) {
	case FormatJSON:
		if err := json.Unmarshal([]byte(expandedData), &config); err != nil {
			return nil, fmt.Errorf("invalid JSON in config file: %w\nVerify JSON syntax at %s", err, path)
		}
	default:
		if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
			return nil, fmt.Errorf("invalid YAML in config file: %w\nVerify YAML syntax at %s", err, path)
		}
	}

	return &config, nil
}

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// Supports ${VAR_NAME:-default} syntax for default values when env var is not set.
// Returns an error if a required env var (no default) is not set.
// Note: ${VAR:-} with empty default is valid and means "use empty string if VAR is unset".
func substituteEnvVars(content string) (string, error) {
	var missingVars []string

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := strings.Contains(match, ":-")
		defaultValue := ""
		if hasDefault && len(submatches) > 2 {
			defaultValue = submatches[2]
		}

		// LookupEnv tells unset apart from empty
		value, isSet := os.LookupEnv(varName)
		if !isSet {
			if hasDefault {
				return defaultValue
			}
			missingVars = append(missingVars, varName)
			return match
		}
		return value
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("%w: %v\nSet these variables or provide defaults using ${VAR:-default} syntax", ErrMissingEnvVar, missingVars)
	}

	return result, nil
}

// SaveToFile saves configuration as YAML or JSON depending on the file extension.
func (l *Loader) SaveToFile(config *domain.Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch FormatFor(path) {
	case FormatJSON:
		data, err = json.MarshalIndent(config, "", "  ")
	default:
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("cannot write config file %s: %w\nCheck directory exists and has write permissions", path, err)
	}

	return nil
}

// MergeWithDefaults fills zero values with defaults. The allowed error
// percentage is left alone because 0 is a meaningful setting.
func (l *Loader) MergeWithDefaults(config *domain.Config) *domain.Config {
	defaults := domain.DefaultConfig()

	if config.MaxConnections == 0 {
		config.MaxConnections = defaults.MaxConnections
	}
	if config.ConnectTimeoutMs == 0 {
		config.ConnectTimeoutMs = defaults.ConnectTimeoutMs
	}
	if config.ReadTimeoutMs == 0 {
		config.ReadTimeoutMs = defaults.ReadTimeoutMs
	}
	if config.RequestTimeoutMs == 0 {
		config.RequestTimeoutMs = defaults.RequestTimeoutMs
	}
	if config.HandshakeTimeoutMs == 0 {
		config.HandshakeTimeoutMs = defaults.HandshakeTimeoutMs
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	return config
}

// UserConfigPath is the per-user configuration file under the XDG config home.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "skitter", "config.yaml")
}

// FindConfigFile resolves which configuration file to load. An explicit
// path must exist. Otherwise the working directory is searched, then the
// user config path. ErrConfigNotFound means no file was found, which is not
// fatal when flags supply the settings.
func FindConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	candidates := append([]string{}, LocalConfigFiles...)
	candidates = append(candidates, UserConfigPath())

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("checking config file %s: %w", path, err)
		}
	}

	return "", ErrConfigNotFound
}

// SampleConfig returns the configuration written by `skitter init`.
func SampleConfig() *domain.Config {
	config := domain.DefaultConfig()
	config.RootURL = "${SKITTER_ROOT_URL:-https://example.com}"
	config.MaxDuration = "10m"
	config.OutputFile = "skitter-report.json"
	return &config
}
