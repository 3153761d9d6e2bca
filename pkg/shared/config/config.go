package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

const (
	// DefaultConfigFile is looked up in the working directory when no config path is given.
	DefaultConfigFile = "srcmap.yml"
	// ConfigEnvVar names an environment variable holding the config path.
	ConfigEnvVar = "SRCMAP_CONFIG"

	DefaultToolchainEnv = "EMSDK"
	DefaultSegment      = "emsdk/emscripten/"
	DefaultIndent       = 2

	RelativeToCwd = "cwd"
	RelativeToMap = "map"
)

type Config struct {
	Logger  Logger  `yaml:"logger"`
	Rewrite Rewrite `yaml:"rewrite"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

// Rewrite holds the settings of the source map rewrite command.
type Rewrite struct {
	ToolchainEnv  string `yaml:"toolchain_env"`
	ToolchainRoot string `yaml:"toolchain_root"`
	Segment       string `yaml:"segment"`
	RelativeTo    string `yaml:"relative_to"`
	Indent        int    `yaml:"indent"`
}

// ValidateConfigPath checks that the path points to a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return fmt.Errorf("failed to decode %q: %w", configPath, err)
	}

	return nil
}

// LoadConfig reads the configuration file. An explicit path must exist; otherwise
// SRCMAP_CONFIG and then ./srcmap.yml are tried, and an empty configuration is
// returned when neither is present.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath == "" {
		configPath = os.Getenv(ConfigEnvVar)
	}
	if configPath == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return cfg, nil
		}
		configPath = DefaultConfigFile
	}

	if err := LoadYAML(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetBoolValue retrieves a boolean from a nested struct by a dot-separated field path.
// The default is returned when the field is missing or is a nil pointer.
func GetBoolValue(config interface{}, fieldPath string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	val := reflect.ValueOf(config)
	for _, field := range strings.Split(fieldPath, ".") {
		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return defaultValue
			}
			val = val.Elem()
		}
		if val.Kind() != reflect.Struct {
			return defaultValue
		}
		val = val.FieldByName(field)
		if !val.IsValid() {
			return defaultValue
		}
	}

	switch {
	case val.Kind() == reflect.Ptr && !val.IsNil() && val.Elem().Kind() == reflect.Bool:
		return val.Elem().Bool()
	case val.Kind() == reflect.Bool:
		return val.Bool()
	}
	return defaultValue
}

// SetThen returns value unless it is the zero value, in which case defaultValue is returned.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(&value).Elem().IsZero() {
		return defaultValue
	}
	return value
}
