// Package conf loads and validates the gateway configuration from the
// config file and environment variables.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ServerSettings controls the HTTP surface of the gateway.
type ServerSettings struct {
	Host     string `yaml:"host" mapstructure:"host"`         // bind host
	Port     int    `yaml:"port" mapstructure:"port"`         // bind port
	LogLevel string `yaml:"loglevel" mapstructure:"loglevel"` // trace, debug, info, warn, error
	APIKey   string `yaml:"apikey" mapstructure:"apikey"`     // shared secret, empty disables the access gate
	BasePath string `yaml:"basepath" mapstructure:"basepath"` // sandbox root, empty disables path containment
	// MaxFileSize caps how many bytes a single read request may load into
	// memory. Zero means unlimited.
	MaxFileSize int64 `yaml:"maxfilesize" mapstructure:"maxfilesize"`
}

// SearchSettings configures the web search passthrough.
type SearchSettings struct {
	APIKey         string `yaml:"apikey" mapstructure:"apikey"`                 // Brave Search subscription token
	BaseURL        string `yaml:"baseurl" mapstructure:"baseurl"`               // upstream endpoint
	TimeoutSeconds int    `yaml:"timeoutseconds" mapstructure:"timeoutseconds"` // upstream request timeout
	CacheTTLSecs   int    `yaml:"cachettlsecs" mapstructure:"cachettlsecs"`     // response cache lifetime
	RateLimitMS    int    `yaml:"ratelimitms" mapstructure:"ratelimitms"`       // minimum gap between upstream calls
}

// LogConfig describes file logging for a service.
type LogConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// MainSettings holds process-wide settings.
type MainSettings struct {
	Name string    `yaml:"name" mapstructure:"name"`
	Log  LogConfig `yaml:"log" mapstructure:"log"`
}

// Settings is the complete, immutable gateway configuration. It is assembled
// once by Load at startup and injected into each component at construction
// time; components never consult package-level state.
type Settings struct {
	Debug  bool           `yaml:"debug" mapstructure:"debug"`
	Main   MainSettings   `yaml:"main" mapstructure:"main"`
	Server ServerSettings `yaml:"server" mapstructure:"server"`
	Search SearchSettings `yaml:"search" mapstructure:"search"`
}

// Load reads the configuration file and environment variables into a new
// Settings value. The result is injected into components at construction
// time; there is no package-level settings instance.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// initViper initializes viper with default values, environment variable
// bindings and the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	// Bind MCP_* and BRAVE_* environment variables, defined in env.go
	if err := bindEnvVars(); err != nil {
		return err
	}

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, run on defaults and environment only
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the directories viper searches for config.yaml.
func GetDefaultConfigPaths() ([]string, error) {
	configPaths := []string{"."}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		configPaths = append(configPaths, filepath.Join(userConfigDir, "mcpgate"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return configPaths, nil
	}
	configPaths = append(configPaths, filepath.Join(homeDir, ".config", "mcpgate"))

	return configPaths, nil
}

// SaveYAMLConfig writes the given settings to configPath as YAML. Used to
// generate a starter config file from the current defaults.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
