// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation.
// The variable names match the original deployment environment of the
// gateway, so existing .env files keep working.
func getEnvBindings() []envBinding {
	return []envBinding{
		// Gateway server
		{"server.host", "MCP_HOST", nil},
		{"server.port", "MCP_PORT", validateEnvPort},
		{"server.loglevel", "MCP_LOG_LEVEL", validateEnvLogLevel},
		{"server.apikey", "MCP_API_KEY", nil},
		{"server.basepath", "MCP_BASE_PATH", validateEnvPath},
		{"server.maxfilesize", "MCP_MAX_FILE_SIZE", validateEnvByteCount},

		// Search passthrough
		{"search.apikey", "BRAVE_API_KEY", nil},
		{"search.baseurl", "BRAVE_SEARCH_API_URL", validateEnvURL},

		// Debug
		{"debug", "MCP_DEBUG", validateEnvBool},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	bindings := getEnvBindings()
	var warnings []string

	for _, binding := range bindings {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	_, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	validLevels := []string{"trace", "debug", "info", "warn", "warning", "error", "fatal"}
	lower := strings.ToLower(value)
	for _, valid := range validLevels {
		if lower == valid {
			return nil
		}
	}
	return fmt.Errorf("must be one of: %s", strings.Join(validLevels, ", "))
}

func validateEnvByteCount(value string) error {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid byte count: %w", err)
	}
	if size < 0 {
		return fmt.Errorf("byte count must be non-negative, got %d", size)
	}
	return nil
}

func validateEnvPath(value string) error {
	// Clean the path first to normalize it
	cleanedPath := filepath.Clean(value)

	// Require absolute paths so the sandbox root is unambiguous
	if !filepath.IsAbs(cleanedPath) {
		return fmt.Errorf("path must be absolute, got relative path: %s", cleanedPath)
	}

	return nil
}

func validateEnvURL(value string) error {
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return fmt.Errorf("URL must start with http:// or https://, got: %s", value)
	}
	return nil
}
