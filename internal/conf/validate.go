package conf

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationError holds all validation failures found in a settings struct.
type ValidationError struct {
	Errors []string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("settings validation failed: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings checks a complete Settings struct and returns a
// ValidationError listing every problem found.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateServerSettings(&settings.Server); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateSearchSettings(&settings.Search); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateServerSettings(s *ServerSettings) error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", s.Port)
	}

	if s.BasePath != "" {
		cleaned := filepath.Clean(s.BasePath)
		if !filepath.IsAbs(cleaned) {
			return fmt.Errorf("server basepath must be absolute, got %s", s.BasePath)
		}
	}

	if s.MaxFileSize < 0 {
		return fmt.Errorf("server maxfilesize must be non-negative, got %d", s.MaxFileSize)
	}

	return nil
}

func validateSearchSettings(s *SearchSettings) error {
	if s.BaseURL != "" &&
		!strings.HasPrefix(s.BaseURL, "http://") &&
		!strings.HasPrefix(s.BaseURL, "https://") {
		return fmt.Errorf("search baseurl must start with http:// or https://, got %s", s.BaseURL)
	}

	if s.TimeoutSeconds < 0 {
		return fmt.Errorf("search timeoutseconds must be non-negative, got %d", s.TimeoutSeconds)
	}

	if s.RateLimitMS < 0 {
		return fmt.Errorf("search ratelimitms must be non-negative, got %d", s.RateLimitMS)
	}

	return nil
}
