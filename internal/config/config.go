package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdforge/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config field")
)

// Field limits for multi-tenant safety.
const (
	MaxDateLength    = 30  // "2025-12-31" or "auto:MMMM D, YYYY"
	MaxPatternLength = 200 // One skip-pattern regexp
	MaxStylesheets   = 50  // Stylesheet paths per run
	MaxSkipPatterns  = 50  // Skip patterns per run
	MaxPathLength    = 2048
)

// Config holds all configuration for document normalization.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Normalize  NormalizeConfig  `yaml:"normalize"`
	PageFilter PageFilterConfig `yaml:"pageFilter"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = in place)
}

// NormalizeConfig defines normalization options.
type NormalizeConfig struct {
	Dialect     string   `yaml:"dialect"`     // "plain", "epub", "acrobat" (default: "plain")
	BoldAllCaps bool     `yaml:"boldAllCaps"` // Bold standalone ALL-CAPS lines
	Stylesheets []string `yaml:"stylesheets"` // CSS paths resolved relative to the config file
	Date        string   `yaml:"date"`        // Optional, "auto", "auto:FORMAT", or literal
	Workers     int      `yaml:"workers"`     // Parallel workers (0 = auto)
}

// PageFilterConfig defines running header and footer removal options.
type PageFilterConfig struct {
	MarginTop    float64  `yaml:"marginTop"`    // Fraction of page height (default: 0.08)
	MarginBottom float64  `yaml:"marginBottom"` // Fraction of page height (default: 0.08)
	MinRepeating int      `yaml:"minRepeating"` // Repetition threshold override (0 = auto)
	SkipPatterns []string `yaml:"skipPatterns"` // Regexps always dropped from margins
}

// Validate checks field values and lengths. Called automatically by
// LoadConfig, but available for consumers who construct Config manually.
func (c *Config) Validate() error {
	if c.Normalize.Dialect != "" {
		switch strings.ToLower(c.Normalize.Dialect) {
		case "plain", "epub", "acrobat":
		default:
			return fmt.Errorf("%w: normalize.dialect %q (must be plain, epub, or acrobat)", ErrInvalidField, c.Normalize.Dialect)
		}
	}

	if err := validateFieldLength("normalize.date", c.Normalize.Date, MaxDateLength); err != nil {
		return err
	}
	if c.Normalize.Workers < 0 {
		return fmt.Errorf("%w: normalize.workers %d (must be >= 0)", ErrInvalidField, c.Normalize.Workers)
	}

	if len(c.Normalize.Stylesheets) > MaxStylesheets {
		return fmt.Errorf("%w: normalize.stylesheets (%d entries, max %d)", ErrFieldTooLong, len(c.Normalize.Stylesheets), MaxStylesheets)
	}
	for i, path := range c.Normalize.Stylesheets {
		if err := validateFieldLength(fmt.Sprintf("normalize.stylesheets[%d]", i), path, MaxPathLength); err != nil {
			return err
		}
	}

	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	if c.PageFilter.MarginTop < 0 || c.PageFilter.MarginTop > 0.5 {
		return fmt.Errorf("%w: pageFilter.marginTop %.2f (must be between 0 and 0.5)", ErrInvalidField, c.PageFilter.MarginTop)
	}
	if c.PageFilter.MarginBottom < 0 || c.PageFilter.MarginBottom > 0.5 {
		return fmt.Errorf("%w: pageFilter.marginBottom %.2f (must be between 0 and 0.5)", ErrInvalidField, c.PageFilter.MarginBottom)
	}
	if c.PageFilter.MinRepeating < 0 {
		return fmt.Errorf("%w: pageFilter.minRepeating %d (must be >= 0)", ErrInvalidField, c.PageFilter.MinRepeating)
	}
	if len(c.PageFilter.SkipPatterns) > MaxSkipPatterns {
		return fmt.Errorf("%w: pageFilter.skipPatterns (%d entries, max %d)", ErrFieldTooLong, len(c.PageFilter.SkipPatterns), MaxSkipPatterns)
	}
	for i, p := range c.PageFilter.SkipPatterns {
		if err := validateFieldLength(fmt.Sprintf("pageFilter.skipPatterns[%d]", i), p, MaxPatternLength); err != nil {
			return err
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration.
func DefaultConfig() *Config {
	return &Config{
		Normalize: NormalizeConfig{Dialect: ""},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Stylesheet paths resolve relative to the config file, not the CWD.
	dir := filepath.Dir(configPath)
	for i, p := range cfg.Normalize.Stylesheets {
		if !filepath.IsAbs(p) {
			cfg.Normalize.Stylesheets[i] = filepath.Join(dir, p)
		}
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mdforge/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-mdforge", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
