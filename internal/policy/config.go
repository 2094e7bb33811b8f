package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable parts of the rule set. Zero values fall back to
// the defaults, so an override file only needs to name what it changes.
type Config struct {
	ForbiddenPatterns []string            `yaml:"forbidden_patterns"`
	ForbiddenImports  map[string][]string `yaml:"forbidden_imports"`
	MaxFileSize       int                 `yaml:"max_file_size"`
	MaxTestLines      int                 `yaml:"max_test_lines"`
	MinTestNameLen    int                 `yaml:"min_test_name_len"`
}

// DefaultConfig returns the built-in deny-lists and limits.
func DefaultConfig() *Config {
	return &Config{
		ForbiddenPatterns: []string{
			`time\.sleep\(`,
			`Thread\.sleep\(`,
			`setTimeout\(`,
			`random\(\)`,
			`Math\.random\(\)`,
			`new Date\(\)`,
			`datetime\.now\(\)`,
			`localhost:\d+`,
			`127\.0\.0\.1`,
			`http://`,
			`https://`,
			`assert True\b`,
			`assert False\b`,
			`assertTrue\(True\)`,
			`assertFalse\(False\)`,
		},
		MaxFileSize:    10000,
		MaxTestLines:   100,
		MinTestNameLen: 10,
	}
}

// LoadConfig reads a YAML override file and merges it over the defaults.
// An empty path means no overrides.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy config: %w", err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse policy config: %w", err)
	}

	cfg := DefaultConfig()
	if len(override.ForbiddenPatterns) > 0 {
		cfg.ForbiddenPatterns = override.ForbiddenPatterns
	}
	if len(override.ForbiddenImports) > 0 {
		cfg.ForbiddenImports = override.ForbiddenImports
	}
	if override.MaxFileSize > 0 {
		cfg.MaxFileSize = override.MaxFileSize
	}
	if override.MaxTestLines > 0 {
		cfg.MaxTestLines = override.MaxTestLines
	}
	if override.MinTestNameLen > 0 {
		cfg.MinTestNameLen = override.MinTestNameLen
	}
	return cfg, nil
}
