package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Input.DefaultDir != "" {
		t.Errorf("Input.DefaultDir = %q, want empty", cfg.Input.DefaultDir)
	}
	if cfg.Output.DefaultDir != "" {
		t.Errorf("Output.DefaultDir = %q, want empty", cfg.Output.DefaultDir)
	}
	if cfg.Normalize.Dialect != "" {
		t.Errorf("Normalize.Dialect = %q, want empty", cfg.Normalize.Dialect)
	}
	if cfg.Normalize.BoldAllCaps {
		t.Error("Normalize.BoldAllCaps = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid dialect epub",
			mutate: func(c *Config) { c.Normalize.Dialect = "epub" },
		},
		{
			name:   "valid dialect mixed case",
			mutate: func(c *Config) { c.Normalize.Dialect = "Acrobat" },
		},
		{
			name:    "invalid dialect",
			mutate:  func(c *Config) { c.Normalize.Dialect = "latex" },
			wantErr: ErrInvalidField,
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Normalize.Workers = -1 },
			wantErr: ErrInvalidField,
		},
		{
			name:    "date too long",
			mutate:  func(c *Config) { c.Normalize.Date = strings.Repeat("x", MaxDateLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "too many stylesheets",
			mutate:  func(c *Config) { c.Normalize.Stylesheets = make([]string, MaxStylesheets+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "margin out of range",
			mutate:  func(c *Config) { c.PageFilter.MarginTop = 0.6 },
			wantErr: ErrInvalidField,
		},
		{
			name:    "negative min repeating",
			mutate:  func(c *Config) { c.PageFilter.MinRepeating = -2 },
			wantErr: ErrInvalidField,
		},
		{
			name: "skip pattern too long",
			mutate: func(c *Config) {
				c.PageFilter.SkipPatterns = []string{strings.Repeat("a", MaxPatternLength+1)}
			},
			wantErr: ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid config file", func(t *testing.T) {
		path := filepath.Join(dir, "good.yaml")
		content := `normalize:
  dialect: epub
  workers: 4
  stylesheets:
    - styles/main.css
pageFilter:
  marginTop: 0.1
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Normalize.Dialect != "epub" || cfg.Normalize.Workers != 4 {
			t.Errorf("Normalize = %+v", cfg.Normalize)
		}
		if cfg.PageFilter.MarginTop != 0.1 {
			t.Errorf("MarginTop = %v", cfg.PageFilter.MarginTop)
		}
		// Relative stylesheet paths resolve against the config directory.
		want := filepath.Join(dir, "styles", "main.css")
		if len(cfg.Normalize.Stylesheets) != 1 || cfg.Normalize.Stylesheets[0] != want {
			t.Errorf("Stylesheets = %v, want [%s]", cfg.Normalize.Stylesheets, want)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("err = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(dir, "nope.yaml")); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("err = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("normalize: [unclosed"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("err = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		path := filepath.Join(dir, "unknown.yaml")
		if err := os.WriteFile(path, []byte("mystery: true\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("err = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid field rejected", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		if err := os.WriteFile(path, []byte("normalize:\n  dialect: latex\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidField) {
			t.Errorf("err = %v, want ErrInvalidField", err)
		}
	})
}

func TestIsFilePath(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"mdforge", false},
		{"./mdforge.yaml", true},
		{"/etc/mdforge.yaml", true},
		{`sub\dir`, true},
	}
	for _, tt := range tests {
		if got := isFilePath(tt.in); got != tt.want {
			t.Errorf("isFilePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
