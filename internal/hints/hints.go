// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-mdforge/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/go-mdforge) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-mdforge") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForDialect returns a hint listing the accepted dialect names.
func ForDialect() string {
	return format("valid dialects: plain, epub, acrobat")
}

// ForStylesheet returns hints for stylesheet read errors.
func ForStylesheet() string {
	return format("pass a CSS file path; repeat --stylesheet for several")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForDateFormat returns a hint about the auto date syntax.
func ForDateFormat() string {
	return format(`use "auto", "auto:DD/MM/YYYY", or a preset (iso, european, us, long)`)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
