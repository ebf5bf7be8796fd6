package mdforge

import (
	"github.com/alnah/go-mdforge/internal/artifact"
)

// Dialect selects the cleanup rule set matching a converter's output.
type Dialect string

// Supported dialects.
const (
	// DialectPlain applies only the shared core cleanup.
	DialectPlain Dialect = Dialect(artifact.DialectPlain)
	// DialectEPUB targets Pandoc/Calibre EPUB conversions.
	DialectEPUB Dialect = Dialect(artifact.DialectEPUB)
	// DialectAcrobat targets Acrobat HTML-export conversions; it adds full
	// paragraph unwrapping since those exports hard-wrap at the column width.
	DialectAcrobat Dialect = Dialect(artifact.DialectAcrobat)
)

// Valid reports whether the dialect names a known rule set.
func (d Dialect) Valid() bool {
	return artifact.Dialect(d).Valid()
}

// Input contains normalization parameters.
type Input struct {
	Markdown    string   // Markdown content (required)
	Stylesheets []string // CSS sources for class-to-emphasis mapping (optional)
	SourceMeta  []byte   // original HTML source for metadata fallback (optional)
	Dialect     Dialect  // overrides the Normalizer's dialect (optional)
	Date        string   // overrides the inferred publication date (optional)
}

// Metadata holds the bibliographic fields the pipeline inferred or carried
// over from front matter. Empty means unknown.
type Metadata struct {
	Title      string
	ShortTitle string
	Subtitle   string
	Author     string
	Publisher  string
	ISBN       string
	ISSN       string
	ASIN       string
	UUID       string
	Date       string // ISO-8601
}

// TOCEntry is one rebuilt table-of-contents row.
type TOCEntry struct {
	Text string
	Slug string
}

// Result contains the normalized document and what the pipeline learned
// about it.
type Result struct {
	Markdown string
	Metadata Metadata
	TOC      []TOCEntry
	// Changed reports whether normalization altered the input.
	Changed bool
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithDialect sets the default dialect for inputs that do not name one.
func WithDialect(d Dialect) Option {
	return func(n *Normalizer) { n.cfg.dialect = d }
}

// WithBoldAllCaps enables wrapping short all-uppercase prose lines in strong
// emphasis. Off by default: a bare all-caps identifier would be bolded too.
func WithBoldAllCaps(enabled bool) Option {
	return func(n *Normalizer) { n.cfg.boldAllCaps = enabled }
}
