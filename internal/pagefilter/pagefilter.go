// Package pagefilter removes running headers and footers from extracted PDF
// page text.
//
// A line is never judged in isolation: classification is two-phase. The first
// phase collects every line falling inside the configured top or bottom
// margin band; the second drops those whose normalized text repeats on
// enough pages. Always-drop patterns (bare page numbers, "page N / M"
// counters, ISBN lines) apply to every line no matter where it sits, since
// extractors misplace stray folios into the body often enough. A chapter
// title that appears once in a margin survives; the same text repeated
// across a third of the book does not.
package pagefilter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBadPattern reports an invalid skip pattern in the configuration.
var ErrBadPattern = errors.New("invalid skip pattern")

// Region names the margin band a line falls into.
type Region int

const (
	RegionBody Region = iota
	RegionHeader
	RegionFooter
)

// Line is one extracted text line with its vertical extent on the page.
// Top and Bottom are distances from the page top, in the same unit as the
// page height.
type Line struct {
	Text   string
	Top    float64
	Bottom float64
}

// Page is the extracted content of one page.
type Page struct {
	Height float64
	Lines  []Line
}

// Config tunes margin bands and repetition sensitivity.
type Config struct {
	// MarginTop and MarginBottom are fractions of the page height treated
	// as header and footer bands.
	MarginTop    float64
	MarginBottom float64
	// MinRepeating overrides the page-count-derived repetition threshold
	// when positive.
	MinRepeating int
	// SkipPatterns are dropped from any region regardless of repetition.
	// When nil the default set applies.
	SkipPatterns []string
}

// DefaultConfig mirrors the layout of mainstream print PDFs.
func DefaultConfig() Config {
	return Config{
		MarginTop:    0.08,
		MarginBottom: 0.08,
	}
}

var defaultSkipPatterns = []string{
	`^\d+$`,
	`^page\s+\d+(\s*/\s*\d+)?$`,
	`^\d+\s*/\s*\d+$`,
	`^isbn\b.*$`,
}

// Classifier applies a Config to a sequence of pages.
type Classifier struct {
	cfg  Config
	skip []*regexp.Regexp
}

// NewClassifier compiles the configuration. Invalid skip patterns return
// ErrBadPattern.
func NewClassifier(cfg Config) (*Classifier, error) {
	if cfg.MarginTop <= 0 && cfg.MarginBottom <= 0 {
		def := DefaultConfig()
		if cfg.MarginTop <= 0 {
			cfg.MarginTop = def.MarginTop
		}
		if cfg.MarginBottom <= 0 {
			cfg.MarginBottom = def.MarginBottom
		}
	}
	patterns := cfg.SkipPatterns
	if patterns == nil {
		patterns = defaultSkipPatterns
	}
	c := &Classifier{cfg: cfg}
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrBadPattern, p, err)
		}
		c.skip = append(c.skip, re)
	}
	return c, nil
}

// classify places a line on a page into a region. A line belongs to a band
// as soon as its near edge does: top edge inside the header band makes a
// header, bottom edge inside the footer band makes a footer. Lines
// straddling a band boundary still count as margin lines.
func (c *Classifier) classify(page Page, line Line) Region {
	if page.Height <= 0 {
		return RegionBody
	}
	if line.Top <= page.Height*c.cfg.MarginTop {
		return RegionHeader
	}
	if line.Bottom >= page.Height*(1-c.cfg.MarginBottom) {
		return RegionFooter
	}
	return RegionBody
}

// threshold is the repetition count at which a margin line counts as a
// running header or footer.
func (c *Classifier) threshold(pageCount int) int {
	if c.cfg.MinRepeating > 0 {
		return c.cfg.MinRepeating
	}
	t := pageCount / 3
	if t < 2 {
		t = 2
	}
	return t
}

// normalize folds a margin line for repetition counting: case and interior
// whitespace collapse, and digit runs unify so "page 12" and "page 13"
// count as the same running element.
var digitRunRe = regexp.MustCompile(`\d+`)

func normalize(text string) string {
	folded := strings.ToLower(strings.Join(strings.Fields(text), " "))
	return digitRunRe.ReplaceAllString(folded, "#")
}

func (c *Classifier) skipMatch(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, re := range c.skip {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// Extract returns each page's body text with running headers and footers
// removed, one string per page with lines joined by newlines.
func (c *Classifier) Extract(pages []Page) []string {
	// Phase one: count normalized margin-line text across pages. A text
	// counts once per page, so a header repeated twice on one page cannot
	// vote itself over the threshold.
	counts := make(map[string]int)
	for _, page := range pages {
		seen := make(map[string]bool)
		for _, line := range page.Lines {
			if c.classify(page, line) == RegionBody {
				continue
			}
			key := normalize(line.Text)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			counts[key]++
		}
	}

	// Phase two: skip patterns drop lines anywhere; repetition drops only
	// margin lines.
	threshold := c.threshold(len(pages))
	out := make([]string, 0, len(pages))
	for _, page := range pages {
		var kept []string
		for _, line := range page.Lines {
			if c.skipMatch(line.Text) {
				continue
			}
			if c.classify(page, line) != RegionBody && counts[normalize(line.Text)] >= threshold {
				continue
			}
			kept = append(kept, line.Text)
		}
		out = append(out, strings.Join(kept, "\n"))
	}
	return out
}
