package mdforge

import (
	"errors"
	"fmt"

	"github.com/alnah/go-mdforge/internal/pagefilter"
)

// PageLine is one extracted text line with its vertical extent on the page.
// Top and Bottom are distances from the page top, in the same unit as the
// page height.
type PageLine struct {
	Text   string
	Top    float64
	Bottom float64
}

// Page is the positioned text content of one PDF page.
type Page struct {
	Height float64
	Lines  []PageLine
}

// PageFilter tunes running header and footer removal.
type PageFilter struct {
	// MarginTop and MarginBottom are fractions of the page height treated
	// as header and footer bands. Zero means the default (0.08).
	MarginTop    float64
	MarginBottom float64
	// MinRepeating overrides the page-count-derived repetition threshold
	// when positive.
	MinRepeating int
	// SkipPatterns are case-insensitive regexps dropped from any region
	// regardless of repetition. Nil selects the default set (bare page
	// numbers, "page N / M" counters, ISBN lines).
	SkipPatterns []string
}

// ExtractPages removes running headers and footers from positioned page text
// and returns one body-text string per page. A nil filter uses defaults.
func ExtractPages(pages []Page, filter *PageFilter) ([]string, error) {
	cfg := pagefilter.DefaultConfig()
	if filter != nil {
		cfg = pagefilter.Config{
			MarginTop:    filter.MarginTop,
			MarginBottom: filter.MarginBottom,
			MinRepeating: filter.MinRepeating,
			SkipPatterns: filter.SkipPatterns,
		}
	}

	classifier, err := pagefilter.NewClassifier(cfg)
	if err != nil {
		if errors.Is(err, pagefilter.ErrBadPattern) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSkipPattern, err)
		}
		return nil, err
	}

	internal := make([]pagefilter.Page, len(pages))
	for i, p := range pages {
		lines := make([]pagefilter.Line, len(p.Lines))
		for j, l := range p.Lines {
			lines[j] = pagefilter.Line{Text: l.Text, Top: l.Top, Bottom: l.Bottom}
		}
		internal[i] = pagefilter.Page{Height: p.Height, Lines: lines}
	}
	return classifier.Extract(internal), nil
}
