// Package artifact removes converter-specific cruft from Markdown lines.
//
// Each supported source dialect (Calibre EPUB exports, Acrobat HTML exports)
// leaves its own residue: anchor spans, class braces, legacy double-bracket
// links, zero-width characters, vestigial fenced containers. The stripper
// composes a fixed, ordered list of passes per dialect; later passes assume
// the cleanup done by earlier ones. All passes are fence-aware: content
// between ``` or ~~~ markers is never rewritten.
package artifact

import "strings"

// Dialect selects the rule set matching a converter's output.
type Dialect string

const (
	// DialectPlain applies only the shared core passes.
	DialectPlain Dialect = "plain"
	// DialectEPUB targets Pandoc/Calibre EPUB conversions.
	DialectEPUB Dialect = "epub"
	// DialectAcrobat targets Acrobat HTML-export conversions.
	DialectAcrobat Dialect = "acrobat"
)

// Valid reports whether the dialect names a known rule set.
func (d Dialect) Valid() bool {
	switch d {
	case DialectPlain, DialectEPUB, DialectAcrobat:
		return true
	}
	return false
}

// Options tunes best-effort policies with known false-positive risk.
type Options struct {
	// BoldAllCaps wraps short all-uppercase prose lines in ** markers.
	// Off by default: a bare all-caps code identifier would be bolded too.
	BoldAllCaps bool
}

// Pass is one named rewriting step over the full line sequence.
type Pass struct {
	Name string
	Run  func(lines []string) []string
}

// Stripper applies dialect-specific cleanup in two stages. Strip runs before
// inline class spans are resolved to emphasis, Finish runs after; splitting
// is required because class spans like [text]{.cls} must survive Strip for
// the style resolver to consume, while Finish sweeps up whatever remains.
type Stripper struct {
	strip  []Pass
	finish []Pass
}

// New builds the pass lists for a dialect. Unknown dialects fall back to the
// plain rule set rather than failing.
func New(dialect Dialect, opts Options) *Stripper {
	s := &Stripper{}
	switch dialect {
	case DialectEPUB:
		s.strip = []Pass{
			{"anchor-spans", removeAnchorSpans},
			{"empty-link-lines", dropEmptyLinkLines},
			{"legacy-double-links", resolveLegacyDoubleLinks},
			{"html-comments", stripHTMLComments},
			{"orphan-double-brackets", unwrapOrphanDoubleBrackets},
			{"zero-width", removeZeroWidth},
		}
		s.finish = []Pass{
			{"calibre-bullets", convertCalibreBullets},
			{"square-bullets", normalizeSquareBullets},
			{"part-links", stripPartLinks},
			{"inline-em-dashes", convertInlineEmDashes},
			{"non-link-brackets", stripNonLinkBrackets},
			{"empty-brackets", removeEmptyBrackets},
			{"vestigial-blocks", removeVestigialBlocks},
			{"dash-rules", convertDashRules},
			{"svg-blocks", removeSVGBlocks},
			{"malformed-links", fixMalformedLinks},
			{"empty-label-links", fixEmptyLabelLinks},
			{"redundant-escapes", stripRedundantEscapes},
			{"list-spacing", ensureBlankAfterLists},
			{"class-braces", removeClassBraces},
			{"blank-lines", collapseBlankLines},
		}
	case DialectAcrobat:
		s.strip = []Pass{
			{"brace-blocks", removeBraceBlocks},
			{"escaped-quotes", unescapeQuotes},
			{"return-markers", dropReturnMarkers},
			{"zero-width", removeZeroWidth},
			{"html-comments", stripHTMLComments},
			{"internal-links", resolveInternalLinks},
			{"backslash-lines", dropBackslashLines},
		}
		s.finish = []Pass{
			{"empty-brackets", removeEmptyBrackets},
			{"space-runs", collapseSpaceRuns},
			{"inline-em-dashes", convertInlineEmDashes},
			{"blank-lines", collapseBlankLines},
		}
	default:
		s.strip = []Pass{
			{"html-comments", stripHTMLComments},
			{"zero-width", removeZeroWidth},
		}
		s.finish = []Pass{
			{"empty-brackets", removeEmptyBrackets},
			{"space-runs", collapseSpaceRuns},
			{"blank-lines", collapseBlankLines},
		}
	}
	if opts.BoldAllCaps {
		s.finish = append(s.finish, Pass{"bold-all-caps", boldAllCapsLines})
	}
	return s
}

// Strip runs the pre-style passes in order.
func (s *Stripper) Strip(lines []string) []string {
	return runPasses(s.strip, lines)
}

// Finish runs the residual-cleanup passes in order.
func (s *Stripper) Finish(lines []string) []string {
	return runPasses(s.finish, lines)
}

func runPasses(passes []Pass, lines []string) []string {
	for _, pass := range passes {
		lines = pass.Run(lines)
	}
	return lines
}

// isFenceMarker reports whether a line toggles fenced-code state.
func isFenceMarker(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// mapProse applies fn to every line outside fenced code. Fence markers
// themselves are passed through untouched.
func mapProse(lines []string, fn func(line string) string) []string {
	out := make([]string, 0, len(lines))
	inFence := false
	for _, line := range lines {
		if isFenceMarker(line) {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		out = append(out, fn(line))
	}
	return out
}

// filterProse applies keep to every line outside fenced code, dropping lines
// it rejects.
func filterProse(lines []string, keep func(line string) bool) []string {
	out := make([]string, 0, len(lines))
	inFence := false
	for _, line := range lines {
		if isFenceMarker(line) {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence || keep(line) {
			out = append(out, line)
		}
	}
	return out
}
