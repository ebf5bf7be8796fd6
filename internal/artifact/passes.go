package artifact

import (
	"regexp"
	"strings"
	"unicode"
)

// Precompiled patterns shared by the passes. Several of the originals relied
// on lookarounds; those are implemented with manual scans instead.
var (
	emptyAnchorRe       = regexp.MustCompile(`\[\]\{#[^}]+\}`)
	anchorSpanRe        = regexp.MustCompile(`\s*\{#[^}]+\}`)
	emptyLinkLineRe     = regexp.MustCompile(`^\s*\[\s*\]\s*$`)
	legacyDoubleLinkRe  = regexp.MustCompile(`\[\[([^\]]+?)\]\]\s*\(\s*(#[^)]+)\)`)
	orphanDoubleLinkRe  = regexp.MustCompile(`\[\[([^\]]+?)\]\]`)
	calibreBulletRe     = regexp.MustCompile(`^(\s*)\[[^\]]*\]\[(.*)\]\s*$`)
	squareBulletLineRe  = regexp.MustCompile(`^(\s*)\[•\s*\]\s*(.+)$`)
	plainBulletLineRe   = regexp.MustCompile(`^(\s*)•\s+(.+)$`)
	squareBulletMarkRe  = regexp.MustCompile(`\[•\s*\]`)
	partLinkRe          = regexp.MustCompile(`(?i)\[([^\]]+)\]\(#part[^)]*\)`)
	bracketSpanRe       = regexp.MustCompile(`\[([^\]]+)\]`)
	colonBlockRe        = regexp.MustCompile(`^:::`)
	tildeLineRe         = regexp.MustCompile(`^~+$`)
	backslashLineRe     = regexp.MustCompile(`^\s*\\\s*$`)
	styleLineRe         = regexp.MustCompile(`(?i)^\{\s*style\s*=\s*"[^"]*"\s*\}$`)
	dashRuleRe          = regexp.MustCompile(`^-{5,}$`)
	svgOpenRe           = regexp.MustCompile(`(?i)<svg\b`)
	svgCloseRe          = regexp.MustCompile(`(?i)</svg>`)
	malformedLinkRe     = regexp.MustCompile(`\[\[\]\[([^\]]+)\]\((#[^)]+)\)\]\((#[^)]+)\)`)
	emptyLabelLinkRe    = regexp.MustCompile(`\[\]\s*([^\]]+?)\]\(`)
	redundantEscapeRe   = regexp.MustCompile(`\\([.!?,:;'])`)
	classBraceRe        = regexp.MustCompile(`\s*\{\s*(?:\.[A-Za-z0-9_-]+\s*)+\}`)
	classAttrRe         = regexp.MustCompile(`\s*class="[^"]+"`)
	braceBlockRe        = regexp.MustCompile(`\s*\{[^{}]*\}`)
	escapedQuoteRe      = regexp.MustCompile(`\\(['"])`)
	returnMarkerRe      = regexp.MustCompile(`(?i)\\<\s*return\s*>`)
	imageLinkRe         = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	linkRe              = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	footnoteDefRe       = regexp.MustCompile(`^\s*\[\^?[^\]]+\]:`)
	parenGroupRe        = regexp.MustCompile(`\(([^)]+)\)`)
	externalLinkRe      = regexp.MustCompile(`(?i)\.html?([#?].*)?$`)
	slugAnchorRe        = regexp.MustCompile(`^#[a-z][a-z0-9]*(?:-[a-z0-9]+)*$`)
	spaceRunRe          = regexp.MustCompile(`[ \t]{2,}`)
	hyphenBulletRe      = regexp.MustCompile(`^\s*-\s+\S`)
	zeroWidthReplacer   = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\u2060", "", "\u00a0", " ")
	emphasisWrapperRe   = regexp.MustCompile(`^\*\*.+\*\*$`)
	inlineCodeWrapperRe = regexp.MustCompile("^`.*`$")
)

// removeAnchorSpans deletes empty anchor spans and stray anchor braces.
// Heading attribute anchors ("## Title {#slug}") are structural and kept.
func removeAnchorSpans(lines []string) []string {
	return mapProse(lines, func(line string) string {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") {
			return line
		}
		line = emptyAnchorRe.ReplaceAllString(line, "")
		return anchorSpanRe.ReplaceAllString(line, "")
	})
}

func dropEmptyLinkLines(lines []string) []string {
	return filterProse(lines, func(line string) bool {
		return !emptyLinkLineRe.MatchString(line)
	})
}

// resolveLegacyDoubleLinks rewrites [[label]](#target) wrappers: links into
// Calibre part or TOC anchors reduce to their label, anything else becomes a
// normal single-bracket link.
func resolveLegacyDoubleLinks(lines []string) []string {
	return mapProse(lines, func(line string) string {
		return legacyDoubleLinkRe.ReplaceAllStringFunc(line, func(match string) string {
			sub := legacyDoubleLinkRe.FindStringSubmatch(match)
			target := strings.ToLower(sub[2])
			if strings.HasPrefix(target, "#part") || strings.HasPrefix(target, "#toc") {
				return sub[1]
			}
			return "[" + sub[1] + "](" + sub[2] + ")"
		})
	})
}

func unwrapOrphanDoubleBrackets(lines []string) []string {
	return mapProse(lines, func(line string) string {
		return orphanDoubleLinkRe.ReplaceAllString(line, "$1")
	})
}

// stripHTMLComments removes <!-- --> spans, including ones spanning lines.
// Lines left empty by comment removal are dropped entirely so they do not
// leave blank gaps in the output.
func stripHTMLComments(lines []string) []string {
	out := make([]string, 0, len(lines))
	inFence := false
	inComment := false
	for _, line := range lines {
		if !inComment && isFenceMarker(line) {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}

		var sb strings.Builder
		rest := line
		for {
			if inComment {
				end := strings.Index(rest, "-->")
				if end < 0 {
					rest = ""
					break
				}
				rest = rest[end+3:]
				inComment = false
				continue
			}
			start := strings.Index(rest, "<!--")
			if start < 0 {
				sb.WriteString(rest)
				rest = ""
				break
			}
			sb.WriteString(rest[:start])
			rest = rest[start+4:]
			inComment = true
		}
		cleaned := sb.String()
		if cleaned == "" && strings.TrimSpace(line) != "" {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

func removeZeroWidth(lines []string) []string {
	return mapProse(lines, zeroWidthReplacer.Replace)
}

// convertCalibreBullets turns Calibre's [marker][text] list rows into
// hyphen bullets.
func convertCalibreBullets(lines []string) []string {
	return mapProse(lines, func(line string) string {
		sub := calibreBulletRe.FindStringSubmatch(line)
		if sub == nil || strings.TrimSpace(sub[2]) == "" {
			return line
		}
		return sub[1] + "- " + strings.TrimSpace(sub[2])
	})
}

func normalizeSquareBullets(lines []string) []string {
	return mapProse(lines, func(line string) string {
		if sub := squareBulletLineRe.FindStringSubmatch(line); sub != nil {
			return sub[1] + "- " + strings.TrimSpace(sub[2])
		}
		if sub := plainBulletLineRe.FindStringSubmatch(line); sub != nil {
			return sub[1] + "- " + strings.TrimSpace(sub[2])
		}
		return squareBulletMarkRe.ReplaceAllString(line, " - ")
	})
}

func stripPartLinks(lines []string) []string {
	return mapProse(lines, func(line string) string {
		return partLinkRe.ReplaceAllString(line, "$1")
	})
}

// convertInlineEmDashes rewrites runs of exactly three hyphens to an em dash.
// Dash-only lines (thematic breaks) are exempt.
func convertInlineEmDashes(lines []string) []string {
	return mapProse(lines, func(line string) string {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && strings.Trim(trimmed, "-") == "" {
			return line
		}
		return replaceExactDashRuns(line)
	})
}

// replaceExactDashRuns substitutes em dashes for hyphen runs of length 3,
// leaving shorter and longer runs (option markers, horizontal rules) alone.
func replaceExactDashRuns(line string) string {
	var sb strings.Builder
	sb.Grow(len(line))
	for i := 0; i < len(line); {
		if line[i] != '-' {
			sb.WriteByte(line[i])
			i++
			continue
		}
		j := i
		for j < len(line) && line[j] == '-' {
			j++
		}
		if j-i == 3 {
			sb.WriteString("—")
		} else {
			sb.WriteString(line[i:j])
		}
		i = j
	}
	return sb.String()
}

// stripNonLinkBrackets unwraps [text] spans that are not followed by a link
// target or footnote colon. Image alts (preceded by !) are preserved.
func stripNonLinkBrackets(lines []string) []string {
	return mapProse(lines, func(line string) string {
		return replaceBrackets(line, func(before, text, after string) (string, bool) {
			if strings.HasSuffix(before, "!") {
				return "", false
			}
			rest := strings.TrimLeft(after, " ")
			if strings.HasPrefix(rest, "(") || strings.HasPrefix(rest, ":") {
				return "", false
			}
			return text, true
		})
	})
}

// replaceBrackets scans [text] spans and lets decide replace them. The
// callback receives the text before the span, the span content, and the text
// after; returning ok=false keeps the span verbatim.
func replaceBrackets(line string, decide func(before, text, after string) (string, bool)) string {
	matches := bracketSpanRe.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return line
	}
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		text := line[m[2]:m[3]]
		replacement, ok := decide(line[:start], text, line[end:])
		if !ok {
			continue
		}
		sb.WriteString(line[last:start])
		sb.WriteString(replacement)
		last = end
	}
	sb.WriteString(line[last:])
	return sb.String()
}

// removeEmptyBrackets deletes bracket pairs with no content (image markers
// excluded) and tightens the double spaces that removal leaves behind.
func removeEmptyBrackets(lines []string) []string {
	return mapProse(lines, func(line string) string {
		var sb strings.Builder
		for i := 0; i < len(line); {
			if line[i] != '[' || (i > 0 && line[i-1] == '!') {
				sb.WriteByte(line[i])
				i++
				continue
			}
			j := i + 1
			for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
				j++
			}
			if j < len(line) && line[j] == ']' {
				i = j + 1
				continue
			}
			sb.WriteByte(line[i])
			i++
		}
		cleaned := sb.String()
		indent := len(cleaned) - len(strings.TrimLeft(cleaned, " "))
		return cleaned[:indent] + spaceRunRe.ReplaceAllString(cleaned[indent:], " ")
	})
}

// removeVestigialBlocks drops structural leftovers: Pandoc ::: containers,
// tilde rules, stray backslash lines, and {style="..."} attribute lines.
func removeVestigialBlocks(lines []string) []string {
	return filterProse(lines, func(line string) bool {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			return true
		}
		switch {
		case colonBlockRe.MatchString(trimmed),
			tildeLineRe.MatchString(trimmed),
			backslashLineRe.MatchString(trimmed),
			styleLineRe.MatchString(trimmed):
			return false
		}
		return true
	})
}

func convertDashRules(lines []string) []string {
	return mapProse(lines, func(line string) string {
		if dashRuleRe.MatchString(strings.TrimSpace(line)) {
			return "<hr>"
		}
		return line
	})
}

// removeSVGBlocks drops everything from an <svg> open tag through its close.
func removeSVGBlocks(lines []string) []string {
	out := make([]string, 0, len(lines))
	inFence := false
	inSVG := false
	for _, line := range lines {
		if !inSVG && isFenceMarker(line) {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		if !inSVG && svgOpenRe.MatchString(line) {
			inSVG = true
			continue
		}
		if inSVG {
			if svgCloseRe.MatchString(line) {
				inSVG = false
			}
			continue
		}
		out = append(out, line)
	}
	return out
}

func fixMalformedLinks(lines []string) []string {
	return mapProse(lines, func(line string) string {
		return malformedLinkRe.ReplaceAllStringFunc(line, func(match string) string {
			sub := malformedLinkRe.FindStringSubmatch(match)
			return "[" + strings.TrimSpace(sub[1]) + "](" + sub[2] + ")"
		})
	})
}

func fixEmptyLabelLinks(lines []string) []string {
	return mapProse(lines, func(line string) string {
		return emptyLabelLinkRe.ReplaceAllString(line, "[$1](")
	})
}

func stripRedundantEscapes(lines []string) []string {
	return mapProse(lines, func(line string) string {
		return redundantEscapeRe.ReplaceAllString(line, "$1")
	})
}

// removeClassBraces sweeps residual class-only attribute braces and literal
// class="..." fragments left after inline styles were resolved.
func removeClassBraces(lines []string) []string {
	return mapProse(lines, func(line string) string {
		line = classBraceRe.ReplaceAllString(line, "")
		return classAttrRe.ReplaceAllString(line, "")
	})
}

// collapseBlankLines reduces runs of blank lines to a single blank separator.
// Whitespace-only lines count as blank.
func collapseBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	inFence := false
	blankStreak := 0
	for _, line := range lines {
		if isFenceMarker(line) {
			inFence = !inFence
			blankStreak = 0
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			blankStreak++
			if blankStreak > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blankStreak = 0
		out = append(out, line)
	}
	return out
}

// removeBraceBlocks deletes one-line {...} segments (Acrobat wraps spans in
// positional attributes with no semantic value). Heading lines keep their
// attribute anchors.
func removeBraceBlocks(lines []string) []string {
	return mapProse(lines, func(line string) string {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") {
			return line
		}
		return strings.TrimRight(braceBlockRe.ReplaceAllString(line, ""), " \t")
	})
}

func unescapeQuotes(lines []string) []string {
	return mapProse(lines, func(line string) string {
		return escapedQuoteRe.ReplaceAllString(line, "$1")
	})
}

func dropReturnMarkers(lines []string) []string {
	return mapProse(lines, func(line string) string {
		return returnMarkerRe.ReplaceAllString(line, "")
	})
}

func dropBackslashLines(lines []string) []string {
	return filterProse(lines, func(line string) bool {
		return !backslashLineRe.MatchString(line)
	})
}

// isExternalTarget reports whether a link target should survive internal-link
// stripping: absolute URLs and references to other document files do.
func isExternalTarget(target string) bool {
	lower := strings.ToLower(strings.TrimSpace(target))
	if lower == "" {
		return false
	}
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return true
	}
	return externalLinkRe.MatchString(lower)
}

// isSlugAnchor matches document-slug anchors like "#chapter-one", which are
// navigation we produced ourselves, as opposed to converter bookmarks like
// "#bookmark12" or "#G4.1250117".
func isSlugAnchor(target string) bool {
	target = strings.TrimSpace(target)
	if strings.Contains(strings.ToLower(target), "bookmark") {
		return false
	}
	return slugAnchorRe.MatchString(target)
}

// isBookmarkTarget matches Acrobat-internal anchors and bookmark markers.
func isBookmarkTarget(target string) bool {
	lower := strings.ToLower(strings.TrimSpace(target))
	return strings.HasPrefix(lower, "#") || strings.Contains(lower, "bookmark")
}

// resolveInternalLinks reduces links whose targets are document-internal
// anchors to their label text, drops images that point at bookmarks, and
// clears leftover bracket/paren bookmark fragments. Footnote definition lines
// pass through untouched.
func resolveInternalLinks(lines []string) []string {
	return mapProse(lines, func(line string) string {
		if footnoteDefRe.MatchString(line) {
			return line
		}

		line = imageLinkRe.ReplaceAllStringFunc(line, func(match string) string {
			sub := imageLinkRe.FindStringSubmatch(match)
			if isBookmarkTarget(sub[2]) {
				return ""
			}
			// Alt text from Acrobat is positional noise; normalize it away.
			return "![](" + strings.TrimSpace(sub[2]) + ")"
		})

		line = replaceLinks(line, func(label, target string) (string, bool) {
			if isExternalTarget(target) || isSlugAnchor(target) {
				return "", false
			}
			return label, true
		})

		line = replaceBrackets(line, func(before, text, after string) (string, bool) {
			if strings.HasSuffix(before, "!") || strings.HasPrefix(after, "(") {
				return "", false
			}
			return text, true
		})

		return removeBookmarkParens(line)
	})
}

// removeBookmarkParens deletes stray (#anchor) and (bookmark) groups left
// after link resolution. A group directly following "]" is a link target and
// stays.
func removeBookmarkParens(line string) string {
	matches := parenGroupRe.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return line
	}
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > 0 && line[start-1] == ']' {
			continue
		}
		inner := line[m[2]:m[3]]
		if !isBookmarkTarget(inner) {
			continue
		}
		sb.WriteString(line[last:start])
		last = end
	}
	sb.WriteString(line[last:])
	return sb.String()
}

// replaceLinks scans non-image [label](target) links and lets decide rewrite
// them; returning ok=false keeps the link verbatim.
func replaceLinks(line string, decide func(label, target string) (string, bool)) string {
	matches := linkRe.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return line
	}
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > 0 && line[start-1] == '!' {
			continue
		}
		replacement, ok := decide(line[m[2]:m[3]], line[m[4]:m[5]])
		if !ok {
			continue
		}
		sb.WriteString(line[last:start])
		sb.WriteString(replacement)
		last = end
	}
	sb.WriteString(line[last:])
	return sb.String()
}

// collapseSpaceRuns squeezes interior space/tab runs to one space, keeping
// leading indentation, and trims trailing whitespace.
func collapseSpaceRuns(lines []string) []string {
	return mapProse(lines, func(line string) string {
		indent := len(line) - len(strings.TrimLeft(line, " "))
		rest := spaceRunRe.ReplaceAllString(line[indent:], " ")
		return strings.TrimRight(line[:indent]+rest, " \t")
	})
}

// boldAllCapsLines wraps all-uppercase prose lines in strong emphasis.
// Marker-led lines, already-emphasized lines, raw HTML, and inline code are
// left alone; a line is eligible only when it contains letters and none of
// them are lowercase.
func boldAllCapsLines(lines []string) []string {
	return mapProse(lines, func(line string) string {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			return line
		}
		switch trimmed[0] {
		case '#', '-', '*', '+', '>':
			return line
		}
		if emphasisWrapperRe.MatchString(trimmed) && len(trimmed) > 4 {
			return line
		}
		if strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">") {
			return line
		}
		if inlineCodeWrapperRe.MatchString(trimmed) {
			return line
		}

		hasLetter := false
		for _, r := range trimmed {
			if !unicode.IsLetter(r) {
				continue
			}
			if unicode.IsLower(r) {
				return line
			}
			hasLetter = true
		}
		if !hasLetter {
			return line
		}

		indent := len(line) - len(strings.TrimLeft(line, " "))
		return line[:indent] + "**" + trimmed + "**"
	})
}

// ensureBlankAfterLists inserts a blank line between the final hyphen bullet
// of a list and a following prose line so the list terminates cleanly.
func ensureBlankAfterLists(lines []string) []string {
	out := make([]string, 0, len(lines))
	inFence := false
	for i, line := range lines {
		if isFenceMarker(line) {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		out = append(out, line)
		if inFence || !hyphenBulletRe.MatchString(line) {
			continue
		}
		if i+1 >= len(lines) {
			continue
		}
		next := lines[i+1]
		if strings.TrimSpace(next) == "" || hyphenBulletRe.MatchString(next) {
			continue
		}
		out = append(out, "")
	}
	return out
}
