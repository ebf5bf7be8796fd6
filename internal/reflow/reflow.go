// Package reflow reconstructs paragraphs from hard-wrapped Markdown lines.
//
// PDF text extraction emits one line per visual row, so paragraphs arrive
// split at the column width and sometimes hyphenated at the break. Unwrap
// merges wrapped fragments back into single-line paragraphs; MergeSplit is
// the gentler companion for input that is already loosely split but not
// hard-wrapped. Fenced code is never touched.
package reflow

import (
	"regexp"
	"strings"
)

var (
	listMarkerRe   = regexp.MustCompile(`^(?:[-*+]\s+|\d+[.)]\s+|[A-Za-z][.)]\s+)`)
	footnoteDefRe  = regexp.MustCompile(`^\[\^?[^\]]+\]:`)
	sentenceEndRe  = regexp.MustCompile(`[.!?:;—–]$`)
	whitespaceRuns = regexp.MustCompile(`[ \t]{2,}`)
)

// maxCandidateIndent is the indentation at which a line stops being prose
// (four spaces opens an indented code block).
const maxCandidateIndent = 4

func isFenceMarker(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// isCandidate reports whether a line can participate in paragraph joining:
// non-blank prose that is not a heading, blockquote, table row, list item,
// footnote definition, thematic break, or raw HTML block line.
func isCandidate(line string) bool {
	stripped := strings.TrimSpace(line)
	if stripped == "" {
		return false
	}
	if len(line)-len(strings.TrimLeft(line, " ")) >= maxCandidateIndent {
		return false
	}
	switch stripped[0] {
	case '#', '>', '|':
		return false
	}
	switch stripped {
	case "---", "***", "___":
		return false
	}
	if strings.HasPrefix(stripped, "<") && strings.HasSuffix(stripped, ">") {
		return false
	}
	if listMarkerRe.MatchString(stripped) {
		return false
	}
	if footnoteDefRe.MatchString(stripped) {
		return false
	}
	return true
}

// joinFragments merges buffered fragments into one paragraph line. A fragment
// ending in a single hyphen continues a word split at the line break, so the
// next fragment is appended without a space.
func joinFragments(parts []string) string {
	var combined string
	for _, part := range parts {
		chunk := strings.TrimSpace(part)
		if chunk == "" {
			continue
		}
		switch {
		case combined == "":
			combined = chunk
		case strings.HasSuffix(combined, "-") && !strings.HasSuffix(combined, "--"):
			combined = combined[:len(combined)-1] + chunk
		default:
			combined += " " + chunk
		}
	}
	return combined
}

// Unwrap merges consecutive candidate lines into single paragraphs, each
// followed by exactly one blank line. A buffer flushes on a blank line, a
// non-candidate line, or a fence toggle.
func Unwrap(lines []string) []string {
	result := make([]string, 0, len(lines))
	var buffer []string

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if paragraph := joinFragments(buffer); paragraph != "" {
			result = append(result, paragraph, "")
		}
		buffer = buffer[:0]
	}

	inFence := false
	for _, line := range lines {
		current := strings.TrimRight(line, " \t")
		if isFenceMarker(current) {
			flush()
			inFence = !inFence
			result = append(result, current)
			continue
		}
		if inFence {
			result = append(result, current)
			continue
		}
		if strings.TrimSpace(current) == "" {
			flush()
			if len(result) > 0 && result[len(result)-1] != "" {
				result = append(result, "")
			}
			continue
		}
		if isCandidate(current) {
			buffer = append(buffer, current)
			continue
		}
		flush()
		result = append(result, current)
	}
	flush()

	for len(result) > 0 && result[len(result)-1] == "" {
		result = result[:len(result)-1]
	}
	return result
}

// shouldMerge decides whether two blank-line-separated fragments belong to
// one paragraph: the first must not end in sentence-terminal punctuation and
// the second must start with a lowercase letter. This keeps genuine heading
// and list boundaries apart.
func shouldMerge(prev, next string) bool {
	prev = strings.TrimRight(prev, " \t")
	if prev == "" {
		return false
	}
	trimmedNext := strings.TrimLeft(next, " \t")
	if trimmedNext == "" {
		return false
	}
	first := rune(trimmedNext[0])
	if first < 'a' || first > 'z' {
		return false
	}
	if sentenceEndRe.MatchString(prev) {
		return false
	}
	switch trimmedNext[0] {
	case '#', '-', '*', '>', '`':
		return false
	}
	return true
}

// MergeSplit rejoins paragraphs that a converter split across blank lines
// mid-sentence. Unlike Unwrap it only merges across existing blank gaps.
func MergeSplit(lines []string) []string {
	merged := make([]string, 0, len(lines))
	inFence := false
	i := 0
	for i < len(lines) {
		line := lines[i]
		if isFenceMarker(line) {
			inFence = !inFence
			merged = append(merged, line)
			i++
			continue
		}
		if !inFence && strings.TrimSpace(line) == "" && len(merged) > 0 {
			j := i + 1
			for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
				j++
			}
			if j < len(lines) && !isFenceMarker(lines[j]) && shouldMerge(merged[len(merged)-1], lines[j]) {
				merged[len(merged)-1] = strings.TrimRight(merged[len(merged)-1], " \t") + " " + strings.TrimLeft(lines[j], " \t")
				i = j + 1
				continue
			}
		}
		merged = append(merged, line)
		i++
	}
	return merged
}

// CollapseWhitespace squeezes interior space runs within prose lines to a
// single space, preserving leading indentation and fenced code verbatim.
func CollapseWhitespace(lines []string) []string {
	cleaned := make([]string, 0, len(lines))
	inFence := false
	for _, line := range lines {
		if isFenceMarker(line) {
			inFence = !inFence
			cleaned = append(cleaned, strings.TrimRight(line, " \t"))
			continue
		}
		if inFence {
			cleaned = append(cleaned, strings.TrimRight(line, " \t"))
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		rest := whitespaceRuns.ReplaceAllString(line[indent:], " ")
		cleaned = append(cleaned, strings.TrimRight(line[:indent]+rest, " \t"))
	}
	return cleaned
}
