// Package metadata infers bibliographic fields from document text.
//
// Converted books rarely carry machine-readable metadata, but their opening
// pages usually state the title, author, publisher, identifiers, and a
// publication year in predictable phrasings. Inference is best effort over a
// bounded prefix of the document; absent fields stay empty rather than
// guessed.
package metadata

import (
	"regexp"
	"strings"
	"unicode"
)

// scanWindow bounds how many lines of the document inference reads.
const scanWindow = 200

// subtitleWindow bounds how far below the title a subtitle may sit.
const subtitleWindow = 5

var (
	authorLabelRe    = regexp.MustCompile(`(?i)^author[s]?\s*[:：]\s*(.+)$`)
	byLineRe         = regexp.MustCompile(`^[Bb]y\s+([A-Z][\w.'-]*(?:\s+(?:and\s+)?[A-Z][\w.'-]*)*)\s*$`)
	publisherLabelRe = regexp.MustCompile(`(?i)^publisher\s*[:：]\s*(.+)$`)
	publishedByRe    = regexp.MustCompile(`(?i)\bpublished\s+by[:]?\s+(.+?)(?:[.,;]|$)`)
	isbnRe           = regexp.MustCompile(`(?i)\bISBN(?:-1[03])?\s*[:：]?\s*([0-9][0-9 -]{8,16}[0-9Xx])`)
	issnRe           = regexp.MustCompile(`(?i)\bISSN\s*[:：]?\s*(\d{4}-?\d{3}[\dXx])`)
	asinRe           = regexp.MustCompile(`(?i)\bASIN\s*[:：]?\s*(B[0-9A-Z]{9})`)
	uuidRe           = regexp.MustCompile(`(?i)\b([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})\b`)
	fullDateRe       = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	copyrightYearRe  = regexp.MustCompile(`(?i)(?:©|\(c\)|copyright)\s*(?:©\s*)?((?:19|20)\d{2})`)
	bareYearRe       = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	nonISBNCharsRe   = regexp.MustCompile(`[^0-9Xx]`)
	headingMarkRe    = regexp.MustCompile(`^#{1,6}\s+`)
	anchorSuffixRe   = regexp.MustCompile(`\s*\{#[^}]+\}\s*$`)
)

// Info holds the inferred bibliographic fields. Empty means not found.
type Info struct {
	Title     string
	Subtitle  string
	Author    string
	Publisher string
	ISBN      string
	ISSN      string
	ASIN      string
	UUID      string
	// Date is ISO-8601; a bare year anchors to January 1st UTC.
	Date string
}

// Infer scans the opening lines of a document for bibliographic fields.
func Infer(lines []string) Info {
	if len(lines) > scanWindow {
		lines = lines[:scanWindow]
	}

	var info Info
	titleAt := -1
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if info.Title == "" && headingMarkRe.MatchString(line) {
			text := strings.TrimSpace(anchorSuffixRe.ReplaceAllString(headingMarkRe.ReplaceAllString(line, ""), ""))
			if text != "" && !isContentsHeading(text) {
				info.Title = text
				titleAt = i
				continue
			}
		}

		if info.Author == "" {
			if sub := authorLabelRe.FindStringSubmatch(line); sub != nil {
				info.Author = strings.TrimSpace(sub[1])
			} else if sub := byLineRe.FindStringSubmatch(line); sub != nil {
				info.Author = strings.TrimSpace(sub[1])
			}
		}
		if info.Publisher == "" {
			if sub := publisherLabelRe.FindStringSubmatch(line); sub != nil {
				info.Publisher = strings.TrimSpace(sub[1])
			} else if sub := publishedByRe.FindStringSubmatch(line); sub != nil {
				info.Publisher = strings.TrimSpace(sub[1])
			}
		}
		if info.ISBN == "" {
			if sub := isbnRe.FindStringSubmatch(line); sub != nil {
				info.ISBN = NormalizeISBN(sub[1])
			}
		}
		if info.ISSN == "" {
			if sub := issnRe.FindStringSubmatch(line); sub != nil {
				info.ISSN = strings.ToUpper(strings.ReplaceAll(sub[1], "-", ""))
			}
		}
		if info.ASIN == "" {
			if sub := asinRe.FindStringSubmatch(line); sub != nil {
				info.ASIN = strings.ToUpper(sub[1])
			}
		}
		if info.UUID == "" {
			if sub := uuidRe.FindStringSubmatch(line); sub != nil {
				info.UUID = strings.ToLower(sub[1])
			}
		}
		if info.Date == "" {
			info.Date = inferDate(line)
		}
	}

	info.Subtitle = findSubtitle(lines, titleAt)
	return info
}

// isContentsHeading rejects table-of-contents headings as title candidates.
func isContentsHeading(text string) bool {
	t := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(text), ":"))
	return t == "table of contents" || t == "table of content" || t == "contents"
}

// findSubtitle looks for a standalone prose line shortly below the title.
// Copyright notices, labeled fields, and list or heading lines never qualify.
func findSubtitle(lines []string, titleAt int) string {
	if titleAt < 0 {
		return ""
	}
	for i := titleAt + 1; i < len(lines) && i <= titleAt+subtitleWindow; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "copyright") || strings.Contains(line, "©") {
			return ""
		}
		switch line[0] {
		case '#', '-', '*', '>', '|', '!', '[':
			return ""
		}
		if strings.Contains(line, ":") && (authorLabelRe.MatchString(line) || publisherLabelRe.MatchString(line)) {
			return ""
		}
		if byLineRe.MatchString(line) {
			return ""
		}
		// Subtitles read like titles, not sentences.
		if strings.ContainsAny(line[len(line)-1:], ".!?") {
			return ""
		}
		if first := []rune(line)[0]; !unicode.IsUpper(first) && !unicode.IsDigit(first) {
			return ""
		}
		if len(line) > 120 {
			return ""
		}
		return line
	}
	return ""
}

// inferDate extracts a publication date from a line. A full YYYY-MM-DD wins;
// otherwise a copyright year, then any plausible bare year, anchors to
// January 1st UTC.
func inferDate(line string) string {
	if sub := fullDateRe.FindStringSubmatch(line); sub != nil {
		return sub[1] + "-" + sub[2] + "-" + sub[3] + "T00:00:00+00:00"
	}
	if sub := copyrightYearRe.FindStringSubmatch(line); sub != nil {
		return sub[1] + "-01-01T00:00:00+00:00"
	}
	lower := strings.ToLower(line)
	if strings.Contains(lower, "publish") || strings.Contains(lower, "edition") || strings.Contains(lower, "printing") {
		if sub := bareYearRe.FindStringSubmatch(line); sub != nil {
			return sub[1] + "-01-01T00:00:00+00:00"
		}
	}
	return ""
}

// NormalizeISBN strips separators and validates the length: ten or thirteen
// characters, a trailing X allowed only on ten. Anything else returns "".
func NormalizeISBN(raw string) string {
	digits := nonISBNCharsRe.ReplaceAllString(raw, "")
	digits = strings.ToUpper(digits)
	switch len(digits) {
	case 10:
		if strings.ContainsAny(digits[:9], "X") {
			return ""
		}
		return digits
	case 13:
		if strings.Contains(digits, "X") {
			return ""
		}
		return digits
	}
	return ""
}

// ExtractISBN finds the first ISBN mention in the given lines and returns it
// normalized, or "".
func ExtractISBN(lines []string) string {
	for _, line := range lines {
		if sub := isbnRe.FindStringSubmatch(line); sub != nil {
			if isbn := NormalizeISBN(sub[1]); isbn != "" {
				return isbn
			}
		}
	}
	return ""
}

// ShortTitle truncates a title at its first colon or spaced dash, producing
// the form used for filenames and running heads.
func ShortTitle(title string) string {
	if at := strings.Index(title, ":"); at >= 0 {
		title = title[:at]
	}
	for _, sep := range []string{" - ", " – ", " — "} {
		if at := strings.Index(title, sep); at >= 0 {
			title = title[:at]
		}
	}
	return strings.TrimSpace(title)
}
