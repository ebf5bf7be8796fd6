// Package structure normalizes a document's heading hierarchy and its table
// of contents.
//
// Converted books arrive with every chapter as an H1. The document gets a
// single synthesized H1 title instead, so existing H1s demote to H2 and gain
// explicit anchors; chapters already at H2 keep their level and gain anchors
// the same way. The table of contents is rebuilt from those anchors so its
// links always resolve.
package structure

import (
	"regexp"
	"strings"
)

var (
	h1Re            = regexp.MustCompile(`^#\s+(.*?)\s*$`)
	h2Re            = regexp.MustCompile(`^##\s+(.*?)\s*$`)
	anchorRe        = regexp.MustCompile(`\s*\{#[^}]+\}\s*$`)
	anchorCaptureRe = regexp.MustCompile(`\{#([^}]+)\}\s*$`)
	headingRe       = regexp.MustCompile(`^(#+)\s+(.*?)\s*$`)
)

// Entry is one table-of-contents row.
type Entry struct {
	Text string
	Slug string
}

// isTOCHeading reports whether heading text names the table of contents
// itself. A trailing colon is ignored.
func isTOCHeading(text string) bool {
	t := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ":")))
	return t == "table of contents" || t == "table of content" || t == "contents"
}

// Demote rewrites every H1 outside fenced code to an H2 carrying a
// document-unique anchor, and returns the collected entries in document
// order. Pre-existing H2s are recorded too: one with an anchor keeps it,
// one without gains a fresh slug. Headings that name the table of contents
// are demoted but excluded from the entries.
func Demote(lines []string) ([]string, []Entry) {
	out := make([]string, 0, len(lines))
	var entries []Entry
	sl := newSlugger()
	inFence := false
	for _, line := range lines {
		if isFence(line) {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		if sub := h1Re.FindStringSubmatch(line); sub != nil {
			text := strings.TrimSpace(anchorRe.ReplaceAllString(sub[1], ""))
			if text == "" {
				out = append(out, line)
				continue
			}
			slug := sl.unique(text)
			out = append(out, "## "+text+" {#"+slug+"}")
			if !isTOCHeading(text) {
				entries = append(entries, Entry{Text: text, Slug: slug})
			}
			continue
		}
		if sub := h2Re.FindStringSubmatch(line); sub != nil {
			text := strings.TrimSpace(anchorRe.ReplaceAllString(sub[1], ""))
			if text == "" || isTOCHeading(text) {
				out = append(out, line)
				continue
			}
			// Keeping an existing anchor keeps the line stable across runs.
			if m := anchorCaptureRe.FindStringSubmatch(line); m != nil {
				sl.reserve(m[1])
				out = append(out, line)
				entries = append(entries, Entry{Text: text, Slug: m[1]})
				continue
			}
			slug := sl.unique(text)
			out = append(out, "## "+text+" {#"+slug+"}")
			entries = append(entries, Entry{Text: text, Slug: slug})
			continue
		}
		out = append(out, line)
	}
	return out, entries
}

// BuildTOC renders entries as a heading plus one bullet link per entry.
// No entries, no TOC.
func BuildTOC(entries []Entry) []string {
	if len(entries) == 0 {
		return nil
	}
	toc := make([]string, 0, len(entries)+2)
	toc = append(toc, "## Table of Contents", "")
	for _, e := range entries {
		toc = append(toc, "- ["+e.Text+"](#"+e.Slug+")")
	}
	return toc
}

// ReplaceExistingTOC finds a heading naming the table of contents and
// replaces it, together with its body up to the next H1/H2 or end of
// document, with the rebuilt block. It reports whether a replacement
// happened.
func ReplaceExistingTOC(lines []string, toc []string) ([]string, bool) {
	inFence := false
	for i, line := range lines {
		if isFence(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		sub := headingRe.FindStringSubmatch(line)
		if sub == nil || len(sub[1]) > 2 {
			continue
		}
		text := anchorRe.ReplaceAllString(sub[2], "")
		if !isTOCHeading(text) {
			continue
		}
		end := i + 1
		for end < len(lines) {
			if next := headingRe.FindStringSubmatch(lines[end]); next != nil && len(next[1]) <= 2 {
				break
			}
			end++
		}
		out := make([]string, 0, len(lines)-(end-i)+len(toc)+1)
		out = append(out, lines[:i]...)
		out = append(out, toc...)
		out = append(out, "")
		out = append(out, lines[end:]...)
		return out, true
	}
	return lines, false
}

// InsertTOC places the block before the first heading, or at the top when
// the document has none.
func InsertTOC(lines []string, toc []string) []string {
	if len(toc) == 0 {
		return lines
	}
	at := 0
	inFence := false
	for i, line := range lines {
		if isFence(line) {
			inFence = !inFence
			continue
		}
		if !inFence && headingRe.MatchString(line) {
			at = i
			break
		}
	}
	out := make([]string, 0, len(lines)+len(toc)+1)
	out = append(out, lines[:at]...)
	out = append(out, toc...)
	out = append(out, "")
	out = append(out, lines[at:]...)
	return out
}

func isFence(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}
