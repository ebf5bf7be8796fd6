package mdforge

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-mdforge/internal/artifact"
	"github.com/alnah/go-mdforge/internal/frontmatter"
	"github.com/alnah/go-mdforge/internal/metadata"
	"github.com/alnah/go-mdforge/internal/reflow"
	"github.com/alnah/go-mdforge/internal/structure"
	"github.com/alnah/go-mdforge/internal/styles"
)

// Compile-time interface implementation checks.
// These ensure implementations satisfy their interfaces at compile time,
// catching signature mismatches before runtime.
var (
	_ lineStripper  = (*artifact.Stripper)(nil)
	_ classResolver = (*styles.Map)(nil)
)

// lineStripper is the two-stage artifact removal contract: Strip runs before
// inline class spans resolve to emphasis, Finish sweeps up afterwards.
type lineStripper interface {
	Strip(lines []string) []string
	Finish(lines []string) []string
}

// classResolver maps class-annotated spans on a line to Markdown emphasis.
type classResolver interface {
	RewriteLine(line string) string
	Len() int
}

type normalizerConfig struct {
	dialect     Dialect
	boldAllCaps bool
}

// Normalizer runs the Markdown normalization pipeline.
// Create with NewNormalizer, then call Normalize per document. A Normalizer
// is stateless across calls and safe for concurrent use.
type Normalizer struct {
	cfg normalizerConfig
}

// NewNormalizer creates a Normalizer with default configuration.
// Use options to customize behavior (e.g., WithDialect, WithBoldAllCaps).
func NewNormalizer(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{cfg: normalizerConfig{dialect: DialectPlain}}
	for _, opt := range opts {
		opt(n)
	}
	if !n.cfg.dialect.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDialect, n.cfg.dialect)
	}
	return n, nil
}

// Normalize runs the full pipeline and returns the normalized document with
// its inferred metadata and rebuilt table of contents. The context is checked
// between stages for cancellation.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (n *Normalizer) Normalize(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if input.Markdown == "" {
		return nil, ErrEmptyMarkdown
	}
	dialect := input.Dialect
	if dialect == "" {
		dialect = n.cfg.dialect
	}
	if !dialect.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDialect, dialect)
	}

	text := normalizeLineEndings(input.Markdown)
	fm, lines := frontmatter.Split(text)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// A leading H1 matching the front-matter title is the document title the
	// assembly step re-synthesizes; dropping it here keeps normalization
	// idempotent.
	if title := fm.Scalar("title"); title != "" {
		lines = dropLeadingTitle(lines, title)
	}

	// Artifact removal stage one: everything that must go before class spans
	// resolve. The spans themselves survive this stage.
	stripper := artifact.New(artifact.Dialect(dialect), artifact.Options{BoldAllCaps: n.cfg.boldAllCaps})
	lines = stripper.Strip(lines)

	// Class spans become emphasis; unknown classes collapse to bare text.
	resolver := styles.NewMap(input.Stylesheets...)
	lines = forEachProse(lines, resolver.RewriteLine)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Stage two sweeps the residue the resolver left behind.
	lines = stripper.Finish(lines)

	// Heading hierarchy: chapter H1s demote to anchored H2s.
	lines, entries := structure.Demote(lines)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Paragraph reflow. Acrobat exports hard-wrap at the column width, so
	// they get full unwrapping; other dialects only rejoin paragraphs that
	// were split across blank lines mid-sentence.
	if dialect == DialectAcrobat {
		lines = reflow.Unwrap(lines)
		lines = reflow.CollapseWhitespace(lines)
	}
	lines = reflow.MergeSplit(lines)

	// Metadata: front matter wins, inference fills the gaps, the original
	// HTML source is the last resort.
	info := metadata.Infer(lines)
	if len(input.SourceMeta) > 0 {
		info = metadata.InferFromHTML(input.SourceMeta, info)
	}
	meta := mergeMetadata(fm, info)
	if input.Date != "" {
		meta.Date = input.Date
	}
	if meta.ISBN == "" {
		// Books state the ISBN in the colophon as often as up front, so fall
		// back to a whole-document scan.
		meta.ISBN = metadata.ExtractISBN(lines)
	}
	writeBack(fm, meta)

	// Table of contents: replace the stale one in place, or insert ahead of
	// the first heading.
	toc := structure.BuildTOC(entries)
	if len(toc) > 0 {
		var replaced bool
		if lines, replaced = structure.ReplaceExistingTOC(lines, toc); !replaced {
			lines = structure.InsertTOC(lines, toc)
		}
	}

	output := assemble(fm, meta.Title, lines)
	res := &Result{
		Markdown: output,
		Metadata: meta,
		Changed:  output != input.Markdown,
	}
	for _, e := range entries {
		res.TOC = append(res.TOC, TOCEntry{Text: e.Text, Slug: e.Slug})
	}
	return res, nil
}

// dropLeadingTitle removes a first non-blank line that is an H1 of exactly
// the given title.
func dropLeadingTitle(lines []string, title string) []string {
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.TrimSpace(line) == "# "+title {
			return append(append([]string{}, lines[:i]...), lines[i+1:]...)
		}
		break
	}
	return lines
}

// normalizeLineEndings converts CRLF and bare CR to LF.
func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// forEachProse applies fn to every line outside fenced code.
func forEachProse(lines []string, fn func(string) string) []string {
	out := make([]string, 0, len(lines))
	inFence := false
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
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

// mergeMetadata combines existing front matter with inferred fields.
// Explicit front matter always wins over inference.
func mergeMetadata(fm *frontmatter.Block, info metadata.Info) Metadata {
	pick := func(key, inferred string) string {
		if v := fm.Scalar(key); v != "" {
			return v
		}
		return inferred
	}
	meta := Metadata{
		Title:     pick("title", info.Title),
		Subtitle:  pick("subtitle", info.Subtitle),
		Author:    pick("author", info.Author),
		Publisher: pick("publisher", info.Publisher),
		ISBN:      pick("isbn", info.ISBN),
		ISSN:      pick("issn", info.ISSN),
		ASIN:      pick("asin", info.ASIN),
		UUID:      pick("uuid", info.UUID),
		Date:      pick("date", info.Date),
	}
	if v := fm.Scalar("title_short"); v != "" {
		meta.ShortTitle = v
	} else if meta.Title != "" {
		meta.ShortTitle = metadata.ShortTitle(meta.Title)
	}
	if meta.ISBN != "" {
		meta.ISBN = metadata.NormalizeISBN(meta.ISBN)
	}
	return meta
}

// writeBack records the merged metadata in the front matter block. The isbn
// key is force-quoted so downstream YAML readers never parse it as a number,
// and the identifier list gains an ISBN entry when one is known. Contributor
// and description fields carry converter noise and are dropped.
func writeBack(fm *frontmatter.Block, meta Metadata) {
	set := func(key, value string) {
		if value != "" {
			fm.Set(key, value)
		}
	}
	set("title", meta.Title)
	set("title_short", meta.ShortTitle)
	set("subtitle", meta.Subtitle)
	set("author", meta.Author)
	set("publisher", meta.Publisher)
	set("date", meta.Date)
	set("issn", meta.ISSN)
	set("asin", meta.ASIN)
	set("uuid", meta.UUID)

	if meta.ISBN != "" {
		fm.Set("isbn", meta.ISBN)
		fm.ForceQuote("isbn")

		entry := "ISBN " + meta.ISBN
		identifiers := fm.List("identifier")
		found := false
		for _, id := range identifiers {
			if strings.Contains(id, meta.ISBN) {
				found = true
				break
			}
		}
		if !found {
			fm.SetList("identifier", append(identifiers, entry))
		}
	}

	fm.Delete("contributor")
	fm.Delete("description")
}

// assemble joins front matter, the synthesized document title, and the body
// into the final document: exactly one blank line between blocks, single
// trailing newline.
func assemble(fm *frontmatter.Block, title string, body []string) string {
	var out []string
	if block := fm.Marshal(); block != nil {
		out = append(out, block...)
		out = append(out, "")
	}
	if title != "" {
		out = append(out, "# "+title, "")
	}
	out = append(out, body...)

	out = squeezeBlanks(out)
	return strings.Join(out, "\n") + "\n"
}

// squeezeBlanks collapses blank runs outside fenced code and trims leading
// and trailing blank lines.
func squeezeBlanks(lines []string) []string {
	out := make([]string, 0, len(lines))
	inFence := false
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			blank = false
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}
	return out
}
