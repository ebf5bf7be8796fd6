package mdforge_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	mdforge "github.com/alnah/go-mdforge"
)

func mustNormalizer(t *testing.T, opts ...mdforge.Option) *mdforge.Normalizer {
	t.Helper()
	n, err := mdforge.NewNormalizer(opts...)
	if err != nil {
		t.Fatalf("NewNormalizer() error = %v", err)
	}
	return n
}

// ---------------------------------------------------------------------------
// TestNormalizeValidation - Input and option validation
// ---------------------------------------------------------------------------

func TestNormalizeValidation(t *testing.T) {
	t.Parallel()

	t.Run("empty markdown", func(t *testing.T) {
		t.Parallel()
		n := mustNormalizer(t)
		_, err := n.Normalize(context.Background(), mdforge.Input{})
		if !errors.Is(err, mdforge.ErrEmptyMarkdown) {
			t.Errorf("err = %v, want ErrEmptyMarkdown", err)
		}
	})

	t.Run("invalid input dialect", func(t *testing.T) {
		t.Parallel()
		n := mustNormalizer(t)
		_, err := n.Normalize(context.Background(), mdforge.Input{
			Markdown: "text",
			Dialect:  mdforge.Dialect("latex"),
		})
		if !errors.Is(err, mdforge.ErrInvalidDialect) {
			t.Errorf("err = %v, want ErrInvalidDialect", err)
		}
	})

	t.Run("invalid option dialect", func(t *testing.T) {
		t.Parallel()
		_, err := mdforge.NewNormalizer(mdforge.WithDialect("latex"))
		if !errors.Is(err, mdforge.ErrInvalidDialect) {
			t.Errorf("err = %v, want ErrInvalidDialect", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestNormalizeEPUBDocument - Full pipeline over a small EPUB-style book
// ---------------------------------------------------------------------------

func TestNormalizeEPUBDocument(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"---",
		"title: Practical Pipelines",
		"contributor: calibre (3.21.0)",
		"---",
		"# Chapter One {#filepos100}",
		"",
		"First paragraph.",
		"",
		"# Chapter Two",
		"",
		"Second paragraph.",
		"",
	}, "\n")

	want := strings.Join([]string{
		"---",
		"title: Practical Pipelines",
		"title_short: Practical Pipelines",
		"---",
		"",
		"# Practical Pipelines",
		"",
		"## Table of Contents",
		"",
		"- [Chapter One](#chapter-one)",
		"- [Chapter Two](#chapter-two)",
		"",
		"## Chapter One {#chapter-one}",
		"",
		"First paragraph.",
		"",
		"## Chapter Two {#chapter-two}",
		"",
		"Second paragraph.",
		"",
	}, "\n")

	n := mustNormalizer(t, mdforge.WithDialect(mdforge.DialectEPUB))
	res, err := n.Normalize(context.Background(), mdforge.Input{Markdown: input})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if res.Markdown != want {
		t.Errorf("Markdown mismatch:\ngot:\n%s\nwant:\n%s", res.Markdown, want)
	}
	if !res.Changed {
		t.Error("Changed = false, want true")
	}
	if res.Metadata.Title != "Practical Pipelines" {
		t.Errorf("Title = %q", res.Metadata.Title)
	}
	if len(res.TOC) != 2 || res.TOC[0].Slug != "chapter-one" || res.TOC[1].Slug != "chapter-two" {
		t.Errorf("TOC = %+v", res.TOC)
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeExistingH2Chapters - Chapters already at H2 still feed the TOC
// ---------------------------------------------------------------------------

func TestNormalizeExistingH2Chapters(t *testing.T) {
	t.Parallel()

	input := "## Alpha\n\nFirst paragraph.\n\n## Beta\n\nSecond paragraph.\n"

	n := mustNormalizer(t, mdforge.WithDialect(mdforge.DialectEPUB))
	res, err := n.Normalize(context.Background(), mdforge.Input{Markdown: input})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if len(res.TOC) != 2 || res.TOC[0].Slug != "alpha" || res.TOC[1].Slug != "beta" {
		t.Fatalf("TOC = %+v", res.TOC)
	}
	for _, want := range []string{
		"## Table of Contents",
		"- [Alpha](#alpha)",
		"## Alpha {#alpha}",
		"## Beta {#beta}",
	} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("output missing %q:\n%s", want, res.Markdown)
		}
	}

	second, err := n.Normalize(context.Background(), mdforge.Input{Markdown: res.Markdown})
	if err != nil {
		t.Fatalf("second pass error = %v", err)
	}
	if second.Markdown != res.Markdown {
		t.Errorf("not idempotent:\nfirst:\n%s\nsecond:\n%s", res.Markdown, second.Markdown)
	}
	if len(second.TOC) != 2 {
		t.Errorf("second pass TOC = %+v", second.TOC)
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeIdempotent - Normalizing twice changes nothing
// ---------------------------------------------------------------------------

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := map[string]struct {
		markdown string
		dialect  mdforge.Dialect
	}{
		"epub book": {
			markdown: "---\ntitle: A Book\n---\n# One\n\ntext here\n\n# Two\n\nmore text\n",
			dialect:  mdforge.DialectEPUB,
		},
		"acrobat export": {
			markdown: "# Report\n\nThe cat sat\non the mat.\n",
			dialect:  mdforge.DialectAcrobat,
		},
		"plain": {
			markdown: "just a paragraph\n\nand another\n",
			dialect:  mdforge.DialectPlain,
		},
	}

	for name, tt := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			n := mustNormalizer(t, mdforge.WithDialect(tt.dialect))

			first, err := n.Normalize(context.Background(), mdforge.Input{Markdown: tt.markdown})
			if err != nil {
				t.Fatalf("first pass error = %v", err)
			}
			second, err := n.Normalize(context.Background(), mdforge.Input{Markdown: first.Markdown})
			if err != nil {
				t.Fatalf("second pass error = %v", err)
			}

			if second.Markdown != first.Markdown {
				t.Errorf("not idempotent:\nfirst:\n%s\nsecond:\n%s", first.Markdown, second.Markdown)
			}
			if second.Changed {
				t.Error("second pass Changed = true, want false")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeFrontMatter - Round trip, quoting, unknown keys
// ---------------------------------------------------------------------------

func TestNormalizeFrontMatterRoundTrip(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"---",
		"title: Alpha",
		"custom_key: kept value",
		"tags:",
		"  - one",
		"  - two",
		"---",
		"body text",
		"",
	}, "\n")

	n := mustNormalizer(t)
	res, err := n.Normalize(context.Background(), mdforge.Input{Markdown: input})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	for _, want := range []string{
		"title: Alpha\n",
		"custom_key: kept value\n",
		"tags:\n  - one\n  - two\n",
		"title_short: Alpha\n",
	} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("output missing %q:\n%s", want, res.Markdown)
		}
	}

	// Key order: original keys first, additions after.
	if strings.Index(res.Markdown, "custom_key") > strings.Index(res.Markdown, "title_short") {
		t.Errorf("original key order not preserved:\n%s", res.Markdown)
	}
}

func TestNormalizeMalformedFrontMatter(t *testing.T) {
	t.Parallel()

	input := "---\nnot yaml here\n---\nbody\n"

	n := mustNormalizer(t)
	res, err := n.Normalize(context.Background(), mdforge.Input{Markdown: input})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !strings.Contains(res.Markdown, "not yaml here") {
		t.Errorf("malformed block not treated as body:\n%s", res.Markdown)
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeStyles - Class spans resolve against stylesheets
// ---------------------------------------------------------------------------

func TestNormalizeStyles(t *testing.T) {
	t.Parallel()

	input := "# Intro\n\nA [key point]{.bold_1} and [aside]{.ital_2} here.\n"
	css := ".bold_1 { font-weight: bold; }\n.ital_2 { font-style: italic; }"

	n := mustNormalizer(t, mdforge.WithDialect(mdforge.DialectEPUB))
	res, err := n.Normalize(context.Background(), mdforge.Input{
		Markdown:    input,
		Stylesheets: []string{css},
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !strings.Contains(res.Markdown, "A **key point** and *aside* here.") {
		t.Errorf("spans not resolved:\n%s", res.Markdown)
	}
}

func TestNormalizeUnknownClassCollapses(t *testing.T) {
	t.Parallel()

	n := mustNormalizer(t, mdforge.WithDialect(mdforge.DialectEPUB))
	res, err := n.Normalize(context.Background(), mdforge.Input{
		Markdown: "Some [plain words]{.mystery_9} remain.\n",
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !strings.Contains(res.Markdown, "Some plain words remain.") {
		t.Errorf("unknown class span not collapsed:\n%s", res.Markdown)
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeFenceSafety - Fenced code passes through untouched
// ---------------------------------------------------------------------------

func TestNormalizeFenceSafety(t *testing.T) {
	t.Parallel()

	fenced := []string{
		"```",
		"keep [spans]{.bold_1} and <!-- comments -->",
		"and   spaced   runs",
		"# not a heading",
		"```",
	}
	input := "# Title\n\n" + strings.Join(fenced, "\n") + "\n"

	for _, d := range []mdforge.Dialect{mdforge.DialectPlain, mdforge.DialectEPUB, mdforge.DialectAcrobat} {
		t.Run(string(d), func(t *testing.T) {
			t.Parallel()
			n := mustNormalizer(t, mdforge.WithDialect(d))
			res, err := n.Normalize(context.Background(), mdforge.Input{Markdown: input})
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if !strings.Contains(res.Markdown, strings.Join(fenced, "\n")) {
				t.Errorf("fenced block modified:\n%s", res.Markdown)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeAcrobatReflow - Hard-wrapped paragraphs rejoin
// ---------------------------------------------------------------------------

func TestNormalizeAcrobatReflow(t *testing.T) {
	t.Parallel()

	n := mustNormalizer(t, mdforge.WithDialect(mdforge.DialectAcrobat))
	res, err := n.Normalize(context.Background(), mdforge.Input{
		Markdown: "The cat sat\non the mat.\n",
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if res.Markdown != "The cat sat on the mat.\n" {
		t.Errorf("Markdown = %q", res.Markdown)
	}
}

func TestNormalizeEPUBKeepsHardWraps(t *testing.T) {
	t.Parallel()

	// EPUB conversions do not hard-wrap; adjacent lines may be distinct
	// blocks, so only blank-separated mid-sentence splits rejoin.
	n := mustNormalizer(t, mdforge.WithDialect(mdforge.DialectEPUB))
	res, err := n.Normalize(context.Background(), mdforge.Input{
		Markdown: "line one\nline two\n",
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !strings.Contains(res.Markdown, "line one\nline two") {
		t.Errorf("adjacent lines merged:\n%s", res.Markdown)
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeISBN - Identifier inference and front matter writeback
// ---------------------------------------------------------------------------

func TestNormalizeISBNWriteback(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"# The Go Field Guide",
		"",
		"Copyright © 2020 Example Press",
		"",
		"ISBN: 978-0-13-468599-1",
		"",
	}, "\n")

	n := mustNormalizer(t, mdforge.WithDialect(mdforge.DialectEPUB))
	res, err := n.Normalize(context.Background(), mdforge.Input{Markdown: input})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if res.Metadata.ISBN != "9780134685991" {
		t.Errorf("ISBN = %q, want 9780134685991", res.Metadata.ISBN)
	}
	if res.Metadata.Date != "2020-01-01T00:00:00+00:00" {
		t.Errorf("Date = %q", res.Metadata.Date)
	}
	// The isbn key is quoted so YAML readers keep it a string.
	if !strings.Contains(res.Markdown, `isbn: "9780134685991"`) {
		t.Errorf("quoted isbn missing:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "identifier:\n  - ISBN 9780134685991") {
		t.Errorf("identifier entry missing:\n%s", res.Markdown)
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeSlugs - Duplicate headings get unique anchors
// ---------------------------------------------------------------------------

func TestNormalizeSlugUniqueness(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"---",
		"title: Essays",
		"---",
		"# Summary",
		"",
		"first",
		"",
		"# Summary",
		"",
		"second",
		"",
	}, "\n")

	n := mustNormalizer(t, mdforge.WithDialect(mdforge.DialectEPUB))
	res, err := n.Normalize(context.Background(), mdforge.Input{Markdown: input})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if len(res.TOC) != 2 {
		t.Fatalf("TOC length = %d, want 2", len(res.TOC))
	}
	if res.TOC[0].Slug == res.TOC[1].Slug {
		t.Errorf("slugs not unique: %q", res.TOC[0].Slug)
	}
	for _, want := range []string{
		"## Summary {#summary}",
		"## Summary {#summary-1}",
		"- [Summary](#summary)",
		"- [Summary](#summary-1)",
	} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("output missing %q:\n%s", want, res.Markdown)
		}
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeSourceMetaFallback - HTML source fills metadata gaps
// ---------------------------------------------------------------------------

func TestNormalizeSourceMetaFallback(t *testing.T) {
	t.Parallel()

	src := []byte(`<html><head><meta name="author" content="Jane Doe"></head><body></body></html>`)

	n := mustNormalizer(t, mdforge.WithDialect(mdforge.DialectEPUB))
	res, err := n.Normalize(context.Background(), mdforge.Input{
		Markdown:   "# A Title\n\nsome text without an author line\n",
		SourceMeta: src,
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if res.Metadata.Author != "Jane Doe" {
		t.Errorf("Author = %q, want Jane Doe", res.Metadata.Author)
	}
	if !strings.Contains(res.Markdown, "author: Jane Doe") {
		t.Errorf("author not written back:\n%s", res.Markdown)
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeCancellation - Context errors propagate
// ---------------------------------------------------------------------------

func TestNormalizeCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := mustNormalizer(t)
	_, err := n.Normalize(ctx, mdforge.Input{Markdown: "text\n"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
