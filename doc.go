// Package mdforge normalizes Markdown produced by document converters.
//
// EPUB and PDF exports arrive as structurally noisy Markdown: converter
// artifacts, class-annotated spans instead of emphasis, hard-wrapped
// paragraphs, chapter H1s with no document title, and stale or missing
// tables of contents. A Normalizer runs the cleanup pipeline for a chosen
// source dialect and returns canonical Markdown together with inferred
// bibliographic metadata and a rebuilt table of contents.
//
// Basic usage:
//
//	n, err := mdforge.NewNormalizer(mdforge.WithDialect(mdforge.DialectEPUB))
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := n.Normalize(ctx, mdforge.Input{Markdown: raw})
//
// For PDF sources, ExtractPages removes running headers and footers from
// positioned page text before the Markdown stage.
package mdforge
