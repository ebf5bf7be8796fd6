package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mdforge "github.com/alnah/go-mdforge"
	"github.com/alnah/go-mdforge/internal/config"
	"github.com/alnah/go-mdforge/internal/hints"
	"github.com/alnah/go-mdforge/internal/yamlutil"
)

// ErrReadPages reports an unreadable or malformed page-lines file.
var ErrReadPages = errors.New("failed to read page lines file")

// pageRecord is one positioned page in the --pages input file. The format is
// YAML, which also accepts JSON emitted by PDF text extractors.
type pageRecord struct {
	Height float64      `yaml:"height"`
	Lines  []lineRecord `yaml:"lines"`
}

type lineRecord struct {
	Text   string  `yaml:"text"`
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
}

// runExtract strips running headers and footers from positioned page text
// and emits the remaining body text, one blank line between pages.
func runExtract(ctx context.Context, flags *normalizeFlags, cfg *config.Config, env *Environment) error {
	data, err := os.ReadFile(flags.pages) // #nosec G304 -- user-provided path
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadPages, err)
	}

	var records []pageRecord
	if err := yamlutil.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: %v", ErrReadPages, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	pages := make([]mdforge.Page, len(records))
	for i, r := range records {
		lines := make([]mdforge.PageLine, len(r.Lines))
		for j, l := range r.Lines {
			lines[j] = mdforge.PageLine{Text: l.Text, Top: l.Top, Bottom: l.Bottom}
		}
		pages[i] = mdforge.Page{Height: r.Height, Lines: lines}
	}

	filter := &mdforge.PageFilter{
		MarginTop:    cfg.PageFilter.MarginTop,
		MarginBottom: cfg.PageFilter.MarginBottom,
		MinRepeating: cfg.PageFilter.MinRepeating,
		SkipPatterns: cfg.PageFilter.SkipPatterns,
	}
	texts, err := mdforge.ExtractPages(pages, filter)
	if err != nil {
		return err
	}
	env.Log.Debugf("extracted %d page(s)", len(texts))

	out := strings.Join(texts, "\n\n") + "\n"
	if flags.output == "" {
		fmt.Fprint(env.Stdout, out)
		return nil
	}
	if dir := filepath.Dir(flags.output); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("creating output directory: %v%s", err, hints.ForOutputDirectory())
		}
	}
	// #nosec G306 -- extracted text is meant to be readable
	if err := os.WriteFile(flags.output, []byte(out), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteMarkdown, err)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Extracted %s\n", flags.output)
	}
	return nil
}
