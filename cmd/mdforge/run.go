package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mdforge "github.com/alnah/go-mdforge"
	"github.com/alnah/go-mdforge/internal/config"
	"github.com/alnah/go-mdforge/internal/dateutil"
	"github.com/alnah/go-mdforge/internal/fileutil"
	"github.com/alnah/go-mdforge/internal/hints"
)

// ErrNoInput reports a run with nothing to process.
var ErrNoInput = errors.New("no input specified")

// sourceMetaLimit bounds how much of the original HTML source is read for
// metadata fallback; the head element sits well within this.
const sourceMetaLimit = 64 * 1024

// runParams groups parameters shared across the batch.
type runParams struct {
	dialect     mdforge.Dialect
	stylesheets []string
	sourceMeta  []byte
	date        string
	dryRun      bool
}

// run orchestrates the normalization process.
func run(ctx context.Context, args []string, flags *normalizeFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	// Load configuration
	cfg := config.DefaultConfig()
	var err error
	if flags.common.config != "" {
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(nil))
			}
			return fmt.Errorf("loading config: %w", err)
		}
	}

	// Merge CLI flags into config (CLI wins), then re-validate the result.
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrInvalidField) && strings.Contains(err.Error(), "dialect") {
			return fmt.Errorf("%w%s", err, hints.ForDialect())
		}
		return err
	}

	// Page extraction is a separate mode: it consumes positioned page
	// lines, not markdown files.
	if flags.pages != "" {
		return runExtract(ctx, flags, cfg, env)
	}

	// Resolve "auto" date once for the entire batch
	date := cfg.Normalize.Date
	if date != "" {
		date, err = dateutil.ResolveDate(date, env.Now())
		if err != nil {
			return fmt.Errorf("invalid date: %w%s", err, hints.ForDateFormat())
		}
	}

	inputPath, err := resolveInputPath(args, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no markdown files found in %s", inputPath)
	}
	env.Log.Debugf("discovered %d file(s)", len(files))

	// Unreadable adjacent files are treated as absent: metadata and styling
	// degrade, the run itself never fails over them.
	stylesheets := readStylesheets(cfg.Normalize.Stylesheets, env)

	var sourceMeta []byte
	if flags.sourceMeta != "" {
		sourceMeta, err = fileutil.ReadPrefix(flags.sourceMeta, sourceMetaLimit)
		if err != nil {
			env.Log.Warnf("skipping source metadata: %v", err)
			sourceMeta = nil
		}
	}

	params := &runParams{
		dialect:     mdforge.Dialect(strings.ToLower(cfg.Normalize.Dialect)),
		stylesheets: stylesheets,
		sourceMeta:  sourceMeta,
		date:        date,
		dryRun:      flags.dryRun,
	}

	poolSize := mdforge.ResolvePoolSize(cfg.Normalize.Workers)
	env.Log.Debugf("pool size: %d", poolSize)
	var opts []mdforge.Option
	if params.dialect != "" {
		opts = append(opts, mdforge.WithDialect(params.dialect))
	}
	if flags.boldCaps || cfg.Normalize.BoldAllCaps {
		opts = append(opts, mdforge.WithBoldAllCaps(true))
	}
	pool := mdforge.NewNormalizerPool(poolSize, opts...)
	defer pool.Close()

	results := normalizeBatch(ctx, pool, files, params)

	failed := printResults(results, flags, env)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *normalizeFlags, cfg *config.Config) {
	if flags.dialect != "" {
		cfg.Normalize.Dialect = flags.dialect
	}
	if len(flags.stylesheets) > 0 {
		cfg.Normalize.Stylesheets = flags.stylesheets
	}
	if flags.date != "" {
		cfg.Normalize.Date = flags.date
	}
	if flags.workers > 0 {
		cfg.Normalize.Workers = flags.workers
	}
	if flags.boldCaps {
		cfg.Normalize.BoldAllCaps = true
	}
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output destination from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// readStylesheets loads CSS content for each configured path. Unreadable
// files are skipped with a warning.
func readStylesheets(paths []string, env *Environment) []string {
	var contents []string
	for _, path := range paths {
		css, err := fileutil.ReadText(path)
		if err != nil {
			env.Log.Warnf("skipping stylesheet: %v%s", err, hints.ForStylesheet())
			continue
		}
		contents = append(contents, css)
	}
	return contents
}
