package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	mdforge "github.com/alnah/go-mdforge"
	"github.com/alnah/go-mdforge/internal/fileutil"
	"github.com/alnah/go-mdforge/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrReadMarkdown  = errors.New("failed to read markdown file")
	ErrWriteMarkdown = errors.New("failed to write markdown file")
	ErrPoolInit      = errors.New("failed to initialize normalizer pool")
)

// Pool abstracts normalizer pool operations for testability.
type Pool interface {
	Acquire() (*mdforge.Normalizer, error)
	Release(*mdforge.Normalizer)
	Size() int
}

// Compile-time interface implementation check.
var _ Pool = (*mdforge.NormalizerPool)(nil)

// NormalizeResult holds the outcome of a single file.
type NormalizeResult struct {
	InputPath  string
	OutputPath string
	Changed    bool
	Err        error
	Duration   time.Duration
}

// normalizeBatch processes files concurrently using the normalizer pool.
func normalizeBatch(ctx context.Context, pool Pool, files []FileToNormalize, params *runParams) []NormalizeResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]NormalizeResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			n, err := pool.Acquire()
			if err != nil {
				// Normalizer creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = NormalizeResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %v", ErrPoolInit, err),
					}
				}
				return
			}
			defer pool.Release(n)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = NormalizeResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = normalizeFile(ctx, n, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// normalizeFile processes a single file and returns the result.
func normalizeFile(ctx context.Context, n *mdforge.Normalizer, f FileToNormalize, params *runParams) NormalizeResult {
	start := time.Now()
	result := NormalizeResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	content, err := fileutil.ReadText(f.InputPath)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		result.Duration = time.Since(start)
		return result
	}

	res, err := n.Normalize(ctx, mdforge.Input{
		Markdown:    content,
		Stylesheets: params.stylesheets,
		SourceMeta:  params.sourceMeta,
		Dialect:     params.dialect,
		Date:        params.date,
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.Changed = res.Changed

	if params.dryRun {
		result.Duration = time.Since(start)
		return result
	}

	// An unchanged in-place file keeps its mtime.
	if !res.Changed && f.OutputPath == f.InputPath {
		result.Duration = time.Since(start)
		return result
	}

	outDir := filepath.Dir(f.OutputPath)
	if err := os.MkdirAll(outDir, dirPermissions); err != nil {
		result.Err = fmt.Errorf("creating output directory: %v%s", err, hints.ForOutputDirectory())
		result.Duration = time.Since(start)
		return result
	}

	// #nosec G306 -- markdown files are meant to be readable
	if err := os.WriteFile(f.OutputPath, []byte(res.Markdown), filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteMarkdown, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Duration = time.Since(start)
	return result
}

// printResults outputs per-file outcomes and returns the failure count.
func printResults(results []NormalizeResult, flags *normalizeFlags, env *Environment) int {
	var succeeded, failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
			env.Log.Errorf("FAILED %s: %v", r.InputPath, r.Err)
			continue
		}

		succeeded++
		if flags.common.quiet {
			continue
		}

		switch {
		case flags.dryRun && r.Changed:
			fmt.Fprintf(env.Stdout, "Would update %s\n", r.InputPath)
		case flags.dryRun:
			fmt.Fprintf(env.Stdout, "Unchanged %s\n", r.InputPath)
		case flags.common.verbose:
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		case !r.Changed && r.OutputPath == r.InputPath:
			fmt.Fprintf(env.Stdout, "Unchanged %s\n", r.InputPath)
		default:
			fmt.Fprintf(env.Stdout, "Normalized %s\n", r.OutputPath)
		}
	}

	if !flags.common.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}
