package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across runs.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// normalizeFlags holds all flags for the normalize run.
type normalizeFlags struct {
	common      commonFlags
	output      string
	workers     int
	dialect     string
	stylesheets []string
	sourceMeta  string
	pages       string
	date        string
	boldCaps    bool
	dryRun      bool
	version     bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// parseFlags parses CLI flags and returns positional args.
func parseFlags(args []string) (*normalizeFlags, []string, error) {
	fs := flag.NewFlagSet("mdforge", flag.ContinueOnError)
	f := &normalizeFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory (\"\" = in place)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.dialect, "dialect", "d", "", "conversion dialect: plain, epub, acrobat")
	fs.StringArrayVarP(&f.stylesheets, "stylesheet", "s", nil, "CSS file for class-to-emphasis mapping (repeatable)")
	fs.StringVar(&f.sourceMeta, "source-meta", "", "original HTML file for metadata fallback")
	fs.StringVar(&f.pages, "pages", "", "positioned page-lines file (YAML/JSON); extract body text instead of normalizing")
	fs.StringVar(&f.date, "date", "", "publication date (\"auto\" = today, \"auto:FORMAT\" = custom)")
	fs.BoolVar(&f.boldCaps, "bold-caps", false, "bold standalone ALL-CAPS lines")
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "report changes without writing files")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
