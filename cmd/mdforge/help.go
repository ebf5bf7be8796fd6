package main

import (
	"fmt"
	"io"
)

// printUsage writes the CLI usage text.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `mdforge - normalize converted Markdown documents

Usage:
  mdforge [flags] <file-or-directory>

Cleans converter artifacts, rebuilds the heading hierarchy and table of
contents, reflows broken paragraphs, and infers bibliographic metadata
into YAML front matter. Directories are processed recursively.

Flags:
  -o, --output PATH        output file or directory ("" = in place)
  -d, --dialect NAME       conversion dialect: plain, epub, acrobat
  -s, --stylesheet FILE    CSS file for class-to-emphasis mapping (repeatable)
      --source-meta FILE   original HTML file for metadata fallback
      --pages FILE         positioned page-lines file (YAML/JSON); extract
                           body text instead of normalizing
      --date VALUE         publication date ("auto" = today, "auto:FORMAT")
      --bold-caps          bold standalone ALL-CAPS lines
  -n, --dry-run            report changes without writing files
  -w, --workers N          parallel workers (0 = auto)
  -c, --config NAME        config file name or path
  -q, --quiet              only show errors
  -v, --verbose            show detailed progress
      --version            print version and exit

Examples:
  mdforge book.md --dialect epub
  mdforge exports/ -d acrobat -o cleaned/
  mdforge book.md -d epub -s styles/stylesheet.css --source-meta book.html
  mdforge drafts/ --dry-run
  mdforge --pages book-pages.json -o book.txt
`)
}
