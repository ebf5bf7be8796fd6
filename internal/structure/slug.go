package structure

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugDisallowedRe = regexp.MustCompile(`[^a-z0-9 -]`)
	slugSpaceRe      = regexp.MustCompile(`\s+`)
	slugHyphenRunRe  = regexp.MustCompile(`-{2,}`)

	// NFKD decomposition followed by combining-mark removal folds accented
	// letters to their ASCII base.
	asciiFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
)

// Slugify derives a URL-safe anchor from heading text: accents fold to ASCII,
// everything outside [a-z0-9 -] is dropped, whitespace becomes hyphens, and
// hyphen runs collapse. Text that reduces to nothing yields "section".
func Slugify(text string) string {
	folded, _, err := transform.String(asciiFolder, text)
	if err != nil {
		folded = text
	}
	s := strings.ToLower(folded)
	s = slugDisallowedRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugHyphenRunRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "section"
	}
	return s
}

// slugger hands out document-unique slugs by suffixing repeats with -1, -2...
type slugger struct {
	seen map[string]int
}

func newSlugger() *slugger {
	return &slugger{seen: make(map[string]int)}
}

// reserve marks a slug as taken so later derivations avoid colliding with it.
func (sl *slugger) reserve(slug string) {
	sl.seen[slug]++
}

func (sl *slugger) unique(text string) string {
	base := Slugify(text)
	n := sl.seen[base]
	sl.seen[base] = n + 1
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
