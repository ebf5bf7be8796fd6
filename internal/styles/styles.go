// Package styles maps stylesheet class names onto inline Markdown emphasis.
//
// EPUB converters emit spans annotated with CSS classes instead of semantic
// markup; the classes resolve to bold/italic/superscript/subscript rules in an
// adjacent stylesheet. The resolver is read-only after construction and fails
// soft: an unknown class contributes no styling and never rejects a document.
package styles

import (
	"regexp"
	"strings"

	"github.com/aymerick/douceur/parser"
)

// Style holds the flags a class set can contribute.
type Style struct {
	Bold   bool
	Italic bool
	Sup    bool
	Sub    bool
}

// union merges two style sets.
func (s Style) union(o Style) Style {
	return Style{
		Bold:   s.Bold || o.Bold,
		Italic: s.Italic || o.Italic,
		Sup:    s.Sup || o.Sup,
		Sub:    s.Sub || o.Sub,
	}
}

// zero reports whether no flag is set.
func (s Style) zero() bool {
	return s == Style{}
}

// Map is a class-to-style lookup built from zero or more stylesheets.
type Map struct {
	classes map[string]Style
}

var (
	classToken = regexp.MustCompile(`\.([A-Za-z0-9_-]+)`)

	// Pandoc inline class notation: [text]{.class1 .class2}
	pandocSpan = regexp.MustCompile(`\[([^\]]+)\]\{([^}]+)\}`)

	// Literal span tags that survive HTML-to-Markdown conversion.
	htmlSpan = regexp.MustCompile(`<span class="([^"]+)">(.*?)</span>`)
)

// NewMap parses the given CSS sources into a Map. Sources that fail to parse
// are skipped; class rules across sources union their flags.
func NewMap(sheets ...string) *Map {
	m := &Map{classes: make(map[string]Style)}
	for _, sheet := range sheets {
		m.addSheet(sheet)
	}
	return m
}

func (m *Map) addSheet(css string) {
	stylesheet, err := parser.Parse(css)
	if err != nil {
		return
	}
	for _, rule := range stylesheet.Rules {
		style := Style{}
		for _, decl := range rule.Declarations {
			prop := strings.ToLower(strings.TrimSpace(decl.Property))
			value := strings.ToLower(strings.TrimSpace(decl.Value))
			switch prop {
			case "font-weight":
				if strings.HasPrefix(value, "bold") {
					style.Bold = true
				}
			case "font-style":
				if strings.HasPrefix(value, "italic") {
					style.Italic = true
				}
			case "vertical-align":
				if strings.Contains(value, "super") {
					style.Sup = true
				} else if strings.Contains(value, "sub") {
					style.Sub = true
				}
			}
		}
		if style.zero() {
			continue
		}
		for _, selector := range rule.Selectors {
			for _, match := range classToken.FindAllStringSubmatch(selector, -1) {
				m.classes[match[1]] = m.classes[match[1]].union(style)
			}
		}
	}
}

// Len returns the number of mapped classes.
func (m *Map) Len() int {
	return len(m.classes)
}

// Lookup unions the styles of all given class names. Unknown names are
// ignored.
func (m *Map) Lookup(classes []string) Style {
	var style Style
	for _, name := range classes {
		style = style.union(m.classes[name])
	}
	return style
}

// Apply wraps text in the Markdown emphasis its style set calls for.
// Bold and italic combine to ***text***; sup/sub wrap the emphasized result.
func Apply(text string, style Style) string {
	switch {
	case style.Bold && style.Italic:
		text = "***" + text + "***"
	case style.Bold:
		text = "**" + text + "**"
	case style.Italic:
		text = "*" + text + "*"
	}
	if style.Sup {
		text = "<sup>" + text + "</sup>"
	}
	if style.Sub {
		text = "<sub>" + text + "</sub>"
	}
	return text
}

// RewriteLine resolves Pandoc class spans and literal <span class> tags on a
// single line. Spans whose classes map to nothing collapse to their content.
func (m *Map) RewriteLine(line string) string {
	line = pandocSpan.ReplaceAllStringFunc(line, func(match string) string {
		sub := pandocSpan.FindStringSubmatch(match)
		return Apply(sub[1], m.Lookup(ParseClassList(sub[2])))
	})
	line = htmlSpan.ReplaceAllStringFunc(line, func(match string) string {
		sub := htmlSpan.FindStringSubmatch(match)
		return Apply(sub[2], m.Lookup(ParseClassList(sub[1])))
	})
	return line
}

// ParseClassList tokenizes a class specification. Pandoc attribute syntax
// (".a .b") and plain space-separated lists ("a b") are both accepted.
func ParseClassList(spec string) []string {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	if strings.HasPrefix(spec, ".") {
		matches := classToken.FindAllStringSubmatch(spec, -1)
		names := make([]string, 0, len(matches))
		for _, match := range matches {
			names = append(names, match[1])
		}
		return names
	}
	return strings.Fields(spec)
}
