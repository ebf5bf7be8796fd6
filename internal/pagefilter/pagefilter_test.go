package pagefilter

import (
	"errors"
	"strings"
	"testing"
)

// makePage lays out header, body, and footer lines on a 1000-unit page.
func makePage(header, body, footer string) Page {
	p := Page{Height: 1000}
	if header != "" {
		p.Lines = append(p.Lines, Line{Text: header, Top: 20, Bottom: 40})
	}
	if body != "" {
		p.Lines = append(p.Lines, Line{Text: body, Top: 450, Bottom: 470})
	}
	if footer != "" {
		p.Lines = append(p.Lines, Line{Text: footer, Top: 960, Bottom: 980})
	}
	return p
}

func TestNewClassifierBadPattern(t *testing.T) {
	_, err := NewClassifier(Config{SkipPatterns: []string{`[unclosed`}})
	if !errors.Is(err, ErrBadPattern) {
		t.Errorf("err = %v, want ErrBadPattern", err)
	}
}

func TestRepeatingFooterRemoved(t *testing.T) {
	var pages []Page
	for i := 0; i < 10; i++ {
		footer := ""
		if i < 8 {
			footer = "Chapter Footer"
		}
		pages = append(pages, makePage("", "body line", footer))
	}

	c, err := NewClassifier(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	got := c.Extract(pages)
	for i, page := range got {
		if strings.Contains(page, "Chapter Footer") {
			t.Errorf("page %d still contains footer: %q", i, page)
		}
		if !strings.Contains(page, "body line") {
			t.Errorf("page %d lost body text: %q", i, page)
		}
	}
}

func TestUniqueMarginLineKept(t *testing.T) {
	pages := []Page{
		makePage("One-Off Dedication", "body one", ""),
		makePage("", "body two", ""),
		makePage("", "body three", ""),
	}

	c, err := NewClassifier(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	got := c.Extract(pages)
	if !strings.Contains(got[0], "One-Off Dedication") {
		t.Errorf("unique margin line dropped: %q", got[0])
	}
}

func TestPageNumbersAlwaysDropped(t *testing.T) {
	pages := []Page{
		makePage("", "first body", "3"),
		makePage("", "second body", "Page 4 / 200"),
	}

	c, err := NewClassifier(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	got := c.Extract(pages)
	if got[0] != "first body" {
		t.Errorf("page 0 = %q", got[0])
	}
	if got[1] != "second body" {
		t.Errorf("page 1 = %q", got[1])
	}
}

func TestISBNFooterDropped(t *testing.T) {
	pages := []Page{makePage("", "the body", "ISBN 978-0-13-468599-1")}
	c, err := NewClassifier(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Extract(pages); got[0] != "the body" {
		t.Errorf("page = %q", got[0])
	}
}

func TestBodyNoiseMatchingSkipPatternDropped(t *testing.T) {
	// Extractors drop stray folios into the body region; the skip patterns
	// apply there too.
	page := Page{Height: 1000, Lines: []Line{
		{Text: "Page 7", Top: 300, Bottom: 320},
		{Text: "Actual prose continues here.", Top: 450, Bottom: 470},
		{Text: "42", Top: 600, Bottom: 620},
	}}

	c, err := NewClassifier(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	got := c.Extract([]Page{page})
	if got[0] != "Actual prose continues here." {
		t.Errorf("page = %q", got[0])
	}
}

func TestStraddlingLineClassifiedByEdge(t *testing.T) {
	// Top edge inside the header band is enough; the line need not fit the
	// band entirely.
	var pages []Page
	for i := 0; i < 6; i++ {
		pages = append(pages, Page{Height: 1000, Lines: []Line{
			{Text: "Oversized Running Head", Top: 70, Bottom: 120},
			{Text: "body text", Top: 450, Bottom: 470},
		}})
	}

	c, err := NewClassifier(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i, page := range c.Extract(pages) {
		if strings.Contains(page, "Oversized Running Head") {
			t.Errorf("page %d kept straddling header: %q", i, page)
		}
		if !strings.Contains(page, "body text") {
			t.Errorf("page %d lost body text: %q", i, page)
		}
	}
}

func TestBodyTextNeverDropped(t *testing.T) {
	// The same sentence repeats mid-page on every page; position keeps it.
	var pages []Page
	for i := 0; i < 6; i++ {
		pages = append(pages, makePage("", "recurring body sentence", ""))
	}

	c, err := NewClassifier(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i, page := range c.Extract(pages) {
		if page != "recurring body sentence" {
			t.Errorf("page %d = %q", i, page)
		}
	}
}

func TestNumberedHeadersCountTogether(t *testing.T) {
	// "Modern Infra | 12", "Modern Infra | 13"... normalize to one key.
	var pages []Page
	for i := 0; i < 9; i++ {
		pages = append(pages, makePage("Modern Infra | "+string(rune('1'+i)), "body", ""))
	}

	c, err := NewClassifier(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i, page := range c.Extract(pages) {
		if strings.Contains(page, "Modern Infra") {
			t.Errorf("page %d kept numbered header: %q", i, page)
		}
	}
}

func TestMinRepeatingOverride(t *testing.T) {
	pages := []Page{
		makePage("Twice Seen", "body a", ""),
		makePage("Twice Seen", "body b", ""),
		makePage("", "body c", ""),
		makePage("", "body d", ""),
		makePage("", "body e", ""),
		makePage("", "body f", ""),
		makePage("", "body g", ""),
		makePage("", "body h", ""),
		makePage("", "body i", ""),
	}

	// Default threshold for 9 pages is 3; the override lowers it to 2.
	c, err := NewClassifier(Config{MinRepeating: 2})
	if err != nil {
		t.Fatal(err)
	}
	got := c.Extract(pages)
	if strings.Contains(got[0], "Twice Seen") {
		t.Errorf("override ignored: %q", got[0])
	}
}

func TestThreshold(t *testing.T) {
	c, err := NewClassifier(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		pages int
		want  int
	}{
		{3, 2},
		{6, 2},
		{9, 3},
		{30, 10},
	}
	for _, tt := range tests {
		if got := c.threshold(tt.pages); got != tt.want {
			t.Errorf("threshold(%d) = %d, want %d", tt.pages, got, tt.want)
		}
	}
}
