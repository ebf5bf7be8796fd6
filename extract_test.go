package mdforge_test

import (
	"errors"
	"strings"
	"testing"

	mdforge "github.com/alnah/go-mdforge"
)

// testPage builds a 1000-unit page with a header line, one body line, and a
// footer line.
func testPage(header, body, footer string) mdforge.Page {
	return mdforge.Page{
		Height: 1000,
		Lines: []mdforge.PageLine{
			{Text: header, Top: 20, Bottom: 40},
			{Text: body, Top: 450, Bottom: 470},
			{Text: footer, Top: 960, Bottom: 980},
		},
	}
}

func TestExtractPagesRemovesRunningHeaders(t *testing.T) {
	t.Parallel()

	pages := make([]mdforge.Page, 0, 6)
	for i := 0; i < 6; i++ {
		pages = append(pages, testPage("THE BOOK TITLE", "Body paragraph "+string(rune('a'+i)), "42"))
	}

	got, err := mdforge.ExtractPages(pages, nil)
	if err != nil {
		t.Fatalf("ExtractPages() error = %v", err)
	}
	if len(got) != len(pages) {
		t.Fatalf("len = %d, want %d", len(got), len(pages))
	}
	for i, page := range got {
		if strings.Contains(page, "THE BOOK TITLE") {
			t.Errorf("page %d kept running header: %q", i, page)
		}
		if strings.Contains(page, "42") {
			t.Errorf("page %d kept page number: %q", i, page)
		}
		if !strings.Contains(page, "Body paragraph") {
			t.Errorf("page %d lost body text: %q", i, page)
		}
	}
}

func TestExtractPagesKeepsUniqueMarginText(t *testing.T) {
	t.Parallel()

	// A dedication sits in the top band of a single page; nothing repeats.
	pages := []mdforge.Page{
		testPage("For my parents", "Chapter text.", "more text"),
		testPage("something else", "Chapter text.", "other text"),
	}

	got, err := mdforge.ExtractPages(pages, nil)
	if err != nil {
		t.Fatalf("ExtractPages() error = %v", err)
	}
	if !strings.Contains(got[0], "For my parents") {
		t.Errorf("unique margin line dropped: %q", got[0])
	}
}

func TestExtractPagesCustomFilter(t *testing.T) {
	t.Parallel()

	pages := []mdforge.Page{
		testPage("Draft copy", "body one", "x"),
		testPage("Draft copy", "body two", "y"),
	}

	got, err := mdforge.ExtractPages(pages, &mdforge.PageFilter{
		MarginTop:    0.1,
		MarginBottom: 0.1,
		MinRepeating: 2,
		SkipPatterns: []string{`^[xy]$`},
	})
	if err != nil {
		t.Fatalf("ExtractPages() error = %v", err)
	}
	for i, page := range got {
		if strings.Contains(page, "Draft copy") {
			t.Errorf("page %d kept repeated header: %q", i, page)
		}
		if page != "body "+[]string{"one", "two"}[i] {
			t.Errorf("page %d = %q", i, page)
		}
	}
}

func TestExtractPagesBadPattern(t *testing.T) {
	t.Parallel()

	_, err := mdforge.ExtractPages(nil, &mdforge.PageFilter{SkipPatterns: []string{"("}})
	if !errors.Is(err, mdforge.ErrInvalidSkipPattern) {
		t.Errorf("err = %v, want ErrInvalidSkipPattern", err)
	}
}
