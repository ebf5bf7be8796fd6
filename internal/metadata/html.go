package metadata

import (
	"strings"

	"golang.org/x/net/html"
)

// htmlPrefixLimit bounds how much of an HTML source document the fallback
// tokenizer reads; real metadata lives in <head>, never deep in the body.
const htmlPrefixLimit = 64 * 1024

// InferFromHTML tokenizes the head of an HTML source document for metadata
// the Markdown conversion dropped: <title> and the usual <meta> names. It
// fills only fields still empty in base.
func InferFromHTML(src []byte, base Info) Info {
	if len(src) > htmlPrefixLimit {
		src = src[:htmlPrefixLimit]
	}
	tokenizer := html.NewTokenizer(strings.NewReader(string(src)))

	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return base
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "title":
				inTitle = true
			case "meta":
				applyMeta(token, &base)
			case "body":
				return base
			}
		case html.EndTagToken:
			if tokenizer.Token().Data == "title" {
				inTitle = false
			}
		case html.TextToken:
			if inTitle && base.Title == "" {
				if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
					base.Title = text
				}
			}
		}
	}
}

func applyMeta(token html.Token, info *Info) {
	var name, content string
	for _, attr := range token.Attr {
		switch attr.Key {
		case "name", "property":
			name = strings.ToLower(attr.Val)
		case "content":
			content = strings.TrimSpace(attr.Val)
		}
	}
	if content == "" {
		return
	}
	switch name {
	case "author", "dc.creator", "book:author":
		if info.Author == "" {
			info.Author = content
		}
	case "title", "dc.title", "og:title":
		if info.Title == "" {
			info.Title = content
		}
	case "publisher", "dc.publisher":
		if info.Publisher == "" {
			info.Publisher = content
		}
	case "isbn", "dc.identifier", "book:isbn":
		if info.ISBN == "" {
			info.ISBN = NormalizeISBN(content)
		}
	case "date", "dc.date", "book:release_date":
		if info.Date == "" {
			info.Date = inferDate(content)
		}
	}
}
