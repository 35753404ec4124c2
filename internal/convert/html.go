// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// htmlBackend renders HTML pages as Markdown. Scripts, styles, and
// noscript blocks are dropped before rendering; the page title becomes the
// top heading when the body has none.
type htmlBackend struct{}

func (htmlBackend) Name() string { return "html" }

func (htmlBackend) Accepts(ext string) bool {
	return extSet{".html", ".htm", ".xhtml"}.Accepts(ext)
}

func (htmlBackend) Convert(_ context.Context, path string) (string, error) {
	text, err := readText(path)
	if err != nil {
		return "", err
	}
	return htmlToMarkdown(text)
}

func htmlToMarkdown(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	title := strings.TrimSpace(doc.Find("head title").First().Text())

	body := doc.Find("body").First()
	markup, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("reading html body: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	md = strings.TrimSpace(md)

	if title != "" && body.Find("h1").Length() == 0 {
		if md == "" {
			return "# " + title + "\n", nil
		}
		return "# " + title + "\n\n" + md + "\n", nil
	}
	if md == "" {
		return "", nil
	}
	return md + "\n", nil
}
