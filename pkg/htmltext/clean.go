// Package htmltext converts the HTML fragments used in vacancy descriptions
// into plain text.
package htmltext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockSelector lists elements that start a new line in rendered text.
const blockSelector = "p, div, li, ul, ol, h1, h2, h3, h4, h5, h6, tr, blockquote, pre, section, article, header, footer, table"

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\r\x{00a0}\x{200b}]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
)

// Clean strips tags, decodes entities and normalizes whitespace:
// runs of spaces collapse to one, each line is trimmed and at most one
// blank line separates paragraphs.
func Clean(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return normalize(html.UnescapeString(tagPattern.ReplaceAllString(fragment, " ")))
	}

	doc.Find("script, style, noscript, template").Remove()

	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			replaceWithText(n, "\n")
		}
	})

	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			surroundWithText(n, "\n")
		}
	})

	return normalize(doc.Text())
}

func replaceWithText(n *html.Node, text string) {
	if n.Parent == nil {
		return
	}
	n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n)
	n.Parent.RemoveChild(n)
}

func surroundWithText(n *html.Node, text string) {
	if n.Parent == nil {
		return
	}
	n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n)
	if n.NextSibling != nil {
		n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n.NextSibling)
	} else {
		n.Parent.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func normalize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
