package findings

import (
	"strings"

	"golang.org/x/net/html"
)

// ExcerptText flattens an evidence quote to plain text with collapsed
// whitespace. Quotes captured from web sources sometimes carry HTML markup;
// tags are stripped so the quote can be matched against extracted page text.
func ExcerptText(s string) string {
	if !strings.Contains(s, "<") {
		return collapse(s)
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return collapse(s)
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return collapse(sb.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
