package findings

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var sanitizer = bluemonday.UGCPolicy()

// RenderHTML converts finding/analysis markdown to sanitized HTML for the
// viewer. Conversion failures degrade to escaped plain text.
func RenderHTML(src string) string {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(src), &buf); err != nil {
		return html.EscapeString(src)
	}
	return sanitizer.Sanitize(buf.String())
}
