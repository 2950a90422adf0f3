package generator

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"site_cms/document"
	"site_cms/markdown"
)

const excerptLimit = 160

var (
	titleLine = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	fence     = regexp.MustCompile("(?s)^```(?:markdown|md)?\\s*\n(.*?)\n?```$")
)

// PostProcess validates the model output and splits it into title,
// excerpt and body.
func PostProcess(raw string) (Draft, error) {
	md := strings.TrimSpace(raw)
	if m := fence.FindStringSubmatch(md); m != nil {
		md = strings.TrimSpace(m[1])
	}
	if md == "" {
		return Draft{}, errors.New("model returned empty markdown")
	}

	title, body := splitTitle(md)
	doc, err := markdown.Import([]byte(body))
	if err != nil {
		return Draft{}, errors.Wrap(err, "import draft")
	}

	excerpt := extractExcerpt(doc)
	if excerpt == "" {
		excerpt = defaultExcerpt(document.PlainText(doc), excerptLimit)
	}

	return Draft{
		Title:    title,
		Excerpt:  excerpt,
		Markdown: body,
		Doc:      doc,
	}, nil
}

// splitTitle removes the first level-one heading and returns its text.
func splitTitle(md string) (string, string) {
	loc := titleLine.FindStringSubmatchIndex(md)
	if loc == nil {
		return "", md
	}
	title := strings.TrimSpace(md[loc[2]:loc[3]])
	body := strings.TrimSpace(md[:loc[0]] + md[loc[1]:])
	return title, body
}

// The excerpt is the first top-level paragraph with text.
func extractExcerpt(doc *document.Document) string {
	for _, b := range doc.Content {
		if p, ok := b.(*document.Paragraph); ok {
			if text := strings.TrimSpace(document.InlineText(p.Content)); text != "" {
				return text
			}
		}
	}
	return ""
}

func defaultExcerpt(text string, limit int) string {
	joined := []rune(strings.Join(strings.Fields(text), " "))
	if len(joined) <= limit {
		return string(joined)
	}
	return string(joined[:limit])
}
