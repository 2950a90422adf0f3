package renderer

import (
	"html"
	"regexp"

	"github.com/microcosm-cc/bluemonday"

	"site_cms/document"
)

// PostPolicy allows what Render emits plus ordinary user content, and drops
// scripts, handlers and unexpected styles.
var PostPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

// StripTagsPolicy removes all markup, leaving text.
var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()

func init() {
	colorRegexp := regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgba?\(\s*\d+\s*,\s*\d+\s*,\s*\d+\s*(,\s*[\d.]+\s*)?\)|[a-zA-Z]+)$`)
	alignRegexp := regexp.MustCompile(`^(left|center|right|justify)$`)

	PostPolicy.AllowStyles("color").Matching(colorRegexp).OnElements("span")
	PostPolicy.AllowStyles("text-align").Matching(alignRegexp).OnElements("p", "h1", "h2", "h3", "h4", "h5", "h6")
}

// Sanitize filters rendered or legacy HTML through PostPolicy.
func Sanitize(markup string) string {
	return PostPolicy.Sanitize(markup)
}

// RenderSafe renders n and sanitises the result.
func RenderSafe(n document.Node) string {
	return Sanitize(Render(n))
}

// StripTags removes all markup from s and returns plain text.
func StripTags(s string) string {
	return html.UnescapeString(StripTagsPolicy.Sanitize(s))
}
