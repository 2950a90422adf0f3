// Package renderer turns a document tree into HTML for the public blog.
package renderer

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"site_cms/document"
)

// Render converts a tree into markup. It never fails: nodes it does not
// understand contribute their rendered children, or nothing when they have
// none. Text and attribute values are escaped.
func Render(n document.Node) string {
	if n == nil {
		return ""
	}

	var result strings.Builder
	renderNode(n, &result, 0)
	return result.String()
}

func renderNode(n document.Node, result *strings.Builder, depth int) {
	if depth > document.MaxDepth {
		return
	}
	switch v := n.(type) {
	case *document.Document:
		renderChildren(v, result, depth)
	case *document.Paragraph:
		result.WriteString("<p" + alignAttr(v.Align) + ">")
		renderChildren(v, result, depth)
		result.WriteString("</p>")
	case *document.Heading:
		level := document.ClampLevel(v.Level)
		fmt.Fprintf(result, "<h%d%s>", level, alignAttr(v.Align))
		renderChildren(v, result, depth)
		fmt.Fprintf(result, "</h%d>", level)
	case *document.BulletList:
		result.WriteString("<ul>")
		renderChildren(v, result, depth)
		result.WriteString("</ul>")
	case *document.OrderedList:
		result.WriteString("<ol>")
		renderChildren(v, result, depth)
		result.WriteString("</ol>")
	case *document.ListItem:
		result.WriteString("<li>")
		renderChildren(v, result, depth)
		result.WriteString("</li>")
	case *document.Image:
		fmt.Fprintf(result, `<img src="%s" alt="%s" />`, html.EscapeString(v.Src), html.EscapeString(v.Alt))
	case *document.Text:
		renderText(v, result)
	default:
		renderChildren(n, result, depth)
	}
}

func renderChildren(n document.Node, result *strings.Builder, depth int) {
	for _, child := range document.Children(n) {
		if child != nil {
			renderNode(child, result, depth+1)
		}
	}
}

// renderText wraps the escaped value in one tag per mark, in canonical order
// so the output does not depend on the order marks were applied.
func renderText(t *document.Text, result *strings.Builder) {
	text := html.EscapeString(t.Value)
	if len(t.Marks) == 0 {
		result.WriteString(text)
		return
	}

	marks := append([]document.Mark(nil), t.Marks...)
	sort.SliceStable(marks, func(i, j int) bool {
		return marks[i].Type.Rank() < marks[j].Type.Rank()
	})

	for _, mark := range marks {
		switch mark.Type {
		case document.MarkBold:
			text = "<strong>" + text + "</strong>"
		case document.MarkItalic:
			text = "<em>" + text + "</em>"
		case document.MarkUnderline:
			text = "<u>" + text + "</u>"
		case document.MarkColor:
			text = fmt.Sprintf(`<span style="color: %s">%s</span>`, html.EscapeString(mark.Color), text)
		case document.MarkLink:
			href := mark.Href
			if href == "" {
				href = "#"
			}
			text = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), text)
		}
	}
	result.WriteString(text)
}

func alignAttr(a document.Align) string {
	if a == document.AlignNone {
		return ""
	}
	return fmt.Sprintf(` style="text-align: %s"`, html.EscapeString(string(a)))
}
