// Package markdown converts Markdown into document trees, so drafts and
// imported files open in the editor like any other post.
package markdown

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"site_cms/document"
)

var md = goldmark.New()

// Import parses Markdown into a document tree. Constructs the tree cannot
// hold are flattened: block quotes to their blocks, code to plain
// paragraphs, images out of text into blocks of their own. Raw HTML and
// thematic breaks are dropped.
func Import(src []byte) (*document.Document, error) {
	root := md.Parser().Parse(text.NewReader(src))
	c := converter{src: src}
	doc := document.Doc(c.blocks(root)...)
	if len(doc.Content) == 0 {
		return document.Empty(), nil
	}
	if err := document.Validate(doc); err != nil {
		return nil, errors.Wrap(err, "imported markdown")
	}
	return doc, nil
}

type converter struct {
	src []byte
}

func (c converter) blocks(parent ast.Node) []document.Block {
	var out []document.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			out = append(out, c.textBlock(n, func(in []document.Inline) document.Block {
				return document.H(n.Level, in...)
			})...)
		case *ast.Paragraph, *ast.TextBlock:
			out = append(out, c.textBlock(n, func(in []document.Inline) document.Block {
				return document.P(in...)
			})...)
		case *ast.List:
			items := make([]*document.ListItem, 0, n.ChildCount())
			for it := n.FirstChild(); it != nil; it = it.NextSibling() {
				content := c.blocks(it)
				if len(content) == 0 {
					content = []document.Block{document.P()}
				}
				items = append(items, document.Item(content...))
			}
			if n.IsOrdered() {
				out = append(out, document.Ordered(items...))
			} else {
				out = append(out, document.Bullets(items...))
			}
		case *ast.Blockquote:
			out = append(out, c.blocks(n)...)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if code := strings.TrimRight(c.lines(n), "\n"); code != "" {
				out = append(out, document.P(document.T(code)))
			}
		}
	}
	return out
}

// textBlock converts a block's inline content. An image splits the block:
// the text before it, the image, then the text after it.
func (c converter) textBlock(n ast.Node, build func([]document.Inline) document.Block) []document.Block {
	var out []document.Block
	var pending []document.Inline
	flush := func() {
		if in := document.Normalize(pending); len(in) > 0 {
			out = append(out, build(in))
		}
		pending = nil
	}
	c.inlines(n, nil, &pending, func(img *document.Image) {
		flush()
		out = append(out, img)
	})
	flush()
	if len(out) == 0 {
		if _, heading := n.(*ast.Heading); heading {
			out = append(out, build(nil))
		}
	}
	return out
}

func (c converter) inlines(parent ast.Node, marks []document.Mark, out *[]document.Inline, image func(*document.Image)) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Text:
			value := n.Segment.Value(c.src)
			if !n.IsRaw() {
				value = unescape(value)
			}
			if n.SoftLineBreak() || n.HardLineBreak() {
				value = append(value[:len(value):len(value)], ' ')
			}
			*out = append(*out, document.T(string(value), marks...))
		case *ast.String:
			*out = append(*out, document.T(string(n.Value), marks...))
		case *ast.Emphasis:
			m := document.Italic()
			if n.Level >= 2 {
				m = document.Bold()
			}
			c.inlines(n, document.WithMark(marks, m), out, image)
		case *ast.CodeSpan:
			var code []byte
			for t := n.FirstChild(); t != nil; t = t.NextSibling() {
				if t, ok := t.(*ast.Text); ok {
					code = append(code, t.Segment.Value(c.src)...)
				}
			}
			code = bytes.ReplaceAll(code, []byte("\n"), []byte(" "))
			*out = append(*out, document.T(string(code), marks...))
		case *ast.Link:
			inner := marks
			if dest := string(n.Destination); dest != "" {
				inner = document.WithMark(marks, document.Link(dest))
			}
			c.inlines(n, inner, out, image)
		case *ast.AutoLink:
			url := string(n.URL(c.src))
			*out = append(*out, document.T(string(n.Label(c.src)), document.WithMark(marks, document.Link(url))...))
		case *ast.Image:
			if dest := string(n.Destination); dest != "" {
				var alt []document.Inline
				c.inlines(n, nil, &alt, func(*document.Image) {})
				image(document.Img(dest, document.InlineText(alt)))
			}
		}
	}
}

// unescape decodes backslash escapes and character references the way the
// HTML renderer does before writing text.
func unescape(b []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(b)))
}

func (c converter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return b.String()
}
