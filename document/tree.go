package document

import (
	"strings"
)

// Equal reports whether two trees are structurally equal. Mark sets compare
// without regard to order; everything else is ordered.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Paragraph:
		y, ok := b.(*Paragraph)
		if !ok || x.Align != y.Align {
			return false
		}
	case *Heading:
		y, ok := b.(*Heading)
		if !ok || x.Level != y.Level || x.Align != y.Align {
			return false
		}
	case *Image:
		y, ok := b.(*Image)
		return ok && x.Src == y.Src && x.Alt == y.Alt
	case *Text:
		y, ok := b.(*Text)
		return ok && x.Value == y.Value && SameMarks(x.Marks, y.Marks)
	case *Unknown:
		if _, ok := b.(*Unknown); !ok {
			return false
		}
	}
	ca, cb := Children(a), Children(b)
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if !Equal(ca[i], cb[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the document.
func Clone(d *Document) *Document {
	if d == nil {
		return nil
	}
	return &Document{Content: cloneBlocks(d.Content)}
}

func cloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = CloneBlock(b)
	}
	return out
}

// CloneBlock deep-copies a single block.
func CloneBlock(b Block) Block {
	switch v := b.(type) {
	case *Paragraph:
		return &Paragraph{Align: v.Align, Content: CloneInlines(v.Content)}
	case *Heading:
		return &Heading{Level: v.Level, Align: v.Align, Content: CloneInlines(v.Content)}
	case *BulletList:
		return &BulletList{Items: cloneItems(v.Items)}
	case *OrderedList:
		return &OrderedList{Items: cloneItems(v.Items)}
	case *Image:
		c := *v
		return &c
	case *Unknown:
		return cloneUnknown(v)
	}
	return b
}

func cloneItems(items []*ListItem) []*ListItem {
	if items == nil {
		return nil
	}
	out := make([]*ListItem, len(items))
	for i, it := range items {
		out[i] = &ListItem{Content: cloneBlocks(it.Content)}
	}
	return out
}

// CloneInlines deep-copies inline content.
func CloneInlines(inlines []Inline) []Inline {
	if inlines == nil {
		return nil
	}
	out := make([]Inline, len(inlines))
	for i, in := range inlines {
		switch v := in.(type) {
		case *Text:
			out[i] = &Text{Value: v.Value, Marks: cloneMarks(v.Marks)}
		case *Unknown:
			out[i] = cloneUnknown(v)
		default:
			out[i] = in
		}
	}
	return out
}

func cloneMarks(marks []Mark) []Mark {
	if marks == nil {
		return nil
	}
	return append([]Mark(nil), marks...)
}

func cloneUnknown(u *Unknown) *Unknown {
	c := &Unknown{Type: u.Type}
	for _, ch := range u.Children {
		switch v := ch.(type) {
		case Block:
			c.Children = append(c.Children, CloneBlock(v))
		case *ListItem:
			c.Children = append(c.Children, &ListItem{Content: cloneBlocks(v.Content)})
		case *Text:
			c.Children = append(c.Children, &Text{Value: v.Value, Marks: cloneMarks(v.Marks)})
		default:
			c.Children = append(c.Children, ch)
		}
	}
	return c
}

// Normalize merges adjacent text runs with equal mark sets and drops empty
// runs. The result shares no Text nodes with the input.
func Normalize(inlines []Inline) []Inline {
	var out []Inline
	for _, in := range inlines {
		t, ok := in.(*Text)
		if !ok {
			out = append(out, in)
			continue
		}
		if t.Value == "" {
			continue
		}
		if n := len(out); n > 0 {
			if prev, ok := out[n-1].(*Text); ok && SameMarks(prev.Marks, t.Marks) {
				out[n-1] = &Text{Value: prev.Value + t.Value, Marks: prev.Marks}
				continue
			}
		}
		out = append(out, &Text{Value: t.Value, Marks: cloneMarks(t.Marks)})
	}
	return out
}

// InlineText concatenates the text of inline content.
func InlineText(inlines []Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		writeText(in, &b)
	}
	return b.String()
}

func writeText(n Node, b *strings.Builder) {
	if t, ok := n.(*Text); ok {
		b.WriteString(t.Value)
		return
	}
	for _, c := range Children(n) {
		writeText(c, b)
	}
}

// PlainText flattens the tree to text, one line per text block.
func PlainText(n Node) string {
	var lines []string
	_ = Visit(n, func(v Node) {
		if tb, ok := v.(TextBlock); ok {
			if s := InlineText(tb.Inlines()); s != "" {
				lines = append(lines, s)
			}
		}
	})
	return strings.Join(lines, "\n")
}
