// Package document defines the rich-text tree shared by the editor and the
// renderer, and its persisted JSON shape.
package document

// Kind is the node discriminator. Its values are the persisted "type" strings.
type Kind string

const (
	KindDocument    Kind = "doc"
	KindParagraph   Kind = "paragraph"
	KindHeading     Kind = "heading"
	KindBulletList  Kind = "bulletList"
	KindOrderedList Kind = "orderedList"
	KindListItem    Kind = "listItem"
	KindImage       Kind = "image"
	KindText        Kind = "text"
)

// Known reports whether k is one of the closed set of node kinds.
func (k Kind) Known() bool {
	switch k {
	case KindDocument, KindParagraph, KindHeading, KindBulletList, KindOrderedList,
		KindListItem, KindImage, KindText:
		return true
	}
	return false
}

// Align is the text alignment of a paragraph or heading. Empty means unset.
type Align string

const (
	AlignNone    Align = ""
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

func (a Align) valid() bool {
	switch a {
	case AlignNone, AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return true
	}
	return false
}

// Node is any element of the tree.
type Node interface {
	Kind() Kind
	isNode()
}

// Block nodes live in a Document or a ListItem.
type Block interface {
	Node
	isBlock()
}

// Inline nodes live in a Paragraph or a Heading.
type Inline interface {
	Node
	isInline()
}

// TextBlock is a block holding inline content: *Paragraph or *Heading.
type TextBlock interface {
	Block
	Inlines() []Inline
	SetInlines([]Inline)
	Alignment() Align
}

type Document struct {
	Content []Block
}

type Paragraph struct {
	Align   Align
	Content []Inline
}

type Heading struct {
	Level   int
	Align   Align
	Content []Inline
}

type BulletList struct {
	Items []*ListItem
}

type OrderedList struct {
	Items []*ListItem
}

type ListItem struct {
	Content []Block
}

type Image struct {
	Src string
	Alt string
}

type Text struct {
	Value string
	Marks []Mark
}

// Unknown holds a node whose type is outside the closed set. It is only
// produced by lenient decoding, so stored content with a foreign node still
// renders.
type Unknown struct {
	Type     string
	Children []Node
}

func (*Document) Kind() Kind    { return KindDocument }
func (*Paragraph) Kind() Kind   { return KindParagraph }
func (*Heading) Kind() Kind     { return KindHeading }
func (*BulletList) Kind() Kind  { return KindBulletList }
func (*OrderedList) Kind() Kind { return KindOrderedList }
func (*ListItem) Kind() Kind    { return KindListItem }
func (*Image) Kind() Kind       { return KindImage }
func (*Text) Kind() Kind        { return KindText }
func (u *Unknown) Kind() Kind   { return Kind(u.Type) }

func (*Document) isNode()    {}
func (*Paragraph) isNode()   {}
func (*Heading) isNode()     {}
func (*BulletList) isNode()  {}
func (*OrderedList) isNode() {}
func (*ListItem) isNode()    {}
func (*Image) isNode()       {}
func (*Text) isNode()        {}
func (*Unknown) isNode()     {}

func (*Paragraph) isBlock()   {}
func (*Heading) isBlock()     {}
func (*BulletList) isBlock()  {}
func (*OrderedList) isBlock() {}
func (*Image) isBlock()       {}
func (*Unknown) isBlock()     {}

func (*Text) isInline()    {}
func (*Unknown) isInline() {}

func (p *Paragraph) Inlines() []Inline     { return p.Content }
func (p *Paragraph) SetInlines(c []Inline) { p.Content = c }
func (p *Paragraph) Alignment() Align      { return p.Align }
func (h *Heading) Inlines() []Inline       { return h.Content }
func (h *Heading) SetInlines(c []Inline)   { h.Content = c }
func (h *Heading) Alignment() Align        { return h.Align }

// Children returns the direct children of n in document order.
func Children(n Node) []Node {
	var out []Node
	switch v := n.(type) {
	case *Document:
		for _, b := range v.Content {
			out = append(out, b)
		}
	case *Paragraph:
		for _, in := range v.Content {
			out = append(out, in)
		}
	case *Heading:
		for _, in := range v.Content {
			out = append(out, in)
		}
	case *BulletList:
		for _, it := range v.Items {
			out = append(out, it)
		}
	case *OrderedList:
		for _, it := range v.Items {
			out = append(out, it)
		}
	case *ListItem:
		for _, b := range v.Content {
			out = append(out, b)
		}
	case *Unknown:
		out = append(out, v.Children...)
	}
	return out
}

// Empty returns a new document holding a single empty paragraph, the state
// of a freshly started post.
func Empty() *Document {
	return &Document{Content: []Block{&Paragraph{}}}
}

// Doc, P, H, T, Bullets, Ordered, Item and Img build trees without
// validation. They are meant for literals in code and tests; anything built
// from external input goes through NewNode or Unmarshal.
func Doc(blocks ...Block) *Document { return &Document{Content: blocks} }

func P(inlines ...Inline) *Paragraph { return &Paragraph{Content: inlines} }

func H(level int, inlines ...Inline) *Heading { return &Heading{Level: level, Content: inlines} }

func T(value string, marks ...Mark) *Text { return &Text{Value: value, Marks: marks} }

func Bullets(items ...*ListItem) *BulletList { return &BulletList{Items: items} }

func Ordered(items ...*ListItem) *OrderedList { return &OrderedList{Items: items} }

func Item(blocks ...Block) *ListItem { return &ListItem{Content: blocks} }

func Img(src, alt string) *Image { return &Image{Src: src, Alt: alt} }
