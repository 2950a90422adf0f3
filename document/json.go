package document

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Wire is the persisted JSON shape of a node, as written by the admin
// editor into a post's content column.
type Wire struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Wire        `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []*WireMark    `json:"marks,omitempty"`
}

// WireMark is the persisted JSON shape of a mark.
type WireMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Marshal encodes a tree into its persisted JSON shape. Map keys are sorted
// by encoding/json, so output is stable.
func Marshal(n Node) ([]byte, error) {
	return json.Marshal(ToWire(n))
}

// ToWire converts a node into the wire shape.
func ToWire(n Node) *Wire {
	w := &Wire{Type: string(n.Kind())}
	switch v := n.(type) {
	case *Paragraph:
		if v.Align != AlignNone {
			w.Attrs = map[string]any{"textAlign": string(v.Align)}
		}
	case *Heading:
		w.Attrs = map[string]any{"level": v.Level}
		if v.Align != AlignNone {
			w.Attrs["textAlign"] = string(v.Align)
		}
	case *Image:
		w.Attrs = map[string]any{"src": v.Src}
		if v.Alt != "" {
			w.Attrs["alt"] = v.Alt
		}
	case *Text:
		w.Text = v.Value
		for _, m := range v.Marks {
			w.Marks = append(w.Marks, markToWire(m))
		}
	}
	for _, c := range Children(n) {
		if c != nil {
			w.Content = append(w.Content, ToWire(c))
		}
	}
	return w
}

func markToWire(m Mark) *WireMark {
	wm := &WireMark{Type: string(m.Type)}
	switch m.Type {
	case MarkLink:
		wm.Attrs = map[string]any{"href": m.Href}
	case MarkColor:
		wm.Attrs = map[string]any{"color": m.Color}
	}
	return wm
}

// Unmarshal decodes and validates a persisted document. Any schema violation
// is reported as a *MalformedError.
func Unmarshal(data []byte) (*Document, error) {
	var w Wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, Malformed("", err)
	}
	return FromWire(&w)
}

// FromWire converts a decoded wire tree into a validated document.
func FromWire(w *Wire) (*Document, error) {
	d := decoder{}
	n, err := d.node(w, "$", 0)
	if err != nil {
		return nil, err
	}
	doc, ok := n.(*Document)
	if !ok {
		return nil, Malformed("$", errors.Wrapf(ErrInvalidNodeKind, "root is %q, want %q", w.Type, KindDocument))
	}
	return doc, nil
}

// UnmarshalLenient decodes stored content for display. Unknown node kinds
// become *Unknown, misplaced children are wrapped in *Unknown, heading levels
// are clamped and empty text and unknown marks are dropped. Only invalid JSON
// and excessive depth fail.
func UnmarshalLenient(data []byte) (*Document, error) {
	var w Wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, Malformed("", err)
	}
	d := decoder{lenient: true}
	n, err := d.node(&w, "$", 0)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return &Document{}, nil
	}
	if doc, ok := n.(*Document); ok {
		return doc, nil
	}
	if b, ok := n.(Block); ok {
		return &Document{Content: []Block{b}}, nil
	}
	return &Document{Content: []Block{&Unknown{Type: w.Type, Children: []Node{n}}}}, nil
}

type decoder struct {
	lenient bool
}

func (d decoder) node(w *Wire, path string, depth int) (Node, error) {
	if depth > MaxDepth {
		return nil, Malformed(path, errors.Wrapf(ErrTreeTooDeep, "depth %d", depth))
	}
	if w == nil {
		return nil, Malformed(path, errors.Wrap(ErrInvalidChildType, "null node"))
	}

	kind := Kind(w.Type)
	children := make([]Node, 0, len(w.Content))
	for i, cw := range w.Content {
		cpath := fmt.Sprintf("%s.content[%d]", path, i)
		if d.lenient && cw == nil {
			continue
		}
		c, err := d.node(cw, cpath, depth+1)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		children = append(children, c)
	}

	if d.lenient {
		return d.lenientNode(w, kind, children), nil
	}

	f := Fields{Children: children}
	switch kind {
	case KindParagraph, KindHeading:
		align, err := stringAttr(w.Attrs, "textAlign")
		if err != nil {
			return nil, Malformed(path, err)
		}
		f.Align = Align(align)
		if kind == KindHeading {
			lvl, err := intAttr(w.Attrs, "level")
			if err != nil {
				return nil, Malformed(path, err)
			}
			f.Level = lvl
		}
	case KindImage:
		src, err := stringAttr(w.Attrs, "src")
		if err != nil {
			return nil, Malformed(path, err)
		}
		alt, err := stringAttr(w.Attrs, "alt")
		if err != nil {
			return nil, Malformed(path, err)
		}
		f.Src, f.Alt = src, alt
	case KindText:
		f.Value = w.Text
		for i, wm := range w.Marks {
			m, err := markFromWire(wm)
			if err != nil {
				return nil, Malformed(fmt.Sprintf("%s.marks[%d]", path, i), err)
			}
			f.Marks = append(f.Marks, m)
		}
	}
	n, err := NewNode(kind, f)
	if err != nil {
		return nil, Malformed(path, err)
	}
	return n, nil
}

func (d decoder) lenientNode(w *Wire, kind Kind, children []Node) Node {
	switch kind {
	case KindDocument, KindListItem:
		blocks := make([]Block, 0, len(children))
		for _, c := range children {
			blocks = append(blocks, asBlock(c))
		}
		if kind == KindDocument {
			return &Document{Content: blocks}
		}
		return &ListItem{Content: blocks}
	case KindParagraph, KindHeading:
		inlines := make([]Inline, 0, len(children))
		for _, c := range children {
			if in, ok := c.(Inline); ok {
				inlines = append(inlines, in)
				continue
			}
			inlines = append(inlines, &Unknown{Type: string(c.Kind()), Children: []Node{c}})
		}
		align, _ := stringAttr(w.Attrs, "textAlign")
		a := Align(align)
		if !a.valid() {
			a = AlignNone
		}
		if kind == KindParagraph {
			return &Paragraph{Align: a, Content: inlines}
		}
		lvl, _ := intAttr(w.Attrs, "level")
		return &Heading{Level: ClampLevel(lvl), Align: a, Content: inlines}
	case KindBulletList, KindOrderedList:
		items := make([]*ListItem, 0, len(children))
		for _, c := range children {
			if it, ok := c.(*ListItem); ok {
				items = append(items, it)
				continue
			}
			items = append(items, &ListItem{Content: []Block{asBlock(c)}})
		}
		if kind == KindBulletList {
			return &BulletList{Items: items}
		}
		return &OrderedList{Items: items}
	case KindImage:
		src, _ := stringAttr(w.Attrs, "src")
		alt, _ := stringAttr(w.Attrs, "alt")
		return &Image{Src: src, Alt: alt}
	case KindText:
		if w.Text == "" {
			return nil
		}
		t := &Text{Value: w.Text}
		for _, wm := range w.Marks {
			m, err := markFromWire(wm)
			if err != nil || t.HasMark(m.Type) {
				continue
			}
			t.Marks = append(t.Marks, m)
		}
		return t
	default:
		return &Unknown{Type: w.Type, Children: children}
	}
}

func asBlock(n Node) Block {
	if b, ok := n.(Block); ok {
		return b
	}
	return &Unknown{Type: string(n.Kind()), Children: []Node{n}}
}

// ClampLevel forces a heading level into 1..6; zero and negatives become 1.
func ClampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

func markFromWire(wm *WireMark) (Mark, error) {
	if wm == nil {
		return Mark{}, errors.Wrap(ErrInvalidAttribute, "null mark")
	}
	m := Mark{Type: MarkType(wm.Type)}
	switch m.Type {
	case MarkBold, MarkItalic, MarkUnderline:
	case MarkLink:
		href, err := stringAttr(wm.Attrs, "href")
		if err != nil {
			return Mark{}, err
		}
		m.Href = href
	case MarkColor:
		color, err := stringAttr(wm.Attrs, "color")
		if err != nil {
			return Mark{}, err
		}
		if color == "" {
			return Mark{}, errors.Wrap(ErrInvalidAttribute, "color mark without value")
		}
		m.Color = color
	default:
		return Mark{}, errors.Wrapf(ErrInvalidAttribute, "unknown mark %q", wm.Type)
	}
	return m, nil
}

func stringAttr(attrs map[string]any, key string) (string, error) {
	v, ok := attrs[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Wrapf(ErrInvalidAttribute, "attribute %s is %T, want string", key, v)
	}
	return s, nil
}

func intAttr(attrs map[string]any, key string) (int, error) {
	v, ok := attrs[key]
	if !ok || v == nil {
		return 0, errors.Wrapf(ErrInvalidAttribute, "missing attribute %s", key)
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, errors.Wrapf(ErrInvalidAttribute, "attribute %s is not an integer", key)
		}
		return int(n), nil
	case int:
		return n, nil
	}
	return 0, errors.Wrapf(ErrInvalidAttribute, "attribute %s is %T, want number", key, v)
}
