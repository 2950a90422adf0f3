package document

import (
	"github.com/pkg/errors"
)

// MaxDepth bounds nesting; deeper trees are rejected with ErrTreeTooDeep.
const MaxDepth = 256

// Fields carries the kind-specific values for NewNode. Fields that do not
// apply to the requested kind are ignored.
type Fields struct {
	Level    int
	Align    Align
	Src      string
	Alt      string
	Value    string
	Marks    []Mark
	Children []Node
}

// NewNode builds a well-formed node of the given kind. Children must already
// be valid nodes; only their placement is checked here.
func NewNode(kind Kind, f Fields) (Node, error) {
	switch kind {
	case KindDocument:
		blocks, err := blockChildren(kind, f.Children)
		if err != nil {
			return nil, err
		}
		return &Document{Content: blocks}, nil
	case KindParagraph, KindHeading:
		if !f.Align.valid() {
			return nil, errors.Wrapf(ErrInvalidAttribute, "text align %q", f.Align)
		}
		inlines := make([]Inline, 0, len(f.Children))
		for _, c := range f.Children {
			in, ok := c.(*Text)
			if !ok {
				return nil, childError(kind, c)
			}
			inlines = append(inlines, in)
		}
		if len(inlines) == 0 {
			inlines = nil
		}
		if kind == KindParagraph {
			return &Paragraph{Align: f.Align, Content: inlines}, nil
		}
		if f.Level < 1 || f.Level > 6 {
			return nil, errors.Wrapf(ErrInvalidAttribute, "heading level %d", f.Level)
		}
		return &Heading{Level: f.Level, Align: f.Align, Content: inlines}, nil
	case KindBulletList, KindOrderedList:
		items := make([]*ListItem, 0, len(f.Children))
		for _, c := range f.Children {
			it, ok := c.(*ListItem)
			if !ok {
				return nil, childError(kind, c)
			}
			items = append(items, it)
		}
		if kind == KindBulletList {
			return &BulletList{Items: items}, nil
		}
		return &OrderedList{Items: items}, nil
	case KindListItem:
		blocks, err := blockChildren(kind, f.Children)
		if err != nil {
			return nil, err
		}
		return &ListItem{Content: blocks}, nil
	case KindImage:
		if f.Src == "" {
			return nil, errors.Wrap(ErrInvalidAttribute, "image without src")
		}
		return &Image{Src: f.Src, Alt: f.Alt}, nil
	case KindText:
		if f.Value == "" {
			return nil, errors.Wrap(ErrInvalidAttribute, "empty text")
		}
		if err := validateMarks(f.Marks); err != nil {
			return nil, err
		}
		return &Text{Value: f.Value, Marks: f.Marks}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidNodeKind, "%q", kind)
	}
}

func blockChildren(parent Kind, children []Node) ([]Block, error) {
	blocks := make([]Block, 0, len(children))
	for _, c := range children {
		b, ok := c.(Block)
		if !ok {
			return nil, childError(parent, c)
		}
		if _, unknown := b.(*Unknown); unknown {
			return nil, childError(parent, c)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func childError(parent Kind, child Node) error {
	if child == nil {
		return errors.Wrapf(ErrInvalidChildType, "nil child in %s", parent)
	}
	return errors.Wrapf(ErrInvalidChildType, "%s cannot contain %s", parent, child.Kind())
}

func validateMarks(marks []Mark) error {
	seen := make(map[MarkType]bool, len(marks))
	for _, m := range marks {
		if !m.Type.Known() {
			return errors.Wrapf(ErrInvalidAttribute, "unknown mark %q", m.Type)
		}
		if seen[m.Type] {
			return errors.Wrapf(ErrInvalidAttribute, "duplicate mark %q", m.Type)
		}
		seen[m.Type] = true
		if m.Type == MarkColor && m.Color == "" {
			return errors.Wrap(ErrInvalidAttribute, "color mark without value")
		}
	}
	return nil
}

// Validate checks a tree built outside NewNode against the same rules. The
// error wraps the matching sentinel.
func Validate(n Node) error {
	return validate(n, 0)
}

func validate(n Node, depth int) error {
	if depth > MaxDepth {
		return errors.Wrapf(ErrTreeTooDeep, "depth %d", depth)
	}
	switch v := n.(type) {
	case nil:
		return errors.Wrap(ErrInvalidChildType, "nil node")
	case *Document:
		if depth != 0 {
			return errors.Wrap(ErrInvalidChildType, "nested doc")
		}
		for _, b := range v.Content {
			if err := validateBlock(b, depth+1); err != nil {
				return err
			}
		}
	case *Paragraph:
		if !v.Align.valid() {
			return errors.Wrapf(ErrInvalidAttribute, "text align %q", v.Align)
		}
		return validateInlines(v.Content, depth+1)
	case *Heading:
		if v.Level < 1 || v.Level > 6 {
			return errors.Wrapf(ErrInvalidAttribute, "heading level %d", v.Level)
		}
		if !v.Align.valid() {
			return errors.Wrapf(ErrInvalidAttribute, "text align %q", v.Align)
		}
		return validateInlines(v.Content, depth+1)
	case *BulletList:
		return validateItems(v.Items, depth+1)
	case *OrderedList:
		return validateItems(v.Items, depth+1)
	case *ListItem:
		for _, b := range v.Content {
			if err := validateBlock(b, depth+1); err != nil {
				return err
			}
		}
	case *Image:
		if v.Src == "" {
			return errors.Wrap(ErrInvalidAttribute, "image without src")
		}
	case *Text:
		if v.Value == "" {
			return errors.Wrap(ErrInvalidAttribute, "empty text")
		}
		return validateMarks(v.Marks)
	case *Unknown:
		return errors.Wrapf(ErrInvalidNodeKind, "%q", v.Type)
	default:
		return errors.Wrapf(ErrInvalidNodeKind, "%T", n)
	}
	return nil
}

func validateBlock(b Block, depth int) error {
	if b == nil {
		return errors.Wrap(ErrInvalidChildType, "nil block")
	}
	return validate(b, depth)
}

func validateInlines(inlines []Inline, depth int) error {
	for _, in := range inlines {
		if in == nil {
			return errors.Wrap(ErrInvalidChildType, "nil inline")
		}
		if err := validate(in, depth); err != nil {
			return err
		}
	}
	return nil
}

func validateItems(items []*ListItem, depth int) error {
	for _, it := range items {
		if it == nil {
			return errors.Wrap(ErrInvalidChildType, "nil list item")
		}
		if err := validate(it, depth); err != nil {
			return err
		}
	}
	return nil
}

// Visit calls fn once per node in document order, parent before children.
func Visit(n Node, fn func(Node)) error {
	return visit(n, fn, 0)
}

func visit(n Node, fn func(Node), depth int) error {
	if depth > MaxDepth {
		return errors.Wrapf(ErrTreeTooDeep, "depth %d", depth)
	}
	if n == nil {
		return nil
	}
	fn(n)
	for _, c := range Children(n) {
		if err := visit(c, fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}
