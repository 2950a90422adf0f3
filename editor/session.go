// Package editor holds an author's in-memory document while a post is being
// written and applies toolbar commands to it.
package editor

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"site_cms/document"
)

// ErrClosed is returned by commands on a disposed session.
var ErrClosed = errors.New("editor session closed")

// Position addresses a point in the text: Block is the index of a paragraph
// or heading in document order, Offset a rune offset inside it.
type Position struct {
	Block  int `json:"block"`
	Offset int `json:"offset"`
}

func (p Position) before(o Position) bool {
	return p.Block < o.Block || (p.Block == o.Block && p.Offset < o.Offset)
}

// Selection is an anchor/head pair; a cursor is an empty selection.
type Selection struct {
	Anchor Position `json:"anchor"`
	Head   Position `json:"head"`
}

// Cursor returns an empty selection at p.
func Cursor(p Position) Selection { return Selection{Anchor: p, Head: p} }

func (s Selection) From() Position {
	if s.Head.before(s.Anchor) {
		return s.Head
	}
	return s.Anchor
}

func (s Selection) To() Position {
	if s.Head.before(s.Anchor) {
		return s.Anchor
	}
	return s.Head
}

func (s Selection) Empty() bool { return s.Anchor == s.Head }

// Session owns one document for the duration of an authoring session. It is
// not safe for concurrent use.
type Session struct {
	ID        string
	PostID    string
	CreatedAt time.Time
	Revision  int

	doc    *document.Document
	sel    *Selection
	closed bool
}

// NewSession starts a session on an empty document with no cursor.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		doc:       document.Empty(),
	}
}

// OpenSession starts a session on an existing document.
func OpenSession(id string, doc *document.Document) (*Session, error) {
	s := NewSession(id)
	if err := s.Load(doc); err != nil {
		return nil, err
	}
	s.Revision = 0
	return s, nil
}

// Close discards the document. Later commands fail with ErrClosed.
func (s *Session) Close() {
	s.doc = nil
	s.sel = nil
	s.closed = true
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.closed }

// Serializable returns a copy of the document in its persistable form.
func (s *Session) Serializable() *document.Document {
	return document.Clone(s.doc)
}

// Load replaces the document wholesale and clears the selection.
func (s *Session) Load(doc *document.Document) error {
	if s.closed {
		return ErrClosed
	}
	if doc == nil {
		return document.Malformed("", errors.Wrap(document.ErrInvalidNodeKind, "nil document"))
	}
	if err := document.Validate(doc); err != nil {
		return document.Malformed("", err)
	}
	s.doc = document.Clone(doc)
	s.sel = nil
	s.Revision++
	return nil
}

// Selection returns the current selection, if the session has one.
func (s *Session) Selection() (Selection, bool) {
	if s.sel == nil {
		return Selection{}, false
	}
	return *s.sel, true
}

// SetCursor places an empty selection at p.
func (s *Session) SetCursor(p Position) error {
	return s.Select(p, p)
}

// Select sets the selection. Both ends must address existing text.
func (s *Session) Select(anchor, head Position) error {
	if s.closed {
		return ErrClosed
	}
	refs := textBlocks(s.doc)
	for _, p := range []Position{anchor, head} {
		if err := checkPosition(refs, p); err != nil {
			return err
		}
	}
	s.sel = &Selection{Anchor: anchor, Head: head}
	return nil
}

// ClearSelection drops the cursor, as when the editor loses focus.
func (s *Session) ClearSelection() {
	s.sel = nil
}

func checkPosition(refs []blockRef, p Position) error {
	if p.Block < 0 || p.Block >= len(refs) {
		return errors.Wrapf(document.ErrUnsupportedOperation, "no text block %d", p.Block)
	}
	if n := refs[p.Block].length(); p.Offset < 0 || p.Offset > n {
		return errors.Wrapf(document.ErrUnsupportedOperation, "offset %d outside block %d of length %d", p.Offset, p.Block, n)
	}
	return nil
}

// mutate runs fn against a copy of the document and commits the copy only
// when fn succeeds, so a failing command leaves the session untouched.
func (s *Session) mutate(fn func(doc *document.Document, sel Selection) (Selection, error)) error {
	if s.closed {
		return ErrClosed
	}
	if s.sel == nil {
		return nil
	}
	doc := document.Clone(s.doc)
	sel, err := fn(doc, *s.sel)
	if err != nil {
		return err
	}
	s.doc = doc
	s.sel = &sel
	s.Revision++
	return nil
}

// eachCovered calls fn for every text block touched by sel with the rune
// range of that block inside the selection.
func eachCovered(doc *document.Document, sel Selection, fn func(r blockRef, from, to int)) {
	refs := textBlocks(doc)
	from, to := sel.From(), sel.To()
	for b := from.Block; b <= to.Block && b < len(refs); b++ {
		start, end := 0, refs[b].length()
		if b == from.Block {
			start = from.Offset
		}
		if b == to.Block {
			end = to.Offset
		}
		fn(refs[b], start, end)
	}
}

// ToggleMark flips a formatting mark on every text run inside the selection.
// Links take an href: a non-empty href sets the link, an empty one removes
// it. With a collapsed cursor, link edits apply to the whole link under the
// cursor and other marks do nothing.
func (s *Session) ToggleMark(m document.Mark) error {
	switch m.Type {
	case document.MarkBold, document.MarkItalic, document.MarkUnderline:
		return s.applyMarks(func(marks []document.Mark) []document.Mark {
			for _, cur := range marks {
				if cur.Type == m.Type {
					return document.WithoutMark(marks, m.Type)
				}
			}
			return document.WithMark(marks, document.Mark{Type: m.Type})
		}, "")
	case document.MarkLink:
		if m.Href == "" {
			return s.applyMarks(func(marks []document.Mark) []document.Mark {
				return document.WithoutMark(marks, document.MarkLink)
			}, document.MarkLink)
		}
		return s.applyMarks(func(marks []document.Mark) []document.Mark {
			return document.WithMark(marks, document.Link(m.Href))
		}, document.MarkLink)
	case document.MarkColor:
		return s.SetColor(m.Color)
	default:
		return errors.Wrapf(document.ErrUnsupportedOperation, "mark %q", m.Type)
	}
}

// SetColor colors the selected text, replacing any previous color. An empty
// value removes the color.
func (s *Session) SetColor(value string) error {
	if value == "" {
		return s.applyMarks(func(marks []document.Mark) []document.Mark {
			return document.WithoutMark(marks, document.MarkColor)
		}, "")
	}
	return s.applyMarks(func(marks []document.Mark) []document.Mark {
		return document.WithMark(marks, document.Color(value))
	}, "")
}

// applyMarks rewrites the marks inside the selection. extend names a mark
// whose range a collapsed cursor widens to.
func (s *Session) applyMarks(fn func([]document.Mark) []document.Mark, extend document.MarkType) error {
	return s.mutate(func(doc *document.Document, sel Selection) (Selection, error) {
		if sel.Empty() {
			if extend == "" {
				return sel, nil
			}
			refs := textBlocks(doc)
			r := refs[sel.Head.Block]
			from, to, ok := markRange(r.block.Inlines(), sel.Head.Offset, extend)
			if !ok {
				return sel, nil
			}
			r.block.SetInlines(mapMarks(r.block.Inlines(), from, to, fn))
			return sel, nil
		}
		eachCovered(doc, sel, func(r blockRef, from, to int) {
			if from < to {
				r.block.SetInlines(mapMarks(r.block.Inlines(), from, to, fn))
			}
		})
		return sel, nil
	})
}

// SetBlockType converts the text blocks touched by the selection. Paragraph
// and heading conversions lift blocks out of lists; list conversions wrap
// bare blocks into a list or switch the kind of the enclosing list. Heading
// levels must be within 1..6.
func (s *Session) SetBlockType(kind document.Kind, level int) error {
	switch kind {
	case document.KindParagraph, document.KindBulletList, document.KindOrderedList:
	case document.KindHeading:
		if level < 1 || level > 6 {
			return errors.Wrapf(document.ErrUnsupportedOperation, "heading level %d", level)
		}
	default:
		return errors.Wrapf(document.ErrUnsupportedOperation, "block type %q", kind)
	}

	return s.mutate(func(doc *document.Document, sel Selection) (Selection, error) {
		var (
			lastList  document.Block
			lastOwner *[]document.Block
		)
		for b := sel.From().Block; b <= sel.To().Block; b++ {
			r := textBlocks(doc)[b]
			switch kind {
			case document.KindParagraph, document.KindHeading:
				if r.item != nil {
					liftItem(r)
					r = textBlocks(doc)[b]
				}
				(*r.owner)[r.index] = convertTextBlock(r.block, kind, level)
			default:
				if r.item != nil {
					if r.list.Kind() != kind {
						(*r.listOwner)[r.listIndex] = newList(kind, listItems(r.list))
					}
					continue
				}
				item := &document.ListItem{Content: []document.Block{r.block}}
				if lastList != nil && lastOwner == r.owner && r.index > 0 && (*r.owner)[r.index-1] == lastList {
					appendItem(lastList, item)
					splice(r.owner, r.index)
					continue
				}
				lastList = newList(kind, []*document.ListItem{item})
				lastOwner = r.owner
				(*r.owner)[r.index] = lastList
			}
		}
		return sel, nil
	})
}

func appendItem(list document.Block, item *document.ListItem) {
	switch l := list.(type) {
	case *document.BulletList:
		l.Items = append(l.Items, item)
	case *document.OrderedList:
		l.Items = append(l.Items, item)
	}
}

func convertTextBlock(tb document.TextBlock, kind document.Kind, level int) document.TextBlock {
	if kind == document.KindHeading {
		return &document.Heading{Level: level, Align: tb.Alignment(), Content: tb.Inlines()}
	}
	return &document.Paragraph{Align: tb.Alignment(), Content: tb.Inlines()}
}

// SetTextAlign aligns the text blocks touched by the selection.
func (s *Session) SetTextAlign(align document.Align) error {
	switch align {
	case document.AlignNone, document.AlignLeft, document.AlignCenter, document.AlignRight, document.AlignJustify:
	default:
		return errors.Wrapf(document.ErrUnsupportedOperation, "text align %q", align)
	}
	return s.mutate(func(doc *document.Document, sel Selection) (Selection, error) {
		eachCovered(doc, sel, func(r blockRef, _, _ int) {
			switch v := r.block.(type) {
			case *document.Paragraph:
				v.Align = align
			case *document.Heading:
				v.Align = align
			}
		})
		return sel, nil
	})
}

// InsertImage places an image at the start of the selection. At the edge
// of a text block the image goes before or after it; in the middle the block
// is split around the image. Without a cursor this does nothing.
func (s *Session) InsertImage(src, alt string) error {
	if src == "" {
		return errors.Wrap(document.ErrUnsupportedOperation, "image without src")
	}
	return s.mutate(func(doc *document.Document, sel Selection) (Selection, error) {
		pos := sel.From()
		r := textBlocks(doc)[pos.Block]
		img := &document.Image{Src: src, Alt: alt}

		switch n := r.length(); {
		case pos.Offset == n:
			insertAt(r.owner, r.index+1, img)
			return Cursor(pos), nil
		case pos.Offset == 0:
			insertAt(r.owner, r.index, img)
			return Cursor(pos), nil
		default:
			left, right := splitAt(r.block.Inlines(), pos.Offset)
			splice(r.owner, r.index,
				withInlines(r.block, left),
				img,
				withInlines(r.block, right),
			)
			return Cursor(Position{Block: pos.Block + 1}), nil
		}
	})
}

// InsertText replaces the selection with text. The new text takes the marks
// of the character before it. Selections spanning blocks and text with line
// breaks are rejected; use SplitBlock for new lines.
func (s *Session) InsertText(text string) error {
	if strings.ContainsAny(text, "\r\n") {
		return errors.Wrap(document.ErrUnsupportedOperation, "line break in inserted text")
	}
	return s.mutate(func(doc *document.Document, sel Selection) (Selection, error) {
		from, to := sel.From(), sel.To()
		if from.Block != to.Block {
			return sel, errors.Wrap(document.ErrUnsupportedOperation, "text insertion across blocks")
		}
		r := textBlocks(doc)[from.Block]
		inlines := r.block.Inlines()
		marks := marksAt(inlines, from.Offset)

		left, _ := splitAt(inlines, from.Offset)
		_, right := splitAt(inlines, to.Offset)
		out := append(left, &document.Text{Value: text, Marks: marks})
		out = append(out, right...)
		r.block.SetInlines(document.Normalize(out))

		return Cursor(Position{Block: from.Block, Offset: from.Offset + utf8.RuneCountInString(text)}), nil
	})
}

// SplitBlock breaks the text block at the cursor in two, deleting any
// selected text first. Inside a list the item is split so the new block
// starts a new item.
func (s *Session) SplitBlock() error {
	return s.mutate(func(doc *document.Document, sel Selection) (Selection, error) {
		from, to := sel.From(), sel.To()
		if from.Block != to.Block {
			return sel, errors.Wrap(document.ErrUnsupportedOperation, "split across blocks")
		}
		r := textBlocks(doc)[from.Block]
		left, _ := splitAt(r.block.Inlines(), from.Offset)
		_, right := splitAt(r.block.Inlines(), to.Offset)

		head := withInlines(r.block, document.Normalize(left))
		var tail document.TextBlock = withInlines(r.block, document.Normalize(right))
		if _, isHeading := r.block.(*document.Heading); isHeading && len(right) == 0 {
			tail = &document.Paragraph{Align: r.block.Alignment()}
		}

		if r.item != nil {
			rest := append([]document.Block{tail}, r.item.Content[r.index+1:]...)
			r.item.Content = append(r.item.Content[:r.index:r.index], head)
			items := listItems(r.list)
			newItems := make([]*document.ListItem, 0, len(items)+1)
			newItems = append(newItems, items[:r.itemIndex+1]...)
			newItems = append(newItems, &document.ListItem{Content: rest})
			newItems = append(newItems, items[r.itemIndex+1:]...)
			(*r.listOwner)[r.listIndex] = newList(r.list.Kind(), newItems)
		} else {
			splice(r.owner, r.index, head, tail)
		}
		return Cursor(Position{Block: from.Block + 1}), nil
	})
}
