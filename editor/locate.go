package editor

import (
	"unicode/utf8"

	"site_cms/document"
)

// blockRef locates one text block in the tree: the slice holding it and,
// when it sits in a list, the enclosing item and list.
type blockRef struct {
	block document.TextBlock
	owner *[]document.Block
	index int

	item      *document.ListItem
	itemIndex int
	list      document.Block
	listOwner *[]document.Block
	listIndex int
}

func (r blockRef) length() int {
	return utf8.RuneCountInString(document.InlineText(r.block.Inlines()))
}

type listCtx struct {
	item      *document.ListItem
	itemIndex int
	list      document.Block
	listOwner *[]document.Block
	listIndex int
}

// textBlocks returns every paragraph and heading in document order.
func textBlocks(doc *document.Document) []blockRef {
	var refs []blockRef
	collect(&doc.Content, nil, &refs)
	return refs
}

func collect(owner *[]document.Block, ctx *listCtx, refs *[]blockRef) {
	for i, b := range *owner {
		switch v := b.(type) {
		case document.TextBlock:
			ref := blockRef{block: v, owner: owner, index: i}
			if ctx != nil {
				ref.item = ctx.item
				ref.itemIndex = ctx.itemIndex
				ref.list = ctx.list
				ref.listOwner = ctx.listOwner
				ref.listIndex = ctx.listIndex
			}
			*refs = append(*refs, ref)
		case *document.BulletList:
			collectItems(v, v.Items, owner, i, refs)
		case *document.OrderedList:
			collectItems(v, v.Items, owner, i, refs)
		}
	}
}

func collectItems(list document.Block, items []*document.ListItem, owner *[]document.Block, index int, refs *[]blockRef) {
	for j, it := range items {
		collect(&it.Content, &listCtx{
			item:      it,
			itemIndex: j,
			list:      list,
			listOwner: owner,
			listIndex: index,
		}, refs)
	}
}

func listItems(list document.Block) []*document.ListItem {
	switch l := list.(type) {
	case *document.BulletList:
		return l.Items
	case *document.OrderedList:
		return l.Items
	}
	return nil
}

func newList(kind document.Kind, items []*document.ListItem) document.Block {
	if kind == document.KindOrderedList {
		return &document.OrderedList{Items: items}
	}
	return &document.BulletList{Items: items}
}

// splice replaces (*owner)[index] with repl.
func splice(owner *[]document.Block, index int, repl ...document.Block) {
	out := make([]document.Block, 0, len(*owner)-1+len(repl))
	out = append(out, (*owner)[:index]...)
	out = append(out, repl...)
	out = append(out, (*owner)[index+1:]...)
	*owner = out
}

// insertAt inserts blocks before position index.
func insertAt(owner *[]document.Block, index int, blocks ...document.Block) {
	out := make([]document.Block, 0, len(*owner)+len(blocks))
	out = append(out, (*owner)[:index]...)
	out = append(out, blocks...)
	out = append(out, (*owner)[index:]...)
	*owner = out
}

// liftItem moves the list item holding r out of its list. The item's blocks
// take the list's place, between whatever items preceded and followed it.
func liftItem(r blockRef) {
	items := listItems(r.list)
	kind := r.list.Kind()

	var repl []document.Block
	if before := items[:r.itemIndex]; len(before) > 0 {
		repl = append(repl, newList(kind, append([]*document.ListItem(nil), before...)))
	}
	repl = append(repl, r.item.Content...)
	if after := items[r.itemIndex+1:]; len(after) > 0 {
		repl = append(repl, newList(kind, append([]*document.ListItem(nil), after...)))
	}
	splice(r.listOwner, r.listIndex, repl...)
}

func withInlines(tb document.TextBlock, inlines []document.Inline) document.TextBlock {
	switch v := tb.(type) {
	case *document.Heading:
		return &document.Heading{Level: v.Level, Align: v.Align, Content: inlines}
	default:
		return &document.Paragraph{Align: tb.Alignment(), Content: inlines}
	}
}
