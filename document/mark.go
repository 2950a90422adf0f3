package document

// MarkType names an inline text mark. Values match the persisted mark types;
// color is stored on a "textStyle" mark as the editor does.
type MarkType string

const (
	MarkBold      MarkType = "bold"
	MarkItalic    MarkType = "italic"
	MarkUnderline MarkType = "underline"
	MarkLink      MarkType = "link"
	MarkColor     MarkType = "textStyle"
)

// markRank is the canonical nesting order, innermost first.
var markRank = map[MarkType]int{
	MarkBold:      0,
	MarkItalic:    1,
	MarkUnderline: 2,
	MarkColor:     3,
	MarkLink:      4,
}

// Known reports whether t is a supported mark type.
func (t MarkType) Known() bool {
	_, ok := markRank[t]
	return ok
}

// Rank orders mark types for rendering; lower ranks wrap text first.
func (t MarkType) Rank() int {
	if r, ok := markRank[t]; ok {
		return r
	}
	return len(markRank)
}

// Mark is one formatting mark on a Text node. Href is used by links, Color by
// color marks.
type Mark struct {
	Type  MarkType
	Href  string
	Color string
}

func Bold() Mark              { return Mark{Type: MarkBold} }
func Italic() Mark            { return Mark{Type: MarkItalic} }
func Underline() Mark         { return Mark{Type: MarkUnderline} }
func Link(href string) Mark   { return Mark{Type: MarkLink, Href: href} }
func Color(value string) Mark { return Mark{Type: MarkColor, Color: value} }

// HasMark reports whether the text carries a mark of type mt.
func (t *Text) HasMark(mt MarkType) bool {
	_, ok := t.Mark(mt)
	return ok
}

// Mark returns the mark of type mt, if present.
func (t *Text) Mark(mt MarkType) (Mark, bool) {
	for _, m := range t.Marks {
		if m.Type == mt {
			return m, true
		}
	}
	return Mark{}, false
}

// WithMark returns a copy of marks with m set, replacing any mark of the same
// type in place.
func WithMark(marks []Mark, m Mark) []Mark {
	out := make([]Mark, 0, len(marks)+1)
	replaced := false
	for _, cur := range marks {
		if cur.Type == m.Type {
			out = append(out, m)
			replaced = true
			continue
		}
		out = append(out, cur)
	}
	if !replaced {
		out = append(out, m)
	}
	return out
}

// WithoutMark returns a copy of marks with any mark of type mt removed.
func WithoutMark(marks []Mark, mt MarkType) []Mark {
	out := make([]Mark, 0, len(marks))
	for _, cur := range marks {
		if cur.Type != mt {
			out = append(out, cur)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SameMarks compares two mark sets ignoring order.
func SameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for _, m := range a {
		found := false
		for _, o := range b {
			if m == o {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
