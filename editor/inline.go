package editor

import (
	"site_cms/document"
)

// splitAt cuts inline content at a rune offset. Both halves are copies.
func splitAt(inlines []document.Inline, at int) (left, right []document.Inline) {
	pos := 0
	for _, in := range inlines {
		t, ok := in.(*document.Text)
		if !ok {
			continue
		}
		r := []rune(t.Value)
		switch {
		case pos+len(r) <= at:
			left = append(left, copyText(t, t.Value))
		case pos >= at:
			right = append(right, copyText(t, t.Value))
		default:
			k := at - pos
			left = append(left, copyText(t, string(r[:k])))
			right = append(right, copyText(t, string(r[k:])))
		}
		pos += len(r)
	}
	return left, right
}

func copyText(t *document.Text, value string) *document.Text {
	var marks []document.Mark
	if len(t.Marks) > 0 {
		marks = append(marks, t.Marks...)
	}
	return &document.Text{Value: value, Marks: marks}
}

// mapMarks applies fn to the marks of every run inside [from, to). Pieces of
// a run cut at from or to are joined again when their marks agree, as are
// neighbours whose marks differed before and agree now. Run boundaries
// between runs that already carried the same marks are kept.
func mapMarks(inlines []document.Inline, from, to int, fn func([]document.Mark) []document.Mark) []document.Inline {
	type piece struct {
		text   *document.Text
		before []document.Mark
		source int
	}
	var pieces []piece
	add := func(t *document.Text, src int, value string, inside bool) {
		if value == "" {
			return
		}
		c := copyText(t, value)
		if inside {
			c.Marks = fn(c.Marks)
		}
		pieces = append(pieces, piece{text: c, before: t.Marks, source: src})
	}

	pos := 0
	for i, in := range inlines {
		t, ok := in.(*document.Text)
		if !ok {
			continue
		}
		r := []rune(t.Value)
		end := pos + len(r)
		lo := clamp(from-pos, 0, len(r))
		hi := clamp(to-pos, 0, len(r))
		add(t, i, string(r[:lo]), false)
		add(t, i, string(r[lo:hi]), true)
		add(t, i, string(r[hi:]), false)
		pos = end
	}

	out := make([]document.Inline, 0, len(pieces))
	var prev *piece
	for i := range pieces {
		p := &pieces[i]
		if prev != nil && document.SameMarks(prev.text.Marks, p.text.Marks) &&
			(prev.source == p.source || !document.SameMarks(prev.before, p.before)) {
			prev.text.Value += p.text.Value
			continue
		}
		out = append(out, p.text)
		prev = p
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// marksAt returns the marks a character typed at offset should carry: those
// of the preceding character, or of the first character at the block start.
func marksAt(inlines []document.Inline, offset int) []document.Mark {
	pos := 0
	var first []document.Mark
	for i, in := range inlines {
		t, ok := in.(*document.Text)
		if !ok {
			continue
		}
		n := len([]rune(t.Value))
		if i == 0 {
			first = t.Marks
		}
		if offset > pos && offset <= pos+n {
			return append([]document.Mark(nil), t.Marks...)
		}
		pos += n
	}
	if offset == 0 && first != nil {
		return append([]document.Mark(nil), first...)
	}
	return nil
}

// markRange widens a collapsed position to the run of adjacent characters
// carrying the same mark, the way link edits act on the whole link.
func markRange(inlines []document.Inline, offset int, mt document.MarkType) (int, int, bool) {
	type span struct {
		start, end int
		mark       document.Mark
		has        bool
	}
	var spans []span
	pos := 0
	for _, in := range inlines {
		t, ok := in.(*document.Text)
		if !ok {
			continue
		}
		n := len([]rune(t.Value))
		m, has := t.Mark(mt)
		spans = append(spans, span{start: pos, end: pos + n, mark: m, has: has})
		pos += n
	}

	hit := -1
	for i, s := range spans {
		if s.has && offset >= s.start && offset <= s.end {
			hit = i
			if offset < s.end {
				break
			}
		}
	}
	if hit < 0 {
		return 0, 0, false
	}
	lo, hi := hit, hit
	for lo > 0 && spans[lo-1].has && spans[lo-1].mark == spans[hit].mark {
		lo--
	}
	for hi < len(spans)-1 && spans[hi+1].has && spans[hi+1].mark == spans[hit].mark {
		hi++
	}
	return spans[lo].start, spans[hi].end, true
}
