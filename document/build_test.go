package document

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode(t *testing.T) {
	t.Run("paragraph with text", func(t *testing.T) {
		n, err := NewNode(KindParagraph, Fields{Children: []Node{T("hi", Bold())}})
		require.NoError(t, err)
		p, ok := n.(*Paragraph)
		require.True(t, ok)
		assert.Len(t, p.Content, 1)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := NewNode(Kind("blockquote"), Fields{})
		assert.True(t, errors.Is(err, ErrInvalidNodeKind))
	})

	t.Run("list item inside paragraph", func(t *testing.T) {
		_, err := NewNode(KindParagraph, Fields{Children: []Node{Item(P())}})
		assert.True(t, errors.Is(err, ErrInvalidChildType))
	})

	t.Run("paragraph inside list", func(t *testing.T) {
		_, err := NewNode(KindBulletList, Fields{Children: []Node{P(T("x"))}})
		assert.True(t, errors.Is(err, ErrInvalidChildType))
	})

	t.Run("text directly in document", func(t *testing.T) {
		_, err := NewNode(KindDocument, Fields{Children: []Node{T("x")}})
		assert.True(t, errors.Is(err, ErrInvalidChildType))
	})

	t.Run("heading level bounds", func(t *testing.T) {
		for _, lvl := range []int{0, 7, -1} {
			_, err := NewNode(KindHeading, Fields{Level: lvl})
			assert.True(t, errors.Is(err, ErrInvalidAttribute), "level %d", lvl)
		}
		n, err := NewNode(KindHeading, Fields{Level: 6})
		require.NoError(t, err)
		assert.Equal(t, 6, n.(*Heading).Level)
	})

	t.Run("duplicate mark kind", func(t *testing.T) {
		_, err := NewNode(KindText, Fields{Value: "x", Marks: []Mark{Color("red"), Color("blue")}})
		assert.True(t, errors.Is(err, ErrInvalidAttribute))
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := NewNode(KindText, Fields{})
		assert.True(t, errors.Is(err, ErrInvalidAttribute))
	})

	t.Run("image requires src", func(t *testing.T) {
		_, err := NewNode(KindImage, Fields{Alt: "cat"})
		assert.True(t, errors.Is(err, ErrInvalidAttribute))
	})
}

func TestValidateDepthGuard(t *testing.T) {
	var item *ListItem = Item(P(T("leaf")))
	for i := 0; i < MaxDepth; i++ {
		item = Item(Bullets(item))
	}
	doc := Doc(Bullets(item))

	err := Validate(doc)
	assert.True(t, errors.Is(err, ErrTreeTooDeep))

	err = Visit(doc, func(Node) {})
	assert.True(t, errors.Is(err, ErrTreeTooDeep))
}

func TestVisitPreOrder(t *testing.T) {
	doc := Doc(
		H(2, T("Hello")),
		Bullets(Item(P(T("a")))),
	)

	var kinds []Kind
	err := Visit(doc, func(n Node) { kinds = append(kinds, n.Kind()) })
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		KindDocument, KindHeading, KindText,
		KindBulletList, KindListItem, KindParagraph, KindText,
	}, kinds)
}

func TestEqualIgnoresMarkOrder(t *testing.T) {
	a := Doc(P(T("x", Bold(), Italic())))
	b := Doc(P(T("x", Italic(), Bold())))
	c := Doc(P(T("x", Bold())))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}

func TestCloneIsDeep(t *testing.T) {
	orig := Doc(P(T("x", Bold())), Ordered(Item(P(T("y")))))
	cp := Clone(orig)
	require.True(t, Equal(orig, cp))

	cp.Content[0].(*Paragraph).Content[0].(*Text).Value = "changed"
	cp.Content[1].(*OrderedList).Items[0].Content = nil

	assert.Equal(t, "x", orig.Content[0].(*Paragraph).Content[0].(*Text).Value)
	assert.Len(t, orig.Content[1].(*OrderedList).Items[0].Content, 1)
}

func TestNormalize(t *testing.T) {
	got := Normalize([]Inline{T("a", Bold()), T("b", Bold()), T(""), T("c"), T("d")})
	assert.Equal(t, []Inline{T("ab", Bold()), T("cd")}, got)
}

func TestPlainText(t *testing.T) {
	doc := Doc(H(1, T("Title")), P(T("one "), T("two", Bold())), Img("x.png", ""), Bullets(Item(P(T("item")))))
	assert.Equal(t, "Title\none two\nitem", PlainText(doc))
}
