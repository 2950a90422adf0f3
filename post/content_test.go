package post

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site_cms/document"
)

func TestSaveThenLoadTree(t *testing.T) {
	doc := document.Doc(
		document.H(2, document.T("Hello")),
		document.P(document.T("World", document.Bold())),
	)

	content, err := SaveTree(doc)
	require.NoError(t, err)

	got, err := LoadTree(Record{Content: content})
	require.NoError(t, err)
	assert.True(t, document.Equal(doc, got))
}

func TestSaveTreeRejectsInvalid(t *testing.T) {
	_, err := SaveTree(document.Doc(document.H(0, document.T("x"))))
	assert.True(t, errors.Is(err, document.ErrMalformedTree))

	_, err = SaveTree(nil)
	assert.True(t, errors.Is(err, document.ErrMalformedTree))
}

func TestLoadTreeMalformed(t *testing.T) {
	cases := map[string]string{
		"absent":        ``,
		"null":          `null`,
		"invalid json":  `{"type":`,
		"legacy string": `"<p>hello</p>"`,
		"empty object":  `{}`,
		"wrong root":    `{"type":"paragraph"}`,
		"bad child":     `{"type":"doc","content":[{"type":"text","text":"x"}]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadTree(Record{Content: json.RawMessage(content)})
			assert.True(t, errors.Is(err, document.ErrMalformedTree), "got %v", err)
		})
	}
}

func TestDisplayHTML(t *testing.T) {
	t.Run("strict", func(t *testing.T) {
		html, degraded, err := DisplayHTML(Record{Content: json.RawMessage(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"a & b"}]}]}`)})
		require.NoError(t, err)
		assert.False(t, degraded)
		assert.Equal(t, "<p>a &amp; b</p>", html)
	})

	t.Run("legacy string", func(t *testing.T) {
		html, degraded, err := DisplayHTML(Record{Content: json.RawMessage(`"<p>old</p>"`)})
		require.NoError(t, err)
		assert.True(t, degraded)
		assert.Equal(t, "<p>old</p>", html)
	})

	t.Run("unknown node", func(t *testing.T) {
		html, degraded, err := DisplayHTML(Record{Content: json.RawMessage(`{"type":"doc","content":[{"type":"blockquote","content":[{"type":"paragraph","content":[{"type":"text","text":"q"}]}]}]}`)})
		require.NoError(t, err)
		assert.True(t, degraded)
		assert.Equal(t, "<p>q</p>", html)
	})

	t.Run("absent", func(t *testing.T) {
		html, degraded, err := DisplayHTML(Record{})
		require.NoError(t, err)
		assert.True(t, degraded)
		assert.Empty(t, html)
	})
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":             "hello-world",
		"  Ten Tips: for 2024!  ": "ten-tips-for-2024",
		"Multiple   spaces\there": "multiple-spaces-here",
		"Café & Crème":            "caf-crme",
		"":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestDefaultExcerpt(t *testing.T) {
	doc := document.Doc(document.H(1, document.T("Title")), document.P(document.T("First   paragraph.")))
	assert.Equal(t, "Title First paragraph.", DefaultExcerpt(doc, 160))
	assert.Equal(t, "Title", DefaultExcerpt(doc, 5))
}
