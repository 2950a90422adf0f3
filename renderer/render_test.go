package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site_cms/document"
)

func TestRenderScenario(t *testing.T) {
	doc := document.Doc(
		document.H(2, document.T("Hello")),
		document.P(document.T("World", document.Bold())),
	)

	assert.Equal(t, "<h2>Hello</h2><p><strong>World</strong></p>", Render(doc))
}

func TestRenderBlocks(t *testing.T) {
	cases := map[string]struct {
		node document.Node
		want string
	}{
		"empty paragraph": {document.P(), "<p></p>"},
		"aligned heading": {
			&document.Heading{Level: 3, Align: document.AlignCenter, Content: []document.Inline{document.T("t")}},
			`<h3 style="text-align: center">t</h3>`,
		},
		"bullet list": {
			document.Bullets(document.Item(document.P(document.T("a"))), document.Item(document.P(document.T("b")))),
			"<ul><li><p>a</p></li><li><p>b</p></li></ul>",
		},
		"ordered list": {
			document.Ordered(document.Item(document.P(document.T("a")))),
			"<ol><li><p>a</p></li></ol>",
		},
		"image": {document.Img("https://x/y.png", "cat"), `<img src="https://x/y.png" alt="cat" />`},
		"image without alt": {document.Img("y.png", ""), `<img src="y.png" alt="" />`},
		"link without href": {document.T("x", document.Link("")), `<a href="#">x</a>`},
		"color": {document.T("x", document.Color("#f00")), `<span style="color: #f00">x</span>`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Render(tc.node))
		})
	}
}

func TestRenderEscapes(t *testing.T) {
	doc := document.Doc(
		document.P(document.T(`<script>alert("x")</script>`, document.Link(`"><script>`))),
		document.Img(`a" onerror="x`, "<b>"),
	)

	out := Render(doc)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, `src="a&#34; onerror=&#34;x"`)
	assert.Contains(t, out, `alt="&lt;b&gt;"`)
}

func TestRenderMarkOrderIndependent(t *testing.T) {
	all := []document.Mark{
		document.Bold(), document.Italic(), document.Underline(),
		document.Link("https://a"), document.Color("red"),
	}
	reversed := make([]document.Mark, len(all))
	for i, m := range all {
		reversed[len(all)-1-i] = m
	}

	a := Render(document.T("v", all...))
	b := Render(document.T("v", reversed...))
	assert.Equal(t, a, b)
	assert.Equal(t, `<a href="https://a"><span style="color: red"><u><em><strong>v</strong></em></u></span></a>`, a)

	for _, tag := range []string{"<strong>", "<em>", "<u>", "<span", "<a "} {
		assert.Equal(t, 1, strings.Count(a, tag), tag)
	}
}

func TestRenderDeterministic(t *testing.T) {
	doc := document.Doc(
		document.H(1, document.T("a", document.Italic(), document.Bold())),
		document.Bullets(document.Item(document.P(document.T("b")), document.Ordered(document.Item(document.P(document.T("c")))))),
	)
	assert.Equal(t, Render(doc), Render(doc))
}

func TestRenderDegradesUnknownNodes(t *testing.T) {
	doc, err := document.UnmarshalLenient([]byte(`{"type":"doc","content":[
		{"type":"blockquote","content":[{"type":"paragraph","content":[{"type":"text","text":"q"}]}]},
		{"type":"horizontalRule"},
		{"type":"heading","attrs":{"level":9},"content":[{"type":"text","text":"h"}]}
	]}`))
	require.NoError(t, err)

	assert.Equal(t, "<p>q</p><h6>h</h6>", Render(doc))
}

func TestRenderNil(t *testing.T) {
	assert.Equal(t, "", Render(nil))
}

func TestSanitize(t *testing.T) {
	out := Sanitize(`<p style="text-align: center">a<script>x()</script><span style="color: #ff0000" onclick="y()">b</span></p>`)
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, "text-align")
	assert.Contains(t, out, "color")

	assert.Equal(t, "ab", StripTags("<p>a<strong>b</strong></p>"))
	assert.Equal(t, "fish & chips", StripTags("<em>fish</em> &amp; chips"))
}
