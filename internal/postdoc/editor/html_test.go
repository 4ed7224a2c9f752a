package editor

import (
	"testing"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRenderCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold alias", `<p>Olá <b>mundo</b></p>`, `<p>Olá <strong>mundo</strong></p>`},
		{"heading", `<h2>Título</h2>`, `<h2>Título</h2>`},
		{"line height and align", `<p style="line-height: 2; text-align: center">x</p>`, `<p style="line-height: 2; text-align: center">x</p>`},
		{"line height out of range", `<p style="line-height: 9">x</p>`, `<p>x</p>`},
		{"loose text", `texto solto<p>a</p>`, `<p>texto solto</p><p>a</p>`},
		{"transparent container", `<div><section><p>a</p></section></div>`, `<p>a</p>`},
		{"whitespace between blocks", "<p>a</p>\n  <p>b</p>", `<p>a</p><p>b</p>`},
		{"line break collapsed", "<p>linha\n  quebrada</p>", `<p>linha quebrada</p>`},
		{"script dropped", `<script>alert(1)</script><p>ok</p>`, `<p>ok</p>`},
		{"list items wrapped", `<ul><li>um</li><li><p>dois</p></li></ul>`, `<ul><li><p>um</p></li><li><p>dois</p></li></ul>`},
		{"default start omitted", `<ol start="1"><li><p>a</p></li></ol>`, `<ol><li><p>a</p></li></ol>`},
		{"ordered start", `<ol start="4"><li><p>a</p></li></ol>`, `<ol start="4"><li><p>a</p></li></ol>`},
		{"code block", "<pre><code class=\"language-go\">x := 1\ny := 2</code></pre>", "<pre><code class=\"language-go\">x := 1\ny := 2</code></pre>"},
		{"table body inserted", `<table><tr><td>a</td></tr></table>`, `<table><tbody><tr><td><p>a</p></td></tr></tbody></table>`},
		{"table header and span", `<table><thead><tr><th colspan="2">h</th></tr></thead></table>`, `<table><tbody><tr><th colspan="2"><p>h</p></th></tr></tbody></table>`},
		{"unsafe image dropped", `<img src="javascript:alert(1)">`, `<p></p>`},
		{"inline image", `<p><img src="https://x.com/a.png" alt="a"></p>`, `<p><img src="https://x.com/a.png" alt="a"/></p>`},
		{"unsafe link dropped", `<a href="javascript:alert(1)">x</a>`, `<p>x</p>`},
		{"span text style", `<p><span style="color: red; font-size: 12px">c</span></p>`, `<p><span style="font-size: 12px; color: red">c</span></p>`},
		{"span bold weight", `<p><span style="font-weight: bold">b</span></p>`, `<p><strong>b</strong></p>`},
		{"highlight", `<mark>m</mark>`, `<p><mark>m</mark></p>`},
		{"empty", ``, `<p></p>`},
		{"blockquote text", `<blockquote>q</blockquote>`, `<blockquote><p>q</p></blockquote>`},
		{"mark nesting reused", `<p><strong>a</strong><strong><em>b</em></strong></p>`, `<p><strong>a<em>b</em></strong></p>`},
		{"code excludes bold", `<p><strong><code>x</code></strong></p>`, `<p><code>x</code></p>`},
		{"hard break", `<p>a<br>b</p>`, `<p>a<br/>b</p>`},
		{"rule", `<hr>`, `<hr/>`},
		{"escaping", `<p>a &amp; b &lt;c&gt;</p>`, `<p>a &amp; b &lt;c&gt;</p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderHTML(ParseHTML(tt.in)))
		})
	}
}

func TestParseButton(t *testing.T) {
	doc := ParseHTML(`<p>antes<a data-type="custom-button" text="Ir" url="/loja" color="#000" bgcolor="#ff0">Ir</a>depois</p>`)
	children := doc.Children(doc.Root())
	require.Len(t, children, 3)

	assert.Equal(t, "antes", doc.TextContent(children[0]))
	assert.Equal(t, "depois", doc.TextContent(children[2]))

	btn := doc.Node(children[1])
	require.Equal(t, edtypes.KindButton, btn.Kind)
	assert.Empty(t, btn.Children)
	assert.Equal(t, "Ir", btn.Attr("text"))
	assert.Equal(t, "/loja", btn.Attr("url"))
	assert.Equal(t, "#000", btn.Attr("color"))
	assert.Equal(t, "#ff0", btn.Attr("bgColor"))
}

func TestParseButtonFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		attrs map[string]string
	}{
		{
			name: "defaults",
			in:   `<a data-type="custom-button"></a>`,
			attrs: map[string]string{
				"text": edtypes.ButtonDefaultText, "url": edtypes.ButtonDefaultURL,
				"color": edtypes.ButtonDefaultColor, "bgColor": edtypes.ButtonDefaultBgColor,
			},
		},
		{
			name:  "inner text and href",
			in:    `<a data-type="custom-button" href="https://x.com">Saiba mais</a>`,
			attrs: map[string]string{"text": "Saiba mais", "url": "https://x.com"},
		},
		{
			name:  "colors from style",
			in:    `<a data-type="custom-button" style="background-color: #000000; color: #ffff00">b</a>`,
			attrs: map[string]string{"color": "#ffff00", "bgColor": "#000000"},
		},
		{
			name:  "unsafe url falls back",
			in:    `<a data-type="custom-button" url="javascript:alert(1)">b</a>`,
			attrs: map[string]string{"url": edtypes.ButtonDefaultURL},
		},
		{
			name:  "invalid color falls back",
			in:    `<a data-type="custom-button" color="nope">b</a>`,
			attrs: map[string]string{"color": edtypes.ButtonDefaultColor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ParseHTML(tt.in)
			btn := doc.Node(doc.Children(doc.Root())[0])
			require.Equal(t, edtypes.KindButton, btn.Kind)
			for k, v := range tt.attrs {
				assert.Equal(t, v, btn.Attr(k), k)
			}
		})
	}
}

func TestRenderButton(t *testing.T) {
	doc := ParseHTML(`<a data-type="custom-button" text="Compre" url="https://x.com">Compre</a>`)
	out := RenderHTML(doc)

	assert.Contains(t, out, `data-type="custom-button"`)
	assert.Contains(t, out, `class="custom-button"`)
	assert.Contains(t, out, `href="https://x.com"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, `rel="noopener noreferrer"`)
	assert.Contains(t, out, `background-color: #3b82f6; color: #ffffff;`)
	assert.Contains(t, out, `>Compre</a>`)
}

func TestMalformedMarkup(t *testing.T) {
	inputs := []string{
		`<p>a</p><blink>texto</blink>`,
		`<foo-bar><baz>texto</baz></foo-bar>`,
		`<p><div>texto</p></div>`,
		`<table><td>texto`,
		`<<<>>>texto`,
		`<ul><p>texto</p></ul>`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			doc := ParseHTML(in)
			require.NotEmpty(t, doc.Children(doc.Root()))
			assert.Contains(t, doc.TextContent(doc.Root()), "texto")
			assertValidTree(t, doc)
			assert.True(t, doc.Equal(ParseHTML(RenderHTML(doc))))
		})
	}
}

func TestIsAllowedURI(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/a?b=c", true},
		{"mailto:a@b.com", true},
		{"tel:+5511999999999", true},
		{"/blog/post", true},
		{"#anchor", true},
		{"post/relativo", true},
		{"javascript:alert(1)", false},
		{" JavaScript:alert(1)", false},
		{"vbscript:msgbox", false},
		{"data:text/html;base64,xxx", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowedURI(tt.uri))
		})
	}
}

// assertValidTree проверяет правила вложенности схемы для всего документа.
func assertValidTree(t *testing.T, doc *edtypes.Document) {
	t.Helper()
	doc.Walk(doc.Root(), func(id edtypes.NodeID, path []int) bool {
		n := doc.Node(id)
		if n.Kind.IsAtom() {
			assert.Empty(t, n.Children, "atom %v at %v has children", n.Kind, path)
		}
		for _, c := range n.Children {
			assert.True(t, n.Kind.Accepts(doc.Node(c).Kind), "%v at %v contains %v", n.Kind, path, doc.Node(c).Kind)
		}
		if n.Kind.Spec().Content >= edtypes.ContentBlocks {
			assert.NotEmpty(t, n.Children, "%v at %v is empty", n.Kind, path)
		}
		return true
	})
}
