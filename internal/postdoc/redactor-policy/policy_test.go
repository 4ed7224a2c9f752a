package policy

import (
	"testing"

	"github.com/agencia-site/postdoc/internal/postdoc/editor"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeKeepsEditorMarkup(t *testing.T) {
	inputs := map[string]string{
		"text styles":    `<p style="line-height: 2; text-align: center"><strong>a</strong> <em>b</em> <s>c</s> <code>d</code></p>`,
		"span style":     `<p><span style="font-family: Georgia, serif; font-size: 18px; color: #ff0000">x</span></p>`,
		"highlight":      `<p><mark data-color="#ffff00" style="background-color: #ffff00; color: inherit">m</mark></p>`,
		"link":           `<p><a href="https://example.com" target="_blank" rel="noopener noreferrer">l</a></p>`,
		"heading":        `<h3 style="text-align: right">T</h3>`,
		"lists":          `<ol start="3"><li><p>a</p></li></ol><ul><li><p>b</p></li></ul>`,
		"code block":     `<pre><code class="language-go">x := 1</code></pre>`,
		"table":          `<table><tbody><tr><th colspan="2"><p>h</p></th></tr><tr><td><p>a</p></td><td rowspan="2"><p>b</p></td></tr></tbody></table>`,
		"images":         `<p><img src="https://x.com/a.png" alt="a" title="t"/><img src="data:image/png;base64,AAAA" alt="b"/></p>`,
		"rule and quote": `<hr/><blockquote><p>q</p></blockquote>`,
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			doc := editor.ParseHTML(in)
			canonical := editor.RenderHTML(doc)
			assert.True(t, doc.Equal(editor.ParseHTML(SanitizeContent(canonical))), SanitizeContent(canonical))
		})
	}
}

func TestSanitizeKeepsButton(t *testing.T) {
	e := editor.New("", nil)
	assert.NoError(t, e.InsertButton(editor.Cursor(0, 0), "Compre", "https://loja.example", "#ffffff", "#000000"))

	out := SanitizeContent(e.HTML())
	assert.Contains(t, out, `data-type="custom-button"`)
	assert.Contains(t, out, `url="https://loja.example"`)
	assert.Contains(t, out, `bgcolor="#000000"`)
	assert.True(t, e.Document().Equal(editor.ParseHTML(out)))
}

func TestSanitizeRemovesDangerous(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		forbids string
	}{
		{"script", `<p>a</p><script>alert(1)</script>`, "script"},
		{"event handler", `<p onclick="alert(1)">a</p>`, "onclick"},
		{"javascript link", `<a href="javascript:alert(1)">x</a>`, "javascript"},
		{"button url", `<a data-type="custom-button" url="javascript:alert(1)">x</a>`, "javascript"},
		{"iframe", `<iframe src="https://evil.example"></iframe>`, "iframe"},
		{"style expression", `<span style="color: expression(alert(1))">x</span>`, "expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotContains(t, SanitizeContent(tt.in), tt.forbids)
		})
	}
}

func TestSanitizeEmpty(t *testing.T) {
	assert.Equal(t, "", SanitizeContent(""))
	assert.Equal(t, "", SanitizeContent("  \n"))
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`<p>Olá <strong>mundo</strong></p><p>segundo</p>`, "Olá mundo segundo"},
		{`<p>a &amp; b</p>`, "a & b"},
		{`<a data-type="custom-button" text="Compre">Compre</a><p>fim</p>`, "Compre fim"},
		{`<ul><li><p>um</p></li><li><p>dois</p></li></ul>`, "um dois"},
		{``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}
