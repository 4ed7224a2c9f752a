package tiptap

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/agencia-site/postdoc/internal/postdoc/editor"
)

const fullMarkup = `<h2 style="text-align: center">Título</h2>` +
	`<p style="line-height: 2">Texto <strong>forte</strong> e <em>itálico</em> com ` +
	`<a href="https://example.com" target="_blank" rel="noopener noreferrer">link</a> e ` +
	`<span style="font-family: Georgia; font-size: 18px; color: #ff0000">estilo</span> ` +
	`<mark data-color="#ffff00" style="background-color: #ffff00; color: inherit">marcado</mark><br/>linha</p>` +
	`<ul><li><p>um</p></li><li><p>dois</p></li></ul>` +
	`<ol start="3"><li><p>três</p></li></ol>` +
	`<blockquote><p>citação</p></blockquote>` +
	`<pre><code class="language-go">fmt.Println()</code></pre>` +
	`<table><tbody><tr><th><p>A</p></th><th colspan="2"><p>B</p></th></tr><tr><td><p>1</p></td><td><p>2</p></td></tr></tbody></table>` +
	`<hr/>` +
	`<p>Imagem <img src="https://example.com/a.png" alt="a"/></p>` +
	`<a data-type="custom-button" text="Compre" url="https://loja.example" color="#ffffff" bgcolor="#3b82f6" href="https://loja.example">Compre</a>` +
	`<p></p>`

func TestRoundTripHTMLJSON(t *testing.T) {
	doc := editor.ParseHTML(fullMarkup)

	data, err := Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	back, err := ParseJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	if !doc.Equal(back) {
		t.Errorf("documents differ after JSON round-trip\nbefore: %s\nafter:  %s",
			editor.RenderHTML(doc), editor.RenderHTML(back))
	}

	if got, want := editor.RenderHTML(back), editor.RenderHTML(doc); got != want {
		t.Errorf("RenderHTML differs:\n got: %s\nwant: %s", got, want)
	}
}

func TestSerializeDefaults(t *testing.T) {
	doc := editor.ParseHTML(`<p>a</p><a data-type="custom-button">b</a>`)
	data, err := Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var got TipTapDocument
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got.Type != "doc" || len(got.Content) != 2 {
		t.Fatalf("unexpected document: %s", data)
	}
	if lh := got.Content[0].Attrs["lineHeight"]; lh != "1.5" {
		t.Errorf("paragraph lineHeight = %v, want 1.5", lh)
	}
	if align, ok := got.Content[0].Attrs["textAlign"]; !ok || align != nil {
		t.Errorf("paragraph textAlign = %v, want null", align)
	}
	btn := got.Content[1]
	if btn.Type != "customButton" {
		t.Fatalf("Content[1].Type = %q, want customButton", btn.Type)
	}
	if btn.Attrs["text"] != "b" || btn.Attrs["url"] != "#" || btn.Attrs["bgColor"] != "#3b82f6" {
		t.Errorf("unexpected button attrs: %v", btn.Attrs)
	}
}
