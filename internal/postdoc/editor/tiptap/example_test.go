package tiptap_test

import (
	"fmt"
	"strings"

	"github.com/agencia-site/postdoc/internal/postdoc/editor"
	"github.com/agencia-site/postdoc/internal/postdoc/editor/tiptap"
)

// ExampleParseJSON демонстрирует базовое использование парсера TipTap JSON.
func ExampleParseJSON() {
	// JSON контент от TipTap редактора
	jsonContent := `{
		"type": "doc",
		"content": [
			{
				"type": "paragraph",
				"attrs": {"textAlign": null, "lineHeight": "1.5"},
				"content": [
					{"type": "text", "marks": [{"type": "bold"}], "text": "Olá"},
					{"type": "text", "text": " "},
					{"type": "text", "marks": [{"type": "italic"}], "text": "mundo"}
				]
			}
		]
	}`

	// Парсинг JSON
	doc, err := tiptap.ParseJSON(strings.NewReader(jsonContent))
	if err != nil {
		fmt.Printf("Ошибка парсинга: %v\n", err)
		return
	}

	fmt.Println(editor.RenderHTML(doc))

	// Output:
	// <p><strong>Olá</strong> <em>mundo</em></p>
}
