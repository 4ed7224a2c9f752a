// Политики очистки HTML постов. Контент очищается перед сохранением и перед публичным
// показом, чтобы в разметку не попали скрипты и небезопасные ссылки.
//
// Основные возможности:
//   - PostPolicy: UGC политика bluemonday, расширенная атрибутами и стилями редактора (кнопки, подсветка, таблицы, блоки кода).
//   - Ограничение допустимых значений атрибутов и стилей регулярными выражениями.
//   - StripTagsPolicy для получения простого текста (описания, превью).
package policy

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var PostPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

var textBlocks = []string{"p", "h1", "h2", "h3", "h4", "h5", "h6"}

func init() {
	colorRegexp := regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgba?\(\s*\d+\s*,\s*\d+\s*,\s*\d+\s*(,\s*[\d.]+\s*)?\)|[a-zA-Z]+)$`)
	sizeRegexp := regexp.MustCompile(`^(\d+(\.\d+)?(px|em|rem|pt|%)?(\s+\d+(\.\d+)?(px|em|rem|pt|%)?){0,3}|auto|inherit)$`)
	fontRegexp := regexp.MustCompile(`^[\w\s"',-]+$`)
	lineHeightRegexp := regexp.MustCompile(`^\d+(\.\d+)?$`)
	alignRegexp := regexp.MustCompile(`^(left|center|right|justify)$`)
	numberRegexp := regexp.MustCompile(`^\d+$`)
	languageRegexp := regexp.MustCompile(`^language-[\w+#.-]+$`)
	buttonURLRegexp := regexp.MustCompile(`(?i)^((https?|ftps?|mailto|tel|callto|sms|cid|xmpp):|[^:]*$)`)

	PostPolicy.RequireNoFollowOnLinks(false)
	PostPolicy.AllowURLSchemes("ftp", "ftps", "tel", "callto", "sms", "cid", "xmpp")
	PostPolicy.AllowDataURIImages()
	PostPolicy.AllowElements("span", "mark", "s")

	PostPolicy.AllowAttrs("target").Matching(regexp.MustCompile(`^_(blank|self)$`)).OnElements("a")
	PostPolicy.AllowAttrs("rel").Matching(regexp.MustCompile(`^[a-z ]+$`)).OnElements("a")

	// Кнопка призыва к действию.
	PostPolicy.AllowAttrs("data-type").Matching(regexp.MustCompile(`^custom-button$`)).OnElements("a")
	PostPolicy.AllowAttrs("class").Matching(regexp.MustCompile(`^custom-button$`)).OnElements("a")
	PostPolicy.AllowAttrs("text").OnElements("a")
	PostPolicy.AllowAttrs("url").Matching(buttonURLRegexp).OnElements("a")
	PostPolicy.AllowAttrs("color", "bgcolor").Matching(colorRegexp).OnElements("a")
	PostPolicy.AllowAttrs("style").OnElements("a", "span", "mark")
	PostPolicy.AllowAttrs("style").OnElements(textBlocks...)

	PostPolicy.AllowStyles("display").Matching(regexp.MustCompile(`^inline-block$`)).OnElements("a")
	PostPolicy.AllowStyles("padding", "margin", "border-radius").Matching(sizeRegexp).OnElements("a")
	PostPolicy.AllowStyles("text-decoration").Matching(regexp.MustCompile(`^none$`)).OnElements("a")
	PostPolicy.AllowStyles("font-weight").Matching(regexp.MustCompile(`^(\d{3}|bold|normal)$`)).OnElements("a", "span")

	PostPolicy.AllowStyles("color", "background-color").Matching(colorRegexp).OnElements("a", "span", "mark")
	PostPolicy.AllowStyles("font-size").Matching(sizeRegexp).OnElements("span")
	PostPolicy.AllowStyles("font-family").Matching(fontRegexp).OnElements("span")
	PostPolicy.AllowStyles("font-style").Matching(regexp.MustCompile(`^(italic|normal)$`)).OnElements("span")
	PostPolicy.AllowAttrs("data-color").Matching(colorRegexp).OnElements("mark")

	PostPolicy.AllowStyles("line-height").Matching(lineHeightRegexp).OnElements(textBlocks...)
	PostPolicy.AllowStyles("text-align").Matching(alignRegexp).OnElements(textBlocks...)

	PostPolicy.AllowAttrs("class").Matching(languageRegexp).OnElements("code")
	PostPolicy.AllowAttrs("start").Matching(numberRegexp).OnElements("ol")
	PostPolicy.AllowAttrs("colspan", "rowspan").Matching(numberRegexp).OnElements("td", "th")
	PostPolicy.AllowAttrs("title").OnElements("img")
}

// SanitizeContent очищает разметку поста. Пустая строка остается пустой.
func SanitizeContent(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	return PostPolicy.Sanitize(markup)
}

// PlainText возвращает текст разметки без тегов. Кнопки заменяются своей подписью,
// блоки отделяются пробелом.
func PlainText(markup string) string {
	if markup == "" {
		return ""
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{Type: html.ElementNode, Data: "body"})
	if err != nil {
		return strings.Join(strings.Fields(StripTagsPolicy.Sanitize(markup)), " ")
	}

	root := &html.Node{Type: html.ElementNode, Data: "div"}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	processButtonNode(root)

	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(StripTagsPolicy.Sanitize(sb.String()))), " ")
}

// processButtonNode заменяет содержимое кнопок текстом из атрибута text.
func processButtonNode(node *html.Node) {
	var next *html.Node
	for child := node.FirstChild; child != nil; child = next {
		next = child.NextSibling
		if child.Type != html.ElementNode {
			continue
		}
		if child.Data == "a" && isCustomButton(child) {
			text := ""
			for _, attr := range child.Attr {
				if attr.Key == "text" {
					text = attr.Val
				}
			}
			if text != "" {
				node.InsertBefore(&html.Node{Type: html.TextNode, Data: " " + text + " "}, child)
				node.RemoveChild(child)
			}
			continue
		}
		if isBlock(child.Data) {
			node.InsertBefore(&html.Node{Type: html.TextNode, Data: " "}, child)
		}
		processButtonNode(child)
	}
}

func isCustomButton(node *html.Node) bool {
	for _, attr := range node.Attr {
		if attr.Key == "data-type" && attr.Val == "custom-button" {
			return true
		}
	}
	return false
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "td", "th", "pre", "blockquote", "br", "hr":
		return true
	}
	return false
}
