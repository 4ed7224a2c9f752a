package editor

import (
	"log/slog"
	"strings"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderHTML сериализует документ в канонический HTML. Атрибуты со значениями по умолчанию,
// не заданные явно, не выводятся.
func RenderHTML(doc *edtypes.Document) string {
	var sb strings.Builder
	for _, id := range doc.Children(doc.Root()) {
		if err := html.Render(&sb, renderBlock(doc, id)); err != nil {
			slog.Error("Render html block", "kind", doc.Node(id).Kind.String(), "err", err)
		}
	}
	return sb.String()
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

func textNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// explicit возвращает атрибут узла только если он явно задан.
func explicit(n edtypes.Node, key string) string {
	return n.Attrs[key]
}

func textblockStyle(n edtypes.Node) []html.Attribute {
	style := renderStyle(
		styleDecl{"line-height", explicit(n, "lineHeight")},
		styleDecl{"text-align", explicit(n, "textAlign")},
	)
	if style == "" {
		return nil
	}
	return []html.Attribute{attr("style", style)}
}

func renderBlocks(doc *edtypes.Document, parent *html.Node, ids []edtypes.NodeID) *html.Node {
	for _, id := range ids {
		parent.AppendChild(renderBlock(doc, id))
	}
	return parent
}

func renderBlock(doc *edtypes.Document, id edtypes.NodeID) *html.Node {
	n := doc.Node(id)
	switch n.Kind {
	case edtypes.KindParagraph:
		return renderInline(doc, element("p", textblockStyle(n)...), n.Children)
	case edtypes.KindHeading:
		return renderInline(doc, element("h"+n.Attr("level"), textblockStyle(n)...), n.Children)
	case edtypes.KindCodeBlock:
		var attrs []html.Attribute
		if lang := explicit(n, "language"); lang != "" {
			attrs = append(attrs, attr("class", "language-"+lang))
		}
		code := element("code", attrs...)
		if text := doc.TextContent(id); text != "" {
			code.AppendChild(textNode(text))
		}
		pre := element("pre")
		pre.AppendChild(code)
		return pre
	case edtypes.KindBulletList:
		return renderBlocks(doc, element("ul"), n.Children)
	case edtypes.KindOrderedList:
		var attrs []html.Attribute
		if start := n.Attr("start"); start != "1" {
			attrs = append(attrs, attr("start", start))
		}
		return renderBlocks(doc, element("ol", attrs...), n.Children)
	case edtypes.KindListItem:
		return renderBlocks(doc, element("li"), n.Children)
	case edtypes.KindBlockquote:
		return renderBlocks(doc, element("blockquote"), n.Children)
	case edtypes.KindTable:
		tbody := renderBlocks(doc, element("tbody"), n.Children)
		table := element("table")
		table.AppendChild(tbody)
		return table
	case edtypes.KindTableRow:
		return renderBlocks(doc, element("tr"), n.Children)
	case edtypes.KindTableCell, edtypes.KindTableHeader:
		tag := "td"
		if n.Kind == edtypes.KindTableHeader {
			tag = "th"
		}
		var attrs []html.Attribute
		for _, key := range []string{"colspan", "rowspan"} {
			if v := n.Attr(key); v != "1" {
				attrs = append(attrs, attr(key, v))
			}
		}
		return renderBlocks(doc, element(tag, attrs...), n.Children)
	case edtypes.KindHorizontalRule:
		return element("hr")
	case edtypes.KindButton:
		return renderButton(n)
	}

	slog.Warn("Unknown block kind in render", "kind", n.Kind.String())
	return element("div")
}

// renderButton выводит кнопку как ссылку со встроенными стилями, пригодную для писем и превью.
func renderButton(n edtypes.Node) *html.Node {
	text, url := n.Attr("text"), n.Attr("url")
	color, bg := n.Attr("color"), n.Attr("bgColor")
	style := "display: inline-block; padding: 12px 24px; background-color: " + bg +
		"; color: " + color + "; text-decoration: none; border-radius: 6px; font-weight: 600; margin: 16px 0;"

	a := element("a",
		attr("data-type", "custom-button"),
		attr("class", "custom-button"),
		attr("text", text),
		attr("url", url),
		attr("color", color),
		attr("bgcolor", bg),
		attr("href", url),
		attr("target", "_blank"),
		attr("rel", "noopener noreferrer"),
		attr("style", style),
	)
	a.AppendChild(textNode(text))
	return a
}

type openMark struct {
	mark edtypes.Mark
	el   *html.Node
}

// renderInline выводит строчное содержимое. Уже открытые марки переиспользуются
// соседними узлами, поэтому общий префикс набора марок не дублируется.
func renderInline(doc *edtypes.Document, parent *html.Node, ids []edtypes.NodeID) *html.Node {
	var stack []openMark
	for _, id := range ids {
		n := doc.Node(id)

		keep := 0
		for keep < len(stack) && keep < len(n.Marks) && stack[keep].mark.Eq(n.Marks[keep]) {
			keep++
		}
		stack = stack[:keep]

		for _, m := range n.Marks[keep:] {
			el := renderMark(m)
			current(stack, parent).AppendChild(el)
			stack = append(stack, openMark{mark: m, el: el})
		}

		target := current(stack, parent)
		switch n.Kind {
		case edtypes.KindText:
			target.AppendChild(textNode(n.Text))
		case edtypes.KindHardBreak:
			target.AppendChild(element("br"))
		case edtypes.KindImage:
			attrs := []html.Attribute{attr("src", n.Attr("src"))}
			for _, key := range []string{"alt", "title"} {
				if v := explicit(n, key); v != "" {
					attrs = append(attrs, attr(key, v))
				}
			}
			target.AppendChild(element("img", attrs...))
		}
	}
	return parent
}

func current(stack []openMark, parent *html.Node) *html.Node {
	if len(stack) == 0 {
		return parent
	}
	return stack[len(stack)-1].el
}

func renderMark(m edtypes.Mark) *html.Node {
	switch m.Type {
	case edtypes.MarkLink:
		return element("a",
			attr("href", m.Attr("href")),
			attr("target", m.Attr("target")),
			attr("rel", m.Attr("rel")),
		)
	case edtypes.MarkBold:
		return element("strong")
	case edtypes.MarkItalic:
		return element("em")
	case edtypes.MarkStrike:
		return element("s")
	case edtypes.MarkCode:
		return element("code")
	case edtypes.MarkTextStyle:
		style := renderStyle(
			styleDecl{"font-family", m.Attr("fontFamily")},
			styleDecl{"font-size", m.Attr("fontSize")},
			styleDecl{"color", m.Attr("color")},
		)
		if style == "" {
			return element("span")
		}
		return element("span", attr("style", style))
	case edtypes.MarkHighlight:
		c := m.Attr("color")
		if c == "" {
			return element("mark")
		}
		return element("mark", attr("data-color", c), attr("style", "background-color: "+c+"; color: inherit"))
	}
	return element("span")
}
