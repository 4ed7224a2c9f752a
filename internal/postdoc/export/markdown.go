package export

import (
	"io"
	"strings"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
	md "github.com/nao1215/markdown"
)

// Markdown выгружает документ в Markdown. Стили текста (шрифт, цвет, подсветка),
// межстрочный интервал и выравнивание в Markdown не переносятся.
func Markdown(doc *edtypes.Document, w io.Writer) error {
	m := md.NewMarkdown(w)
	for _, id := range doc.Children(doc.Root()) {
		writeMarkdownBlock(m, doc, id)
	}
	return m.Build()
}

func writeMarkdownBlock(m *md.Markdown, doc *edtypes.Document, id edtypes.NodeID) {
	n := doc.Node(id)
	switch n.Kind {
	case edtypes.KindParagraph:
		text := inlineMarkdown(doc, id)
		if text == "" {
			return
		}
		m.PlainText(text).LF()
	case edtypes.KindHeading:
		text := inlineMarkdown(doc, id)
		switch n.Attr("level") {
		case "1":
			m.H1(text)
		case "2":
			m.H2(text)
		case "3":
			m.H3(text)
		case "4":
			m.H4(text)
		case "5":
			m.H5(text)
		default:
			m.H6(text)
		}
	case edtypes.KindCodeBlock:
		m.CodeBlocks(md.SyntaxHighlight(n.Attr("language")), doc.TextContent(id))
	case edtypes.KindBulletList:
		m.BulletList(listItems(doc, id)...)
	case edtypes.KindOrderedList:
		m.OrderedList(listItems(doc, id)...)
	case edtypes.KindBlockquote:
		var parts []string
		for _, c := range doc.Children(id) {
			parts = append(parts, blockText(doc, c))
		}
		m.Blockquote(strings.Join(parts, " "))
	case edtypes.KindTable:
		m.CustomTable(tableSet(doc, id), md.TableOptions{AutoWrapText: false})
	case edtypes.KindHorizontalRule:
		m.HorizontalRule()
	case edtypes.KindButton:
		m.PlainText(md.Link(md.Bold(n.Attr("text")), n.Attr("url"))).LF()
	}
}

// listItems - текст каждого элемента списка одной строкой. Вложенные списки
// попадают в строку родительского элемента.
func listItems(doc *edtypes.Document, list edtypes.NodeID) []string {
	var items []string
	for _, item := range doc.Children(list) {
		var parts []string
		for _, c := range doc.Children(item) {
			if t := blockText(doc, c); t != "" {
				parts = append(parts, t)
			}
		}
		items = append(items, strings.Join(parts, " "))
	}
	return items
}

// blockText - строчный Markdown текстовых блоков внутри узла.
func blockText(doc *edtypes.Document, id edtypes.NodeID) string {
	n := doc.Node(id)
	switch {
	case n.Kind == edtypes.KindCodeBlock:
		return md.Code(doc.TextContent(id))
	case n.Kind.IsTextblock():
		return inlineMarkdown(doc, id)
	case n.Kind == edtypes.KindButton:
		return md.Link(n.Attr("text"), n.Attr("url"))
	case n.Kind.IsList():
		return strings.Join(listItems(doc, id), "; ")
	}
	var parts []string
	for _, c := range doc.Children(id) {
		if t := blockText(doc, c); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func tableSet(doc *edtypes.Document, table edtypes.NodeID) md.TableSet {
	var set md.TableSet
	for i, row := range doc.Children(table) {
		var cells []string
		for _, cell := range doc.Children(row) {
			cells = append(cells, strings.ReplaceAll(blockText(doc, cell), "|", `\|`))
		}
		if i == 0 {
			set.Header = cells
			continue
		}
		set.Rows = append(set.Rows, cells)
	}
	return set
}

func inlineMarkdown(doc *edtypes.Document, id edtypes.NodeID) string {
	var sb strings.Builder
	for _, c := range doc.Children(id) {
		n := doc.Node(c)
		switch n.Kind {
		case edtypes.KindText:
			sb.WriteString(markText(n))
		case edtypes.KindHardBreak:
			sb.WriteString("  \n")
		case edtypes.KindImage:
			sb.WriteString(md.Image(n.Attr("alt"), n.Attr("src")))
		}
	}
	return sb.String()
}

func markText(n edtypes.Node) string {
	text := n.Text
	if n.Marks.Has(edtypes.MarkCode) {
		text = md.Code(text)
	}
	if n.Marks.Has(edtypes.MarkStrike) {
		text = md.Strikethrough(text)
	}
	if n.Marks.Has(edtypes.MarkItalic) {
		text = md.Italic(text)
	}
	if n.Marks.Has(edtypes.MarkBold) {
		text = md.Bold(text)
	}
	if link, ok := n.Marks.Get(edtypes.MarkLink); ok {
		text = md.Link(text, link.Attr("href"))
	}
	return text
}
