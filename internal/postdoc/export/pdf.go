// Пакет для экспорта постов блога.
// Предоставляет выгрузку документа редактора в PDF, Markdown и отдельную HTML страницу превью.
//
// Основные возможности:
//   - Генерация PDF из документа: заголовки, параграфы с марками, списки, цитаты, таблицы, кнопки, изображения в data URI.
//   - Выгрузка Markdown для переноса поста в другие системы.
//   - Минифицированная HTML страница превью с очищенным контентом.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
)

const (
	fontFamily   = "Helvetica"
	monoFamily   = "Courier"
	baseFontSize = 11.0
)

var headingSizes = map[string]float64{"1": 22, "2": 18, "3": 16, "4": 14, "5": 12, "6": 11}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	doc *edtypes.Document
	tr  func(string) string

	defaultMargins Margins
	images         int
}

type Margins struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func (m *Margins) GetMargins(pdf *fpdf.Fpdf) {
	m.Left, m.Top, m.Right, m.Bottom = pdf.GetMargins()
}

// PDF рисует документ на страницах A4. Используются встроенные шрифты с кодировкой cp1252,
// символы вне нее заменяются.
func PDF(doc *edtypes.Document, title string, out io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "") // 210*297 mm

	w := pdfWriter{
		pdf: pdf,
		doc: doc,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
	w.defaultMargins.GetMargins(pdf)

	pdf.SetTitle(title, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, strconv.Itoa(pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	if title != "" {
		pdf.SetFont(fontFamily, "B", 24)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 10, w.tr(title), "", "L", false)
		pdf.Ln(4)
	}

	for _, id := range doc.Children(doc.Root()) {
		w.writeBlock(id)
		w.resetMargins()
	}

	return pdf.Output(out)
}

func (w *pdfWriter) writeBlock(id edtypes.NodeID) {
	n := w.doc.Node(id)
	switch n.Kind {
	case edtypes.KindParagraph:
		w.writeTextblock(id, baseFontSize, "")
	case edtypes.KindHeading:
		w.pdf.Ln(2)
		w.pdf.Bookmark(w.tr(w.doc.TextContent(id)), 0, -1)
		w.writeTextblock(id, headingSizes[n.Attr("level")], "B")
	case edtypes.KindCodeBlock:
		w.pdf.SetFont(monoFamily, "", 9)
		w.pdf.SetTextColor(0, 0, 0)
		w.pdf.SetFillColor(240, 240, 240)
		w.pdf.MultiCell(0, 4.5, w.tr(w.doc.TextContent(id)), "", "L", true)
		w.pdf.Ln(2)
	case edtypes.KindBulletList, edtypes.KindOrderedList:
		w.writeList(id)
	case edtypes.KindBlockquote:
		w.pdf.Ln(2)
		y1 := w.pdf.GetY()
		l, _, _, _ := w.pdf.GetMargins()
		w.pdf.SetLeftMargin(l + 3)
		w.pdf.SetX(l + 3)
		for _, c := range w.doc.Children(id) {
			w.writeBlock(c)
		}
		w.pdf.SetLeftMargin(l)

		w.pdf.SetLineWidth(0.5)
		w.pdf.SetDrawColor(74, 71, 82)
		w.pdf.Line(l+1, y1, l+1, w.pdf.GetY())
		w.pdf.Ln(2)
	case edtypes.KindTable:
		w.writeTable(id)
	case edtypes.KindHorizontalRule:
		w.pdf.Ln(3)
		l, _, r, _ := w.pdf.GetMargins()
		pW, _ := w.pdf.GetPageSize()
		w.pdf.SetLineWidth(0.3)
		w.pdf.SetDrawColor(200, 200, 200)
		w.pdf.Line(l, w.pdf.GetY(), pW-r, w.pdf.GetY())
		w.pdf.Ln(3)
	case edtypes.KindButton:
		w.writeButton(n)
	}
}

// writeTextblock пишет строчное содержимое блока. Выравнивание по центру и вправо
// применяется к блокам с однородным текстом.
func (w *pdfWriter) writeTextblock(id edtypes.NodeID, size float64, style string) {
	n := w.doc.Node(id)
	lineHeight, err := strconv.ParseFloat(n.Attr("lineHeight"), 64)
	if err != nil {
		lineHeight = 1.5
	}
	h := w.pdf.PointConvert(size) * lineHeight
	children := w.doc.Children(id)

	if align := n.Attr("textAlign"); (align == "center" || align == "right") && w.uniform(children) {
		t := w.doc.Node(children[0])
		w.prepareText(t.Marks, size, style)
		w.pdf.WriteAligned(0, h, w.tr(w.doc.TextContent(id)), strings.ToUpper(align[:1]))
		w.pdf.Ln(h)
		return
	}

	for _, c := range children {
		cn := w.doc.Node(c)
		switch cn.Kind {
		case edtypes.KindText:
			w.writeText(cn, size, style, h)
		case edtypes.KindHardBreak:
			w.pdf.Ln(h)
		case edtypes.KindImage:
			w.writeImage(cn, h)
		}
	}
	w.pdf.Ln(h)
}

func (w *pdfWriter) uniform(children []edtypes.NodeID) bool {
	if len(children) == 0 {
		return false
	}
	first := w.doc.Node(children[0])
	for _, c := range children {
		n := w.doc.Node(c)
		if n.Kind != edtypes.KindText || !n.Marks.Eq(first.Marks) {
			return false
		}
	}
	return true
}

func (w *pdfWriter) writeText(n edtypes.Node, size float64, style string, h float64) {
	w.prepareText(n.Marks, size, style)
	text := w.tr(n.Text)

	if hl, ok := n.Marks.Get(edtypes.MarkHighlight); ok {
		w.setFillColor(hl.Attr("color"), edtypes.Color{R: 255, G: 240, B: 120})
		x := w.pdf.GetX()
		w.pdf.CellFormat(w.pdf.GetStringWidth(text), h, "", "", 0, "L", true, 0, "")
		w.pdf.SetX(x)
	}

	link := ""
	if l, ok := n.Marks.Get(edtypes.MarkLink); ok {
		link = l.Attr("href")
		w.pdf.SetTextColor(37, 99, 235)
		w.pdf.SetFontStyle(w.fontStyle(n.Marks, style) + "U")
	}
	w.pdf.WriteLinkString(h, text, link)
}

func (w *pdfWriter) fontStyle(marks edtypes.MarkSet, style string) string {
	if marks.Has(edtypes.MarkBold) && !strings.Contains(style, "B") {
		style += "B"
	}
	if marks.Has(edtypes.MarkItalic) {
		style += "I"
	}
	if marks.Has(edtypes.MarkStrike) {
		style += "S"
	}
	return style
}

func (w *pdfWriter) prepareText(marks edtypes.MarkSet, size float64, style string) {
	family := fontFamily
	if marks.Has(edtypes.MarkCode) {
		family = monoFamily
	}

	var color string
	if ts, ok := marks.Get(edtypes.MarkTextStyle); ok {
		if s := ts.Attr("fontSize"); s != "" {
			size = fontSizeToPt(s, size)
		}
		color = ts.Attr("color")
	}
	w.pdf.SetFont(family, w.fontStyle(marks, style), size)

	c, err := edtypes.ParseColor(color)
	if color == "" || err != nil {
		w.pdf.SetTextColor(0, 0, 0)
		return
	}
	w.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}

// fontSizeToPt переводит CSS размер в пункты. Неизвестные единицы оставляют базовый размер.
func fontSizeToPt(value string, base float64) float64 {
	num := strings.TrimRight(value, "abcdefghijklmnopqrstuvwxyz%")
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f <= 0 {
		return base
	}
	switch strings.TrimPrefix(value, num) {
	case "px":
		return f * 0.75
	case "pt":
		return f
	case "em", "rem":
		return f * base
	case "%":
		return f / 100 * base
	}
	return base
}

func (w *pdfWriter) writeList(id edtypes.NodeID) {
	n := w.doc.Node(id)
	start, err := strconv.Atoi(n.Attr("start"))
	if err != nil {
		start = 1
	}

	l, _, _, _ := w.pdf.GetMargins()
	for i, item := range w.doc.Children(id) {
		w.pdf.SetFont(fontFamily, "", baseFontSize)
		w.pdf.SetTextColor(0, 0, 0)
		w.pdf.SetX(l + 2)
		if n.Kind == edtypes.KindOrderedList {
			w.pdf.Write(w.pdf.PointConvert(baseFontSize)*1.5, fmt.Sprintf("%d.", start+i))
		} else {
			w.pdf.Write(w.pdf.PointConvert(baseFontSize)*1.5, w.tr("•"))
		}

		w.pdf.SetLeftMargin(l + 7)
		for _, c := range w.doc.Children(item) {
			w.pdf.SetX(l + 7)
			w.writeBlock(c)
		}
		w.pdf.SetLeftMargin(l)
	}
}

func (w *pdfWriter) writeButton(n edtypes.Node) {
	w.pdf.Ln(2)
	w.pdf.SetFont(fontFamily, "B", baseFontSize)
	text := w.tr(n.Attr("text"))

	w.setFillColor(n.Attr("bgColor"), edtypes.Color{R: 59, G: 130, B: 246})
	c, err := edtypes.ParseColor(n.Attr("color"))
	if err != nil {
		c = edtypes.Color{R: 255, G: 255, B: 255}
	}
	w.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))

	width := w.pdf.GetStringWidth(text) + 12
	w.pdf.CellFormat(width, 9, text, "", 1, "C", true, 0, n.Attr("url"))
	w.pdf.Ln(2)
}

// writeImage встраивает изображения из data URI. Внешние адреса выводятся ссылкой,
// экспорт не обращается к сети.
func (w *pdfWriter) writeImage(n edtypes.Node, h float64) {
	src := n.Attr("src")
	name, ok := w.registerDataImage(src)
	if !ok {
		label := n.Attr("alt")
		if label == "" {
			label = src
		}
		w.pdf.SetTextColor(37, 99, 235)
		w.pdf.WriteLinkString(h, w.tr("["+label+"]"), src)
		return
	}

	info := w.pdf.GetImageInfo(name)
	pW, _ := w.pdf.GetPageSize()
	_, _, r, _ := w.pdf.GetMargins()
	maxWidth := pW - r - w.pdf.GetX()
	width := min(info.Width(), maxWidth)
	w.pdf.ImageOptions(name, -1, -1, width, 0, true, fpdf.ImageOptions{ReadDpi: true}, 0, "")
}

func (w *pdfWriter) registerDataImage(src string) (string, bool) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return "", false
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", false
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}

	options := fpdf.ImageOptions{ImageType: w.pdf.ImageTypeFromMime(mime), ReadDpi: true}
	// unsupported image type
	if options.ImageType == "" {
		w.pdf.ClearError()
		return "", false
	}

	w.images++
	name := fmt.Sprintf("image-%d", w.images)
	if w.pdf.RegisterImageOptionsReader(name, options, bytes.NewReader(data)); w.pdf.Err() {
		w.pdf.ClearError()
		return "", false
	}
	return name, true
}

func (w *pdfWriter) writeTable(id edtypes.NodeID) {
	const padding = 1.0

	rows := w.doc.Children(id)
	cols := 0
	for _, row := range rows {
		span := 0
		for _, cell := range w.doc.Children(row) {
			span += cellSpan(w.doc.Node(cell))
		}
		cols = max(cols, span)
	}
	if cols == 0 {
		return
	}

	l, _, r, b := w.pdf.GetMargins()
	pW, pH := w.pdf.GetPageSize()
	colWidth := (pW - l - r) / float64(cols)

	w.pdf.SetFont(fontFamily, "", baseFontSize-1)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.SetDrawColor(160, 160, 160)
	w.pdf.SetLineWidth(0.2)
	lineHeight := w.pdf.PointConvert(baseFontSize-1) * 1.4

	w.pdf.Ln(2)
	for _, row := range rows {
		cells := w.doc.Children(row)
		texts := make([]string, len(cells))
		height := lineHeight
		for i, cell := range cells {
			texts[i] = w.tr(cellText(w.doc, cell))
			width := colWidth*float64(cellSpan(w.doc.Node(cell))) - padding*2
			height = max(height, float64(len(w.pdf.SplitLines([]byte(texts[i]), width)))*lineHeight)
		}
		height += padding * 2

		if w.pdf.GetY()+height > pH-b {
			w.pdf.AddPage()
		}

		x, y := l, w.pdf.GetY()
		for i, cell := range cells {
			cn := w.doc.Node(cell)
			width := colWidth * float64(cellSpan(cn))
			style := "D"
			fontStyle := ""
			if cn.Kind == edtypes.KindTableHeader {
				w.setFillColor("#e5edfa", edtypes.Color{})
				style, fontStyle = "FD", "B"
			}
			w.pdf.Rect(x, y, width, height, style)
			w.pdf.SetFont(fontFamily, fontStyle, baseFontSize-1)
			w.pdf.SetXY(x+padding, y+padding)
			w.pdf.MultiCell(width-padding*2, lineHeight, texts[i], "", "L", false)
			x += width
		}
		w.pdf.SetXY(l, y+height)
	}
	w.pdf.Ln(2)
}

func cellSpan(n edtypes.Node) int {
	span, err := strconv.Atoi(n.Attr("colspan"))
	if err != nil || span < 1 {
		return 1
	}
	return span
}

// cellText - текст ячейки, параграфы разделены переводом строки.
func cellText(doc *edtypes.Document, cell edtypes.NodeID) string {
	var parts []string
	for _, c := range doc.Children(cell) {
		parts = append(parts, doc.TextContent(c))
	}
	return strings.Join(parts, "\n")
}

func (w *pdfWriter) setFillColor(raw string, fallback edtypes.Color) {
	c, err := edtypes.ParseColor(raw)
	if err != nil {
		c = fallback
	}
	w.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func (w *pdfWriter) resetMargins() {
	w.pdf.SetMargins(w.defaultMargins.Left, w.defaultMargins.Top, w.defaultMargins.Right)
	w.pdf.SetX(w.defaultMargins.Left)
}
