package editor

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// lineSentinel заменяет пробельные последовательности с переводом строки до обрезки краев блока.
const lineSentinel = "\n"

var droppedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
	atom.Iframe: true, atom.Object: true, atom.Embed: true, atom.Head: true,
	atom.Title: true, atom.Meta: true, atom.Link: true, atom.Input: true,
	atom.Select: true, atom.Textarea: true, atom.Button: true, atom.Svg: true,
	atom.Math: true, atom.Canvas: true, atom.Video: true, atom.Audio: true,
}

var inlineElements = map[atom.Atom]bool{
	atom.Span: true, atom.Strong: true, atom.B: true, atom.Em: true, atom.I: true,
	atom.S: true, atom.Del: true, atom.Strike: true, atom.Code: true, atom.Mark: true,
	atom.A: true, atom.Br: true, atom.Img: true, atom.U: true, atom.Sub: true,
	atom.Sup: true, atom.Small: true, atom.Big: true, atom.Abbr: true, atom.Cite: true,
	atom.Q: true, atom.Kbd: true, atom.Samp: true, atom.Var: true, atom.Time: true,
	atom.Label: true, atom.Font: true, atom.Ins: true, atom.Dfn: true, atom.Wbr: true,
}

// ParseHTML строит документ из HTML-фрагмента. Разбор никогда не завершается ошибкой:
// неизвестные элементы раскрываются в содержимое, недопустимые значения атрибутов отбрасываются.
func ParseHTML(markup string) *edtypes.Document {
	doc := edtypes.NewBlankDocument()
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		slog.Warn("Parse html fragment", "err", err)
		nodes = nil
	}

	p := parser{doc: doc}
	doc.SetChildren(doc.Root(), p.parseBlocks(nodes))
	doc.Normalize(doc.Root())
	return doc
}

type parser struct {
	doc *edtypes.Document
}

// segment - результат разбора строчного содержимого: либо строчные узлы, либо блок,
// вынесенный из абзаца (кнопка).
type segment struct {
	inline []edtypes.NodeID
	block  edtypes.NodeID
}

func (s segment) isBlock() bool { return s.block != edtypes.NoNode }

func childNodes(n *html.Node) []*html.Node {
	var res []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		res = append(res, c)
	}
	return res
}

func isButtonElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.A &&
		getAttrValue("data-type", n.Attr) == "custom-button"
}

func isInlineNode(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		if isButtonElement(n) {
			return false
		}
		if n.DataAtom == 0 {
			return false
		}
		return inlineElements[n.DataAtom]
	}
	return false
}

// parseBlocks разбирает последовательность DOM-узлов в блочное содержимое.
// Свободный строчный текст между блоками собирается в параграфы.
func (p *parser) parseBlocks(nodes []*html.Node) []edtypes.NodeID {
	var res []edtypes.NodeID
	var loose []*html.Node

	flush := func() {
		if len(loose) == 0 {
			return
		}
		res = append(res, p.textblock(edtypes.KindParagraph, nil, loose, false)...)
		loose = nil
	}

	for _, n := range nodes {
		switch {
		case n.Type == html.ElementNode && droppedElements[n.DataAtom]:
			continue
		case isInlineNode(n):
			loose = append(loose, n)
		case n.Type == html.ElementNode:
			flush()
			res = append(res, p.parseBlock(n)...)
		}
	}
	flush()
	return res
}

func (p *parser) parseBlock(n *html.Node) []edtypes.NodeID {
	if isButtonElement(n) {
		return []edtypes.NodeID{p.parseButton(n)}
	}

	switch n.DataAtom {
	case atom.P:
		return p.textblock(edtypes.KindParagraph, textblockAttrs(n), childNodes(n), true)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		attrs := textblockAttrs(n)
		if attrs == nil {
			attrs = edtypes.Attrs{}
		}
		attrs["level"] = n.Data[1:]
		return p.textblock(edtypes.KindHeading, attrs, childNodes(n), true)
	case atom.Pre:
		return []edtypes.NodeID{p.parseCode(n)}
	case atom.Ul, atom.Ol:
		return []edtypes.NodeID{p.parseList(n)}
	case atom.Blockquote:
		return []edtypes.NodeID{p.doc.Add(edtypes.Node{
			Kind:     edtypes.KindBlockquote,
			Children: p.parseBlocks(childNodes(n)),
		})}
	case atom.Table:
		if t := p.parseTable(n); t != edtypes.NoNode {
			return []edtypes.NodeID{t}
		}
		return nil
	case atom.Hr:
		return []edtypes.NodeID{p.doc.Add(edtypes.Node{Kind: edtypes.KindHorizontalRule})}
	case atom.Caption, atom.Colgroup, atom.Col:
		return nil
	}

	// Неизвестный или контейнерный элемент: содержимое поднимается на уровень выше.
	return p.parseBlocks(childNodes(n))
}

// textblockAttrs извлекает line-height и text-align из стиля блока.
// Значения вне допустимых наборов игнорируются.
func textblockAttrs(n *html.Node) edtypes.Attrs {
	styles := parseStyleAttr(getAttrValue("style", n.Attr))
	var attrs edtypes.Attrs
	spec := edtypes.KindParagraph.Spec()
	for css, key := range map[string]string{"line-height": "lineHeight", "text-align": "textAlign"} {
		v, ok := styles[css]
		if !ok {
			continue
		}
		v = strings.ToLower(v)
		if a, _ := spec.Attr(key); a.Valid(v) {
			if attrs == nil {
				attrs = edtypes.Attrs{}
			}
			attrs[key] = v
		}
	}
	if align := strings.ToLower(getAttrValue("align", n.Attr)); align != "" && attrs["textAlign"] == "" {
		if a, _ := spec.Attr("textAlign"); a.Valid(align) {
			if attrs == nil {
				attrs = edtypes.Attrs{}
			}
			attrs["textAlign"] = align
		}
	}
	return attrs
}

// textblock разбирает строчное содержимое в один или несколько текстовых блоков.
// Кнопки разрывают блок. Пустые части рядом с кнопкой отбрасываются.
func (p *parser) textblock(kind edtypes.Kind, attrs edtypes.Attrs, nodes []*html.Node, keepEmpty bool) []edtypes.NodeID {
	var segs []segment
	for _, n := range nodes {
		segs = p.parseInline(n, nil, segs)
	}

	hasBlock := false
	for _, s := range segs {
		if s.isBlock() {
			hasBlock = true
			break
		}
	}

	var res []edtypes.NodeID
	for _, s := range segs {
		if s.isBlock() {
			res = append(res, s.block)
			continue
		}
		content := p.trimEdges(s.inline)
		if len(content) == 0 || (!keepEmpty && p.blank(content)) {
			continue
		}
		res = append(res, p.doc.Add(edtypes.Node{Kind: kind, Attrs: attrs, Children: content}))
	}

	if len(res) == 0 && keepEmpty && !hasBlock {
		res = append(res, p.doc.Add(edtypes.Node{Kind: kind, Attrs: attrs}))
	}
	return res
}

// trimEdges убирает переводы строк по краям блока, оставшиеся заменяет пробелами.
func (p *parser) trimEdges(ids []edtypes.NodeID) []edtypes.NodeID {
	res := make([]edtypes.NodeID, 0, len(ids))
	for i, id := range ids {
		n := p.doc.Node(id)
		if n.Kind != edtypes.KindText {
			res = append(res, id)
			continue
		}
		text := n.Text
		if i == 0 {
			text = strings.TrimLeft(text, lineSentinel)
		}
		if i == len(ids)-1 {
			text = strings.TrimRight(text, lineSentinel)
		}
		text = strings.ReplaceAll(text, lineSentinel, " ")
		if text == "" {
			continue
		}
		if text != n.Text {
			n.Text = text
			id = p.doc.Add(n)
		}
		res = append(res, id)
	}
	return res
}

func (p *parser) blank(ids []edtypes.NodeID) bool {
	for _, id := range ids {
		n := p.doc.Node(id)
		if n.Kind != edtypes.KindText || strings.TrimSpace(n.Text) != "" {
			return false
		}
	}
	return true
}

func appendInline(segs []segment, id edtypes.NodeID) []segment {
	if len(segs) == 0 || segs[len(segs)-1].isBlock() {
		segs = append(segs, segment{block: edtypes.NoNode})
	}
	last := &segs[len(segs)-1]
	last.inline = append(last.inline, id)
	return segs
}

// parseInline накапливает строчные узлы, применяя марки по пути от блока до текста.
func (p *parser) parseInline(n *html.Node, marks edtypes.MarkSet, segs []segment) []segment {
	switch n.Type {
	case html.TextNode:
		text := lineBreakReg.ReplaceAllString(n.Data, lineSentinel)
		if text == "" {
			return segs
		}
		return appendInline(segs, p.doc.Add(edtypes.Node{Kind: edtypes.KindText, Text: text, Marks: marks}))
	case html.ElementNode:
	default:
		return segs
	}

	if droppedElements[n.DataAtom] {
		return segs
	}
	if isButtonElement(n) {
		return append(segs, segment{block: p.parseButton(n)})
	}

	switch n.DataAtom {
	case atom.Br:
		return appendInline(segs, p.doc.Add(edtypes.Node{Kind: edtypes.KindHardBreak}))
	case atom.Img:
		if img := p.parseImage(n); img != edtypes.NoNode {
			return appendInline(segs, img)
		}
		return segs
	}

	marks = elementMarks(n, marks)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		segs = p.parseInline(c, marks, segs)
	}
	return segs
}

// elementMarks возвращает набор марок с учетом тега и inline-стилей элемента.
func elementMarks(n *html.Node, marks edtypes.MarkSet) edtypes.MarkSet {
	styles := parseStyleAttr(getAttrValue("style", n.Attr))

	switch n.DataAtom {
	case atom.Strong, atom.B:
		if w, ok := styles["font-weight"]; !ok || isBoldWeight(w) {
			marks = marks.Add(edtypes.Mark{Type: edtypes.MarkBold})
		}
	case atom.Em, atom.I:
		if s, ok := styles["font-style"]; !ok || s == "italic" {
			marks = marks.Add(edtypes.Mark{Type: edtypes.MarkItalic})
		}
	case atom.S, atom.Del, atom.Strike:
		marks = marks.Add(edtypes.Mark{Type: edtypes.MarkStrike})
	case atom.Code:
		marks = marks.Add(edtypes.Mark{Type: edtypes.MarkCode})
	case atom.Mark:
		m := edtypes.Mark{Type: edtypes.MarkHighlight}
		c := getAttrValue("data-color", n.Attr)
		if c == "" {
			c = styles["background-color"]
		}
		if c = unquote(c); c != "" {
			m.Attrs = edtypes.Attrs{"color": c}
		}
		marks = marks.Add(m)
	case atom.A:
		if href := strings.TrimSpace(getAttrValue("href", n.Attr)); href != "" && IsAllowedURI(href) {
			attrs := edtypes.Attrs{"href": href}
			if t := getAttrValue("target", n.Attr); t != "" {
				attrs["target"] = t
			}
			if r := getAttrValue("rel", n.Attr); r != "" {
				attrs["rel"] = r
			}
			marks = marks.Add(edtypes.Mark{Type: edtypes.MarkLink, Attrs: attrs})
		}
	case atom.Span:
		var attrs edtypes.Attrs
		for css, key := range map[string]string{"font-family": "fontFamily", "font-size": "fontSize", "color": "color"} {
			if v := unquote(styles[css]); v != "" {
				if attrs == nil {
					attrs = edtypes.Attrs{}
				}
				attrs[key] = v
			}
		}
		if attrs != nil {
			marks = marks.Add(edtypes.Mark{Type: edtypes.MarkTextStyle, Attrs: attrs})
		}
	}

	if n.DataAtom != atom.Strong && n.DataAtom != atom.B && isBoldWeight(styles["font-weight"]) {
		marks = marks.Add(edtypes.Mark{Type: edtypes.MarkBold})
	}
	if n.DataAtom != atom.Em && n.DataAtom != atom.I && strings.EqualFold(styles["font-style"], "italic") {
		marks = marks.Add(edtypes.Mark{Type: edtypes.MarkItalic})
	}
	if strings.Contains(styles["text-decoration"]+" "+styles["text-decoration-line"], "line-through") {
		marks = marks.Add(edtypes.Mark{Type: edtypes.MarkStrike})
	}
	return marks
}

func (p *parser) parseImage(n *html.Node) edtypes.NodeID {
	src := strings.TrimSpace(getAttrValue("src", n.Attr))
	if src == "" || !isAllowedImageSrc(src) {
		return edtypes.NoNode
	}
	attrs := edtypes.Attrs{"src": src}
	for _, key := range []string{"alt", "title"} {
		if v := getAttrValue(key, n.Attr); v != "" {
			attrs[key] = v
		}
	}
	return p.doc.Add(edtypes.Node{Kind: edtypes.KindImage, Attrs: attrs})
}

// parseButton читает атрибуты кнопки. Если атрибуты text и url отсутствуют,
// используются текст ссылки и href.
func (p *parser) parseButton(n *html.Node) edtypes.NodeID {
	styles := parseStyleAttr(getAttrValue("style", n.Attr))
	attrs := edtypes.Attrs{}

	text := getAttrValue("text", n.Attr)
	if text == "" {
		text = strings.Join(strings.Fields(textContent(n)), " ")
	}
	if text != "" {
		attrs["text"] = text
	}

	u := strings.TrimSpace(getAttrValue("url", n.Attr))
	if u == "" {
		u = strings.TrimSpace(getAttrValue("href", n.Attr))
	}
	if u != "" && IsAllowedURI(u) {
		attrs["url"] = u
	}

	colors := []struct{ attr, css, key string }{
		{"color", "color", "color"},
		{"bgcolor", "background-color", "bgColor"},
	}
	for _, c := range colors {
		v := unquote(getAttrValue(c.attr, n.Attr))
		if v == "" {
			v = unquote(styles[c.css])
		}
		if _, err := edtypes.ParseColor(v); err == nil {
			attrs[c.key] = v
		}
	}

	return p.doc.Add(edtypes.Node{Kind: edtypes.KindButton, Attrs: attrs})
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// parseCode разбирает pre в блок кода. Текст сохраняется как есть, br становится переводом строки.
func (p *parser) parseCode(n *html.Node) edtypes.NodeID {
	var sb strings.Builder
	var attrs edtypes.Attrs
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch {
		case c.Type == html.TextNode:
			sb.WriteString(c.Data)
		case c.Type == html.ElementNode && c.DataAtom == atom.Br:
			sb.WriteString("\n")
		case c.Type == html.ElementNode && c.DataAtom == atom.Code && attrs == nil:
			if m := languageClassReg.FindStringSubmatch(getAttrValue("class", c.Attr)); m != nil {
				attrs = edtypes.Attrs{"language": m[1]}
			}
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}

	node := edtypes.Node{Kind: edtypes.KindCodeBlock, Attrs: attrs}
	if sb.Len() > 0 {
		node.Children = []edtypes.NodeID{p.doc.Add(edtypes.Node{Kind: edtypes.KindText, Text: sb.String()})}
	}
	return p.doc.Add(node)
}

func (p *parser) parseList(n *html.Node) edtypes.NodeID {
	list := edtypes.Node{Kind: edtypes.KindBulletList}
	if n.DataAtom == atom.Ol {
		list.Kind = edtypes.KindOrderedList
		if start, err := strconv.Atoi(getAttrValue("start", n.Attr)); err == nil && start != 1 && start >= 0 {
			list.Attrs = edtypes.Attrs{"start": strconv.Itoa(start)}
		}
	}

	var stray []*html.Node
	flush := func() {
		if len(stray) == 0 {
			return
		}
		if blocks := p.parseBlocks(stray); len(blocks) > 0 {
			list.Children = append(list.Children, p.doc.Add(edtypes.Node{Kind: edtypes.KindListItem, Children: blocks}))
		}
		stray = nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			flush()
			list.Children = append(list.Children, p.doc.Add(edtypes.Node{
				Kind:     edtypes.KindListItem,
				Children: p.parseBlocks(childNodes(c)),
			}))
			continue
		}
		stray = append(stray, c)
	}
	flush()
	return p.doc.Add(list)
}

// parseTable собирает строки из thead, tbody и tfoot. Таблица без строк отбрасывается.
func (p *parser) parseTable(n *html.Node) edtypes.NodeID {
	var rows []edtypes.NodeID
	var collect func(*html.Node)
	collect = func(el *html.Node) {
		for c := el.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				collect(c)
			case atom.Tr:
				if row := p.parseRow(c); row != edtypes.NoNode {
					rows = append(rows, row)
				}
			}
		}
	}
	collect(n)

	if len(rows) == 0 {
		return edtypes.NoNode
	}
	return p.doc.Add(edtypes.Node{Kind: edtypes.KindTable, Children: rows})
}

func (p *parser) parseRow(tr *html.Node) edtypes.NodeID {
	var cells []edtypes.NodeID
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		cell := edtypes.Node{Kind: edtypes.KindTableCell}
		if c.DataAtom == atom.Th {
			cell.Kind = edtypes.KindTableHeader
		}
		for _, key := range []string{"colspan", "rowspan"} {
			if v, err := strconv.Atoi(getAttrValue(key, c.Attr)); err == nil && v > 1 {
				if cell.Attrs == nil {
					cell.Attrs = edtypes.Attrs{}
				}
				cell.Attrs[key] = strconv.Itoa(v)
			}
		}
		cell.Children = p.parseBlocks(childNodes(c))
		cells = append(cells, p.doc.Add(cell))
	}
	if len(cells) == 0 {
		return edtypes.NoNode
	}
	return p.doc.Add(edtypes.Node{Kind: edtypes.KindTableRow, Children: cells})
}
