package editor

import (
	"strings"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
)

// validateAtomAttrs проверяет, что все ключи есть в схеме и значения допустимы.
// Пустые значения пропускаются, для них действует значение по умолчанию.
func validateAtomAttrs(kind edtypes.Kind, attrs edtypes.Attrs) (edtypes.Attrs, error) {
	res := edtypes.Attrs{}
	for key, value := range attrs {
		if _, ok := kind.Spec().Attr(key); !ok {
			return nil, ErrInvalidAttribute
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		v, err := NormalizeAttr(kind, key, value)
		if err != nil {
			return nil, err
		}
		res[key] = v
	}
	if kind == edtypes.KindImage && res["src"] == "" {
		return nil, ErrInvalidAttribute
	}
	if len(res) == 0 {
		return nil, nil
	}
	return res, nil
}

// InsertAtomicNode вставляет атом (кнопку, разделитель, изображение) в позицию выделения.
// Непустое выделение сначала удаляется. Недостающие атрибуты берутся из схемы.
func (e *Editor) InsertAtomicNode(sel Selection, kind edtypes.Kind, attrs edtypes.Attrs) error {
	if !kind.IsAtom() || kind == edtypes.KindHardBreak {
		return ErrNotAtomic
	}
	attrs, err := validateAtomAttrs(kind, attrs)
	if err != nil {
		return err
	}

	return e.apply("insert:"+kind.String(), func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil {
			return err
		}
		if kind.Spec().Category == edtypes.CategoryInline && !from.afterBlock &&
			t.node(from.node()).Kind.Spec().Content != edtypes.ContentInline {
			return ErrInvalidSelection
		}
		at := t.deleteRange(from, to)
		id := t.add(edtypes.Node{Kind: kind, Attrs: attrs})

		if kind.Spec().Category == edtypes.CategoryInline {
			at = t.textblockAt(at)
			t.insertInline(at, id)
			return nil
		}
		t.insertBlock(at, id)
		return nil
	})
}

func (e *Editor) InsertButton(sel Selection, text, url, color, bgColor string) error {
	return e.InsertAtomicNode(sel, edtypes.KindButton, edtypes.Attrs{
		"text":    text,
		"url":     url,
		"color":   color,
		"bgColor": bgColor,
	})
}

func (e *Editor) InsertHorizontalRule(sel Selection) error {
	return e.InsertAtomicNode(sel, edtypes.KindHorizontalRule, nil)
}

func (e *Editor) InsertImage(sel Selection, src, alt, title string) error {
	return e.InsertAtomicNode(sel, edtypes.KindImage, edtypes.Attrs{"src": src, "alt": alt, "title": title})
}

// insertInline вставляет строчные узлы в текстовый блок по смещению.
func (t *tx) insertInline(r resolved, ids ...edtypes.NodeID) {
	tb := r.node()
	left, right := t.splitInline(t.doc.Children(tb), r.offset)
	t.setChildren(tb, joinIDs(left, ids, right))
	t.doc.Normalize(tb)
}

// InsertTable вставляет таблицу rows x cols. При withHeaderRow первая строка состоит из tableHeader.
func (e *Editor) InsertTable(sel Selection, rows, cols int, withHeaderRow bool) error {
	if rows <= 0 || cols <= 0 {
		return ErrInvalidTableSize
	}
	return e.apply("insertTable", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil {
			return err
		}
		at := t.deleteRange(from, to)
		t.insertBlock(at, t.buildTable(rows, cols, withHeaderRow))
		return nil
	})
}

func (t *tx) buildTable(rows, cols int, withHeaderRow bool) edtypes.NodeID {
	rowIDs := make([]edtypes.NodeID, rows)
	for r := range rows {
		kind := edtypes.KindTableCell
		if r == 0 && withHeaderRow {
			kind = edtypes.KindTableHeader
		}
		cells := make([]edtypes.NodeID, cols)
		for c := range cols {
			p := t.add(edtypes.Node{Kind: edtypes.KindParagraph})
			cells[c] = t.add(edtypes.Node{Kind: kind, Children: []edtypes.NodeID{p}})
		}
		rowIDs[r] = t.add(edtypes.Node{Kind: edtypes.KindTableRow, Children: cells})
	}
	return t.add(edtypes.Node{Kind: edtypes.KindTable, Children: rowIDs})
}

// marksAt - марки, которые унаследует вставленный текст: марки символа перед курсором,
// в начале блока - символа после него. Ссылка не наследуется.
func marksAt(doc *edtypes.Document, r resolved) edtypes.MarkSet {
	var before, after edtypes.MarkSet
	pos := 0
	for _, id := range doc.Children(r.node()) {
		n := doc.Node(id)
		size := n.Size()
		if n.Kind == edtypes.KindText {
			if pos < r.offset && r.offset <= pos+size {
				before = n.Marks
			}
			if pos == r.offset && after == nil {
				after = n.Marks
			}
		}
		pos += size
	}
	marks := before
	if r.offset == 0 {
		marks = after
	}
	return marks.Remove(edtypes.MarkLink)
}

// InsertText вставляет текст в позицию курсора, заменяя выделение.
// Переводы строк становятся hardBreak, в блоке кода сохраняются как есть.
func (e *Editor) InsertText(sel Selection, text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return nil
	}
	return e.apply("insertText", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil {
			return err
		}
		at := t.textblockAt(t.deleteRange(from, to))
		tb := t.node(at.node())

		if tb.Kind.Spec().Content == edtypes.ContentPlainText {
			t.insertInline(at, t.add(edtypes.Node{Kind: edtypes.KindText, Text: text}))
			return nil
		}
		t.insertInline(at, t.textWithBreaks(text, marksAt(t.doc, at))...)
		return nil
	})
}

// SplitBlock разбивает текстовый блок в позиции курсора. В конце заголовка новый блок
// становится параграфом, в блоке кода вставляется перевод строки, в элементе списка
// создается новый элемент. Пустой элемент списка выносится из списка.
func (e *Editor) SplitBlock(sel Selection) error {
	return e.apply("splitBlock", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil {
			return err
		}
		at := t.deleteRange(from, to)
		if at.afterBlock {
			t.textblockAt(at)
			return nil
		}

		tbID := at.node()
		tb := t.node(tbID)
		if tb.Kind == edtypes.KindCodeBlock {
			t.insertInline(at, t.add(edtypes.Node{Kind: edtypes.KindText, Text: "\n"}))
			return nil
		}

		size := inlineSize(t.doc, tb.Children)
		parent := at.parent()
		if len(at.chain) >= 3 && t.node(parent).Kind == edtypes.KindListItem {
			return t.splitListItem(at, size)
		}

		left, right := t.splitInline(tb.Children, at.offset)
		rest := tb
		rest.Children = right
		if at.offset == size {
			rest = edtypes.Node{Kind: edtypes.KindParagraph}
			for _, key := range []string{"lineHeight", "textAlign"} {
				if v := tb.Attrs[key]; v != "" {
					rest.Attrs = rest.Attrs.With(key, v)
				}
			}
		}
		t.setChildren(tbID, left)
		idx := at.index()
		t.splice(parent, idx+1, idx+1, t.add(rest))
		return nil
	})
}

func (t *tx) splitListItem(at resolved, size int) error {
	tbID, itemID := at.node(), at.parent()
	listID := at.chain[len(at.chain)-3]
	tb, item := t.node(tbID), t.node(itemID)
	itemIdx := at.path[len(at.path)-2]
	blockIdx := at.index()

	if size == 0 && len(item.Children) == 1 {
		listPath := at.path[:len(at.path)-2]
		t.liftListItems(listPath, []span{{id: tbID, path: at.path}})
		return nil
	}

	left, right := t.splitInline(tb.Children, at.offset)
	rest := tb
	rest.Children = right
	t.setChildren(tbID, left)

	moved := append([]edtypes.NodeID{t.add(rest)}, item.Children[blockIdx+1:]...)
	t.setChildren(itemID, append([]edtypes.NodeID(nil), item.Children[:blockIdx+1]...))
	t.splice(listID, itemIdx+1, itemIdx+1, t.add(edtypes.Node{Kind: edtypes.KindListItem, Children: moved}))
	return nil
}

// DeleteSelection удаляет выделенное содержимое. Пустое выделение ничего не меняет.
func (e *Editor) DeleteSelection(sel Selection) error {
	return e.apply("deleteSelection", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil || sel.Empty() {
			return err
		}
		t.deleteRange(from, to)
		return nil
	})
}
