package editor

import (
	"strings"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
)

// ToggleMark снимает марку, если весь текст выделения ею помечен, иначе добавляет.
// Пустое выделение ничего не меняет.
func (e *Editor) ToggleMark(sel Selection, mark edtypes.MarkType) error {
	switch mark {
	case edtypes.MarkBold, edtypes.MarkItalic, edtypes.MarkStrike, edtypes.MarkCode:
	default:
		return ErrUnsupportedKind
	}
	return e.apply("toggleMark", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil || sel.Empty() {
			return err
		}
		spans := textblocksBetween(t.doc, from, to)

		all, found := true, false
		eachText(t.doc, spans, func(n edtypes.Node) {
			found = true
			if !n.Marks.Has(mark) {
				all = false
			}
		})
		if !found {
			return nil
		}

		m := edtypes.Mark{Type: mark}
		t.mapMarks(spans, func(ms edtypes.MarkSet) edtypes.MarkSet {
			if all {
				return ms.Remove(mark)
			}
			return ms.Add(m)
		})
		return nil
	})
}

// SetLink помечает выделение ссылкой. Пустой href и запрещенные протоколы отклоняются.
func (e *Editor) SetLink(sel Selection, href string) error {
	href = strings.TrimSpace(href)
	if href == "" {
		return ErrEmptyHref
	}
	if !IsAllowedURI(href) {
		return ErrInvalidHref
	}
	return e.apply("setLink", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil || sel.Empty() {
			return err
		}
		link := edtypes.Mark{Type: edtypes.MarkLink, Attrs: edtypes.Attrs{"href": href}}
		t.mapMarks(textblocksBetween(t.doc, from, to), func(ms edtypes.MarkSet) edtypes.MarkSet {
			return ms.Add(link)
		})
		return nil
	})
}

// UnsetLink снимает ссылку с выделения. Для курсора снимается вся ссылка, на которой он стоит.
func (e *Editor) UnsetLink(sel Selection) error {
	return e.apply("unsetLink", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil {
			return err
		}
		var spans []span
		if sel.Empty() {
			s, ok := linkAround(t.doc, from)
			if !ok {
				return nil
			}
			spans = []span{s}
		} else {
			spans = textblocksBetween(t.doc, from, to)
		}
		t.mapMarks(spans, func(ms edtypes.MarkSet) edtypes.MarkSet {
			return ms.Remove(edtypes.MarkLink)
		})
		return nil
	})
}

// linkAround находит непрерывный участок текста с той же ссылкой, что и у символа рядом с курсором.
func linkAround(doc *edtypes.Document, r resolved) (span, bool) {
	if r.afterBlock {
		return span{}, false
	}
	children := doc.Children(r.node())

	type piece struct {
		from, to int
		link     edtypes.Mark
		ok       bool
	}
	pieces := make([]piece, len(children))
	pos := 0
	hit := -1
	for i, id := range children {
		n := doc.Node(id)
		size := n.Size()
		pieces[i].from, pieces[i].to = pos, pos+size
		pieces[i].link, pieces[i].ok = n.Marks.Get(edtypes.MarkLink)
		if pieces[i].ok && hit < 0 && r.offset >= pos && r.offset <= pos+size {
			hit = i
		}
		pos += size
	}
	if hit < 0 {
		return span{}, false
	}

	first, last := hit, hit
	for first > 0 && pieces[first-1].ok && pieces[first-1].link.Eq(pieces[hit].link) {
		first--
	}
	for last < len(pieces)-1 && pieces[last+1].ok && pieces[last+1].link.Eq(pieces[hit].link) {
		last++
	}
	return span{id: r.node(), path: r.path, from: pieces[first].from, to: pieces[last].to}, true
}

var textStyleKeys = map[string]bool{"fontFamily": true, "fontSize": true, "color": true}

// normalizeTextStyle проверяет свойство textStyle и приводит значение к виду,
// который разбор style возвращает без изменений.
func normalizeTextStyle(key, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if !textStyleKeys[key] || value == "" {
		return "", false
	}
	switch key {
	case "color":
		return normalizeColor(value)
	case "fontSize":
		return value, fontSizeReg.MatchString(value)
	}
	return normalizeFontFamily(value)
}

// SetTextStyle задает одно свойство марки textStyle (fontFamily, fontSize, color),
// сохраняя остальные свойства.
func (e *Editor) SetTextStyle(sel Selection, key, value string) error {
	value, ok := normalizeTextStyle(key, value)
	if !ok {
		return ErrInvalidAttribute
	}
	return e.apply("setTextStyle", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil || sel.Empty() {
			return err
		}
		t.mapMarks(textblocksBetween(t.doc, from, to), func(ms edtypes.MarkSet) edtypes.MarkSet {
			cur, _ := ms.Get(edtypes.MarkTextStyle)
			return ms.Add(edtypes.Mark{Type: edtypes.MarkTextStyle, Attrs: cur.Attrs.With(key, value)})
		})
		return nil
	})
}

// UnsetTextStyle убирает свойство textStyle. Марка без свойств удаляется.
func (e *Editor) UnsetTextStyle(sel Selection, key string) error {
	if !textStyleKeys[key] {
		return ErrInvalidAttribute
	}
	return e.apply("unsetTextStyle", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil || sel.Empty() {
			return err
		}
		t.mapMarks(textblocksBetween(t.doc, from, to), func(ms edtypes.MarkSet) edtypes.MarkSet {
			cur, ok := ms.Get(edtypes.MarkTextStyle)
			if !ok {
				return ms
			}
			attrs := cur.Attrs.Without(key)
			if len(attrs) == 0 {
				return ms.Remove(edtypes.MarkTextStyle)
			}
			return ms.Add(edtypes.Mark{Type: edtypes.MarkTextStyle, Attrs: attrs})
		})
		return nil
	})
}

// ToggleHighlight снимает подсветку, если весь текст подсвечен тем же цветом, иначе подсвечивает.
func (e *Editor) ToggleHighlight(sel Selection, color string) error {
	if color = strings.TrimSpace(color); color != "" {
		c, ok := normalizeColor(color)
		if !ok {
			return ErrInvalidAttribute
		}
		color = c
	}
	m := edtypes.Mark{Type: edtypes.MarkHighlight}
	if color != "" {
		m.Attrs = edtypes.Attrs{"color": color}
	}
	return e.apply("toggleHighlight", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil || sel.Empty() {
			return err
		}
		spans := textblocksBetween(t.doc, from, to)
		all, found := true, false
		eachText(t.doc, spans, func(n edtypes.Node) {
			found = true
			if cur, ok := n.Marks.Get(edtypes.MarkHighlight); !ok || !cur.Eq(m) {
				all = false
			}
		})
		if !found {
			return nil
		}
		t.mapMarks(spans, func(ms edtypes.MarkSet) edtypes.MarkSet {
			if all {
				return ms.Remove(edtypes.MarkHighlight)
			}
			return ms.Add(m)
		})
		return nil
	})
}
