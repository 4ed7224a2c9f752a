package tiptap

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/agencia-site/postdoc/internal/postdoc/editor"
	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
)

var ErrNotDocument = errors.New("tiptap json root type must be doc")

// ParseJSON парсит JSON контент TipTap редактора в edtypes.Document.
// Неизвестные ноды и марки пропускаются, некорректный JSON возвращает ошибку.
func ParseJSON(r io.Reader) (*edtypes.Document, error) {
	// Десериализовать JSON в TipTapDocument
	var tipTapDoc TipTapDocument
	if err := json.NewDecoder(r).Decode(&tipTapDoc); err != nil {
		return nil, err
	}
	if tipTapDoc.Type != "doc" {
		return nil, ErrNotDocument
	}

	doc := edtypes.NewBlankDocument()
	children := make([]edtypes.NodeID, 0, len(tipTapDoc.Content))

	// Обработать каждую ноду верхнего уровня
	for _, node := range tipTapDoc.Content {
		if id, ok := parseNode(doc, node); ok {
			children = append(children, id)
		}
	}

	doc.SetChildren(doc.Root(), children)
	doc.Normalize(doc.Root())
	return doc, nil
}

// parseNode парсит отдельную ноду TipTap и добавляет ее в арену документа.
func parseNode(doc *edtypes.Document, node TipTapNode) (edtypes.NodeID, bool) {
	kind, ok := edtypes.KindByName(node.Type)
	if !ok || kind == edtypes.KindDoc {
		slog.Warn("Unknown node type", "type", node.Type)
		return edtypes.NoNode, false
	}

	if kind == edtypes.KindText {
		if node.Text == "" {
			return edtypes.NoNode, false
		}
		return doc.Add(edtypes.Node{Kind: kind, Text: node.Text, Marks: parseMarks(node.Marks)}), true
	}

	n := edtypes.Node{Kind: kind, Attrs: parseNodeAttrs(kind, node.Attrs)}
	if kind == edtypes.KindImage && n.Attrs["src"] == "" {
		slog.Warn("Skip image without src")
		return edtypes.NoNode, false
	}

	for _, child := range node.Content {
		if id, ok := parseNode(doc, child); ok {
			n.Children = append(n.Children, id)
		}
	}
	return doc.Add(n), true
}

// parseNodeAttrs оставляет только атрибуты схемы с допустимыми значениями,
// отличными от значений по умолчанию.
func parseNodeAttrs(kind edtypes.Kind, raw map[string]interface{}) edtypes.Attrs {
	var attrs edtypes.Attrs
	for _, spec := range kind.Spec().Attrs {
		v := getAttrString(raw, spec.Key)
		if v == "" {
			continue
		}
		v, err := editor.NormalizeAttr(kind, spec.Key, v)
		if err != nil || v == spec.Default {
			continue
		}
		attrs = attrs.With(spec.Key, v)
	}
	return attrs
}

// parseMarks конвертирует марки TipTap. Ссылки с запрещенным href и пустые textStyle отбрасываются.
func parseMarks(marks []TipTapMark) edtypes.MarkSet {
	var res edtypes.MarkSet
	for _, m := range marks {
		mt, ok := edtypes.MarkByName(m.Type)
		if !ok {
			slog.Warn("Unknown mark type", "type", m.Type)
			continue
		}
		var attrs edtypes.Attrs
		for _, spec := range mt.Spec().Attrs {
			v, ok := editor.NormalizeMarkAttr(mt, spec.Key, getAttrString(m.Attrs, spec.Key))
			if !ok || v == spec.Default {
				continue
			}
			attrs = attrs.With(spec.Key, v)
		}

		switch mt {
		case edtypes.MarkLink:
			if attrs["href"] == "" {
				continue
			}
		case edtypes.MarkTextStyle:
			if len(attrs) == 0 {
				continue
			}
		}
		res = res.Add(edtypes.Mark{Type: mt, Attrs: attrs})
	}
	return res
}
