package tiptap

import (
	"encoding/json"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
)

// Serialize сериализует edtypes.Document в TipTap JSON. Атрибуты выводятся со значениями
// по умолчанию, как их отдает editor.getJSON().
func Serialize(doc *edtypes.Document) ([]byte, error) {
	children := doc.Children(doc.Root())
	tipTapDoc := TipTapDocument{
		Type:    "doc",
		Content: make([]TipTapNode, 0, len(children)),
	}

	for _, id := range children {
		tipTapDoc.Content = append(tipTapDoc.Content, serializeNode(doc, id))
	}

	return json.Marshal(tipTapDoc)
}

// serializeNode преобразует узел арены в TipTap ноду.
func serializeNode(doc *edtypes.Document, id edtypes.NodeID) TipTapNode {
	n := doc.Node(id)
	node := TipTapNode{Type: n.Kind.String()}

	if n.Kind == edtypes.KindText {
		node.Text = n.Text
		node.Marks = serializeMarks(n.Marks)
		return node
	}

	if specs := n.Kind.Spec().Attrs; len(specs) > 0 {
		node.Attrs = make(map[string]interface{}, len(specs))
		for _, spec := range specs {
			if v := n.Attr(spec.Key); v != "" {
				node.Attrs[spec.Key] = attrValue(spec.Key, v)
			} else {
				node.Attrs[spec.Key] = nil
			}
		}
	}

	for _, c := range n.Children {
		node.Content = append(node.Content, serializeNode(doc, c))
	}
	return node
}

func serializeMarks(marks edtypes.MarkSet) []TipTapMark {
	if len(marks) == 0 {
		return nil
	}
	res := make([]TipTapMark, 0, len(marks))
	for _, m := range marks {
		tm := TipTapMark{Type: m.Type.String()}
		if specs := m.Type.Spec().Attrs; len(specs) > 0 {
			tm.Attrs = make(map[string]interface{}, len(specs))
			for _, spec := range specs {
				if v := m.Attr(spec.Key); v != "" {
					tm.Attrs[spec.Key] = v
				} else {
					tm.Attrs[spec.Key] = nil
				}
			}
		}
		res = append(res, tm)
	}
	return res
}
