package editor

import (
	"slices"
	"strings"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
)

// TextblockKinds - виды узлов, к которым применяются lineHeight и textAlign.
var TextblockKinds = []edtypes.Kind{edtypes.KindParagraph, edtypes.KindHeading}

// SetBlockType превращает текстовые блоки выделения в paragraph, heading или codeBlock.
// level используется только для heading.
func (e *Editor) SetBlockType(sel Selection, kind edtypes.Kind, level string) error {
	switch kind {
	case edtypes.KindParagraph, edtypes.KindCodeBlock:
	case edtypes.KindHeading:
		if a, _ := kind.Spec().Attr("level"); !a.Valid(level) {
			return ErrInvalidAttribute
		}
	default:
		return ErrUnsupportedKind
	}

	return e.apply("setBlockType", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil {
			return err
		}
		for _, s := range textblocksBetween(t.doc, from, to) {
			t.convertTextblock(s.id, kind, level)
		}
		return nil
	})
}

func (t *tx) convertTextblock(id edtypes.NodeID, kind edtypes.Kind, level string) {
	n := t.node(id)
	if n.Kind == kind && (kind != edtypes.KindHeading || n.Attr("level") == level) {
		return
	}

	next := edtypes.Node{Kind: kind}
	if kind != edtypes.KindCodeBlock && n.Kind != edtypes.KindCodeBlock {
		for _, key := range []string{"lineHeight", "textAlign"} {
			if v := n.Attrs[key]; v != "" {
				next.Attrs = next.Attrs.With(key, v)
			}
		}
	}
	if kind == edtypes.KindHeading {
		next.Attrs = next.Attrs.With("level", level)
	}

	switch {
	case kind == edtypes.KindCodeBlock:
		var sb strings.Builder
		for _, c := range n.Children {
			cn := t.node(c)
			switch cn.Kind {
			case edtypes.KindText:
				sb.WriteString(cn.Text)
			case edtypes.KindHardBreak:
				sb.WriteString("\n")
			}
		}
		if sb.Len() > 0 {
			next.Children = []edtypes.NodeID{t.add(edtypes.Node{Kind: edtypes.KindText, Text: sb.String()})}
		}
	case n.Kind == edtypes.KindCodeBlock:
		next.Children = t.textWithBreaks(t.doc.TextContent(id), nil)
	default:
		next.Children = n.Children
	}
	t.replace(id, next)
}

// textWithBreaks превращает переводы строк в hardBreak.
func (t *tx) textWithBreaks(text string, marks edtypes.MarkSet) []edtypes.NodeID {
	var res []edtypes.NodeID
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			res = append(res, t.add(edtypes.Node{Kind: edtypes.KindHardBreak}))
		}
		if line != "" {
			res = append(res, t.add(edtypes.Node{Kind: edtypes.KindText, Text: line, Marks: marks}))
		}
	}
	return res
}

// blockRange - непрерывный диапазон детей контейнера, содержащий выделение.
type blockRange struct {
	parent   edtypes.NodeID
	path     []int
	from, to int // [from, to]
}

// commonBlockRange находит ближайший общий контейнер блоков для концов выделения.
func commonBlockRange(doc *edtypes.Document, from, to resolved) (blockRange, bool) {
	depth := 0
	for depth < len(from.path)-1 && depth < len(to.path)-1 && from.path[depth] == to.path[depth] {
		depth++
	}
	for ; depth >= 0; depth-- {
		chain, _ := doc.Resolve(from.path[:depth])
		parent := chain[len(chain)-1]
		if doc.Node(parent).Kind.Spec().Content == edtypes.ContentBlocks {
			return blockRange{
				parent: parent,
				path:   slices.Clone(from.path[:depth]),
				from:   from.path[depth],
				to:     to.path[depth],
			}, true
		}
	}
	return blockRange{}, false
}

// ancestorOf возвращает ближайшего предка текстового блока указанных видов.
func ancestorOf(doc *edtypes.Document, path []int, kinds ...edtypes.Kind) ([]int, bool) {
	chain, ok := doc.Resolve(path)
	if !ok {
		return nil, false
	}
	for i := len(chain) - 2; i >= 1; i-- {
		if slices.Contains(kinds, doc.Node(chain[i]).Kind) {
			return slices.Clone(path[:i]), true
		}
	}
	return nil, false
}

// ToggleList оборачивает блоки выделения в список. Если все блоки уже в списке этого вида,
// элементы выносятся из списка. Список другого вида меняет вид.
func (e *Editor) ToggleList(sel Selection, kind edtypes.Kind) error {
	if !kind.IsList() {
		return ErrUnsupportedKind
	}
	return e.apply("toggleList", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil {
			return err
		}
		spans := textblocksBetween(t.doc, from, to)
		if len(spans) == 0 {
			return nil
		}

		var lists [][]int
		allInList, allSameKind := true, true
		for _, s := range spans {
			lp, ok := ancestorOf(t.doc, s.path, edtypes.KindBulletList, edtypes.KindOrderedList)
			if !ok {
				allInList = false
				break
			}
			chain, _ := t.doc.Resolve(lp)
			if t.node(chain[len(chain)-1]).Kind != kind {
				allSameKind = false
			}
			if !slices.ContainsFunc(lists, func(p []int) bool { return slices.Equal(p, lp) }) {
				lists = append(lists, lp)
			}
		}

		switch {
		case allInList && allSameKind:
			// Вложенные списки снимаются раньше внешних, соседние - с конца. Тогда каждый
			// splice меняет только уже обработанные пути.
			slices.SortFunc(lists, func(a, b []int) int {
				if len(a) != len(b) {
					return len(b) - len(a)
				}
				return comparePaths(b, a)
			})
			for _, lp := range lists {
				t.liftListItems(lp, spans)
			}
		case allInList:
			for _, lp := range lists {
				chain, _ := t.doc.Resolve(lp)
				id := chain[len(chain)-1]
				n := t.node(id)
				n.Kind = kind
				n.Attrs = nil
				t.replace(id, n)
			}
		default:
			r, ok := commonBlockRange(t.doc, from, to)
			if !ok {
				return ErrInvalidSelection
			}
			children := t.doc.Children(r.parent)
			items := make([]edtypes.NodeID, 0, r.to-r.from+1)
			for _, c := range children[r.from : r.to+1] {
				items = append(items, t.add(edtypes.Node{Kind: edtypes.KindListItem, Children: []edtypes.NodeID{c}}))
			}
			list := t.add(edtypes.Node{Kind: kind, Children: items})
			t.splice(r.parent, r.from, r.to+1, list)
		}
		return nil
	})
}

// liftListItems выносит затронутые элементы списка на уровень списка, разбивая его на части.
func (t *tx) liftListItems(listPath []int, spans []span) {
	chain, ok := t.doc.Resolve(listPath)
	if !ok || len(chain) < 2 {
		return
	}
	listID, parent := chain[len(chain)-1], chain[len(chain)-2]
	list := t.node(listID)
	if !list.Kind.IsList() {
		return
	}

	first, last := -1, -1
	for _, s := range spans {
		if !hasPrefix(s.path, listPath) || len(s.path) <= len(listPath) {
			continue
		}
		idx := s.path[len(listPath)]
		if first < 0 || idx < first {
			first = idx
		}
		if idx > last {
			last = idx
		}
	}
	if first < 0 || last >= len(list.Children) {
		return
	}

	var replacement []edtypes.NodeID
	if first > 0 {
		head := list
		head.Children = slices.Clone(list.Children[:first])
		replacement = append(replacement, t.add(head))
	}
	for _, item := range list.Children[first : last+1] {
		replacement = append(replacement, t.doc.Children(item)...)
	}
	if last < len(list.Children)-1 {
		tail := list
		tail.Children = slices.Clone(list.Children[last+1:])
		if list.Kind == edtypes.KindOrderedList {
			tail.Attrs = nil
		}
		replacement = append(replacement, t.add(tail))
	}
	idx := listPath[len(listPath)-1]
	t.splice(parent, idx, idx+1, replacement...)
}

// ToggleBlockquote оборачивает блоки выделения в цитату или снимает ближайшую цитату,
// если все блоки уже внутри нее.
func (e *Editor) ToggleBlockquote(sel Selection) error {
	return e.apply("toggleBlockquote", func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil {
			return err
		}
		spans := textblocksBetween(t.doc, from, to)
		if len(spans) == 0 {
			return nil
		}

		var quote []int
		inside := true
		for i, s := range spans {
			qp, ok := ancestorOf(t.doc, s.path, edtypes.KindBlockquote)
			if !ok || (i > 0 && !slices.Equal(qp, quote)) {
				inside = false
				break
			}
			quote = qp
		}

		if inside {
			chain, _ := t.doc.Resolve(quote)
			id, parent := chain[len(chain)-1], chain[len(chain)-2]
			idx := quote[len(quote)-1]
			t.splice(parent, idx, idx+1, t.doc.Children(id)...)
			return nil
		}

		r, ok := commonBlockRange(t.doc, from, to)
		if !ok {
			return ErrInvalidSelection
		}
		children := slices.Clone(t.doc.Children(r.parent)[r.from : r.to+1])
		t.splice(r.parent, r.from, r.to+1, t.add(edtypes.Node{Kind: edtypes.KindBlockquote, Children: children}))
		return nil
	})
}

// SetNodeAttribute задает атрибут всем узлам указанных видов, затронутым выделением.
// Ключ должен быть в схеме каждого вида, значение - в допустимом наборе.
func (e *Editor) SetNodeAttribute(sel Selection, kinds []edtypes.Kind, key, value string) error {
	if len(kinds) == 0 {
		return ErrUnsupportedKind
	}
	normalized := ""
	for _, k := range kinds {
		v, err := NormalizeAttr(k, key, value)
		if err != nil {
			return err
		}
		normalized = v
	}
	value = normalized
	return e.updateAttributes("setNodeAttribute", sel, kinds, func(attrs edtypes.Attrs) edtypes.Attrs {
		if attrs[key] == value {
			return attrs
		}
		return attrs.With(key, value)
	})
}

// ResetNodeAttribute возвращает атрибут к значению по умолчанию. Повторный вызов ничего не меняет.
func (e *Editor) ResetNodeAttribute(sel Selection, kinds []edtypes.Kind, key string) error {
	if len(kinds) == 0 {
		return ErrUnsupportedKind
	}
	for _, k := range kinds {
		if _, ok := k.Spec().Attr(key); !ok {
			return ErrInvalidAttribute
		}
	}
	return e.updateAttributes("resetNodeAttribute", sel, kinds, func(attrs edtypes.Attrs) edtypes.Attrs {
		return attrs.Without(key)
	})
}

func (e *Editor) updateAttributes(op string, sel Selection, kinds []edtypes.Kind, fn func(edtypes.Attrs) edtypes.Attrs) error {
	return e.apply(op, func(t *tx) error {
		from, to, err := resolveSelection(t.doc, sel)
		if err != nil {
			return err
		}
		for _, id := range nodesTouching(t.doc, from, to) {
			n := t.node(id)
			if !slices.Contains(kinds, n.Kind) {
				continue
			}
			attrs := fn(n.Attrs)
			if len(attrs) == len(n.Attrs) && equalAttrs(attrs, n.Attrs) {
				continue
			}
			t.setAttrs(id, attrs)
		}
		return nil
	})
}

func equalAttrs(a, b edtypes.Attrs) bool {
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func (e *Editor) SetLineHeight(sel Selection, height string) error {
	return e.SetNodeAttribute(sel, TextblockKinds, "lineHeight", height)
}

func (e *Editor) UnsetLineHeight(sel Selection) error {
	return e.ResetNodeAttribute(sel, TextblockKinds, "lineHeight")
}

func (e *Editor) SetTextAlign(sel Selection, align string) error {
	return e.SetNodeAttribute(sel, TextblockKinds, "textAlign", align)
}

func (e *Editor) UnsetTextAlign(sel Selection) error {
	return e.ResetNodeAttribute(sel, TextblockKinds, "textAlign")
}
