package editor

import (
	"slices"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
)

// tx - изменяемая копия снимка. Узлы старого снимка не трогаются: все правки
// создают новые срезы детей и новые карты атрибутов.
type tx struct {
	doc     *edtypes.Document
	changed bool
}

func newTx(doc *edtypes.Document) *tx {
	return &tx{doc: doc.Clone()}
}

func (t *tx) node(id edtypes.NodeID) edtypes.Node { return t.doc.Node(id) }

func (t *tx) add(n edtypes.Node) edtypes.NodeID { return t.doc.Add(n) }

func (t *tx) setChildren(id edtypes.NodeID, children []edtypes.NodeID) {
	t.doc.SetChildren(id, children)
	t.changed = true
}

func (t *tx) replace(id edtypes.NodeID, n edtypes.Node) {
	t.doc.Replace(id, n)
	t.changed = true
}

func (t *tx) setAttrs(id edtypes.NodeID, attrs edtypes.Attrs) {
	t.doc.SetAttrs(id, attrs)
	t.changed = true
}

// splice заменяет детей parent в диапазоне [from, to) на ids.
func (t *tx) splice(parent edtypes.NodeID, from, to int, ids ...edtypes.NodeID) {
	children := t.doc.Children(parent)
	res := make([]edtypes.NodeID, 0, len(children)-(to-from)+len(ids))
	res = append(res, children[:from]...)
	res = append(res, ids...)
	res = append(res, children[to:]...)
	t.setChildren(parent, res)
}

// splitInline делит строчное содержимое по смещению. Текстовый узел на границе
// разрезается на два новых узла.
func (t *tx) splitInline(ids []edtypes.NodeID, offset int) (left, right []edtypes.NodeID) {
	pos := 0
	for i, id := range ids {
		n := t.node(id)
		size := n.Size()
		if pos+size <= offset {
			left = append(left, id)
			pos += size
			continue
		}
		if pos >= offset {
			right = append(right, ids[i:]...)
			return left, right
		}
		runes := []rune(n.Text)
		cut := offset - pos
		a, b := n, n
		a.Text, b.Text = string(runes[:cut]), string(runes[cut:])
		left = append(left, t.add(a))
		right = append(right, t.add(b))
		right = append(right, ids[i+1:]...)
		return left, right
	}
	return left, right
}

// sliceInline делит содержимое на части до from, между from и to, и после to.
func (t *tx) sliceInline(ids []edtypes.NodeID, from, to int) (before, mid, after []edtypes.NodeID) {
	head, after := t.splitInline(ids, to)
	before, mid = t.splitInline(head, from)
	return before, mid, after
}

func joinIDs(parts ...[]edtypes.NodeID) []edtypes.NodeID {
	var res []edtypes.NodeID
	for _, p := range parts {
		res = append(res, p...)
	}
	return res
}

// mapMarks применяет fn к маркам каждого текстового узла диапазона внутри блоков.
// Блоки кода пропускаются.
func (t *tx) mapMarks(spans []span, fn func(edtypes.MarkSet) edtypes.MarkSet) {
	for _, s := range spans {
		tb := t.node(s.id)
		if tb.Kind.Spec().Content != edtypes.ContentInline || s.from == s.to {
			continue
		}
		before, mid, after := t.sliceInline(tb.Children, s.from, s.to)
		touched := false
		for i, id := range mid {
			n := t.node(id)
			if n.Kind != edtypes.KindText {
				continue
			}
			marks := fn(n.Marks)
			if marks.Eq(n.Marks) {
				continue
			}
			n.Marks = marks
			mid[i] = t.add(n)
			touched = true
		}
		if touched {
			t.setChildren(s.id, joinIDs(before, mid, after))
			t.doc.Normalize(s.id)
		}
	}
}

// eachText вызывает fn для каждого текстового узла в диапазоне без изменения документа.
func eachText(doc *edtypes.Document, spans []span, fn func(edtypes.Node)) {
	for _, s := range spans {
		tb := doc.Node(s.id)
		if tb.Kind.Spec().Content != edtypes.ContentInline {
			continue
		}
		pos := 0
		for _, id := range tb.Children {
			n := doc.Node(id)
			size := n.Size()
			if n.Kind == edtypes.KindText && pos < s.to && pos+size > s.from {
				fn(n)
			}
			pos += size
		}
	}
}

// insertBlock вставляет блок в позицию. Пустой текстовый блок заменяется, в середине
// блок разрезается на две части. За вставленным блоком всегда остается текстовый блок.
func (t *tx) insertBlock(r resolved, block edtypes.NodeID) {
	parent, idx := r.parent(), r.index()
	at := idx + 1

	if !r.afterBlock {
		tb := t.node(r.node())
		size := inlineSize(t.doc, tb.Children)
		switch {
		case size == 0:
			t.splice(parent, idx, idx+1, block)
			at = idx
		case r.offset == 0:
			t.splice(parent, idx, idx, block)
			at = idx
		case r.offset >= size:
			t.splice(parent, idx+1, idx+1, block)
		default:
			left, right := t.splitInline(tb.Children, r.offset)
			rest := tb
			rest.Children = right
			t.setChildren(r.node(), left)
			t.splice(parent, idx+1, idx+1, block, t.add(rest))
		}
	} else {
		t.splice(parent, at, at, block)
	}

	children := t.doc.Children(parent)
	if at+1 >= len(children) {
		t.splice(parent, at+1, at+1, t.add(edtypes.Node{Kind: edtypes.KindParagraph}))
	}
}

// deleteRange удаляет содержимое между from и to и возвращает позицию курсора после удаления.
// Блоки одного контейнера склеиваются, в остальных случаях удаляется только текст.
func (t *tx) deleteRange(from, to resolved) resolved {
	if compareResolved(from, to) == 0 {
		return from
	}
	spans := textblocksBetween(t.doc, from, to)
	if len(spans) == 0 {
		return from
	}

	first, last := spans[0], spans[len(spans)-1]
	firstNode := t.node(first.id)
	if len(spans) == 1 {
		before, _, after := t.sliceInline(firstNode.Children, first.from, first.to)
		t.setChildren(first.id, joinIDs(before, after))
		return resolved{chain: t.chainOf(first.path), path: first.path, offset: first.from}
	}

	firstParent := first.path[:len(first.path)-1]
	lastParent := last.path[:len(last.path)-1]
	if slices.Equal(firstParent, lastParent) {
		chain, _ := t.doc.Resolve(first.path)
		parent := chain[len(chain)-2]
		before, _ := t.splitInline(firstNode.Children, first.from)
		_, after := t.splitInline(t.node(last.id).Children, last.to)
		t.setChildren(first.id, joinIDs(before, after))
		t.splice(parent, first.path[len(first.path)-1]+1, last.path[len(last.path)-1]+1)
		t.doc.Normalize(first.id)
		return resolved{chain: chain, path: first.path, offset: first.from}
	}

	for _, s := range spans {
		n := t.node(s.id)
		before, _, after := t.sliceInline(n.Children, s.from, s.to)
		t.setChildren(s.id, joinIDs(before, after))
	}
	return resolved{chain: t.chainOf(first.path), path: first.path, offset: first.from}
}

func (t *tx) chainOf(path []int) []edtypes.NodeID {
	chain, _ := t.doc.Resolve(path)
	return chain
}

// textblockAt возвращает текстовый блок для вставки строчного содержимого. Позиция после
// блочного атома превращается в новый пустой параграф за ним.
func (t *tx) textblockAt(r resolved) resolved {
	if !r.afterBlock {
		return r
	}
	parent, idx := r.parent(), r.index()
	p := t.add(edtypes.Node{Kind: edtypes.KindParagraph})
	t.splice(parent, idx+1, idx+1, p)
	path := append(slices.Clone(r.path[:len(r.path)-1]), idx+1)
	return resolved{chain: t.chainOf(path), path: path}
}
