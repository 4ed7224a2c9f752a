package editor

import (
	"slices"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
)

// Position адресует точку документа: путь из индексов детей от корня до текстового блока
// и смещение внутри его строчного содержимого (текст считается по символам, атом занимает 1).
// Путь, ведущий к атомарному узлу или через него, означает позицию сразу после этого узла.
type Position struct {
	Path   []int `json:"path"`
	Offset int   `json:"offset"`
}

func (p Position) Eq(o Position) bool {
	return p.Offset == o.Offset && slices.Equal(p.Path, o.Path)
}

// Selection - пара anchor/head. Пустое выделение - курсор.
type Selection struct {
	Anchor Position `json:"anchor"`
	Head   Position `json:"head"`
}

// Cursor создает пустое выделение.
func Cursor(offset int, path ...int) Selection {
	p := Position{Path: path, Offset: offset}
	return Selection{Anchor: p, Head: p}
}

// Range создает выделение от from до to.
func Range(from, to Position) Selection {
	return Selection{Anchor: from, Head: to}
}

// At - короткая запись Position.
func At(offset int, path ...int) Position {
	return Position{Path: path, Offset: offset}
}

func (s Selection) Empty() bool {
	return s.Anchor.Eq(s.Head)
}

// resolved - позиция, проверенная относительно конкретного снимка.
type resolved struct {
	chain  []edtypes.NodeID // от корня до текстового блока или блочного атома
	path   []int
	offset int
	// afterBlock - позиция сразу после блочного атома, chain заканчивается на нем.
	afterBlock bool
}

func (r resolved) node() edtypes.NodeID   { return r.chain[len(r.chain)-1] }
func (r resolved) parent() edtypes.NodeID { return r.chain[len(r.chain)-2] }
func (r resolved) index() int             { return r.path[len(r.path)-1] }

func resolve(doc *edtypes.Document, pos Position) (resolved, error) {
	if len(pos.Path) == 0 {
		return resolved{}, ErrInvalidSelection
	}
	chain, ok := doc.Resolve(pos.Path)
	if !ok && (len(chain) < 2 || !doc.Node(chain[len(chain)-1]).Kind.IsAtom()) {
		return resolved{}, ErrInvalidSelection
	}

	for i := 1; i < len(chain); i++ {
		n := doc.Node(chain[i])
		if !n.Kind.IsAtom() {
			continue
		}
		if n.Kind.Spec().Category == edtypes.CategoryBlock {
			return resolved{
				chain:      chain[:i+1],
				path:       slices.Clone(pos.Path[:i]),
				afterBlock: true,
			}, nil
		}
		// Строчный атом: позиция в родительском текстовом блоке сразу за ним.
		idx := pos.Path[i-1]
		return resolved{
			chain:  chain[:i],
			path:   slices.Clone(pos.Path[:i-1]),
			offset: inlineSize(doc, doc.Children(chain[i-1])[:idx]) + 1,
		}, nil
	}

	n := doc.Node(chain[len(chain)-1])
	if !n.Kind.IsTextblock() {
		return resolved{}, ErrInvalidSelection
	}
	if pos.Offset < 0 || pos.Offset > inlineSize(doc, n.Children) {
		return resolved{}, ErrInvalidSelection
	}
	return resolved{chain: chain, path: slices.Clone(pos.Path), offset: pos.Offset}, nil
}

// comparePaths упорядочивает пути в прямом порядке обхода: предок раньше потомков.
func comparePaths(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}
	return len(a) - len(b)
}

func compareResolved(a, b resolved) int {
	if c := comparePaths(a.path, b.path); c != 0 {
		return c
	}
	return a.offset - b.offset
}

func hasPrefix(path, prefix []int) bool {
	return len(path) >= len(prefix) && slices.Equal(path[:len(prefix)], prefix)
}

// resolveSelection возвращает концы выделения в порядке документа.
func resolveSelection(doc *edtypes.Document, sel Selection) (from, to resolved, err error) {
	from, err = resolve(doc, sel.Anchor)
	if err != nil {
		return from, to, err
	}
	to, err = resolve(doc, sel.Head)
	if err != nil {
		return from, to, err
	}
	if compareResolved(from, to) > 0 {
		from, to = to, from
	}
	return from, to, nil
}

// span - часть текстового блока, попавшая в выделение.
type span struct {
	id       edtypes.NodeID
	path     []int
	from, to int
}

// textblocksBetween собирает текстовые блоки между концами выделения.
func textblocksBetween(doc *edtypes.Document, from, to resolved) []span {
	var res []span
	doc.Walk(doc.Root(), func(id edtypes.NodeID, path []int) bool {
		n := doc.Node(id)
		if n.Kind.IsAtom() {
			return false
		}
		if !n.Kind.IsTextblock() {
			return true
		}
		if comparePaths(path, from.path) < 0 || comparePaths(path, to.path) > 0 {
			return false
		}
		s := span{id: id, path: slices.Clone(path), from: 0, to: inlineSize(doc, n.Children)}
		if !from.afterBlock && slices.Equal(path, from.path) {
			s.from = from.offset
		}
		if !to.afterBlock && slices.Equal(path, to.path) {
			s.to = to.offset
		}
		res = append(res, s)
		return false
	})
	return res
}

// nodesTouching собирает узлы, поддерево которых пересекается с выделением, включая предков.
func nodesTouching(doc *edtypes.Document, from, to resolved) []edtypes.NodeID {
	var res []edtypes.NodeID
	doc.Walk(doc.Root(), func(id edtypes.NodeID, path []int) bool {
		if len(path) == 0 {
			return true
		}
		inside := hasPrefix(from.path, path) || hasPrefix(to.path, path) ||
			(comparePaths(from.path, path) < 0 && comparePaths(path, to.path) < 0)
		if !inside {
			return false
		}
		res = append(res, id)
		return !doc.Node(id).Kind.IsTextblock()
	})
	return res
}

func inlineSize(doc *edtypes.Document, ids []edtypes.NodeID) int {
	size := 0
	for _, id := range ids {
		size += doc.Node(id).Size()
	}
	return size
}
