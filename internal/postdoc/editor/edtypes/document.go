package edtypes

import (
	"maps"
	"slices"
	"strings"
)

// NodeID - стабильный индекс узла в арене документа.
type NodeID int32

const NoNode NodeID = -1

// Attrs хранит только явно заданные атрибуты. Значения по умолчанию берутся из схемы.
// Attrs узла, попавшего в арену, не изменяются: используйте With/Without.
type Attrs map[string]string

func (a Attrs) With(key, value string) Attrs {
	res := make(Attrs, len(a)+1)
	maps.Copy(res, a)
	res[key] = value
	return res
}

func (a Attrs) Without(key string) Attrs {
	if _, ok := a[key]; !ok {
		return a
	}
	res := make(Attrs, len(a))
	for k, v := range a {
		if k != key {
			res[k] = v
		}
	}
	return res
}

type Mark struct {
	Type  MarkType
	Attrs Attrs
}

// Attr возвращает значение атрибута марки с учётом значения по умолчанию.
func (m Mark) Attr(key string) string {
	if v, ok := m.Attrs[key]; ok && v != "" {
		return v
	}
	if spec, ok := attrSpec(m.Type.Spec().Attrs, key); ok {
		return spec.Default
	}
	return ""
}

func (m Mark) Eq(o Mark) bool {
	if m.Type != o.Type {
		return false
	}
	for _, a := range m.Type.Spec().Attrs {
		if m.Attr(a.Key) != o.Attr(a.Key) {
			return false
		}
	}
	return true
}

// MarkSet - набор марок, упорядоченный по MarkType, не больше одной марки каждого типа.
type MarkSet []Mark

func (s MarkSet) Get(t MarkType) (Mark, bool) {
	for _, m := range s {
		if m.Type == t {
			return m, true
		}
	}
	return Mark{}, false
}

func (s MarkSet) Has(t MarkType) bool {
	_, ok := s.Get(t)
	return ok
}

// Add добавляет марку. Марка того же типа заменяется. Если в наборе есть марка,
// исключающая все остальные, набор не меняется; исключающая марка вытесняет остальные.
func (s MarkSet) Add(m Mark) MarkSet {
	for _, ex := range s {
		if ex.Type != m.Type && ex.Type.Spec().ExcludesAll {
			return s
		}
	}
	if m.Type.Spec().ExcludesAll {
		return MarkSet{m}
	}
	res := make(MarkSet, 0, len(s)+1)
	for _, ex := range s {
		if ex.Type != m.Type {
			res = append(res, ex)
		}
	}
	res = append(res, m)
	slices.SortFunc(res, func(a, b Mark) int { return int(a.Type) - int(b.Type) })
	return res
}

func (s MarkSet) Remove(t MarkType) MarkSet {
	if !s.Has(t) {
		return s
	}
	res := make(MarkSet, 0, len(s))
	for _, m := range s {
		if m.Type != t {
			res = append(res, m)
		}
	}
	return res
}

func (s MarkSet) Eq(o MarkSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !s[i].Eq(o[i]) {
			return false
		}
	}
	return true
}

type Node struct {
	Kind     Kind
	Attrs    Attrs
	Text     string  // только для KindText
	Marks    MarkSet // только для KindText
	Children []NodeID
}

// Attr возвращает значение атрибута с учётом значения по умолчанию из схемы.
func (n Node) Attr(key string) string {
	if v, ok := n.Attrs[key]; ok && v != "" {
		return v
	}
	if spec, ok := n.Kind.Spec().Attr(key); ok {
		return spec.Default
	}
	return ""
}

// Size - длина узла в единицах смещения внутри текстового блока.
func (n Node) Size() int {
	if n.Kind == KindText {
		return len([]rune(n.Text))
	}
	return 1
}

func attrSpec(specs []AttrSpec, key string) (AttrSpec, bool) {
	for _, a := range specs {
		if a.Key == key {
			return a, true
		}
	}
	return AttrSpec{}, false
}

// Document - арена узлов. Корень всегда имеет вид KindDoc.
// Снимок, переданный наружу, считается неизменяемым: преобразования работают с Clone.
type Document struct {
	nodes []Node
	root  NodeID
}

// NewDocument создает документ с одним пустым параграфом.
func NewDocument() *Document {
	d := NewBlankDocument()
	p := d.Add(Node{Kind: KindParagraph})
	d.SetChildren(d.root, []NodeID{p})
	return d
}

// NewBlankDocument создает документ без содержимого, для построения парсерами.
func NewBlankDocument() *Document {
	d := &Document{}
	d.root = d.Add(Node{Kind: KindDoc})
	return d
}

func (d *Document) Root() NodeID { return d.root }

// Len - размер арены, включая недостижимые узлы.
func (d *Document) Len() int { return len(d.nodes) }

func (d *Document) Node(id NodeID) Node {
	return d.nodes[id]
}

func (d *Document) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(d.nodes)
}

func (d *Document) Children(id NodeID) []NodeID {
	return d.nodes[id].Children
}

func (d *Document) Add(n Node) NodeID {
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

func (d *Document) Replace(id NodeID, n Node) {
	d.nodes[id] = n
}

// SetChildren заменяет список детей. Переданный срез становится собственностью документа.
func (d *Document) SetChildren(id NodeID, children []NodeID) {
	d.nodes[id].Children = children
}

func (d *Document) SetAttrs(id NodeID, attrs Attrs) {
	d.nodes[id].Attrs = attrs
}

// Clone делает поверхностную копию арены. Срезы детей и карты атрибутов разделяются
// со старым снимком, поэтому заменяются целиком, а не правятся на месте.
func (d *Document) Clone() *Document {
	return &Document{nodes: slices.Clone(d.nodes), root: d.root}
}

// Resolve проходит путь из индексов детей и возвращает цепочку узлов от корня.
func (d *Document) Resolve(path []int) ([]NodeID, bool) {
	chain := make([]NodeID, 0, len(path)+1)
	cur := d.root
	chain = append(chain, cur)
	for _, idx := range path {
		children := d.nodes[cur].Children
		if idx < 0 || idx >= len(children) {
			return chain, false
		}
		cur = children[idx]
		chain = append(chain, cur)
	}
	return chain, true
}

// Walk обходит поддерево в прямом порядке. Если fn возвращает false, дети узла пропускаются.
func (d *Document) Walk(id NodeID, fn func(id NodeID, path []int) bool) {
	d.walk(id, nil, fn)
}

func (d *Document) walk(id NodeID, path []int, fn func(NodeID, []int) bool) {
	if !fn(id, path) {
		return
	}
	for i, c := range d.nodes[id].Children {
		d.walk(c, append(slices.Clip(path), i), fn)
	}
}

func (d *Document) TextContent(id NodeID) string {
	var sb strings.Builder
	d.Walk(id, func(c NodeID, _ []int) bool {
		n := d.nodes[c]
		if n.Kind == KindText {
			sb.WriteString(n.Text)
		}
		return true
	})
	return sb.String()
}

// Equal сравнивает документы по содержимому: виды, эффективные атрибуты, текст и марки.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	return nodesEqual(d, d.root, o, o.root)
}

func nodesEqual(a *Document, ai NodeID, b *Document, bi NodeID) bool {
	an, bn := a.nodes[ai], b.nodes[bi]
	if an.Kind != bn.Kind || an.Text != bn.Text || !an.Marks.Eq(bn.Marks) {
		return false
	}
	for _, spec := range an.Kind.Spec().Attrs {
		if an.Attr(spec.Key) != bn.Attr(spec.Key) {
			return false
		}
	}
	if len(an.Children) != len(bn.Children) {
		return false
	}
	for i := range an.Children {
		if !nodesEqual(a, an.Children[i], b, bn.Children[i]) {
			return false
		}
	}
	return true
}

// Reachable - число узлов, достижимых из корня.
func (d *Document) Reachable() int {
	count := 0
	d.Walk(d.root, func(NodeID, []int) bool {
		count++
		return true
	})
	return count
}

// Compact строит новую арену только из достижимых узлов. Индексы узлов меняются.
func (d *Document) Compact() *Document {
	res := &Document{nodes: make([]Node, 0, d.Reachable())}
	res.root = res.copyFrom(d, d.root)
	return res
}

func (d *Document) copyFrom(src *Document, id NodeID) NodeID {
	n := src.nodes[id]
	children := n.Children
	n.Children = nil
	newID := d.Add(n)
	if len(children) > 0 {
		newChildren := make([]NodeID, len(children))
		for i, c := range children {
			newChildren[i] = d.copyFrom(src, c)
		}
		d.nodes[newID].Children = newChildren
	}
	return newID
}

// Normalize приводит поддерево к правилам схемы: выбрасывает недопустимых детей,
// склеивает соседние тексты с одинаковыми марками, дополняет пустые контейнеры.
func (d *Document) Normalize(id NodeID) {
	n := d.nodes[id]
	spec := n.Kind.Spec()

	switch spec.Content {
	case ContentNone:
		if len(n.Children) > 0 {
			d.nodes[id].Children = nil
		}
		return
	case ContentPlainText:
		var sb strings.Builder
		for _, c := range n.Children {
			if cn := d.nodes[c]; cn.Kind == KindText {
				sb.WriteString(cn.Text)
			}
		}
		if sb.Len() == 0 {
			d.nodes[id].Children = nil
		} else if len(n.Children) != 1 || d.nodes[n.Children[0]].Text != sb.String() || len(d.nodes[n.Children[0]].Marks) > 0 {
			d.nodes[id].Children = []NodeID{d.Add(Node{Kind: KindText, Text: sb.String()})}
		}
		return
	case ContentInline:
		d.nodes[id].Children = d.normalizeInline(n.Children)
		return
	}

	children := make([]NodeID, 0, len(n.Children))
	for _, c := range n.Children {
		if n.Kind.Accepts(d.nodes[c].Kind) {
			d.Normalize(c)
			children = append(children, c)
		}
	}
	if len(children) == 0 {
		children = append(children, d.filler(n.Kind))
	}
	d.nodes[id].Children = children
}

func (d *Document) normalizeInline(ids []NodeID) []NodeID {
	res := make([]NodeID, 0, len(ids))
	for _, c := range ids {
		cn := d.nodes[c]
		if cn.Kind.Spec().Category != CategoryInline {
			continue
		}
		if cn.Kind != KindText {
			if len(cn.Children) > 0 {
				d.nodes[c].Children = nil
			}
			res = append(res, c)
			continue
		}
		if cn.Text == "" {
			continue
		}
		if len(res) > 0 {
			prev := d.nodes[res[len(res)-1]]
			if prev.Kind == KindText && prev.Marks.Eq(cn.Marks) {
				res[len(res)-1] = d.Add(Node{Kind: KindText, Text: prev.Text + cn.Text, Marks: prev.Marks})
				continue
			}
		}
		res = append(res, c)
	}
	return res
}

// filler создает минимальное допустимое содержимое для пустого контейнера.
func (d *Document) filler(parent Kind) NodeID {
	switch parent.Spec().Content {
	case ContentListItems:
		item := d.Add(Node{Kind: KindListItem})
		d.nodes[item].Children = []NodeID{d.filler(KindListItem)}
		return item
	case ContentRows:
		row := d.Add(Node{Kind: KindTableRow})
		d.nodes[row].Children = []NodeID{d.filler(KindTableRow)}
		return row
	case ContentCells:
		cell := d.Add(Node{Kind: KindTableCell})
		d.nodes[cell].Children = []NodeID{d.filler(KindTableCell)}
		return cell
	}
	return d.Add(Node{Kind: KindParagraph})
}
