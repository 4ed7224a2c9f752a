// Пакет edtypes описывает закрытую схему документа редактора постов: виды узлов, марки,
// атрибуты со значениями по умолчанию и структурные категории.
//
// Основные возможности:
//   - Перечисление всех видов узлов (Kind) и марок (MarkType), известных на этапе компиляции.
//   - Спецификации атрибутов с допустимыми значениями и значениями по умолчанию.
//   - Правила вложенности: блочные, строчные и атомарные узлы.
//   - Хранение документа в виде арены узлов со стабильными индексами.
package edtypes

import "slices"

type Kind uint8

const (
	KindDoc Kind = iota
	KindParagraph
	KindHeading
	KindCodeBlock
	KindBulletList
	KindOrderedList
	KindListItem
	KindBlockquote
	KindTable
	KindTableRow
	KindTableCell
	KindTableHeader
	KindHorizontalRule
	KindButton
	KindImage
	KindHardBreak
	KindText

	kindCount
)

type Category uint8

const (
	CategoryBlock Category = iota
	CategoryInline
)

// Content описывает, какие дети допустимы у узла.
type Content uint8

const (
	ContentNone      Content = iota // лист
	ContentInline                   // текст и строчные атомы
	ContentPlainText                // только текст без марок (codeBlock)
	ContentBlocks                   // один или больше блоков
	ContentListItems
	ContentRows
	ContentCells
)

type AttrSpec struct {
	Key     string
	Default string
	// Allowed - закрытый набор значений. Пустой набор означает любое непустое значение.
	Allowed []string
}

func (a AttrSpec) Valid(value string) bool {
	if value == "" {
		return false
	}
	if len(a.Allowed) == 0 {
		return true
	}
	return slices.Contains(a.Allowed, value)
}

type NodeSpec struct {
	Kind     Kind
	Name     string // имя узла в TipTap
	Category Category
	Content  Content
	// Atom - узел без редактируемого содержимого, курсор не может попасть внутрь.
	Atom  bool
	Attrs []AttrSpec
}

func (s NodeSpec) IsTextblock() bool {
	return s.Content == ContentInline || s.Content == ContentPlainText
}

func (s NodeSpec) IsLeaf() bool {
	return s.Content == ContentNone
}

func (s NodeSpec) Attr(key string) (AttrSpec, bool) {
	for _, a := range s.Attrs {
		if a.Key == key {
			return a, true
		}
	}
	return AttrSpec{}, false
}

var (
	LineHeights    = []string{"1", "1.15", "1.5", "1.75", "2", "2.5", "3"}
	TextAlignments = []string{"left", "center", "right", "justify"}
	HeadingLevels  = []string{"1", "2", "3", "4", "5", "6"}
)

const (
	DefaultLineHeight = "1.5"

	ButtonDefaultText    = "Clique aqui"
	ButtonDefaultURL     = "#"
	ButtonDefaultColor   = "#ffffff"
	ButtonDefaultBgColor = "#3b82f6"
)

var textblockAttrs = []AttrSpec{
	{Key: "lineHeight", Default: DefaultLineHeight, Allowed: LineHeights},
	{Key: "textAlign", Allowed: TextAlignments},
}

var cellAttrs = []AttrSpec{
	{Key: "colspan", Default: "1"},
	{Key: "rowspan", Default: "1"},
}

var specs = [kindCount]NodeSpec{
	KindDoc:       {Kind: KindDoc, Name: "doc", Category: CategoryBlock, Content: ContentBlocks},
	KindParagraph: {Kind: KindParagraph, Name: "paragraph", Category: CategoryBlock, Content: ContentInline, Attrs: textblockAttrs},
	KindHeading: {Kind: KindHeading, Name: "heading", Category: CategoryBlock, Content: ContentInline,
		Attrs: append([]AttrSpec{{Key: "level", Default: "1", Allowed: HeadingLevels}}, textblockAttrs...)},
	KindCodeBlock:   {Kind: KindCodeBlock, Name: "codeBlock", Category: CategoryBlock, Content: ContentPlainText, Attrs: []AttrSpec{{Key: "language"}}},
	KindBulletList:  {Kind: KindBulletList, Name: "bulletList", Category: CategoryBlock, Content: ContentListItems},
	KindOrderedList: {Kind: KindOrderedList, Name: "orderedList", Category: CategoryBlock, Content: ContentListItems, Attrs: []AttrSpec{{Key: "start", Default: "1"}}},
	KindListItem:    {Kind: KindListItem, Name: "listItem", Category: CategoryBlock, Content: ContentBlocks},
	KindBlockquote:  {Kind: KindBlockquote, Name: "blockquote", Category: CategoryBlock, Content: ContentBlocks},
	KindTable:       {Kind: KindTable, Name: "table", Category: CategoryBlock, Content: ContentRows},
	KindTableRow:    {Kind: KindTableRow, Name: "tableRow", Category: CategoryBlock, Content: ContentCells},
	KindTableCell:   {Kind: KindTableCell, Name: "tableCell", Category: CategoryBlock, Content: ContentBlocks, Attrs: cellAttrs},
	KindTableHeader: {Kind: KindTableHeader, Name: "tableHeader", Category: CategoryBlock, Content: ContentBlocks, Attrs: cellAttrs},
	KindHorizontalRule: {Kind: KindHorizontalRule, Name: "horizontalRule", Category: CategoryBlock, Atom: true},
	KindButton: {Kind: KindButton, Name: "customButton", Category: CategoryBlock, Atom: true, Attrs: []AttrSpec{
		{Key: "text", Default: ButtonDefaultText},
		{Key: "url", Default: ButtonDefaultURL},
		{Key: "color", Default: ButtonDefaultColor},
		{Key: "bgColor", Default: ButtonDefaultBgColor},
	}},
	KindImage: {Kind: KindImage, Name: "image", Category: CategoryInline, Atom: true, Attrs: []AttrSpec{
		{Key: "src"},
		{Key: "alt"},
		{Key: "title"},
	}},
	KindHardBreak: {Kind: KindHardBreak, Name: "hardBreak", Category: CategoryInline, Atom: true},
	KindText:      {Kind: KindText, Name: "text", Category: CategoryInline},
}

// Spec возвращает схему вида узла.
func (k Kind) Spec() NodeSpec {
	if k >= kindCount {
		return NodeSpec{Kind: k, Name: "unknown"}
	}
	return specs[k]
}

func (k Kind) String() string {
	return k.Spec().Name
}

func (k Kind) IsTextblock() bool { return k.Spec().IsTextblock() }
func (k Kind) IsAtom() bool      { return k.Spec().Atom }

func (k Kind) IsCell() bool {
	return k == KindTableCell || k == KindTableHeader
}

func (k Kind) IsList() bool {
	return k == KindBulletList || k == KindOrderedList
}

// KindByName ищет вид узла по имени TipTap.
func KindByName(name string) (Kind, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s.Kind, true
		}
	}
	return 0, false
}

// Accepts сообщает, может ли узел вида k содержать узел вида child.
func (k Kind) Accepts(child Kind) bool {
	cs := child.Spec()
	switch k.Spec().Content {
	case ContentInline:
		return cs.Category == CategoryInline
	case ContentPlainText:
		return child == KindText
	case ContentBlocks:
		return cs.Category == CategoryBlock && child != KindDoc && child != KindListItem &&
			child != KindTableRow && !child.IsCell()
	case ContentListItems:
		return child == KindListItem
	case ContentRows:
		return child == KindTableRow
	case ContentCells:
		return child.IsCell()
	}
	return false
}

type MarkType uint8

// Порядок констант задаёт порядок вложенности марок при рендере.
const (
	MarkLink MarkType = iota
	MarkBold
	MarkItalic
	MarkStrike
	MarkCode
	MarkTextStyle
	MarkHighlight

	markCount
)

type MarkSpec struct {
	Type MarkType
	Name string
	// ExcludesAll - марка не сочетается ни с какими другими (code).
	ExcludesAll bool
	Attrs       []AttrSpec
}

var markSpecs = [markCount]MarkSpec{
	MarkLink: {Type: MarkLink, Name: "link", Attrs: []AttrSpec{
		{Key: "href"},
		{Key: "target", Default: "_blank"},
		{Key: "rel", Default: "noopener noreferrer"},
	}},
	MarkBold:   {Type: MarkBold, Name: "bold"},
	MarkItalic: {Type: MarkItalic, Name: "italic"},
	MarkStrike: {Type: MarkStrike, Name: "strike"},
	MarkCode:   {Type: MarkCode, Name: "code", ExcludesAll: true},
	MarkTextStyle: {Type: MarkTextStyle, Name: "textStyle", Attrs: []AttrSpec{
		{Key: "fontFamily"},
		{Key: "fontSize"},
		{Key: "color"},
	}},
	MarkHighlight: {Type: MarkHighlight, Name: "highlight", Attrs: []AttrSpec{{Key: "color"}}},
}

func (m MarkType) Spec() MarkSpec {
	if m >= markCount {
		return MarkSpec{Type: m, Name: "unknown"}
	}
	return markSpecs[m]
}

func (m MarkType) String() string {
	return m.Spec().Name
}

func MarkByName(name string) (MarkType, bool) {
	for _, s := range markSpecs {
		if s.Name == name {
			return s.Type, true
		}
	}
	return 0, false
}
