package edtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindByName(t *testing.T) {
	for k := KindDoc; k < kindCount; k++ {
		t.Run(k.String(), func(t *testing.T) {
			got, ok := KindByName(k.String())
			assert.True(t, ok)
			assert.Equal(t, k, got)
		})
	}

	_, ok := KindByName("spoiler")
	assert.False(t, ok)
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		name   string
		parent Kind
		child  Kind
		want   bool
	}{
		{"doc accepts paragraph", KindDoc, KindParagraph, true},
		{"doc accepts button", KindDoc, KindButton, true},
		{"doc rejects text", KindDoc, KindText, false},
		{"doc rejects list item", KindDoc, KindListItem, false},
		{"paragraph accepts text", KindParagraph, KindText, true},
		{"paragraph accepts image", KindParagraph, KindImage, true},
		{"paragraph rejects button", KindParagraph, KindButton, false},
		{"code block rejects hard break", KindCodeBlock, KindHardBreak, false},
		{"list accepts item only", KindBulletList, KindParagraph, false},
		{"table row accepts header", KindTableRow, KindTableHeader, true},
		{"cell accepts table", KindTableCell, KindTable, true},
		{"button accepts nothing", KindButton, KindText, false},
		{"hr accepts nothing", KindHorizontalRule, KindParagraph, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.parent.Accepts(tt.child))
		})
	}
}

func TestAttrSpecValid(t *testing.T) {
	lh, ok := KindParagraph.Spec().Attr("lineHeight")
	assert.True(t, ok)
	assert.Equal(t, DefaultLineHeight, lh.Default)

	for _, v := range LineHeights {
		assert.True(t, lh.Valid(v), v)
	}
	assert.False(t, lh.Valid("1.2"))
	assert.False(t, lh.Valid(""))

	text, _ := KindButton.Spec().Attr("text")
	assert.True(t, text.Valid("Qualquer texto"))
	assert.Equal(t, ButtonDefaultText, text.Default)
}

func TestButtonIsBlockAtom(t *testing.T) {
	spec := KindButton.Spec()
	assert.True(t, spec.Atom)
	assert.Equal(t, CategoryBlock, spec.Category)
	assert.True(t, spec.IsLeaf())
	assert.Equal(t, "customButton", spec.Name)
}
