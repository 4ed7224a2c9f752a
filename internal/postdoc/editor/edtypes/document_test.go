package edtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textNode(d *Document, text string, marks ...Mark) NodeID {
	var ms MarkSet
	for _, m := range marks {
		ms = ms.Add(m)
	}
	return d.Add(Node{Kind: KindText, Text: text, Marks: ms})
}

func TestMarkSetAdd(t *testing.T) {
	bold := Mark{Type: MarkBold}
	italic := Mark{Type: MarkItalic}
	code := Mark{Type: MarkCode}

	t.Run("sorted by type", func(t *testing.T) {
		s := MarkSet{}.Add(italic).Add(bold)
		require.Len(t, s, 2)
		assert.Equal(t, MarkBold, s[0].Type)
		assert.Equal(t, MarkItalic, s[1].Type)
	})

	t.Run("same type replaced", func(t *testing.T) {
		s := MarkSet{}.Add(Mark{Type: MarkLink, Attrs: Attrs{"href": "/a"}}).
			Add(Mark{Type: MarkLink, Attrs: Attrs{"href": "/b"}})
		require.Len(t, s, 1)
		assert.Equal(t, "/b", s[0].Attr("href"))
	})

	t.Run("code excludes others", func(t *testing.T) {
		s := MarkSet{}.Add(bold).Add(code)
		assert.Equal(t, MarkSet{code}, s)
		assert.Equal(t, MarkSet{code}, s.Add(italic))
	})

	t.Run("remove", func(t *testing.T) {
		s := MarkSet{}.Add(bold).Add(italic).Remove(MarkBold)
		assert.True(t, s.Eq(MarkSet{italic}))
	})
}

func TestMarkEqUsesDefaults(t *testing.T) {
	a := Mark{Type: MarkLink, Attrs: Attrs{"href": "/x"}}
	b := Mark{Type: MarkLink, Attrs: Attrs{"href": "/x", "target": "_blank"}}
	assert.True(t, a.Eq(b))

	c := Mark{Type: MarkLink, Attrs: Attrs{"href": "/x", "target": "_self"}}
	assert.False(t, a.Eq(c))
}

func TestNormalize(t *testing.T) {
	t.Run("empty document gets paragraph", func(t *testing.T) {
		d := NewBlankDocument()
		d.Normalize(d.Root())
		children := d.Children(d.Root())
		require.Len(t, children, 1)
		assert.Equal(t, KindParagraph, d.Node(children[0]).Kind)
	})

	t.Run("adjacent texts merged", func(t *testing.T) {
		d := NewBlankDocument()
		bold := Mark{Type: MarkBold}
		p := d.Add(Node{Kind: KindParagraph, Children: []NodeID{
			textNode(d, "a", bold), textNode(d, "b", bold), textNode(d, ""), textNode(d, "c"),
		}})
		d.SetChildren(d.Root(), []NodeID{p})
		d.Normalize(d.Root())

		children := d.Children(p)
		require.Len(t, children, 2)
		assert.Equal(t, "ab", d.Node(children[0]).Text)
		assert.Equal(t, "c", d.Node(children[1]).Text)
	})

	t.Run("invalid children dropped", func(t *testing.T) {
		d := NewBlankDocument()
		btn := d.Add(Node{Kind: KindButton, Children: []NodeID{textNode(d, "x")}})
		p := d.Add(Node{Kind: KindParagraph, Children: []NodeID{d.Add(Node{Kind: KindButton})}})
		d.SetChildren(d.Root(), []NodeID{textNode(d, "loose"), btn, p})
		d.Normalize(d.Root())

		children := d.Children(d.Root())
		require.Len(t, children, 2)
		assert.Empty(t, d.Children(btn))
		assert.Empty(t, d.Children(p))
	})

	t.Run("empty containers filled", func(t *testing.T) {
		d := NewBlankDocument()
		list := d.Add(Node{Kind: KindBulletList})
		table := d.Add(Node{Kind: KindTable})
		d.SetChildren(d.Root(), []NodeID{list, table})
		d.Normalize(d.Root())

		item := d.Node(d.Children(list)[0])
		assert.Equal(t, KindListItem, item.Kind)
		assert.Equal(t, KindParagraph, d.Node(item.Children[0]).Kind)

		row := d.Node(d.Children(table)[0])
		assert.Equal(t, KindTableRow, row.Kind)
		cell := d.Node(row.Children[0])
		assert.Equal(t, KindTableCell, cell.Kind)
	})

	t.Run("code block keeps plain text", func(t *testing.T) {
		d := NewBlankDocument()
		code := d.Add(Node{Kind: KindCodeBlock, Children: []NodeID{
			textNode(d, "a", Mark{Type: MarkBold}), d.Add(Node{Kind: KindHardBreak}), textNode(d, "b"),
		}})
		d.SetChildren(d.Root(), []NodeID{code})
		d.Normalize(d.Root())

		children := d.Children(code)
		require.Len(t, children, 1)
		assert.Equal(t, "ab", d.Node(children[0]).Text)
		assert.Empty(t, d.Node(children[0]).Marks)
	})
}

func TestCloneIsolation(t *testing.T) {
	d := NewDocument()
	p := d.Children(d.Root())[0]

	c := d.Clone()
	c.SetChildren(p, []NodeID{c.Add(Node{Kind: KindText, Text: "novo"})})
	c.SetAttrs(p, Attrs{"lineHeight": "2"})

	assert.Empty(t, d.Children(p))
	assert.Equal(t, DefaultLineHeight, d.Node(p).Attr("lineHeight"))
	assert.Equal(t, "novo", c.TextContent(c.Root()))
	assert.False(t, d.Equal(c))
}

func TestEqualIgnoresExplicitDefaults(t *testing.T) {
	a := NewDocument()
	b := NewDocument()
	b.SetAttrs(b.Children(b.Root())[0], Attrs{"lineHeight": DefaultLineHeight})
	assert.True(t, a.Equal(b))
}

func TestCompactKeepsContent(t *testing.T) {
	d := NewDocument()
	p := d.Children(d.Root())[0]
	for range 10 {
		d.SetChildren(p, []NodeID{d.Add(Node{Kind: KindText, Text: "x"})})
	}
	assert.Equal(t, 12, d.Len())
	assert.Equal(t, 3, d.Reachable())

	c := d.Compact()
	assert.Equal(t, 3, c.Len())
	assert.True(t, d.Equal(c))
}

func TestResolve(t *testing.T) {
	d := NewBlankDocument()
	text := textNode(d, "abc")
	p := d.Add(Node{Kind: KindParagraph, Children: []NodeID{text}})
	d.SetChildren(d.Root(), []NodeID{p})

	chain, ok := d.Resolve([]int{0, 0})
	require.True(t, ok)
	assert.Equal(t, []NodeID{d.Root(), p, text}, chain)

	_, ok = d.Resolve([]int{1})
	assert.False(t, ok)
}
