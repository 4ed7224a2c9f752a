package editor

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// textblockPath возвращает путь первого текстового блока с указанным текстом.
func textblockPath(t *testing.T, doc *edtypes.Document, text string) []int {
	t.Helper()
	var found []int
	doc.Walk(doc.Root(), func(id edtypes.NodeID, path []int) bool {
		if found == nil && doc.Node(id).Kind.IsTextblock() && doc.TextContent(id) == text {
			found = slices.Clone(path)
		}
		return found == nil
	})
	require.NotNil(t, found, "no textblock %q", text)
	return found
}

func insideList(doc *edtypes.Document, path []int) bool {
	chain, _ := doc.Resolve(path)
	return slices.ContainsFunc(chain, func(id edtypes.NodeID) bool { return doc.Node(id).Kind.IsList() })
}

type textblockRef struct {
	path []int
	size int
}

func textblocks(doc *edtypes.Document) []textblockRef {
	var res []textblockRef
	doc.Walk(doc.Root(), func(id edtypes.NodeID, path []int) bool {
		n := doc.Node(id)
		if !n.Kind.IsTextblock() {
			return !n.Kind.IsAtom()
		}
		size := 0
		for _, c := range n.Children {
			size += doc.Node(c).Size()
		}
		res = append(res, textblockRef{path: slices.Clone(path), size: size})
		return false
	})
	return res
}

func randomCommand(r *rand.Rand, doc *edtypes.Document) Command {
	blocks := textblocks(doc)
	if len(blocks) == 0 {
		blocks = []textblockRef{{path: []int{0}}}
	}
	pos := func() Position {
		b := blocks[r.IntN(len(blocks))]
		return At(r.IntN(b.size+1), b.path...)
	}
	sel := Range(pos(), pos())
	if r.IntN(3) == 0 {
		sel.Head = sel.Anchor
	}

	cmd := Command{Selection: sel}
	switch r.IntN(22) {
	case 0:
		cmd.Op, cmd.Mark = "toggleMark", "bold"
	case 1:
		cmd.Op, cmd.Mark = "toggleMark", "italic"
	case 2:
		cmd.Op, cmd.Mark = "toggleMark", "strike"
	case 3:
		cmd.Op, cmd.Level = "setHeading", 1+r.IntN(3)
	case 4:
		cmd.Op = "setParagraph"
	case 5:
		cmd.Op, cmd.Kind = "toggleList", "bulletList"
	case 6:
		cmd.Op, cmd.Kind = "toggleList", "orderedList"
	case 7:
		cmd.Op = "toggleBlockquote"
	case 8:
		cmd.Op, cmd.Text = "insertText", "xy"
	case 9:
		cmd.Op = "splitBlock"
	case 10:
		cmd.Op = "deleteSelection"
	case 11:
		cmd.Op, cmd.Href = "setLink", "https://agencia.example/blog"
	case 12:
		cmd.Op = "unsetLink"
	case 13:
		cmd.Op, cmd.Value = "setLineHeight", edtypes.LineHeights[r.IntN(len(edtypes.LineHeights))]
	case 14:
		cmd.Op, cmd.Value = "setTextAlign", edtypes.TextAlignments[r.IntN(len(edtypes.TextAlignments))]
	case 15:
		cmd.Op, cmd.Rows, cmd.Cols, cmd.Header = "insertTable", 2, 2, true
	case 16:
		cmd.Op, cmd.Attrs = "setCustomButton", map[string]string{"text": "Ir", "url": "/loja"}
	case 17:
		cmd.Op = "setHorizontalRule"
	case 18:
		cmd.Op, cmd.Key, cmd.Value = "setTextStyle", "color", "#ff0000"
	case 19:
		cmd.Op, cmd.Value = "toggleHighlight", "#ffff00"
	case 20:
		cmd.Op = "undo"
	default:
		cmd.Op = "redo"
	}
	return cmd
}

var rejections = []error{
	ErrInvalidSelection, ErrInvalidAttribute, ErrInvalidTableSize, ErrEmptyHref,
	ErrInvalidHref, ErrNotAtomic, ErrUnsupportedKind,
}

func TestRandomCommandSequences(t *testing.T) {
	const initial = `<h2>Título</h2><p>Olá <strong>mundo</strong>, texto</p>` +
		`<ul><li><p>um</p></li><li><p>dois</p><ol><li><p>três</p></li></ol></li></ul>` +
		`<blockquote><p>citação</p><ul><li><p>quatro</p></li></ul></blockquote>` +
		`<table><tr><th><p>a</p></th><th><p>b</p></th></tr><tr><td><p>c</p></td><td><p>d</p></td></tr></table>`
	const steps = 40

	seeds := 300
	if testing.Short() {
		seeds = 30
	}

	for seed := range seeds {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			r := rand.New(rand.NewPCG(uint64(seed), 7))
			e := New(initial, nil)
			start := e.HTML()

			for i := range steps {
				cmd := randomCommand(r, e.Document())
				if err := e.Exec(cmd); err != nil {
					require.True(t, slices.ContainsFunc(rejections, func(target error) bool { return errors.Is(err, target) }),
						"step %d %s: unexpected error %v", i, cmd.Op, err)
				}
				doc := e.Document()
				assertValidTree(t, doc)
				require.True(t, doc.Equal(ParseHTML(e.HTML())), "step %d %+v: %s", i, cmd, e.HTML())
			}

			end := e.HTML()
			for e.Undo() {
			}
			assert.Equal(t, start, e.HTML())
			for e.Redo() {
			}
			assert.Equal(t, end, e.HTML())
		})
	}
}
