package editor

import "github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"

const DefaultHistoryDepth = 100

// history хранит снимки документа. Новая правка очищает redo, при переполнении
// выбрасывается самый старый снимок.
type history struct {
	depth int
	undo  []*edtypes.Document
	redo  []*edtypes.Document
}

func newHistory(depth int) *history {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &history{depth: depth}
}

func (h *history) push(prev *edtypes.Document) {
	h.undo = append(h.undo, prev)
	if len(h.undo) > h.depth {
		h.undo[0] = nil
		h.undo = h.undo[1:]
	}
	clear(h.redo)
	h.redo = h.redo[:0]
}

func (h *history) back(cur *edtypes.Document) (*edtypes.Document, bool) {
	if len(h.undo) == 0 {
		return cur, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo[len(h.undo)-1] = nil
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cur)
	return prev, true
}

func (h *history) forward(cur *edtypes.Document) (*edtypes.Document, bool) {
	if len(h.redo) == 0 {
		return cur, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo[len(h.redo)-1] = nil
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cur)
	return next, true
}
