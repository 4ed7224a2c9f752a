// Пакет редактора постов: модель документа, разбор и рендер HTML, преобразования по выделению
// и история изменений.
//
// Основные возможности:
//   - Разбор HTML-фрагмента в документ без ошибок: неизвестная разметка раскрывается, лишнее отбрасывается.
//   - Рендер документа в канонический HTML, пригодный для повторного разбора.
//   - Преобразования: марки, ссылки, типы блоков, списки, атрибуты узлов, вставка атомов и таблиц.
//   - Отмена и повтор на неизменяемых снимках документа.
package editor

import (
	"log/slog"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
)

func init() {
	edtypes.MarkupParser = ParseHTML
	edtypes.MarkupRenderer = RenderHTML
}

// compactRatio - во сколько раз арена может превышать число достижимых узлов.
const compactRatio = 4

// Editor владеет текущим снимком и историей. Не потокобезопасен: доступ к одному
// редактору сериализуется вызывающей стороной.
type Editor struct {
	doc      *edtypes.Document
	history  *history
	onChange func(markup string)
	log      *slog.Logger
}

type Option func(*Editor)

// WithHistoryDepth ограничивает число хранимых шагов отмены.
func WithHistoryDepth(depth int) Option {
	return func(e *Editor) {
		e.history = newHistory(depth)
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Editor) {
		if log != nil {
			e.log = log
		}
	}
}

// New создает редактор из начальной разметки. onChange вызывается с новым HTML
// после каждого изменения документа, включая undo и redo.
func New(markup string, onChange func(markup string), opts ...Option) *Editor {
	e := &Editor{
		doc:      ParseHTML(markup),
		history:  newHistory(DefaultHistoryDepth),
		onChange: onChange,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document возвращает текущий снимок. Снимок не должен изменяться.
func (e *Editor) Document() *edtypes.Document { return e.doc }

func (e *Editor) HTML() string { return RenderHTML(e.doc) }

func (e *Editor) CanUndo() bool { return len(e.history.undo) > 0 }
func (e *Editor) CanRedo() bool { return len(e.history.redo) > 0 }

// SetContent заменяет документ целиком, как обычное изменение с записью в историю.
func (e *Editor) SetContent(markup string) {
	next := ParseHTML(markup)
	if next.Equal(e.doc) {
		return
	}
	e.commit("setContent", next)
}

// Undo возвращает предыдущий снимок. false, если история пуста.
func (e *Editor) Undo() bool {
	prev, ok := e.history.back(e.doc)
	if !ok {
		return false
	}
	e.doc = prev
	e.notify()
	return true
}

func (e *Editor) Redo() bool {
	next, ok := e.history.forward(e.doc)
	if !ok {
		return false
	}
	e.doc = next
	e.notify()
	return true
}

// apply выполняет преобразование над копией снимка. При ошибке копия отбрасывается,
// если документ не изменился, история и onChange не затрагиваются.
func (e *Editor) apply(op string, fn func(t *tx) error) error {
	t := newTx(e.doc)
	if err := fn(t); err != nil {
		e.log.Debug("Transform rejected", "op", op, "err", err)
		return err
	}
	if !t.changed {
		return nil
	}
	t.doc.Normalize(t.doc.Root())
	if t.doc.Equal(e.doc) {
		return nil
	}
	e.commit(op, t.doc)
	return nil
}

func (e *Editor) commit(op string, next *edtypes.Document) {
	if next.Len() > compactRatio*next.Reachable()+64 {
		next = next.Compact()
	}
	e.history.push(e.doc)
	e.doc = next
	e.log.Debug("Transform applied", "op", op, "nodes", next.Len())
	e.notify()
}

func (e *Editor) notify() {
	if e.onChange != nil {
		e.onChange(e.HTML())
	}
}
