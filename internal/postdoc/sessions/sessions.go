// Сессии редактирования постов в памяти процесса.
//
// Основные возможности:
//   - Ограниченный LRU-реестр сессий: при переполнении вытесняется самая давно использованная.
//   - Последовательный доступ к редактору сессии через Do.
//   - Снимок последней разметки и признак несохраненных изменений.
//   - Удаление простаивающих сессий (SweepIdle), вызывается по расписанию.
package sessions

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/agencia-site/postdoc/internal/postdoc/editor"
	"github.com/gofrs/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrSessionClosed = errors.New("editing session is closed")

// Session - открытый в админке документ. Редактор не потокобезопасен, поэтому все обращения к нему
// идут через Do под мьютексом сессии.
type Session struct {
	ID   uuid.UUID
	Slug string

	mu       sync.Mutex
	editor   *editor.Editor
	content  string
	dirty    bool
	closed   bool
	lastUsed time.Time
	now      func() time.Time
}

// Snapshot - состояние сессии на момент вызова.
type Snapshot struct {
	ID       uuid.UUID `json:"id"`
	Slug     string    `json:"slug"`
	Content  string    `json:"content"`
	CanUndo  bool      `json:"can_undo"`
	CanRedo  bool      `json:"can_redo"`
	Dirty    bool      `json:"dirty"`
	LastUsed time.Time `json:"last_used"`
}

// Do выполняет fn с редактором сессии. Закрытая сессия возвращает ErrSessionClosed.
func (s *Session) Do(fn func(e *editor.Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.lastUsed = s.now()
	return fn(s.editor)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:       s.ID,
		Slug:     s.Slug,
		Content:  s.content,
		CanUndo:  s.editor.CanUndo(),
		CanRedo:  s.editor.CanRedo(),
		Dirty:    s.dirty,
		LastUsed: s.lastUsed,
	}
}

// MarkSaved снимает признак изменений, если с момента снимка content документ не менялся.
func (s *Session) MarkSaved(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.content == content {
		s.dirty = false
	}
}

func (s *Session) idleSince(t time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.Sub(s.lastUsed)
}

func (s *Session) close() (dirty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.dirty
}

func (s *Session) onChange(markup string) {
	// вызывается редактором внутри Do, мьютекс уже захвачен
	s.content = markup
	s.dirty = true
}

type Manager struct {
	cache        *lru.Cache[uuid.UUID, *Session]
	historyDepth int
	now          func() time.Time
}

type Option func(*Manager)

func WithHistoryDepth(depth int) Option {
	return func(m *Manager) {
		m.historyDepth = depth
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager создает реестр не более чем на size сессий.
func NewManager(size int, opts ...Option) (*Manager, error) {
	m := &Manager{
		historyDepth: editor.DefaultHistoryDepth,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	cache, err := lru.NewWithEvict(size, m.release)
	if err != nil {
		return nil, err
	}
	m.cache = cache
	return m, nil
}

// release вызывается кешем при вытеснении и при удалении сессии.
func (m *Manager) release(id uuid.UUID, s *Session) {
	if s.close() {
		slog.Warn("Editing session released with unsaved changes", "id", id, "slug", s.Slug)
		return
	}
	slog.Info("Editing session released", "id", id, "slug", s.Slug)
}

// Open создает сессию для поста slug с начальной разметкой content.
func (m *Manager) Open(slug, content string) (*Session, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:       id,
		Slug:     slug,
		lastUsed: m.now(),
		now:      m.now,
	}
	s.editor = editor.New(content, s.onChange, editor.WithHistoryDepth(m.historyDepth))
	s.content = s.editor.HTML()

	m.cache.Add(id, s)
	slog.Info("Editing session opened", "id", id, "slug", slug, "sessions", m.cache.Len())
	return s, nil
}

// Get возвращает сессию и отмечает ее как недавно использованную.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	return m.cache.Get(id)
}

// Close удаляет сессию. false, если сессии нет.
func (m *Manager) Close(id uuid.UUID) bool {
	return m.cache.Remove(id)
}

func (m *Manager) Len() int {
	return m.cache.Len()
}

// SweepIdle удаляет сессии, которые не использовались дольше maxIdle. Возвращает число удаленных.
func (m *Manager) SweepIdle(maxIdle time.Duration) int {
	now := m.now()
	removed := 0
	for _, id := range m.cache.Keys() {
		s, ok := m.cache.Peek(id)
		if !ok || s.idleSince(now) < maxIdle {
			continue
		}
		if m.cache.Remove(id) {
			removed++
		}
	}
	if removed > 0 {
		slog.Info("Idle editing sessions removed", "count", removed, "sessions", m.cache.Len())
	}
	return removed
}
