// Package session управляет пакетом файлов на переименование:
// приём, выбор, редактирование имён и последовательная обработка.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/extract"
	"github.com/ilkoid/airename/pkg/naming"
	"github.com/ilkoid/airename/pkg/utils"
)

// Session — пакет файлов одного пользователя.
//
// Thread-safe: HTTP сервер и TUI читают состояние во время обработки.
type Session struct {
	mu        sync.RWMutex
	id        string
	createdAt time.Time
	limits    config.LimitsConfig

	entries  []*FileEntry
	selected map[string]bool
	running  bool
}

// New создаёт пустую сессию с лимитами из конфига.
func New(limits config.LimitsConfig) *Session {
	return &Session{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		limits:    limits.GetDefaults(),
		selected:  make(map[string]bool),
	}
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt возвращает время создания сессии.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Add принимает файлы, проверяя тип, размер и лимит количества.
//
// Возвращает id принятых файлов и причины отказа для остальных.
// Если не принят ни один файл, возвращает ErrNoValidFiles.
func (s *Session) Add(sources ...extract.Source) ([]string, []Rejection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		accepted []string
		rejected []Rejection
	)

	for _, src := range sources {
		switch {
		case !extract.Supported(src.Name):
			rejected = append(rejected, Rejection{Name: src.Name, Reason: ReasonUnsupported})
		case src.Size() > s.limits.MaxFileSize():
			rejected = append(rejected, Rejection{Name: src.Name, Reason: ReasonTooLarge})
		case len(s.entries) >= s.limits.MaxFiles:
			rejected = append(rejected, Rejection{Name: src.Name, Reason: ReasonTooMany})
		default:
			entry := &FileEntry{
				ID:           uuid.NewString(),
				Source:       src,
				OriginalName: src.Name,
				Size:         src.Size(),
				State:        StatePending,
			}
			s.entries = append(s.entries, entry)
			accepted = append(accepted, entry.ID)
		}
	}

	for _, r := range rejected {
		utils.Warn("File rejected", "session", s.id, "file", r.Name, "reason", r.Reason)
	}

	if len(accepted) == 0 {
		return nil, rejected, ErrNoValidFiles
	}

	utils.Info("Files added", "session", s.id, "accepted", len(accepted), "rejected", len(rejected))
	return accepted, rejected, nil
}

// Entries возвращает копии всех файлов в порядке загрузки.
func (s *Session) Entries() []FileEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FileEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = *e
	}
	return out
}

// Entry возвращает копию файла по id.
func (s *Session) Entry(id string) (FileEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, _ := s.find(id)
	if e == nil {
		return FileEntry{}, false
	}
	return *e, true
}

// Len возвращает число файлов.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Running сообщает, идёт ли обработка.
func (s *Session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Pending возвращает число необработанных файлов.
func (s *Session) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countPending()
}

// Select отмечает файл.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, _ := s.find(id); e == nil {
		return fmt.Errorf("%s: %w", id, ErrEntryNotFound)
	}
	s.selected[id] = true
	return nil
}

// Deselect снимает отметку.
func (s *Session) Deselect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, id)
}

// Toggle переключает отметку и возвращает новое значение.
func (s *Session) Toggle(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, _ := s.find(id); e == nil {
		return false, fmt.Errorf("%s: %w", id, ErrEntryNotFound)
	}
	if s.selected[id] {
		delete(s.selected, id)
		return false, nil
	}
	s.selected[id] = true
	return true, nil
}

// SelectAll отмечает все файлы.
func (s *Session) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		s.selected[e.ID] = true
	}
}

// ClearSelection снимает все отметки.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]bool)
}

// IsSelected сообщает, отмечен ли файл.
func (s *Session) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// AllSelected сообщает, отмечены ли все файлы (и есть ли они вообще).
func (s *Session) AllSelected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries) > 0 && len(s.selected) == len(s.entries)
}

// Selected возвращает отмеченные файлы в порядке сессии.
func (s *Session) Selected() []FileEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []FileEntry
	for _, e := range s.entries {
		if s.selected[e.ID] {
			out = append(out, *e)
		}
	}
	return out
}

// StartEdit переводит обработанный файл в режим редактирования.
func (s *Session) StartEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _ := s.find(id)
	if e == nil {
		return fmt.Errorf("%s: %w", id, ErrEntryNotFound)
	}
	if !e.State.Done() {
		return ErrNotEditable
	}
	e.Editing = true
	return nil
}

// CommitEdit сохраняет новое имя. Пустые и недопустимые имена отклоняются,
// файл остаётся в режиме редактирования.
func (s *Session) CommitEdit(id, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _ := s.find(id)
	if e == nil {
		return fmt.Errorf("%s: %w", id, ErrEntryNotFound)
	}
	if !e.State.Done() {
		return ErrNotEditable
	}

	name := strings.TrimSpace(newName)
	if err := naming.ValidateName(name); err != nil {
		return fmt.Errorf("invalid name %q: %w", newName, err)
	}

	e.EditedName = name
	e.Editing = false
	utils.Debug("Name edited", "session", s.id, "file", e.OriginalName, "name", name)
	return nil
}

// CancelEdit возвращает EditedName к предложенному имени.
func (s *Session) CancelEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _ := s.find(id)
	if e == nil {
		return fmt.Errorf("%s: %w", id, ErrEntryNotFound)
	}
	if !e.Editing {
		return ErrNotEditing
	}
	e.EditedName = e.SuggestedName
	e.Editing = false
	return nil
}

// Remove удаляет файл и его отметку. Файл в обработке удалить нельзя.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, i := s.find(id)
	if e == nil {
		return fmt.Errorf("%s: %w", id, ErrEntryNotFound)
	}
	if e.State == StateExtracting || e.State == StateAwaitingSuggestion {
		return ErrNotEditable
	}

	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	delete(s.selected, id)
	return nil
}

// find ищет файл по id. Вызывается под мьютексом.
func (s *Session) find(id string) (*FileEntry, int) {
	for i, e := range s.entries {
		if e.ID == id {
			return e, i
		}
	}
	return nil, -1
}

func (s *Session) countPending() int {
	n := 0
	for _, e := range s.entries {
		if e.State == StatePending {
			n++
		}
	}
	return n
}
