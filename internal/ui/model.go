// Package ui реализует экран просмотра переименований на Bubble Tea.
//
// Экран показывает файлы сессии с состояниями, даёт отметить, переименовать
// вручную, удалить, запустить или приостановить пакет и выгрузить архив.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/airename/pkg/events"
	"github.com/ilkoid/airename/pkg/session"
	"github.com/ilkoid/airename/pkg/tui"
)

// ProcessFunc запускает пакет, см. app.Components.Process.
type ProcessFunc func(ctx context.Context, sess *session.Session, token *session.PauseToken, emitter events.Emitter) (session.BatchResult, error)

// ExportFunc выгружает файлы и возвращает, куда записан архив.
type ExportFunc func(ctx context.Context, entries []session.FileEntry) (string, error)

// Deps — всё, что экрану нужно снаружи.
type Deps struct {
	Session *session.Session
	Process ProcessFunc
	Export  ExportFunc
	Model   string // Имя модели для заголовка
	Colors  string // Имя цветовой схемы
}

// batchDoneMsg — Process вернулся.
type batchDoneMsg struct {
	Result session.BatchResult
	Err    error
}

// exportDoneMsg — архив записан.
type exportDoneMsg struct {
	Location string
	Err      error
}

// batchState хранит состояние фонового пакета.
//
// MainModel хранит указатель, поэтому копия модели в Update видит
// те же значения. Меняется только из Update.
type batchState struct {
	running bool
	token   *session.PauseToken
	sub     events.Subscriber
}

// MainModel представляет главную модель UI (Bubble Tea Model).
type MainModel struct {
	ctx  context.Context
	deps Deps

	keys   tui.KeyMap
	help   help.Model
	styles styles

	cursor  int
	editing bool
	editID  string
	input   textinput.Model

	batch *batchState

	status string
	err    error

	width  int
	height int
	ready  bool
}

// InitialModel создает начальное состояние UI.
//
// ctx ограничивает фоновые пакеты: его отмена прерывает запрос к модели.
func InitialModel(ctx context.Context, deps Deps) MainModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 255
	ti.Cursor.SetMode(cursor.CursorStatic)

	return MainModel{
		ctx:    ctx,
		deps:   deps,
		keys:   tui.DefaultKeyMap(),
		help:   help.New(),
		styles: newStyles(tui.GetColorScheme(deps.Colors)),
		input:  ti,
		batch:  &batchState{token: session.NewPauseToken()},
		status: "Press p to start naming",
	}
}

// Init запускается один раз при старте Bubble Tea программы.
func (m MainModel) Init() tea.Cmd {
	return nil
}

// Running сообщает, идёт ли пакет.
func (m MainModel) Running() bool {
	return m.batch.running
}

// currentEntry возвращает файл под курсором.
func (m MainModel) currentEntry() (session.FileEntry, bool) {
	entries := m.deps.Session.Entries()
	if len(entries) == 0 {
		return session.FileEntry{}, false
	}
	i := m.cursor
	if i >= len(entries) {
		i = len(entries) - 1
	}
	return entries[i], true
}

func (m *MainModel) clampCursor() {
	n := m.deps.Session.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *MainModel) setStatus(s string) {
	m.status = s
	m.err = nil
}

func (m *MainModel) setError(err error) {
	m.err = err
}
