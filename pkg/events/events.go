// Package events — Port для подписки на прогресс пакетной обработки.
//
// Сессия переименования публикует события через Emitter, а TUI, HTTP
// сервер и CLI читают их через Subscriber, не завися друг от друга.
//
// # Basic Usage
//
//	emitter := events.NewChanEmitter(64)
//	go sess.Process(ctx, ex, namer, token, session.WithEmitter(emitter))
//
//	for event := range emitter.Subscribe().Events() {
//	    switch event.Type {
//	    case events.EventFileDone:
//	        ui.markReady(event.Data.(events.FileResultData))
//	    case events.EventBatchDone:
//	        ui.finish()
//	    }
//	}
//
// # Thread Safety
//
// Все реализации интерфейсов должны быть thread-safe.
package events

import (
	"context"
	"time"
)

// EventType представляет тип события обработки.
type EventType string

const (
	// EventBatchStarted — пакет запущен (или возобновлён).
	EventBatchStarted EventType = "batch_started"

	// EventFileStarted — начата обработка файла.
	EventFileStarted EventType = "file_started"

	// EventFileDone — файл получил предложенное имя.
	EventFileDone EventType = "file_done"

	// EventFileFailed — именование не удалось, файлу оставлено исходное имя.
	EventFileFailed EventType = "file_failed"

	// EventBatchPaused — пакет остановлен по PauseToken.
	EventBatchPaused EventType = "batch_paused"

	// EventBatchDone — необработанных файлов не осталось.
	EventBatchDone EventType = "batch_done"
)

// EventData — sealed interface для данных события.
//
// Только типы из пакета events могут реализовать этот интерфейс.
type EventData interface {
	eventData()
}

// BatchData содержит данные для EventBatchStarted, EventBatchPaused и EventBatchDone.
type BatchData struct {
	Total     int // Файлов в сессии
	Remaining int // Ещё в состоянии Pending
	Processed int // Обработано за этот запуск
}

func (BatchData) eventData() {}

// FileData содержит данные для EventFileStarted.
type FileData struct {
	EntryID      string
	OriginalName string
	Index        int // Позиция в сессии, с нуля
	Total        int
}

func (FileData) eventData() {}

// FileResultData содержит данные для EventFileDone и EventFileFailed.
type FileResultData struct {
	EntryID      string
	OriginalName string
	Name         string // Предложенное имя или fallback
	Duration     time.Duration
	Err          error // Только для EventFileFailed
}

func (FileResultData) eventData() {}

// Event представляет событие обработки.
type Event struct {
	Type      EventType
	Data      EventData
	Timestamp time.Time
}

// New создаёт событие с текущим временем.
func New(t EventType, data EventData) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// Emitter — Port для отправки событий.
type Emitter interface {
	// Emit отправляет событие.
	//
	// Если context отменён, операция должна прерваться.
	Emit(ctx context.Context, event Event)
}

// Subscriber позволяет читать события из канала.
type Subscriber interface {
	// Events возвращает read-only канал событий.
	//
	// Канал закрывается при закрытии эмиттера.
	Events() <-chan Event

	// Close освобождает ресурсы подписчика.
	Close()
}

// Nop — Emitter, который отбрасывает все события.
type Nop struct{}

// Emit ничего не делает.
func (Nop) Emit(context.Context, Event) {}

var _ Emitter = Nop{}
