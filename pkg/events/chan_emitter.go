package events

import (
	"context"
	"sync"
	"sync/atomic"
)

// ChanEmitter — реализация Emitter через буферизованный канал.
//
// Thread-safe. При переполненном буфере Emit не блокирует обработку:
// событие отбрасывается, счётчик Dropped растёт.
type ChanEmitter struct {
	mu      sync.RWMutex
	ch      chan Event
	closed  bool
	dropped atomic.Int64
}

// NewChanEmitter создаёт новый ChanEmitter с буферизованным каналом.
func NewChanEmitter(buffer int) *ChanEmitter {
	return &ChanEmitter{
		ch: make(chan Event, buffer),
	}
}

// Emit отправляет событие в канал.
//
// После Close и при отменённом context событие не отправляется.
func (e *ChanEmitter) Emit(ctx context.Context, event Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed || ctx.Err() != nil {
		return
	}

	select {
	case e.ch <- event:
	default:
		e.dropped.Add(1)
	}
}

// Dropped возвращает число событий, не поместившихся в буфер.
func (e *ChanEmitter) Dropped() int {
	return int(e.dropped.Load())
}

// Subscribe возвращает Subscriber для чтения событий.
//
// Все подписчики читают один общий канал.
func (e *ChanEmitter) Subscribe() Subscriber {
	return &chanSubscriber{ch: e.ch}
}

// Close закрывает канал. Повторный вызов безопасен.
func (e *ChanEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.ch)
}

// chanSubscriber реализует Subscriber интерфейс.
type chanSubscriber struct {
	ch <-chan Event
}

// Events возвращает read-only канал событий.
func (s *chanSubscriber) Events() <-chan Event {
	return s.ch
}

// Close — no-op: канал общий и закрывается через ChanEmitter.Close().
func (s *chanSubscriber) Close() {}

var _ Emitter = (*ChanEmitter)(nil)

var _ Subscriber = (*chanSubscriber)(nil)
