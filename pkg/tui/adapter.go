// Package tui — переиспользуемые helpers для подключения Bubble Tea TUI
// к событиям пакетной обработки.
//
// Port & Adapter паттерн:
//   - pkg/events.* — Port (интерфейсы)
//   - pkg/tui.* — Adapter helpers
//   - internal/ui.* — конкретный экран просмотра
//
// # Basic Usage
//
//	emitter := events.NewChanEmitter(64)
//	sub := emitter.Subscribe()
//
//	cmd := tui.ReceiveEventCmd(sub, func(event events.Event) tea.Msg {
//	    return tui.EventMsg(event)
//	})
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/airename/pkg/events"
)

// EventMsg — events.Event в виде Bubble Tea сообщения.
type EventMsg events.Event

// ReceiveEventCmd возвращает Cmd, который ждёт одно событие из Subscriber.
//
// Закрытый канал означает конец пакета: Cmd возвращает nil и чтение
// прекращается, программа продолжает работу.
func ReceiveEventCmd(sub events.Subscriber, converter func(events.Event) tea.Msg) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-sub.Events()
		if !ok {
			return nil
		}
		return converter(event)
	}
}

// WaitForEvent продолжает чтение после обработки очередного события:
//
//	case tui.EventMsg:
//	    // ... обработка события
//	    return m, tui.WaitForEvent(sub, converter)
func WaitForEvent(sub events.Subscriber, converter func(events.Event) tea.Msg) tea.Cmd {
	return ReceiveEventCmd(sub, converter)
}

// ToEventMsg — конвертер по умолчанию.
func ToEventMsg(event events.Event) tea.Msg {
	return EventMsg(event)
}
