// Логика - обрабатывает нажатия клавиш, события пакета и результаты команд.

package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/airename/pkg/archive"
	"github.com/ilkoid/airename/pkg/events"
	"github.com/ilkoid/airename/pkg/tui"
)

// eventBuffer — ёмкость канала событий одного запуска.
const eventBuffer = 64

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// 1. Изменение размера окна терминала
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 6
		m.ready = true
		return m, nil

	// 2. Клавиши
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)

	// 3. События пакета
	case tui.EventMsg:
		// Хвост буфера после batchDoneMsg только вычитываем
		if m.batch.running {
			m.applyEvent(events.Event(msg))
		}
		return m, tui.WaitForEvent(m.batch.sub, tui.ToEventMsg)

	case batchDoneMsg:
		m.batch.running = false
		switch {
		case msg.Err != nil:
			m.setError(msg.Err)
		case msg.Result.Paused:
			m.setStatus(fmt.Sprintf("Paused, %d left. Press p to resume", msg.Result.Remaining))
		default:
			m.setStatus(fmt.Sprintf("Done: %d named, %d kept original name", msg.Result.Ready, msg.Result.Failed))
		}
		return m, nil

	case exportDoneMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
		} else {
			m.setStatus("Archive saved: " + msg.Location)
		}
		return m, nil
	}

	return m, nil
}

// updateBrowsing обрабатывает клавиши в режиме списка.
func (m MainModel) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sess := m.deps.Session

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.batch.token.Pause()
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < sess.Len()-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		if e, ok := m.currentEntry(); ok {
			if _, err := sess.Toggle(e.ID); err != nil {
				m.setError(err)
			}
		}

	case key.Matches(msg, m.keys.SelectAll):
		if sess.AllSelected() {
			sess.ClearSelection()
		} else {
			sess.SelectAll()
		}

	case key.Matches(msg, m.keys.Process):
		return m.startBatch()

	case key.Matches(msg, m.keys.Pause):
		if m.batch.running {
			m.batch.token.Pause()
			m.setStatus("Pausing after the current file...")
		}

	case key.Matches(msg, m.keys.Edit):
		e, ok := m.currentEntry()
		if !ok {
			break
		}
		if err := sess.StartEdit(e.ID); err != nil {
			m.setError(err)
			break
		}
		m.editing = true
		m.editID = e.ID
		m.input.SetValue(e.EditedName)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Remove):
		if e, ok := m.currentEntry(); ok {
			if err := sess.Remove(e.ID); err != nil {
				m.setError(err)
				break
			}
			m.clampCursor()
			m.setStatus("Removed " + e.OriginalName)
		}

	case key.Matches(msg, m.keys.Export):
		return m.startExport()
	}

	return m, nil
}

// updateEditing обрабатывает клавиши в режиме ввода имени.
func (m MainModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if err := m.deps.Session.CommitEdit(m.editID, m.input.Value()); err != nil {
			// Остаёмся в режиме ввода
			m.setError(err)
			return m, nil
		}
		m.stopEditing()
		m.setStatus("Name updated")
		return m, nil

	case tea.KeyEsc:
		if err := m.deps.Session.CancelEdit(m.editID); err != nil {
			m.setError(err)
		}
		m.stopEditing()
		return m, nil

	case tea.KeyCtrlC:
		_ = m.deps.Session.CancelEdit(m.editID)
		m.batch.token.Pause()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *MainModel) stopEditing() {
	m.editing = false
	m.editID = ""
	m.input.Blur()
	m.input.Reset()
}

// startBatch запускает Process в фоне и подписывается на его события.
func (m MainModel) startBatch() (tea.Model, tea.Cmd) {
	if m.batch.running {
		return m, nil
	}
	if m.deps.Session.Pending() == 0 {
		m.setStatus("Nothing to process")
		return m, nil
	}

	m.batch.token.Reset()
	m.batch.running = true

	emitter := events.NewChanEmitter(eventBuffer)
	m.batch.sub = emitter.Subscribe()
	m.setStatus("Naming files...")

	ctx, sess, token, process := m.ctx, m.deps.Session, m.batch.token, m.deps.Process
	run := func() tea.Msg {
		defer emitter.Close()
		res, err := process(ctx, sess, token, emitter)
		return batchDoneMsg{Result: res, Err: err}
	}

	return m, tea.Batch(run, tui.ReceiveEventCmd(m.batch.sub, tui.ToEventMsg))
}

// startExport выгружает отмеченные файлы.
func (m MainModel) startExport() (tea.Model, tea.Cmd) {
	selected := m.deps.Session.Selected()
	if len(selected) == 0 {
		m.setError(archive.ErrEmptySelection)
		return m, nil
	}

	m.setStatus(fmt.Sprintf("Exporting %d files...", len(selected)))

	ctx, export := m.ctx, m.deps.Export
	return m, func() tea.Msg {
		loc, err := export(ctx, selected)
		return exportDoneMsg{Location: loc, Err: err}
	}
}

// applyEvent обновляет строку статуса по событию пакета.
func (m *MainModel) applyEvent(ev events.Event) {
	switch data := ev.Data.(type) {
	case events.FileData:
		m.setStatus(fmt.Sprintf("[%d/%d] %s", data.Index+1, data.Total, data.OriginalName))
	case events.FileResultData:
		if ev.Type == events.EventFileFailed {
			m.setStatus(fmt.Sprintf("%s: kept original name (%v)", data.OriginalName, data.Err))
		} else {
			m.setStatus(fmt.Sprintf("%s → %s", data.OriginalName, data.Name))
		}
	case events.BatchData:
		if ev.Type == events.EventBatchPaused {
			m.setStatus(fmt.Sprintf("Paused, %d left", data.Remaining))
		}
	}
}
