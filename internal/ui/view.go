// Рендер
package ui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ilkoid/airename/pkg/session"
)

// previewLines — сколько строк извлечённого текста показывать.
const previewLines = 6

func (m MainModel) View() string {
	if !m.ready {
		return "Initializing UI..."
	}

	sess := m.deps.Session
	entries := sess.Entries()

	// Строка статуса (Header), растянутая на всю ширину
	status := fmt.Sprintf("AIRENAME | MODEL: %s | FILES: %d | SELECTED: %d",
		m.deps.Model, len(entries), len(sess.Selected()))
	if m.batch.running {
		status += " | RUNNING"
	}
	header := m.styles.header.Width(m.width).Render(status)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(m.styles.dim.Render("No files in session"))
		b.WriteString("\n")
	}
	for i, e := range entries {
		b.WriteString(m.renderEntry(i, e, sess.IsSelected(e.ID)))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.border.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")

	if e, ok := m.currentEntry(); ok {
		if p := m.renderPreview(e); p != "" {
			b.WriteString(p)
			b.WriteString("\n")
		}
	}

	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(m.styles.errorMsg.Render("Error: " + m.err.Error()))
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n")

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderEntry рисует строку файла: курсор, отметку, состояние и имена.
func (m MainModel) renderEntry(i int, e session.FileEntry, selected bool) string {
	pointer := "  "
	if i == m.cursor {
		pointer = m.styles.cursor.Render("> ")
	}

	check := "[ ]"
	if selected {
		check = "[x]"
	}

	name := e.EditedName
	if name == "" {
		name = "…"
	}
	line := fmt.Sprintf("%s %s %s %s", check, m.styles.marker(e.State),
		m.styles.dim.Render(e.OriginalName+" →"), name)
	if e.State == session.StateFailed && e.Err != "" {
		line += m.styles.dim.Render("  (" + e.Err + ")")
	}

	if m.width > 4 {
		line = truncate.StringWithTail(line, uint(m.width-2), "…")
	}
	return pointer + line
}

// renderPreview показывает начало извлечённого текста файла.
func (m MainModel) renderPreview(e session.FileEntry) string {
	text := strings.TrimSpace(e.ExtractedContent)
	if text == "" {
		return ""
	}

	width := m.width - 4
	if width < 20 {
		width = 20
	}
	lines := strings.Split(wordwrap.String(text, width), "\n")
	if len(lines) > previewLines {
		lines = append(lines[:previewLines], "…")
	}

	body := e.Summary
	if body != "" {
		body = indent.String(wordwrap.String(body, width-2), 2) + "\n"
	}
	return m.styles.preview.Render(body + strings.Join(lines, "\n"))
}
