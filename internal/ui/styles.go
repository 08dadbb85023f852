// Красота

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ilkoid/airename/pkg/session"
	"github.com/ilkoid/airename/pkg/tui"
)

type styles struct {
	header   lipgloss.Style
	border   lipgloss.Style
	cursor   lipgloss.Style
	dim      lipgloss.Style
	errorMsg lipgloss.Style
	preview  lipgloss.Style

	states map[session.State]lipgloss.Style
}

// newStyles строит стили по цветовой схеме.
func newStyles(c tui.ColorScheme) styles {
	working := lipgloss.NewStyle().Foreground(c.Working)

	return styles{
		header: lipgloss.NewStyle().
			Foreground(c.StatusForeground).
			Background(c.StatusBackground).
			Padding(0, 1).
			Bold(true),
		border:   lipgloss.NewStyle().Foreground(c.Border),
		cursor:   lipgloss.NewStyle().Foreground(c.Cursor).Bold(true),
		dim:      lipgloss.NewStyle().Foreground(c.Dim),
		errorMsg: lipgloss.NewStyle().Foreground(c.Error).Bold(true),
		preview: lipgloss.NewStyle().
			Foreground(c.Dim).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(c.Border).
			PaddingLeft(1),
		states: map[session.State]lipgloss.Style{
			session.StatePending:            lipgloss.NewStyle().Foreground(c.Pending),
			session.StateExtracting:         working,
			session.StateAwaitingSuggestion: working,
			session.StateReady:              lipgloss.NewStyle().Foreground(c.Ready),
			session.StateFailed:             lipgloss.NewStyle().Foreground(c.Failed),
		},
	}
}

// stateMarkers — значки состояний в списке.
var stateMarkers = map[session.State]string{
	session.StatePending:            "○",
	session.StateExtracting:         "◐",
	session.StateAwaitingSuggestion: "◑",
	session.StateReady:              "✓",
	session.StateFailed:             "✗",
}

func (s styles) marker(st session.State) string {
	return s.states[st].Render(stateMarkers[st])
}
