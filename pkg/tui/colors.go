package tui

import "github.com/charmbracelet/lipgloss"

// ColorScheme определяет цвета элементов экрана.
type ColorScheme struct {
	StatusBackground lipgloss.Color
	StatusForeground lipgloss.Color

	Pending lipgloss.Color // Ждёт обработки
	Working lipgloss.Color // Извлечение или запрос к модели
	Ready   lipgloss.Color
	Failed  lipgloss.Color

	Cursor lipgloss.Color
	Dim    lipgloss.Color // Исходные имена, превью
	Error  lipgloss.Color
	Border lipgloss.Color
}

// ColorSchemes предоставляет предустановленные цветовые схемы.
var ColorSchemes = map[string]ColorScheme{
	"default": {
		StatusBackground: lipgloss.Color("62"),
		StatusForeground: lipgloss.Color("#FFFFFF"),
		Pending:          lipgloss.Color("245"),
		Working:          lipgloss.Color("214"),
		Ready:            lipgloss.Color("#04B575"),
		Failed:           lipgloss.Color("196"),
		Cursor:           lipgloss.Color("205"),
		Dim:              lipgloss.Color("242"),
		Error:            lipgloss.Color("#FF0000"),
		Border:           lipgloss.Color("240"),
	},
	"light": {
		StatusBackground: lipgloss.Color("255"),
		StatusForeground: lipgloss.Color("0"),
		Pending:          lipgloss.Color("8"),
		Working:          lipgloss.Color("130"),
		Ready:            lipgloss.Color("28"),
		Failed:           lipgloss.Color("1"),
		Cursor:           lipgloss.Color("90"),
		Dim:              lipgloss.Color("245"),
		Error:            lipgloss.Color("1"),
		Border:           lipgloss.Color("8"),
	},
}

// DefaultColorScheme возвращает схему по умолчанию.
func DefaultColorScheme() ColorScheme {
	return ColorSchemes["default"]
}

// GetColorScheme возвращает цветовую схему по имени.
// Если схема не найдена, возвращает default.
func GetColorScheme(name string) ColorScheme {
	if scheme, ok := ColorSchemes[name]; ok {
		return scheme
	}
	return DefaultColorScheme()
}
