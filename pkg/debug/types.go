// Package debug записывает трейс пакетной обработки в JSON файл.
//
// Трейс содержит по записи на каждый файл пакета: предложенное имя,
// длительность запроса к модели и ошибку. Пишется только при app.debug.
package debug

import "time"

// BatchLog представляет полный трейс одного запуска пакета.
type BatchLog struct {
	// RunID — уникальный идентификатор запуска (используется в имени файла)
	RunID string `json:"run_id"`

	// SessionID — сессия, которой принадлежит пакет
	SessionID string `json:"session_id"`

	// Model — алиас модели именования
	Model string `json:"model,omitempty"`

	// Timestamp — время начала выполнения
	Timestamp time.Time `json:"timestamp"`

	// Duration — общая длительность выполнения в миллисекундах
	Duration int64 `json:"duration_ms"`

	Files []FileTrace `json:"files"`

	Summary Summary `json:"summary"`

	// Error — ошибка, прервавшая пакет (отмена контекста)
	Error string `json:"error,omitempty"`
}

// FileTrace — обработка одного файла.
type FileTrace struct {
	EntryID      string `json:"entry_id"`
	OriginalName string `json:"original_name"`
	Index        int    `json:"index"`
	Name         string `json:"name,omitempty"`
	Duration     int64  `json:"duration_ms"`
	Failed       bool   `json:"failed,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Summary — агрегированная статистика запуска.
type Summary struct {
	Total         int      `json:"total"`
	Ready         int      `json:"ready"`
	Failed        int      `json:"failed"`
	Remaining     int      `json:"remaining"`
	Paused        bool     `json:"paused"`
	TotalDuration int64    `json:"total_naming_ms"`
	Errors        []string `json:"errors,omitempty"`
}
