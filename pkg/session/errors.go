package session

import "errors"

var (
	// ErrNoValidFiles — ни один файл не прошёл проверку при загрузке.
	ErrNoValidFiles = errors.New("no valid files")

	// ErrEntryNotFound — в сессии нет файла с таким id.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrBusy — пакет уже обрабатывается.
	ErrBusy = errors.New("batch is already running")

	// ErrNotEditable — файл ещё не обработан.
	ErrNotEditable = errors.New("entry is still being processed")

	// ErrNotEditing — редактирование не начато.
	ErrNotEditing = errors.New("entry is not being edited")
)

// Rejection — файл, не принятый при загрузке.
type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Причины отказа при загрузке.
const (
	ReasonUnsupported = "unsupported file type"
	ReasonTooLarge    = "file too large"
	ReasonTooMany     = "too many files"
)
