package session

import (
	"fmt"

	"github.com/ilkoid/airename/pkg/extract"
)

// State — состояние обработки файла.
type State int

const (
	StatePending State = iota
	StateExtracting
	StateAwaitingSuggestion
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateExtracting:
		return "extracting"
	case StateAwaitingSuggestion:
		return "awaiting_suggestion"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Done сообщает, завершена ли обработка (Ready или Failed).
func (s State) Done() bool {
	return s == StateReady || s == StateFailed
}

// MarshalText отдаёт строковое имя состояния в JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText разбирает имя состояния обратно.
func (s *State) UnmarshalText(text []byte) error {
	for st := StatePending; st <= StateFailed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// FileEntry — файл внутри сессии.
//
// EditedName инициализируется SuggestedName и дальше меняется только
// явным редактированием. В состоянии Ready EditedName не пуст.
type FileEntry struct {
	ID               string         `json:"id"`
	Source           extract.Source `json:"-"`
	OriginalName     string         `json:"originalName"`
	Size             int64          `json:"size"`
	ExtractedContent string         `json:"extractedContent,omitempty"`
	SuggestedName    string         `json:"suggestedName"`
	EditedName       string         `json:"editedName"`
	Summary          string         `json:"summary,omitempty"`
	State            State          `json:"state"`
	Editing          bool           `json:"editing"`
	Err              string         `json:"error,omitempty"`
}
