// Интерфейс Провайдера через который работает всё приложение.

package llm

import (
	"context"
	"errors"
	"fmt"
)

// Provider — контракт для любого AI-сервиса.
type Provider interface {
	// Generate отправляет сообщения и возвращает ответ модели.
	Generate(ctx context.Context, messages []Message, opts ...GenerateOption) (Message, error)
}

// ErrEmptyResponse возвращается когда модель не вернула ни одного варианта
// или вернула пустой текст.
var ErrEmptyResponse = errors.New("empty completion")

// APIError — ошибка upstream API с HTTP статусом.
//
// StatusCode = 0 означает транспортную ошибку (сеть, DNS, таймаут).
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("llm transport error: %s", e.Message)
	}
	return fmt.Sprintf("llm api error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
