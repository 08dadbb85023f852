package naming

import (
	"errors"
	"fmt"
	"net/http"
)

// Ошибки клиента именования.
var (
	// ErrNotConfigured — не задан ключ API или base URL.
	ErrNotConfigured = errors.New("naming endpoint not configured")

	// ErrInvalidCredentials — upstream ответил 401.
	ErrInvalidCredentials = errors.New("invalid or expired API key")

	// ErrUpstream — upstream вернул ошибку или непригодный ответ.
	ErrUpstream = errors.New("naming upstream error")
)

// ConfigurationError — ключ или адрес не настроены.
//
// Фатальна только для шага именования конкретного файла.
type ConfigurationError struct {
	Field string // "api_key" или "base_url"
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("naming not configured: %s is missing", e.Field)
}

// Is реализует errors.Is() для ErrNotConfigured.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNotConfigured
}

// UpstreamError — неуспешный ответ модели, транспортная ошибка
// или пустой completion.
type UpstreamError struct {
	StatusCode int // 0 для транспортных ошибок и пустого ответа
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return fmt.Sprintf("%s: %s", ErrInvalidCredentials.Error(), e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("naming request failed: %d - %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("naming request failed: %s", e.Message)
	}
}

// Is реализует errors.Is() для ErrUpstream и ErrInvalidCredentials (401).
func (e *UpstreamError) Is(target error) bool {
	if target == ErrUpstream {
		return true
	}
	return target == ErrInvalidCredentials && e.StatusCode == http.StatusUnauthorized
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
