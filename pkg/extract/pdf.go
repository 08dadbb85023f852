package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// maxPDFText ограничивает объём текста, читаемого из PDF.
// Модели всё равно уходит только начало.
const maxPDFText = 1 << 20

// parsePDF извлекает текстовый слой всех страниц.
// Сканы без текстового слоя дают ErrNoText.
func parsePDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read text layer: %w", err)
	}

	text, err := io.ReadAll(io.LimitReader(plain, maxPDFText))
	if err != nil {
		return "", fmt.Errorf("read text layer: %w", err)
	}

	return tidyLines(string(text)), nil
}
