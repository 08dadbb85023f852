// Package extract превращает загруженный файл в текст для модели именования.
//
// Выбор парсера идёт по статическому реестру расширений (registry.go).
// Extract никогда не возвращает ошибку: сбой парсера превращается
// в строку метаданных с пометкой о неудачном чтении.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilkoid/airename/pkg/utils"
)

// ErrNoText возвращается парсером, если документ не содержит текста.
var ErrNoText = errors.New("no readable text")

// Source — загруженный файл.
type Source struct {
	Name        string
	ContentType string
	ModTime     time.Time
	Data        []byte
}

// Size возвращает размер файла в байтах.
func (s Source) Size() int64 {
	return int64(len(s.Data))
}

// Extractor извлекает текст по реестру форматов.
type Extractor struct {
	loc *time.Location
}

// Option настраивает Extractor.
type Option func(*Extractor)

// WithLocation задаёт часовой пояс для времени изменения в метаданных.
func WithLocation(loc *time.Location) Option {
	return func(e *Extractor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// New создаёт Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract возвращает текстовое представление файла.
//
// Порядок: текст → документ → таблица → PDF → метаданные.
// Ошибка любого парсера даёт метаданные с текстом ошибки, без повторов.
func (e *Extractor) Extract(ctx context.Context, src Source) string {
	format, ok := Lookup(src.Name)
	if !ok || !format.Extractable() {
		return e.Metadata(src, format.Category)
	}

	if err := ctx.Err(); err != nil {
		return e.ReadFailure(src, format.Category, err)
	}

	text, err := safeParse(format.Parser, src.Data)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrNoText
	}
	if err != nil {
		utils.Warn("Content extraction failed",
			"file", src.Name,
			"category", format.Category.String(),
			"error", err)
		return e.ReadFailure(src, format.Category, err)
	}

	utils.Debug("Content extracted",
		"file", src.Name,
		"category", format.Category.String(),
		"chars", len(text))

	return text
}

// safeParse страхует от паник внутри сторонних парсеров.
func safeParse(p Parser, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return p(data)
}

// Metadata строит фиксированный шаблон метаданных для форматов без текста.
func (e *Extractor) Metadata(src Source, cat Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This is %s %s file. Details:\n", article(cat.String()), cat.String())
	e.writeDetails(&b, src)
	b.WriteString("Infer the purpose and content of the file from the name, size, type and modification time.")
	return b.String()
}

// ReadFailure строит шаблон метаданных для файла, который не удалось прочитать.
func (e *Extractor) ReadFailure(src Source, cat Category, cause error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Failed to read %s content of %s: %v\n", cat.String(), src.Name, cause)
	e.writeDetails(&b, src)
	b.WriteString("Infer the purpose and content of the file from the available information.")
	return b.String()
}

func (e *Extractor) writeDetails(b *strings.Builder, src Source) {
	fmt.Fprintf(b, "- Original file name: %s\n", src.Name)
	fmt.Fprintf(b, "- File size: %.2f MB\n", float64(src.Size())/1024/1024)
	fmt.Fprintf(b, "- Type: %s\n", declaredType(src))
	fmt.Fprintf(b, "- Last modified: %s\n", e.formatTime(src.ModTime))
}

func (e *Extractor) formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.In(e.loc).Format("2006-01-02 15:04:05 MST")
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}

func declaredType(src Source) string {
	if src.ContentType != "" && src.ContentType != "application/octet-stream" {
		return src.ContentType
	}
	if ext := Ext(src.Name); ext != "" {
		return strings.ToUpper(ext)
	}
	return "unknown"
}
