// Package archive упаковывает переименованные файлы в zip.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/s3storage"
	"github.com/ilkoid/airename/pkg/utils"
)

// ErrEmptySelection — не передано ни одного файла.
var ErrEmptySelection = errors.New("no files selected for export")

// Item — файл на выгрузку.
type Item struct {
	OriginalName  string
	SuggestedName string
	EditedName    string
	Data          []byte // Исходные байты
	Content       string // Пишется, если байтов нет
}

// Entry — соответствие исходного имени и имени в архиве.
type Entry struct {
	OriginalName string `json:"originalName"`
	Name         string `json:"name"`
}

// Archive — готовый zip.
type Archive struct {
	Name      string
	Data      []byte
	Entries   []Entry
	CreatedAt time.Time
}

// Exporter строит архивы по секции archive конфига.
type Exporter struct {
	prefix string
	loc    *time.Location
	now    func() time.Time
}

// Option настраивает Exporter.
type Option func(*Exporter)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// NewExporter создаёт экспортёр. Ошибка — неизвестный часовой пояс.
func NewExporter(cfg config.ArchiveConfig, opts ...Option) (*Exporter, error) {
	cfg = cfg.GetDefaults()

	loc, err := cfg.LoadLocation()
	if err != nil {
		return nil, fmt.Errorf("archive location: %w", err)
	}

	e := &Exporter{prefix: cfg.Prefix, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// FinalName возвращает имя файла в архиве: EditedName, затем
// SuggestedName, затем OriginalName, с расширением исходного файла,
// если его ещё нет (без учёта регистра).
func FinalName(it Item) string {
	name := firstNonEmpty(it.EditedName, it.SuggestedName, it.OriginalName)

	ext := filepath.Ext(it.OriginalName)
	if ext == "" || ext == it.OriginalName {
		return name
	}
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}

// Export упаковывает файлы в zip в переданном порядке.
//
// Совпадающие имена (без учёта регистра) получают суффикс " (2)", " (3)"
// перед расширением, поэтому в архиве всегда len(items) записей.
func (e *Exporter) Export(items []Item) (*Archive, error) {
	if len(items) == 0 {
		return nil, ErrEmptySelection
	}

	now := e.now().In(e.loc)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	used := make(map[string]bool, len(items))
	entries := make([]Entry, 0, len(items))

	for _, it := range items {
		name := uniqueName(FinalName(it), used)

		payload := it.Data
		if len(payload) == 0 {
			payload = []byte(it.Content)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", name, err)
		}
		if _, err := w.Write(payload); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}

		entries = append(entries, Entry{OriginalName: it.OriginalName, Name: name})
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish zip: %w", err)
	}

	a := &Archive{
		Name:      e.prefix + now.Format("20060102_150405") + ".zip",
		Data:      buf.Bytes(),
		Entries:   entries,
		CreatedAt: now,
	}
	utils.Info("Archive built", "name", a.Name, "files", len(entries), "bytes", len(a.Data))
	return a, nil
}

// Save пишет архив в dir и возвращает полный путь.
func (a *Archive) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, a.Name)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write archive: %w", err)
	}
	return path, nil
}

// Publish загружает архив в объектное хранилище и возвращает ключ.
func (a *Archive) Publish(ctx context.Context, store s3storage.ObjectStore, prefix string) (string, error) {
	key := s3storage.JoinKey(prefix, a.Name)
	if err := store.Upload(ctx, key, a.Data, "application/zip"); err != nil {
		return "", err
	}
	utils.Info("Archive published", "key", key)
	return key, nil
}

// uniqueName добавляет " (n)" перед расширением, пока имя занято.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 2; used[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
	}

	used[strings.ToLower(candidate)] = true
	return candidate
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
