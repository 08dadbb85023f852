// Package history хранит журнал пакетов переименования.
//
// В хранилище лежит только legacy-форма: JSON массив пакетов
// {id, timestamp, originalFiles, processedFiles, totalFiles}.
// Нормализованные записи (по одной на файл) существуют только в памяти
// для отображения, фильтрации и выбора.
package history

import (
	"fmt"
	"strings"
	"time"
)

// ProcessedFile — пара имён внутри legacy-пакета.
type ProcessedFile struct {
	OriginalName string `json:"originalName"`
	NewName      string `json:"newName"`
}

// LegacyBatch — сохраняемая форма одного пакета.
type LegacyBatch struct {
	ID             string          `json:"id"`
	Timestamp      int64           `json:"timestamp"` // epoch ms
	OriginalFiles  []string        `json:"originalFiles"`
	ProcessedFiles []ProcessedFile `json:"processedFiles"`
	TotalFiles     int             `json:"totalFiles"`
}

// Record — нормализованная запись об одном файле.
type Record struct {
	ID            string `json:"id"`
	BatchID       string `json:"batchId"`
	Timestamp     int64  `json:"timestamp"` // epoch ms, общий для пакета
	OriginalName  string `json:"originalName"`
	NewName       string `json:"newName"`
	FileExtension string `json:"fileExtension"`
}

// Time возвращает время пакета.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Entry — файл, попадающий в новый пакет.
type Entry struct {
	OriginalName string
	NewName      string
}

// Extension возвращает суффикс после последней точки в нижнем регистре
// или пустую строку.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// RecordID строит детерминированный id записи.
func RecordID(batchID string, index int) string {
	return fmt.Sprintf("%s_%d", batchID, index)
}

// Expand разворачивает пакеты в записи, сохраняя порядок.
func Expand(batches []LegacyBatch) []Record {
	var records []Record
	for _, b := range batches {
		for i, f := range b.ProcessedFiles {
			records = append(records, Record{
				ID:            RecordID(b.ID, i),
				BatchID:       b.ID,
				Timestamp:     b.Timestamp,
				OriginalName:  f.OriginalName,
				NewName:       f.NewName,
				FileExtension: Extension(f.OriginalName),
			})
		}
	}
	return records
}

// Collapse собирает записи обратно в пакеты.
// Пакеты идут в порядке первого появления batchId.
func Collapse(records []Record) []LegacyBatch {
	index := make(map[string]int)
	var batches []LegacyBatch

	for _, r := range records {
		i, ok := index[r.BatchID]
		if !ok {
			i = len(batches)
			index[r.BatchID] = i
			batches = append(batches, LegacyBatch{
				ID:             r.BatchID,
				Timestamp:      r.Timestamp,
				OriginalFiles:  []string{},
				ProcessedFiles: []ProcessedFile{},
			})
		}

		b := &batches[i]
		b.OriginalFiles = append(b.OriginalFiles, r.OriginalName)
		b.ProcessedFiles = append(b.ProcessedFiles, ProcessedFile{
			OriginalName: r.OriginalName,
			NewName:      r.NewName,
		})
		b.TotalFiles = len(b.ProcessedFiles)
	}

	return batches
}

// FilterWindow возвращает записи с timestamp >= now - window.
// Нулевое окно означает "все записи".
func FilterWindow(records []Record, now time.Time, window time.Duration) []Record {
	if window <= 0 {
		return records
	}

	cutoff := now.Add(-window).UnixMilli()
	var out []Record
	for _, r := range records {
		if r.Timestamp >= cutoff {
			out = append(out, r)
		}
	}
	return out
}

// Select возвращает записи с указанными id в порядке records.
func Select(records []Record, ids []string) []Record {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var out []Record
	for _, r := range records {
		if want[r.ID] {
			out = append(out, r)
		}
	}
	return out
}
