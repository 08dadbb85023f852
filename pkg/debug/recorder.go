package debug

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ilkoid/airename/pkg/events"
)

// Recorder собирает события пакета и сохраняет трейс в JSON файл.
//
// Реализует events.Emitter и передаёт каждое событие дальше в next.
// Потокобезопасен.
type Recorder struct {
	mu sync.Mutex

	config RecorderConfig
	next   events.Emitter

	log     BatchLog
	started map[string]int // EntryID -> индекс в log.Files
}

// RecorderConfig конфигурация для создания Recorder.
type RecorderConfig struct {
	// LogsDir — директория для сохранения трейсов
	LogsDir string

	SessionID string
	Model     string
}

// NewRecorder создает новый Recorder. next может быть nil.
//
// Если LogsDir не существует, пытается создать её.
func NewRecorder(cfg RecorderConfig, next events.Emitter) (*Recorder, error) {
	if cfg.LogsDir != "" {
		if err := os.MkdirAll(cfg.LogsDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
	}
	if next == nil {
		next = events.Nop{}
	}

	now := time.Now()
	return &Recorder{
		config: cfg,
		next:   next,
		log: BatchLog{
			RunID:     fmt.Sprintf("batch_%s", now.Format("20060102_150405.000")),
			SessionID: cfg.SessionID,
			Model:     cfg.Model,
			Timestamp: now,
		},
		started: make(map[string]int),
	}, nil
}

// Emit записывает событие и передаёт его дальше.
func (r *Recorder) Emit(ctx context.Context, event events.Event) {
	r.record(event)
	r.next.Emit(ctx, event)
}

func (r *Recorder) record(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch data := event.Data.(type) {
	case events.FileData:
		r.started[data.EntryID] = len(r.log.Files)
		r.log.Files = append(r.log.Files, FileTrace{
			EntryID:      data.EntryID,
			OriginalName: data.OriginalName,
			Index:        data.Index,
		})

	case events.FileResultData:
		i, ok := r.started[data.EntryID]
		if !ok {
			i = len(r.log.Files)
			r.log.Files = append(r.log.Files, FileTrace{EntryID: data.EntryID, OriginalName: data.OriginalName})
		}
		f := &r.log.Files[i]
		f.Name = data.Name
		f.Duration = data.Duration.Milliseconds()
		if event.Type == events.EventFileFailed {
			f.Failed = true
			if data.Err != nil {
				f.Error = data.Err.Error()
			}
		}

	case events.BatchData:
		r.log.Summary.Total = data.Total
		r.log.Summary.Remaining = data.Remaining
		if event.Type == events.EventBatchPaused {
			r.log.Summary.Paused = true
		}
	}
}

// Finalize завершает запись и сохраняет трейс в файл.
// runErr — ошибка, которой завершился пакет, или nil.
//
// Возвращает путь к сохраненному файлу или ошибку.
func (r *Recorder) Finalize(duration time.Duration, runErr error) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Duration = duration.Milliseconds()
	if runErr != nil {
		r.log.Error = runErr.Error()
	}
	r.buildSummary()

	data, err := json.MarshalIndent(r.log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal debug log: %w", err)
	}

	filePath := r.getFilePath()
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write debug log: %w", err)
	}

	return filePath, nil
}

// buildSummary формирует агрегированную статистику.
func (r *Recorder) buildSummary() {
	s := &r.log.Summary
	s.Ready, s.Failed, s.TotalDuration = 0, 0, 0
	s.Errors = nil

	for _, f := range r.log.Files {
		s.TotalDuration += f.Duration
		switch {
		case f.Failed:
			s.Failed++
			s.Errors = append(s.Errors, fmt.Sprintf("%s: %s", f.OriginalName, f.Error))
		case f.Name != "":
			s.Ready++
		}
	}
}

// getFilePath возвращает путь к файлу для сохранения.
func (r *Recorder) getFilePath() string {
	if r.config.LogsDir != "" {
		return filepath.Join(r.config.LogsDir, r.log.RunID+".json")
	}
	return r.log.RunID + ".json"
}

// GetRunID возвращает идентификатор текущего запуска.
func (r *Recorder) GetRunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.RunID
}

var _ events.Emitter = (*Recorder)(nil)
