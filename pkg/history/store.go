package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/kvstore"
	"github.com/ilkoid/airename/pkg/utils"
)

// ErrEmptySelection — не выбрано ни одной записи.
var ErrEmptySelection = errors.New("no history records selected")

// Store — журнал пакетов поверх kvstore.
//
// Все изменения идут по схеме: прочитать legacy JSON, изменить,
// записать целиком. Мьютекс сериализует это внутри процесса.
type Store struct {
	mu         sync.Mutex
	kv         kvstore.Store
	key        string
	maxBatches int
}

// NewStore создаёт журнал по секции history конфига.
func NewStore(kv kvstore.Store, cfg config.HistoryConfig) *Store {
	cfg = cfg.GetDefaults()
	return &Store{
		kv:         kv,
		key:        cfg.Key,
		maxBatches: cfg.MaxBatches,
	}
}

// Load возвращает все записи, новые пакеты первыми.
//
// Отсутствие ключа и битый JSON дают пустую историю; битый JSON
// логируется как ERROR.
func (s *Store) Load(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batches, err := s.loadBatches(ctx)
	if err != nil {
		return nil, err
	}
	return Expand(batches), nil
}

// AppendBatch записывает новый пакет в начало истории и обрезает
// её до maxBatches последних пакетов. Возвращает id пакета.
func (s *Store) AppendBatch(ctx context.Context, entries []Entry, ts time.Time) (string, error) {
	if len(entries) == 0 {
		return "", ErrEmptySelection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batches, err := s.loadBatches(ctx)
	if err != nil {
		return "", err
	}

	batch := LegacyBatch{
		ID:             uuid.NewString(),
		Timestamp:      ts.UnixMilli(),
		OriginalFiles:  make([]string, 0, len(entries)),
		ProcessedFiles: make([]ProcessedFile, 0, len(entries)),
		TotalFiles:     len(entries),
	}
	for _, e := range entries {
		batch.OriginalFiles = append(batch.OriginalFiles, e.OriginalName)
		batch.ProcessedFiles = append(batch.ProcessedFiles, ProcessedFile{
			OriginalName: e.OriginalName,
			NewName:      e.NewName,
		})
	}

	batches = append([]LegacyBatch{batch}, batches...)
	if len(batches) > s.maxBatches {
		utils.Debug("History truncated", "dropped", len(batches)-s.maxBatches)
		batches = batches[:s.maxBatches]
	}

	if err := s.writeBatches(ctx, batches); err != nil {
		return "", err
	}

	utils.Info("History batch appended", "batch_id", batch.ID, "files", len(entries))
	return batch.ID, nil
}

// DeleteSelected удаляет записи по id и возвращает число удалённых.
func (s *Store) DeleteSelected(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}

	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	return s.rewrite(ctx, func(r Record) bool { return !selected[r.ID] })
}

// ClearFiltered удаляет записи внутри окна [now-window, ...].
// Нулевое окно равносильно ClearAll.
func (s *Store) ClearFiltered(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	if window <= 0 {
		records, err := s.Load(ctx)
		if err != nil {
			return 0, err
		}
		return len(records), s.ClearAll(ctx)
	}

	cutoff := now.Add(-window).UnixMilli()
	return s.rewrite(ctx, func(r Record) bool { return r.Timestamp < cutoff })
}

// ClearAll удаляет ключ истории целиком.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	utils.Info("History cleared")
	return nil
}

// rewrite оставляет записи, для которых keep вернул true, и сохраняет их.
func (s *Store) rewrite(ctx context.Context, keep func(Record) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batches, err := s.loadBatches(ctx)
	if err != nil {
		return 0, err
	}

	records := Expand(batches)
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			kept = append(kept, r)
		}
	}

	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := s.writeBatches(ctx, Collapse(kept)); err != nil {
		return 0, err
	}

	utils.Info("History records removed", "removed", removed, "kept", len(kept))
	return removed, nil
}

func (s *Store) loadBatches(ctx context.Context) ([]LegacyBatch, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var batches []LegacyBatch
	if err := json.Unmarshal(raw, &batches); err != nil {
		utils.Error("Failed to parse history, treating as empty", "key", s.key, "error", err)
		return nil, nil
	}
	return batches, nil
}

func (s *Store) writeBatches(ctx context.Context, batches []LegacyBatch) error {
	if batches == nil {
		batches = []LegacyBatch{}
	}

	raw, err := json.Marshal(batches)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
