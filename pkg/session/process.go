package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/events"
	"github.com/ilkoid/airename/pkg/extract"
	"github.com/ilkoid/airename/pkg/naming"
	"github.com/ilkoid/airename/pkg/utils"
)

// Extractor извлекает текст или метаданные файла.
type Extractor interface {
	Extract(ctx context.Context, src extract.Source) string
}

// Namer получает имя файла от модели.
type Namer interface {
	Describe(ctx context.Context, content, originalName string, opts ...naming.SuggestOption) (naming.Suggestion, error)
}

// PauseToken — флаг кооперативной паузы.
//
// Проверяется перед каждым файлом и после паузы между файлами.
// Файл, который уже обрабатывается, доводится до конца.
type PauseToken struct {
	paused atomic.Bool
}

// NewPauseToken создаёт снятый флаг.
func NewPauseToken() *PauseToken {
	return &PauseToken{}
}

// Pause просит остановиться перед следующим файлом.
func (t *PauseToken) Pause() { t.paused.Store(true) }

// Reset снимает флаг перед возобновлением.
func (t *PauseToken) Reset() { t.paused.Store(false) }

// Paused сообщает, запрошена ли пауза.
func (t *PauseToken) Paused() bool {
	return t != nil && t.paused.Load()
}

// BatchResult — итог одного запуска Process.
type BatchResult struct {
	Processed int  `json:"processed"`
	Ready     int  `json:"ready"`
	Failed    int  `json:"failed"`
	Remaining int  `json:"remaining"`
	Paused    bool `json:"paused"`
}

// ProcessOption настраивает Process.
type ProcessOption func(*processOptions)

type processOptions struct {
	delay   time.Duration
	emitter events.Emitter
	vision  bool
	image   config.ImageProcConfig
}

// WithDelay задаёт паузу между файлами.
func WithDelay(d time.Duration) ProcessOption {
	return func(o *processOptions) { o.delay = d }
}

// WithEmitter публикует прогресс через emitter.
func WithEmitter(e events.Emitter) ProcessOption {
	return func(o *processOptions) {
		if e != nil {
			o.emitter = e
		}
	}
}

// WithVision прикладывает к запросу уменьшенную копию изображения.
func WithVision(enabled bool, image config.ImageProcConfig) ProcessOption {
	return func(o *processOptions) {
		o.vision = enabled
		o.image = image
	}
}

// Process обрабатывает необработанные файлы строго по одному, в порядке
// загрузки, с паузой между файлами.
//
// Ошибка именования не прерывает пакет: файл получает исходное имя без
// расширения и состояние Failed. Уже обработанные файлы не трогаются,
// поэтому повторный вызов продолжает с первого Pending файла.
// Отмена ctx прерывает пакет; прерванный файл возвращается в Pending.
func (s *Session) Process(ctx context.Context, ex Extractor, namer Namer, token *PauseToken, opts ...ProcessOption) (BatchResult, error) {
	o := processOptions{delay: time.Second, emitter: events.Nop{}}
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return BatchResult{}, ErrBusy
	}
	s.running = true
	total := len(s.entries)
	remaining := s.countPending()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	utils.Info("Batch started", "session", s.id, "total", total, "pending", remaining)
	o.emitter.Emit(ctx, events.New(events.EventBatchStarted, events.BatchData{Total: total, Remaining: remaining}))

	var res BatchResult
	for {
		if err := ctx.Err(); err != nil {
			res.Remaining = s.Pending()
			return res, err
		}

		// Пауза на последнем файле не мешает завершить пакет
		if s.Pending() == 0 {
			break
		}

		if token.Paused() {
			res.Paused = true
			res.Remaining = s.Pending()
			utils.Info("Batch paused", "session", s.id, "processed", res.Processed, "remaining", res.Remaining)
			o.emitter.Emit(ctx, events.New(events.EventBatchPaused, events.BatchData{
				Total: s.Len(), Remaining: res.Remaining, Processed: res.Processed,
			}))
			return res, nil
		}

		entry, index, total := s.nextPending()
		if entry == nil {
			break
		}

		state, err := s.processEntry(ctx, ex, namer, entry, index, total, o)
		if err != nil {
			res.Remaining = s.Pending()
			return res, err
		}

		res.Processed++
		if state == StateReady {
			res.Ready++
		} else {
			res.Failed++
		}

		if s.Pending() > 0 && o.delay > 0 {
			if err := sleep(ctx, o.delay); err != nil {
				res.Remaining = s.Pending()
				return res, err
			}
		}
	}

	utils.Info("Batch finished", "session", s.id, "ready", res.Ready, "failed", res.Failed)
	o.emitter.Emit(ctx, events.New(events.EventBatchDone, events.BatchData{
		Total: s.Len(), Processed: res.Processed,
	}))
	return res, nil
}

// nextPending находит первый файл в состоянии Pending и переводит его в Extracting.
func (s *Session) nextPending() (*FileEntry, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.State == StatePending {
			e.State = StateExtracting
			e.Err = ""
			return e, i, len(s.entries)
		}
	}
	return nil, -1, len(s.entries)
}

// processEntry проводит один файл через извлечение и именование.
// Ошибка возвращается только при отмене ctx.
func (s *Session) processEntry(ctx context.Context, ex Extractor, namer Namer, e *FileEntry, index, total int, o processOptions) (State, error) {
	start := time.Now()

	s.mu.RLock()
	id, name, src := e.ID, e.OriginalName, e.Source
	s.mu.RUnlock()

	o.emitter.Emit(ctx, events.New(events.EventFileStarted, events.FileData{
		EntryID: id, OriginalName: name, Index: index, Total: total,
	}))

	content := ex.Extract(ctx, src)

	s.mu.Lock()
	e.ExtractedContent = content
	e.State = StateAwaitingSuggestion
	s.mu.Unlock()

	sug, err := namer.Describe(ctx, content, name, suggestOptions(src, o)...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil && ctx.Err() != nil {
		e.State = StatePending
		return StatePending, ctx.Err()
	}

	if err != nil {
		fallback := naming.StripExtension(name)
		e.SuggestedName = fallback
		e.EditedName = fallback
		e.State = StateFailed
		e.Err = err.Error()

		utils.Error("File naming failed", "session", s.id, "file", name, "error", err)
		o.emitter.Emit(ctx, events.New(events.EventFileFailed, events.FileResultData{
			EntryID: id, OriginalName: name, Name: fallback, Duration: time.Since(start), Err: err,
		}))
		return StateFailed, nil
	}

	e.SuggestedName = sug.Name
	e.EditedName = sug.Name
	e.Summary = sug.Summary
	e.State = StateReady

	utils.Info("File named", "session", s.id, "file", name, "name", sug.Name, "duration", time.Since(start))
	o.emitter.Emit(ctx, events.New(events.EventFileDone, events.FileResultData{
		EntryID: id, OriginalName: name, Name: sug.Name, Duration: time.Since(start),
	}))
	return StateReady, nil
}

// suggestOptions собирает подсказку о категории и, для изображений
// при включённом vision, уменьшенную копию картинки.
func suggestOptions(src extract.Source, o processOptions) []naming.SuggestOption {
	var opts []naming.SuggestOption

	format, ok := extract.Lookup(src.Name)
	if !ok {
		return opts
	}
	opts = append(opts, naming.WithCategory(format.Category.String()))

	if o.vision && format.Category == extract.CategoryImage && len(src.Data) > 0 {
		uri, err := utils.ImageDataURI(src.Data, o.image.MaxWidth, o.image.Quality)
		if err != nil {
			utils.Debug("Image not attached", "file", src.Name, "error", err)
			return opts
		}
		opts = append(opts, naming.WithImage(uri))
	}

	return opts
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
