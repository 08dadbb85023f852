// Package app собирает компоненты приложения для разных точек входа
// (CLI, TUI, HTTP сервер).
//
// Точки входа только инициализируют и оркестрируют: вся логика
// переименования живёт в пакетах session, naming, archive и history.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilkoid/airename/pkg/archive"
	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/debug"
	"github.com/ilkoid/airename/pkg/events"
	"github.com/ilkoid/airename/pkg/extract"
	"github.com/ilkoid/airename/pkg/history"
	"github.com/ilkoid/airename/pkg/kvstore"
	"github.com/ilkoid/airename/pkg/naming"
	"github.com/ilkoid/airename/pkg/s3storage"
	"github.com/ilkoid/airename/pkg/session"
	"github.com/ilkoid/airename/pkg/utils"
)

// Components содержит все компоненты приложения для переиспользования.
//
// CLI, TUI и HTTP сервер создают их одним вызовом Initialize.
type Components struct {
	Config    *config.AppConfig
	Extractor session.Extractor
	Namer     session.Namer
	KV        kvstore.Store
	History   *history.Store
	Exporter  *archive.Exporter
	Objects   *s3storage.Client // nil, если s3 не настроен
}

// ConfigPathFinder определяет стратегию поиска пути к config.yaml.
//
// По умолчанию используется DefaultConfigPathFinder, но можно
// реализовать свою стратегию для тестов.
type ConfigPathFinder interface {
	FindConfigPath() string
}

// DefaultConfigPathFinder реализует стандартную стратегию поиска config.yaml.
//
// Порядок поиска:
// 1. Флаг --config (если указан)
// 2. Текущая директория (./config.yaml)
// 3. Директория бинарника
// 4. Родительская директория (для запуска из cmd/)
type DefaultConfigPathFinder struct {
	// ConfigFlag - значение флага --config, если указан
	ConfigFlag string
}

// FindConfigPath находит путь к config.yaml.
// Пустая строка означает, что файла нет и нужна конфигурация по умолчанию.
func (f *DefaultConfigPathFinder) FindConfigPath() string {
	// 1. Флаг имеет приоритет
	if f.ConfigFlag != "" {
		return resolveAbsPath(f.ConfigFlag)
	}

	// 2. Текущая директория
	if _, err := os.Stat("config.yaml"); err == nil {
		return resolveAbsPath("config.yaml")
	}

	// 3. Директория бинарника
	if execPath, err := os.Executable(); err == nil {
		cfgPath := filepath.Join(filepath.Dir(execPath), "config.yaml")
		if _, err := os.Stat(cfgPath); err == nil {
			return cfgPath
		}
	}

	// 4. Родительская директория
	cfgPath := filepath.Join("..", "config.yaml")
	if _, err := os.Stat(cfgPath); err == nil {
		return resolveAbsPath(cfgPath)
	}

	return ""
}

// InitializeConfig загружает конфигурацию.
//
// Если файл не найден, возвращает config.Default() и пустой путь.
// Явно указанный, но отсутствующий файл считается ошибкой.
func InitializeConfig(finder ConfigPathFinder) (*config.AppConfig, string, error) {
	cfgPath := finder.FindConfigPath()
	if cfgPath == "" {
		return config.Default(), "", nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", cfgPath, err)
	}

	return cfg, cfgPath, nil
}

// Initialize создаёт и инициализирует все компоненты приложения.
func Initialize(cfg *config.AppConfig) (*Components, error) {
	utils.Info("Initializing components",
		"model", cfg.Models.DefaultNaming,
		"history_backend", cfg.History.Backend)

	// 1. Объектное хранилище (опционально)
	var objects *s3storage.Client
	if cfg.S3.Enabled() {
		var err error
		objects, err = s3storage.New(cfg.S3)
		if err != nil {
			utils.Error("S3 client creation failed", "error", err)
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		utils.Info("S3 client initialized", "bucket", cfg.S3.Bucket)
	}

	// 2. Клиент модели именования
	namer, err := naming.NewFromConfig(cfg)
	if err != nil {
		utils.Error("Naming client creation failed", "error", err)
		return nil, fmt.Errorf("failed to create naming client: %w", err)
	}
	if err := namer.Configured(); err != nil {
		// Файлы получат исходные имена
		utils.Warn("Naming model is not configured", "error", err)
	}

	// 3. Экспорт архивов
	exporter, err := archive.NewExporter(cfg.Archive)
	if err != nil {
		return nil, err
	}

	// 4. Хранилище истории
	kv, err := kvstore.Open(cfg)
	if err != nil {
		utils.Error("History store open failed", "error", err)
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	loc, _ := cfg.Archive.LoadLocation()

	c := &Components{
		Config:    cfg,
		Extractor: extract.New(extract.WithLocation(loc)),
		Namer:     namer,
		KV:        kv,
		History:   history.NewStore(kv, cfg.History),
		Exporter:  exporter,
		Objects:   objects,
	}

	utils.Info("Components initialized")
	return c, nil
}

// Close освобождает хранилище истории.
func (c *Components) Close() error {
	if c.KV == nil {
		return nil
	}
	return c.KV.Close()
}

// NewSession создаёт пустую сессию с лимитами из конфига.
func (c *Components) NewSession() *session.Session {
	return session.New(c.Config.Limits)
}

// Process запускает обработку сессии с задержкой и vision из конфига.
//
// emitter может быть nil. При app.debug трейс пакета пишется в app.log_dir.
func (c *Components) Process(ctx context.Context, sess *session.Session, token *session.PauseToken, emitter events.Emitter) (session.BatchResult, error) {
	var recorder *debug.Recorder
	if c.Config.App.Debug {
		var err error
		recorder, err = debug.NewRecorder(debug.RecorderConfig{
			LogsDir:   c.Config.App.LogDir,
			SessionID: sess.ID(),
			Model:     c.Config.Models.DefaultNaming,
		}, emitter)
		if err != nil {
			utils.Warn("Debug recorder disabled", "error", err)
		} else {
			emitter = recorder
		}
	}

	opts := []session.ProcessOption{
		session.WithDelay(c.Config.Session.GetDefaults().ItemDelay),
		session.WithVision(c.Config.Naming.Vision, c.Config.ImageProcessing),
	}
	if emitter != nil {
		opts = append(opts, session.WithEmitter(emitter))
	}

	start := time.Now()
	res, err := sess.Process(ctx, c.Extractor, c.Namer, token, opts...)

	if recorder != nil {
		if path, ferr := recorder.Finalize(time.Since(start), err); ferr != nil {
			utils.Warn("Debug trace not saved", "error", ferr)
		} else {
			utils.Debug("Debug trace saved", "path", path)
		}
	}

	return res, err
}

// ExportOptions — куда дополнительно положить архив.
type ExportOptions struct {
	SaveDir string // Пусто — архив остаётся только в памяти
}

// ExportResult — итог выгрузки.
type ExportResult struct {
	Archive     *archive.Archive
	BatchID     string // Пакет в истории, пусто если запись не удалась
	Path        string // Файл на диске, если задан SaveDir
	ObjectKey   string // Ключ в S3, если включена публикация
	DownloadURL string // Временная ссылка на опубликованный архив
}

// presignTTL — время жизни ссылки на опубликованный архив.
const presignTTL = 24 * time.Hour

// Export собирает архив из записей и добавляет пакет в историю.
//
// Ошибка записи истории логируется и не прерывает выгрузку.
func (c *Components) Export(ctx context.Context, entries []session.FileEntry, opts ExportOptions) (*ExportResult, error) {
	if len(entries) == 0 {
		return nil, archive.ErrEmptySelection
	}

	a, err := c.Exporter.Export(ItemsFromEntries(entries))
	if err != nil {
		return nil, err
	}

	res := &ExportResult{Archive: a}

	if opts.SaveDir != "" {
		if res.Path, err = a.Save(opts.SaveDir); err != nil {
			return nil, err
		}
	}

	if c.Config.Archive.PublishS3 && c.Objects != nil {
		if res.ObjectKey, err = a.Publish(ctx, c.Objects, c.Config.Archive.S3Prefix); err != nil {
			return nil, fmt.Errorf("publish archive: %w", err)
		}
		if url, err := c.Objects.PresignedURL(ctx, res.ObjectKey, presignTTL); err != nil {
			utils.Warn("Presign failed", "key", res.ObjectKey, "error", err)
		} else {
			res.DownloadURL = url
		}
	}

	hist := make([]history.Entry, len(a.Entries))
	for i, e := range a.Entries {
		hist[i] = history.Entry{OriginalName: e.OriginalName, NewName: e.Name}
	}
	batchID, err := c.History.AppendBatch(ctx, hist, a.CreatedAt)
	if err != nil {
		utils.Error("History append failed", "archive", a.Name, "error", err)
	} else {
		res.BatchID = batchID
	}

	return res, nil
}

// ItemsFromEntries превращает записи сессии в элементы архива.
func ItemsFromEntries(entries []session.FileEntry) []archive.Item {
	items := make([]archive.Item, len(entries))
	for i, e := range entries {
		items[i] = archive.Item{
			OriginalName:  e.OriginalName,
			SuggestedName: e.SuggestedName,
			EditedName:    e.EditedName,
			Data:          e.Source.Data,
			Content:       e.ExtractedContent,
		}
	}
	return items
}

// resolveAbsPath преобразует относительный путь в абсолютный.
func resolveAbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
